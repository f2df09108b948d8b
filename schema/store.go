package schema

var (
	RecordBucket       = "registry-record-bucket"     // key: name, val: json(Record)
	OwnedNamesBucket   = "registry-owned-bucket"      // key: owner address hex, val: json([]string), append-only history
	RegistryStateKey   = "registry-state"             // single key inside ConstantsBucket
	ConstantsBucket    = "registry-constants-bucket"  // key: RegistryStateKey, val: json(RegistryState)
	AccountBookBucket  = "registry-account-bucket"    // key: address hex, val: decimal string
	PendingEventBucket = "registry-pending-ev-bucket" // key: %020d seq, val: json(Event); deleted after flush
)

package arnames

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/arnames/rawdb"
	"github.com/everFinance/arnames/schema"
	"github.com/shopspring/decimal"
)

// Store is the typed persistence layer of the registry. All values are json
// blobs inside rawdb buckets, so every backend (bolt, s3, aliyun, mongodb)
// carries the same state.
type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(boltDirPath string) (*Store, error) {
	boltDb, err := rawdb.NewBoltDB(boltDirPath)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: boltDb}, nil
}

func NewS3Store(accKey, secretKey, region, bktPrefix, endpoint string) (*Store, error) {
	s3Db, err := rawdb.NewS3DB(accKey, secretKey, region, bktPrefix, endpoint)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: s3Db}, nil
}

func NewAliyunStore(endpoint, accKey, secretKey, bktPrefix string) (*Store, error) {
	aliyunDb, err := rawdb.NewAliyunDB(endpoint, accKey, secretKey, bktPrefix)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: aliyunDb}, nil
}

func NewMongoStore(ctx context.Context, uri string) (*Store, error) {
	mongoDb, err := rawdb.NewMongoDB(ctx, uri)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: mongoDb}, nil
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}

func (s *Store) SaveRecord(name string, record *schema.Record) error {
	val, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.RecordBucket, name, val)
}

func (s *Store) LoadRecord(name string) (*schema.Record, error) {
	data, err := s.KVDb.Get(schema.RecordBucket, name)
	if err != nil {
		return nil, err
	}
	record := &schema.Record{}
	err = json.Unmarshal(data, record)
	return record, err
}

func (s *Store) DeleteRecord(name string) error {
	return s.KVDb.Delete(schema.RecordBucket, name)
}

func (s *Store) ExistRecord(name string) bool {
	return s.KVDb.Exist(schema.RecordBucket, name)
}

func (s *Store) LoadAllRecords() (map[string]*schema.Record, error) {
	names, err := s.KVDb.GetAllKey(schema.RecordBucket)
	if err != nil {
		return nil, err
	}
	records := make(map[string]*schema.Record, len(names))
	for _, name := range names {
		record, err := s.LoadRecord(name)
		if err != nil {
			return nil, err
		}
		records[name] = record
	}
	return records, nil
}

func (s *Store) SaveOwnedNames(owner common.Address, names []string) error {
	val, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.OwnedNamesBucket, owner.Hex(), val)
}

func (s *Store) DeleteOwnedNames(owner common.Address) error {
	return s.KVDb.Delete(schema.OwnedNamesBucket, owner.Hex())
}

func (s *Store) LoadOwnedNames(owner common.Address) ([]string, error) {
	data, err := s.KVDb.Get(schema.OwnedNamesBucket, owner.Hex())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0)
	err = json.Unmarshal(data, &names)
	return names, err
}

func (s *Store) LoadAllOwnedNames() (map[common.Address][]string, error) {
	keys, err := s.KVDb.GetAllKey(schema.OwnedNamesBucket)
	if err != nil {
		return nil, err
	}
	owned := make(map[common.Address][]string, len(keys))
	for _, key := range keys {
		addr := common.HexToAddress(key)
		names, err := s.LoadOwnedNames(addr)
		if err != nil {
			return nil, err
		}
		owned[addr] = names
	}
	return owned, nil
}

func (s *Store) SaveRegistryState(st schema.RegistryState) error {
	val, err := json.Marshal(&st)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.ConstantsBucket, schema.RegistryStateKey, val)
}

func (s *Store) LoadRegistryState() (st schema.RegistryState, err error) {
	data, err := s.KVDb.Get(schema.ConstantsBucket, schema.RegistryStateKey)
	if err != nil {
		return
	}
	err = json.Unmarshal(data, &st)
	return
}

func (s *Store) SaveAccountBalance(addr common.Address, amount decimal.Decimal) error {
	return s.KVDb.Put(schema.AccountBookBucket, addr.Hex(), []byte(amount.String()))
}

func (s *Store) LoadAccountBalance(addr common.Address) (decimal.Decimal, error) {
	data, err := s.KVDb.Get(schema.AccountBookBucket, addr.Hex())
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(string(data))
}

func (s *Store) LoadAllAccountBalances() (map[common.Address]decimal.Decimal, error) {
	keys, err := s.KVDb.GetAllKey(schema.AccountBookBucket)
	if err != nil {
		return nil, err
	}
	balances := make(map[common.Address]decimal.Decimal, len(keys))
	for _, key := range keys {
		addr := common.HexToAddress(key)
		amount, err := s.LoadAccountBalance(addr)
		if err != nil {
			return nil, err
		}
		balances[addr] = amount
	}
	return balances, nil
}

// pending events survive a crash between commit and flush; jobs.go drains
// them into wdb and kafka, then deletes.

func (s *Store) SavePendingEvent(ev *schema.Event) error {
	val, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.PendingEventBucket, pendingEventKey(ev.Seq), val)
}

func (s *Store) LoadPendingEvents() ([]*schema.Event, error) {
	keys, err := s.KVDb.GetAllKey(schema.PendingEventBucket)
	if err != nil {
		return nil, err
	}
	events := make([]*schema.Event, 0, len(keys))
	for _, key := range keys {
		data, err := s.KVDb.Get(schema.PendingEventBucket, key)
		if err != nil {
			return nil, err
		}
		ev := &schema.Event{}
		if err := json.Unmarshal(data, ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *Store) DelPendingEvent(seq uint64) error {
	return s.KVDb.Delete(schema.PendingEventBucket, pendingEventKey(seq))
}

// zero padded so bolt iterates events in seq order
func pendingEventKey(seq uint64) string {
	return fmt.Sprintf("%020d", seq)
}

package schema

import (
	"time"

	"gorm.io/datatypes"
)

// RecordRow mirrors the current registry state into sql so indexers can ask
// "what does X own now" without replaying the event stream. The in-core
// ownedNames history stays append-only; this table is the queryable view.
type RecordRow struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name         string `gorm:"unique" json:"name"`
	Owner        string `gorm:"index:idx_owner" json:"owner"` // hex address
	Data         string `json:"data"`
	RegisteredAt int64  `json:"registeredAt"` // unix s
	ModifiedAt   int64  `json:"modifiedAt"`   // unix s
}

// EventLog is the append-only notification history. Seq is unique, so a
// replayed flush cannot double-insert.
type EventLog struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`

	Seq       uint64         `gorm:"unique" json:"seq"`
	Action    string         `gorm:"index:idx_action" json:"action"`
	Name      string         `gorm:"index:idx_name" json:"name"`
	Caller    string         `json:"caller"`
	Payload   datatypes.JSON `json:"payload"` // json.Marshal(Event)
	Timestamp int64          `json:"timestamp"`
}

// DepositReceipt records one value deposit into the account book,
// the analog of a host-chain transfer receipt.
type DepositReceipt struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`

	ReceiptId string `gorm:"unique" json:"receiptId"` // uuid
	From      string `gorm:"index:idx_from" json:"from"`
	Amount    string `json:"amount"`
	Direct    bool   `json:"direct"` // true: collected straight through into the registry balance
}

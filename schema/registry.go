package schema

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	MaxNameLength = 32
	MaxDataLength = 256
)

// Record is the stored state for one registered name. A zero Owner address
// means the name is unregistered.
type Record struct {
	Owner     common.Address `json:"owner"`
	Data      string         `json:"data"`
	CreatedAt int64          `json:"createdAt"` // unix seconds, set once
	UpdatedAt int64          `json:"updatedAt"` // unix seconds, never decreases
}

func (r *Record) IsRegistered() bool {
	return r != nil && r.Owner != (common.Address{})
}

// RegistryState is the admin-configured part of the registry, persisted
// together with the event sequence counter.
type RegistryState struct {
	Admin           common.Address  `json:"admin"`
	RegistrationFee decimal.Decimal `json:"registrationFee"`
	Paused          bool            `json:"paused"`
	Balance         decimal.Decimal `json:"balance"`
	EventSeq        uint64          `json:"eventSeq"`
}

// event actions
const (
	ActionRegistered     = "Registered"
	ActionUpdated        = "Updated"
	ActionTransferred    = "Transferred"
	ActionFeeUpdated     = "FeeUpdated"
	ActionFundsWithdrawn = "FundsWithdrawn"
)

// Event is one registry notification. Seq is assigned inside the mutating
// operation, so the stream order equals the state-transition order.
type Event struct {
	Seq       uint64         `json:"seq"`
	Action    string         `json:"action"`
	Name      string         `json:"name,omitempty"`
	Caller    common.Address `json:"caller"`
	Data      string         `json:"data,omitempty"`
	NewOwner  common.Address `json:"newOwner,omitempty"`
	To        common.Address `json:"to,omitempty"`
	OldFee    string         `json:"oldFee,omitempty"`
	NewFee    string         `json:"newFee,omitempty"`
	Amount    string         `json:"amount,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// SignMessage builds the canonical text a wallet signs for one mutating call.
// Server and sdk must agree on this format byte for byte.
func SignMessage(action, name string, caller common.Address, payload string, nonce int64) string {
	return fmt.Sprintf("arnames:%s:%s:%s:%s:%d", action, name, caller.Hex(), payload, nonce)
}

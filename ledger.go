package arnames

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/arnames/schema"
	"github.com/shopspring/decimal"
)

// Ledger moves value between caller accounts and the registry escrow. The
// registry treats it as the host chain's transfer layer: any failed movement
// aborts the enclosing operation.
type Ledger interface {
	// Collect moves amount from the caller account into the registry escrow.
	Collect(from common.Address, amount decimal.Decimal) error
	// Payout moves amount from the registry escrow to the target account.
	Payout(to common.Address, amount decimal.Decimal) error
	// Begin snapshots the ledger and returns a rollback func; the registry
	// calls it before any outbound movement so a commit failure restores the
	// pre-call balances.
	Begin() (rollback func())
}

// AccountBook is the in-process ledger. Accounts are funded by deposit
// receipts (TopUp); a registration payment is debited from the caller's
// funded balance, refunds and withdrawals are credited back.
type AccountBook struct {
	mu       sync.RWMutex
	balances map[common.Address]decimal.Decimal
}

func NewAccountBook() *AccountBook {
	return &AccountBook{
		balances: make(map[common.Address]decimal.Decimal),
	}
}

// NewAccountBookFromStore restores funded balances persisted by jobs.go.
func NewAccountBookFromStore(s *Store) (*AccountBook, error) {
	balances, err := s.LoadAllAccountBalances()
	if err != nil && err != schema.ErrNotExist {
		return nil, err
	}
	book := NewAccountBook()
	for addr, amount := range balances {
		book.balances[addr] = amount
	}
	return book, nil
}

func (b *AccountBook) TopUp(addr common.Address, amount decimal.Decimal) error {
	if addr == (common.Address{}) {
		return schema.ErrNullAddress
	}
	if amount.Sign() <= 0 {
		return schema.ErrBadAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr] = b.balances[addr].Add(amount)
	return nil
}

func (b *AccountBook) BalanceOf(addr common.Address) decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[addr]
}

func (b *AccountBook) Collect(from common.Address, amount decimal.Decimal) error {
	if amount.Sign() < 0 {
		return schema.ErrBadAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[from].LessThan(amount) {
		return schema.ErrInsufficientFunds
	}
	b.balances[from] = b.balances[from].Sub(amount)
	return nil
}

func (b *AccountBook) Payout(to common.Address, amount decimal.Decimal) error {
	if to == (common.Address{}) {
		return schema.ErrNullAddress
	}
	if amount.Sign() < 0 {
		return schema.ErrBadAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[to] = b.balances[to].Add(amount)
	return nil
}

func (b *AccountBook) Begin() (rollback func()) {
	b.mu.RLock()
	snapshot := make(map[common.Address]decimal.Decimal, len(b.balances))
	for addr, amount := range b.balances {
		snapshot[addr] = amount
	}
	b.mu.RUnlock()

	return func() {
		b.mu.Lock()
		b.balances = snapshot
		b.mu.Unlock()
	}
}

// Balances returns a copy for persistence and inspection.
func (b *AccountBook) Balances() map[common.Address]decimal.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	balances := make(map[common.Address]decimal.Decimal, len(b.balances))
	for addr, amount := range b.balances {
		balances[addr] = amount
	}
	return balances
}

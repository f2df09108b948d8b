package arnames

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/arnames/rawdb"
	"github.com/everFinance/arnames/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	testAdmin = common.HexToAddress("0x8C54a1e9a524e56CF807Cd31308efBa2e2e84aCC")
	alice     = common.HexToAddress("0x61EbF673c200646236B2c53465bcA0699455d5F1")
	bob       = common.HexToAddress("0xab6c371B6c466BE4f93201D48B39a1907B874761")
)

type sinkMock struct {
	events []*schema.Event
}

func (s *sinkMock) Push(ev *schema.Event) {
	s.events = append(s.events, ev)
}

// brokenPayoutLedger rejects payouts so refund and withdraw failure paths can
// be exercised.
type brokenPayoutLedger struct {
	*AccountBook
}

func (l *brokenPayoutLedger) Payout(to common.Address, amount decimal.Decimal) error {
	return errors.New("payout rejected")
}

func newTestRegistry(t *testing.T, fee int64) (*Registry, *AccountBook, *sinkMock) {
	book := NewAccountBook()
	sink := &sinkMock{}
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(fee), book, nil, sink)
	assert.NoError(t, err)
	return r, book, sink
}

func fund(t *testing.T, book *AccountBook, addr common.Address, amount int64) {
	assert.NoError(t, book.TopUp(addr, decimal.NewFromInt(amount)))
}

func TestNewRegistry(t *testing.T) {
	book := NewAccountBook()

	_, err := NewRegistry(common.Address{}, decimal.NewFromInt(1), book, nil, nil)
	assert.Equal(t, schema.ErrNullAddress, err)

	_, err = NewRegistry(testAdmin, decimal.NewFromInt(-1), book, nil, nil)
	assert.Equal(t, schema.ErrBadAmount, err)

	_, err = NewRegistry(testAdmin, decimal.NewFromInt(1), nil, nil, nil)
	assert.Error(t, err)

	r, err := NewRegistry(testAdmin, decimal.Zero, book, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, "0", r.RegistrationFee().String())
}

func TestRegister(t *testing.T) {
	r, book, sink := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	ev, refund, err := r.Register(alice, "alice", "addr=0x01", decimal.NewFromInt(2))
	assert.NoError(t, err)
	assert.Equal(t, "0", refund.String())
	assert.Equal(t, uint64(1), ev.Seq)
	assert.Equal(t, schema.ActionRegistered, ev.Action)
	assert.Equal(t, "alice", ev.Name)
	assert.Equal(t, "2", ev.Amount)

	record := r.GetRecord("alice")
	assert.Equal(t, alice, record.Owner)
	assert.Equal(t, "addr=0x01", record.Data)
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)
	assert.False(t, r.IsAvailable("alice"))

	assert.Equal(t, []string{"alice"}, r.GetOwnedNames(alice))
	assert.Equal(t, "2", r.State().Balance.String())
	assert.Equal(t, "8", book.BalanceOf(alice).String())
	assert.Len(t, sink.events, 1)
}

func TestRegisterOverpayRefund(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, refund, err := r.Register(alice, "alice", "", decimal.NewFromInt(7))
	assert.NoError(t, err)
	assert.Equal(t, "5", refund.String())

	// only the fee is kept
	assert.Equal(t, "2", r.State().Balance.String())
	assert.Equal(t, "8", book.BalanceOf(alice).String())
}

func TestRegisterValidation(t *testing.T) {
	r, book, sink := newTestRegistry(t, 2)
	fund(t, book, alice, 100)

	_, _, err := r.Register(common.Address{}, "alice", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrNullAddress, err)

	_, _, err = r.Register(alice, "", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrEmptyName, err)

	long := make([]byte, schema.MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, _, err = r.Register(alice, string(long), "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrNameTooLong, err)

	bigData := make([]byte, schema.MaxDataLength+1)
	_, _, err = r.Register(alice, "alice", string(bigData), decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrDataTooLong, err)

	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(-1))
	assert.Equal(t, schema.ErrBadAmount, err)

	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(1))
	assert.Equal(t, schema.ErrInsufficientPayment, err)

	// nothing committed, nothing emitted
	assert.True(t, r.IsAvailable("alice"))
	assert.Equal(t, uint64(0), r.State().EventSeq)
	assert.Len(t, sink.events, 0)
	assert.Equal(t, "100", book.BalanceOf(alice).String())
}

func TestRegisterConflict(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)
	fund(t, book, bob, 10)

	_, _, err := r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.NoError(t, err)

	_, _, err = r.Register(bob, "alice", "", decimal.NewFromInt(10))
	assert.Equal(t, schema.ErrNameRegistered, err)
	assert.Equal(t, "10", book.BalanceOf(bob).String())

	// re-registering your own name is a conflict too
	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrNameRegistered, err)
}

func TestRegisterZeroFee(t *testing.T) {
	r, _, _ := newTestRegistry(t, 0)

	// free registration needs no funded account
	ev, refund, err := r.Register(alice, "alice", "", decimal.Zero)
	assert.NoError(t, err)
	assert.Equal(t, "0", refund.String())
	assert.Equal(t, "0", ev.Amount)
	assert.Equal(t, "0", r.State().Balance.String())
}

func TestRegisterInsufficientFunds(t *testing.T) {
	r, book, sink := newTestRegistry(t, 2)
	fund(t, book, alice, 1)

	_, _, err := r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrInsufficientFunds, err)
	assert.True(t, r.IsAvailable("alice"))
	assert.Equal(t, "1", book.BalanceOf(alice).String())
	assert.Len(t, sink.events, 0)
}

func TestRegisterRefundFailureUnwinds(t *testing.T) {
	book := NewAccountBook()
	fund(t, book, alice, 10)
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(2), &brokenPayoutLedger{book}, nil, nil)
	assert.NoError(t, err)

	// overpay forces a refund payout, which fails and unwinds the collect
	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(5))
	assert.Error(t, err)
	assert.True(t, r.IsAvailable("alice"))
	assert.Equal(t, "10", book.BalanceOf(alice).String())
	assert.Equal(t, "0", r.State().Balance.String())
	assert.Equal(t, uint64(0), r.State().EventSeq)
}

func TestRegisterReentrantGuard(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	r.inTransfer = true
	_, _, err := r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrReentrantCall, err)

	r.inTransfer = false
	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	r, book, sink := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, err := r.Update(alice, "alice", "data")
	assert.Equal(t, schema.ErrNotExist, err)

	_, _, err = r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)

	_, err = r.Update(bob, "alice", "v2")
	assert.Equal(t, schema.ErrNotOwner, err)

	bigData := make([]byte, schema.MaxDataLength+1)
	_, err = r.Update(alice, "alice", string(bigData))
	assert.Equal(t, schema.ErrDataTooLong, err)

	ev, err := r.Update(alice, "alice", "v2")
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), ev.Seq)
	assert.Equal(t, schema.ActionUpdated, ev.Action)
	assert.Equal(t, "v2", r.GetRecord("alice").Data)

	// clearing data is a normal update
	_, err = r.Update(alice, "alice", "")
	assert.NoError(t, err)
	assert.Equal(t, "", r.GetRecord("alice").Data)
	assert.Len(t, sink.events, 3)
}

func TestUpdateMonotonicTimestamp(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	r.now = func() int64 { return 1000 }
	_, _, err := r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)

	// wall clock steps backwards, updatedAt must not
	r.now = func() int64 { return 500 }
	_, err = r.Update(alice, "alice", "v2")
	assert.NoError(t, err)
	record := r.GetRecord("alice")
	assert.Equal(t, int64(1000), record.UpdatedAt)
	assert.Equal(t, int64(1000), record.CreatedAt)

	r.now = func() int64 { return 2000 }
	_, err = r.Update(alice, "alice", "v3")
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), r.GetRecord("alice").UpdatedAt)
	assert.Equal(t, int64(1000), r.GetRecord("alice").CreatedAt)
}

func TestTransfer(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, err := r.Transfer(alice, "alice", bob)
	assert.Equal(t, schema.ErrNotExist, err)

	_, _, err = r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)

	_, err = r.Transfer(bob, "alice", alice)
	assert.Equal(t, schema.ErrNotOwner, err)

	_, err = r.Transfer(alice, "alice", common.Address{})
	assert.Equal(t, schema.ErrNullAddress, err)

	_, err = r.Transfer(alice, "alice", alice)
	assert.Equal(t, schema.ErrSelfTransfer, err)

	ev, err := r.Transfer(alice, "alice", bob)
	assert.NoError(t, err)
	assert.Equal(t, schema.ActionTransferred, ev.Action)
	assert.Equal(t, bob, ev.NewOwner)
	assert.Equal(t, bob, r.GetRecord("alice").Owner)
	assert.Equal(t, "v1", r.GetRecord("alice").Data)

	// history: the old owner keeps the entry, the new owner gains one
	assert.Equal(t, []string{"alice"}, r.GetOwnedNames(alice))
	assert.Equal(t, []string{"alice"}, r.GetOwnedNames(bob))

	// transfer back appends a second entry for alice
	_, err = r.Transfer(bob, "alice", alice)
	assert.NoError(t, err)
	assert.Equal(t, []string{"alice", "alice"}, r.GetOwnedNames(alice))
	assert.Equal(t, []string{"alice"}, r.GetOwnedNames(bob))
}

func TestDeposit(t *testing.T) {
	r, book, sink := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	err := r.Deposit(common.Address{}, decimal.NewFromInt(1))
	assert.Equal(t, schema.ErrNullAddress, err)

	err = r.Deposit(alice, decimal.Zero)
	assert.Equal(t, schema.ErrBadAmount, err)

	err = r.Deposit(alice, decimal.NewFromInt(100))
	assert.Equal(t, schema.ErrInsufficientFunds, err)
	assert.Equal(t, "10", book.BalanceOf(alice).String())

	assert.NoError(t, r.Deposit(alice, decimal.NewFromInt(3)))
	assert.Equal(t, "3", r.State().Balance.String())
	assert.Equal(t, "7", book.BalanceOf(alice).String())

	// accepted while paused, and no event is emitted
	assert.NoError(t, r.Pause(testAdmin))
	assert.NoError(t, r.Deposit(alice, decimal.NewFromInt(2)))
	assert.Equal(t, "5", r.State().Balance.String())
	assert.Len(t, sink.events, 0)
	assert.Equal(t, uint64(0), r.State().EventSeq)
}

func TestPauseBlocksMutations(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, _, err := r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.NoError(t, err)

	assert.NoError(t, r.Pause(testAdmin))
	assert.True(t, r.State().Paused)

	_, _, err = r.Register(alice, "second", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrRegistryPaused, err)

	_, err = r.Update(alice, "alice", "v2")
	assert.Equal(t, schema.ErrRegistryPaused, err)

	_, err = r.Transfer(alice, "alice", bob)
	assert.Equal(t, schema.ErrRegistryPaused, err)

	// the paused check comes after validation: a bad payment still reports
	// the payment error
	_, _, err = r.Register(alice, "second", "", decimal.NewFromInt(1))
	assert.Equal(t, schema.ErrInsufficientPayment, err)

	// queries stay live
	assert.False(t, r.IsAvailable("alice"))
	assert.Equal(t, alice, r.GetRecord("alice").Owner)
	assert.Equal(t, "2", r.RegistrationFee().String())

	assert.NoError(t, r.Unpause(testAdmin))
	_, err = r.Update(alice, "alice", "v2")
	assert.NoError(t, err)
}

func TestPauseTransitions(t *testing.T) {
	r, _, _ := newTestRegistry(t, 2)

	assert.Equal(t, schema.ErrNotAdmin, r.Pause(alice))
	assert.Equal(t, schema.ErrRegistryNotPaused, r.Unpause(testAdmin))

	assert.NoError(t, r.Pause(testAdmin))
	assert.Equal(t, schema.ErrRegistryPaused, r.Pause(testAdmin))

	assert.Equal(t, schema.ErrNotAdmin, r.Unpause(alice))
	assert.NoError(t, r.Unpause(testAdmin))
	assert.False(t, r.State().Paused)
}

func TestSetRegistrationFee(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, err := r.SetRegistrationFee(alice, decimal.NewFromInt(5))
	assert.Equal(t, schema.ErrNotAdmin, err)

	_, err = r.SetRegistrationFee(testAdmin, decimal.NewFromInt(-1))
	assert.Equal(t, schema.ErrBadAmount, err)

	ev, err := r.SetRegistrationFee(testAdmin, decimal.NewFromInt(5))
	assert.NoError(t, err)
	assert.Equal(t, schema.ActionFeeUpdated, ev.Action)
	assert.Equal(t, "2", ev.OldFee)
	assert.Equal(t, "5", ev.NewFee)
	assert.Equal(t, "5", r.RegistrationFee().String())

	// the new fee gates later registrations
	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.Equal(t, schema.ErrInsufficientPayment, err)

	// fee changes are allowed while paused
	assert.NoError(t, r.Pause(testAdmin))
	_, err = r.SetRegistrationFee(testAdmin, decimal.Zero)
	assert.NoError(t, err)
	assert.Equal(t, "0", r.RegistrationFee().String())
}

func TestWithdraw(t *testing.T) {
	r, book, sink := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, err := r.Withdraw(testAdmin, testAdmin)
	assert.Equal(t, schema.ErrZeroBalance, err)

	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.NoError(t, err)

	_, err = r.Withdraw(alice, alice)
	assert.Equal(t, schema.ErrNotAdmin, err)

	_, err = r.Withdraw(testAdmin, common.Address{})
	assert.Equal(t, schema.ErrNullAddress, err)

	ev, err := r.Withdraw(testAdmin, bob)
	assert.NoError(t, err)
	assert.Equal(t, schema.ActionFundsWithdrawn, ev.Action)
	assert.Equal(t, "2", ev.Amount)
	assert.Equal(t, bob, ev.To)
	assert.Equal(t, "0", r.State().Balance.String())
	assert.Equal(t, "2", book.BalanceOf(bob).String())

	_, err = r.Withdraw(testAdmin, bob)
	assert.Equal(t, schema.ErrZeroBalance, err)
	assert.Len(t, sink.events, 2)
}

func TestWithdrawWhilePaused(t *testing.T) {
	r, book, _ := newTestRegistry(t, 2)
	fund(t, book, alice, 10)

	_, _, err := r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.NoError(t, err)
	assert.NoError(t, r.Pause(testAdmin))

	_, err = r.Withdraw(testAdmin, testAdmin)
	assert.NoError(t, err)
	assert.Equal(t, "2", book.BalanceOf(testAdmin).String())
}

func TestWithdrawPayoutFailure(t *testing.T) {
	book := NewAccountBook()
	fund(t, book, alice, 10)
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(2), &brokenPayoutLedger{book}, nil, nil)
	assert.NoError(t, err)

	_, _, err = r.Register(alice, "alice", "", decimal.NewFromInt(2))
	assert.NoError(t, err)

	_, err = r.Withdraw(testAdmin, bob)
	assert.Error(t, err)

	// balance and seq restored, a later withdraw can still succeed
	assert.Equal(t, "2", r.State().Balance.String())
	assert.Equal(t, uint64(1), r.State().EventSeq)
	assert.Equal(t, "0", book.BalanceOf(bob).String())
}

func TestEventSeqContiguous(t *testing.T) {
	r, book, sink := newTestRegistry(t, 1)
	fund(t, book, alice, 10)

	_, _, err := r.Register(alice, "a", "", decimal.NewFromInt(1))
	assert.NoError(t, err)
	_, _, err = r.Register(alice, "b", "", decimal.NewFromInt(1))
	assert.NoError(t, err)
	_, err = r.Update(alice, "a", "v2")
	assert.NoError(t, err)
	_, err = r.Transfer(alice, "b", bob)
	assert.NoError(t, err)
	_, err = r.SetRegistrationFee(testAdmin, decimal.NewFromInt(2))
	assert.NoError(t, err)
	_, err = r.Withdraw(testAdmin, testAdmin)
	assert.NoError(t, err)

	assert.Len(t, sink.events, 6)
	for i, ev := range sink.events {
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	assert.Equal(t, uint64(6), r.State().EventSeq)
}

func TestRegistryPersistence(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBoltStore(dir)
	assert.NoError(t, err)

	book := NewAccountBook()
	fund(t, book, alice, 10)
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s, nil)
	assert.NoError(t, err)

	_, _, err = r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)
	_, err = r.Transfer(alice, "alice", bob)
	assert.NoError(t, err)
	_, err = r.SetRegistrationFee(testAdmin, decimal.NewFromInt(9))
	assert.NoError(t, err)
	assert.NoError(t, r.Pause(testAdmin))
	assert.NoError(t, s.Close())

	// reopen and rebuild from disk
	s2, err := NewBoltStore(dir)
	assert.NoError(t, err)
	defer s2.Close()

	r2, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s2, nil)
	assert.NoError(t, err)

	assert.Equal(t, bob, r2.GetRecord("alice").Owner)
	assert.Equal(t, "v1", r2.GetRecord("alice").Data)
	assert.Equal(t, []string{"alice"}, r2.GetOwnedNames(alice))
	assert.Equal(t, []string{"alice"}, r2.GetOwnedNames(bob))
	assert.Equal(t, "9", r2.RegistrationFee().String())
	assert.True(t, r2.State().Paused)
	assert.Equal(t, "2", r2.State().Balance.String())
	assert.Equal(t, uint64(3), r2.State().EventSeq)

	// pending events survived for the flush job
	pending, err := s2.LoadPendingEvents()
	assert.NoError(t, err)
	assert.Len(t, pending, 3)
}

// faultyKVDb fails every write into one bucket, so operations can be aborted
// halfway through their store writes.
type faultyKVDb struct {
	rawdb.KeyValueDB
	failBucket string
}

func (f *faultyKVDb) Put(bucket, key string, value interface{}) error {
	if bucket == f.failBucket {
		return errors.New("disk full")
	}
	return f.KeyValueDB.Put(bucket, key, value)
}

func TestRegisterStoreFailureLeavesNoTrace(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBoltStore(dir)
	assert.NoError(t, err)
	faulty := &faultyKVDb{KeyValueDB: s.KVDb, failBucket: schema.OwnedNamesBucket}
	s.KVDb = faulty

	book := NewAccountBook()
	fund(t, book, alice, 10)
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s, nil)
	assert.NoError(t, err)

	// aborted after the record key was written
	_, _, err = r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.Error(t, err)
	assert.True(t, r.IsAvailable("alice"))
	assert.Equal(t, "10", book.BalanceOf(alice).String())

	// aborted on the last write, after record, history and state were written
	faulty.failBucket = schema.PendingEventBucket
	_, _, err = r.Register(alice, "carol", "v1", decimal.NewFromInt(2))
	assert.Error(t, err)
	assert.True(t, r.IsAvailable("carol"))

	faulty.failBucket = ""
	_, _, err = r.Register(alice, "dave", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)
	assert.NoError(t, s.Close())

	// a restart must not resurrect the aborted registrations
	s2, err := NewBoltStore(dir)
	assert.NoError(t, err)
	defer s2.Close()
	r2, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s2, nil)
	assert.NoError(t, err)

	assert.True(t, r2.IsAvailable("alice"))
	assert.True(t, r2.IsAvailable("carol"))
	assert.False(t, r2.IsAvailable("dave"))
	assert.Equal(t, []string{"dave"}, r2.GetOwnedNames(alice))
	assert.Equal(t, "2", r2.State().Balance.String())
	assert.Equal(t, uint64(1), r2.State().EventSeq)

	pending, err := s2.LoadPendingEvents()
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestTransferStoreFailureRestoresRecord(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBoltStore(dir)
	assert.NoError(t, err)
	faulty := &faultyKVDb{KeyValueDB: s.KVDb}
	s.KVDb = faulty

	book := NewAccountBook()
	fund(t, book, alice, 10)
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s, nil)
	assert.NoError(t, err)
	_, _, err = r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)

	faulty.failBucket = schema.OwnedNamesBucket
	_, err = r.Transfer(alice, "alice", bob)
	assert.Error(t, err)
	assert.Equal(t, alice, r.GetRecord("alice").Owner)
	assert.Empty(t, r.GetOwnedNames(bob))
	assert.NoError(t, s.Close())

	s2, err := NewBoltStore(dir)
	assert.NoError(t, err)
	defer s2.Close()
	r2, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s2, nil)
	assert.NoError(t, err)

	assert.Equal(t, alice, r2.GetRecord("alice").Owner)
	assert.Empty(t, r2.GetOwnedNames(bob))
	assert.Equal(t, uint64(1), r2.State().EventSeq)
}

func TestUpdateAndFeeStoreFailureKeepPriorState(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBoltStore(dir)
	assert.NoError(t, err)
	faulty := &faultyKVDb{KeyValueDB: s.KVDb}
	s.KVDb = faulty

	book := NewAccountBook()
	fund(t, book, alice, 10)
	r, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s, nil)
	assert.NoError(t, err)
	_, _, err = r.Register(alice, "alice", "v1", decimal.NewFromInt(2))
	assert.NoError(t, err)

	faulty.failBucket = schema.PendingEventBucket
	_, err = r.Update(alice, "alice", "v2")
	assert.Error(t, err)
	assert.Equal(t, "v1", r.GetRecord("alice").Data)

	_, err = r.SetRegistrationFee(testAdmin, decimal.NewFromInt(9))
	assert.Error(t, err)
	assert.Equal(t, "2", r.RegistrationFee().String())
	assert.NoError(t, s.Close())

	s2, err := NewBoltStore(dir)
	assert.NoError(t, err)
	defer s2.Close()
	r2, err := NewRegistry(testAdmin, decimal.NewFromInt(2), book, s2, nil)
	assert.NoError(t, err)

	assert.Equal(t, "v1", r2.GetRecord("alice").Data)
	assert.Equal(t, "2", r2.RegistrationFee().String())
	assert.Equal(t, uint64(1), r2.State().EventSeq)
}

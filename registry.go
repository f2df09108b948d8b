package arnames

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/arnames/schema"
	"github.com/shopspring/decimal"
)

// EventSink receives committed registry notifications, in seq order.
type EventSink interface {
	Push(ev *schema.Event)
}

// Registry is the authoritative name store: one record per name, owner-gated
// mutation, fee-gated registration, admin pause/withdraw. Every operation is
// all-or-nothing: effects are staged, persisted, then committed to memory;
// any failure leaves state and ledger untouched.
type Registry struct {
	opLocker sync.Mutex // serializes state transitions, the host ledger analog

	records    map[string]*schema.Record
	ownedNames map[common.Address][]string // append-only history log, not a current-ownership index

	admin    common.Address
	fee      decimal.Decimal
	paused   bool
	balance  decimal.Decimal
	eventSeq uint64

	ledger Ledger
	store  *Store    // optional write-through persistence
	sink   EventSink // optional, receives events after commit
	now    func() int64

	inTransfer bool // re-entry guard around outbound ledger movements
}

func NewRegistry(admin common.Address, initialFee decimal.Decimal, ledger Ledger, store *Store, sink EventSink) (*Registry, error) {
	if admin == (common.Address{}) {
		return nil, schema.ErrNullAddress
	}
	if initialFee.Sign() < 0 {
		return nil, schema.ErrBadAmount
	}
	if ledger == nil {
		return nil, errors.New("ledger can not null")
	}

	r := &Registry{
		records:    make(map[string]*schema.Record),
		ownedNames: make(map[common.Address][]string),
		admin:      admin,
		fee:        initialFee,
		balance:    decimal.Zero,
		ledger:     ledger,
		store:      store,
		sink:       sink,
		now:        func() int64 { return time.Now().Unix() },
	}

	if store != nil {
		if err := r.loadFromStore(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) loadFromStore() error {
	st, err := r.store.LoadRegistryState()
	switch err {
	case nil:
		r.admin = st.Admin
		r.fee = st.RegistrationFee
		r.paused = st.Paused
		r.balance = st.Balance
		r.eventSeq = st.EventSeq
	case schema.ErrNotExist:
		// first boot, write the deploy-time state
		if err := r.store.SaveRegistryState(r.state()); err != nil {
			return err
		}
	default:
		return err
	}

	records, err := r.store.LoadAllRecords()
	if err != nil && err != schema.ErrNotExist {
		return err
	}
	for name, record := range records {
		r.records[name] = record
	}

	owned, err := r.store.LoadAllOwnedNames()
	if err != nil && err != schema.ErrNotExist {
		return err
	}
	for addr, names := range owned {
		r.ownedNames[addr] = names
	}
	return nil
}

// Register creates the record for name, owned by caller. The fee is kept by
// the registry, any excess payment is refunded in the same atomic unit: a
// failed refund aborts the registration.
func (r *Registry) Register(caller common.Address, name, data string, payment decimal.Decimal) (ev *schema.Event, refund decimal.Decimal, err error) {
	refund = decimal.Zero
	if caller == (common.Address{}) {
		err = schema.ErrNullAddress
		return
	}
	// precondition order is fixed; the first failing check aborts
	if len(name) == 0 {
		err = schema.ErrEmptyName
		return
	}
	if len(name) > schema.MaxNameLength {
		err = schema.ErrNameTooLong
		return
	}
	if len(data) > schema.MaxDataLength {
		err = schema.ErrDataTooLong
		return
	}
	if payment.Sign() < 0 {
		err = schema.ErrBadAmount
		return
	}

	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	if r.records[name].IsRegistered() {
		err = schema.ErrNameRegistered
		return
	}
	if payment.LessThan(r.fee) {
		err = schema.ErrInsufficientPayment
		return
	}
	if r.paused {
		err = schema.ErrRegistryPaused
		return
	}

	rollbackLedger, err := r.enterTransfer()
	if err != nil {
		return
	}
	committed := false
	defer r.leaveTransfer(rollbackLedger, &committed)

	// collect the full payment, then return the excess; both movements are
	// inside the guard so a refund failure unwinds the collect
	if err = r.ledger.Collect(caller, payment); err != nil {
		return
	}
	excess := payment.Sub(r.fee)
	if excess.Sign() > 0 {
		if err = r.ledger.Payout(caller, excess); err != nil {
			return
		}
	}

	// stage
	now := r.now()
	record := &schema.Record{Owner: caller, Data: data, CreatedAt: now, UpdatedAt: now}
	names := appendName(r.ownedNames[caller], name)
	newBalance := r.balance.Add(r.fee)
	seq := r.eventSeq + 1
	ev = &schema.Event{
		Seq:       seq,
		Action:    schema.ActionRegistered,
		Name:      name,
		Caller:    caller,
		Data:      data,
		Amount:    r.fee.String(),
		Timestamp: now,
	}

	// persist, then commit memory; keys already on disk are removed again
	// when a later write fails, so a restart never sees the aborted call
	if r.store != nil {
		if err = r.store.SaveRecord(name, record); err != nil {
			ev = nil
			return
		}
		if err = r.store.SaveOwnedNames(caller, names); err != nil {
			r.compensate(func() error { return r.store.DeleteRecord(name) })
			ev = nil
			return
		}
		if err = r.saveState(newBalance, seq, ev); err != nil {
			r.compensate(
				func() error { return r.store.SaveRegistryState(r.state()) },
				func() error { return r.restoreOwnedNames(caller) },
				func() error { return r.store.DeleteRecord(name) },
			)
			ev = nil
			return
		}
	}
	r.records[name] = record
	r.ownedNames[caller] = names
	r.balance = newBalance
	r.eventSeq = seq
	committed = true
	refund = excess

	r.emit(ev)
	return
}

// Update replaces the data payload of an owned name.
func (r *Registry) Update(caller common.Address, name, newData string) (ev *schema.Event, err error) {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	record := r.records[name]
	if !record.IsRegistered() {
		return nil, schema.ErrNotExist
	}
	if record.Owner != caller {
		return nil, schema.ErrNotOwner
	}
	if len(newData) > schema.MaxDataLength {
		return nil, schema.ErrDataTooLong
	}
	if r.paused {
		return nil, schema.ErrRegistryPaused
	}

	staged := *record
	staged.Data = newData
	staged.UpdatedAt = monotonic(r.now(), record.UpdatedAt)
	seq := r.eventSeq + 1
	ev = &schema.Event{
		Seq:       seq,
		Action:    schema.ActionUpdated,
		Name:      name,
		Caller:    caller,
		Data:      newData,
		Timestamp: staged.UpdatedAt,
	}

	if r.store != nil {
		if err = r.store.SaveRecord(name, &staged); err != nil {
			return nil, err
		}
		if err = r.saveState(r.balance, seq, ev); err != nil {
			r.compensate(
				func() error { return r.store.SaveRegistryState(r.state()) },
				func() error { return r.store.SaveRecord(name, record) },
			)
			return nil, err
		}
	}
	*record = staged
	r.eventSeq = seq

	r.emit(ev)
	return
}

// Transfer hands an owned name to newOwner. The previous owner's history
// entry stays; the name is appended to the new owner's history.
func (r *Registry) Transfer(caller common.Address, name string, newOwner common.Address) (ev *schema.Event, err error) {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	record := r.records[name]
	if !record.IsRegistered() {
		return nil, schema.ErrNotExist
	}
	if record.Owner != caller {
		return nil, schema.ErrNotOwner
	}
	if newOwner == (common.Address{}) {
		return nil, schema.ErrNullAddress
	}
	if newOwner == caller {
		return nil, schema.ErrSelfTransfer
	}
	if r.paused {
		return nil, schema.ErrRegistryPaused
	}

	staged := *record
	staged.Owner = newOwner
	staged.UpdatedAt = monotonic(r.now(), record.UpdatedAt)
	names := appendName(r.ownedNames[newOwner], name)
	seq := r.eventSeq + 1
	ev = &schema.Event{
		Seq:       seq,
		Action:    schema.ActionTransferred,
		Name:      name,
		Caller:    caller,
		NewOwner:  newOwner,
		Timestamp: staged.UpdatedAt,
	}

	if r.store != nil {
		if err = r.store.SaveRecord(name, &staged); err != nil {
			return nil, err
		}
		if err = r.store.SaveOwnedNames(newOwner, names); err != nil {
			r.compensate(func() error { return r.store.SaveRecord(name, record) })
			return nil, err
		}
		if err = r.saveState(r.balance, seq, ev); err != nil {
			r.compensate(
				func() error { return r.store.SaveRegistryState(r.state()) },
				func() error { return r.restoreOwnedNames(newOwner) },
				func() error { return r.store.SaveRecord(name, record) },
			)
			return nil, err
		}
	}
	*record = staged
	r.ownedNames[newOwner] = names
	r.eventSeq = seq

	r.emit(ev)
	return
}

// Deposit moves value straight into the registry balance, no record touched.
// Accepted unconditionally, even while paused.
func (r *Registry) Deposit(from common.Address, amount decimal.Decimal) error {
	if from == (common.Address{}) {
		return schema.ErrNullAddress
	}
	if amount.Sign() <= 0 {
		return schema.ErrBadAmount
	}

	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	rollbackLedger, err := r.enterTransfer()
	if err != nil {
		return err
	}
	committed := false
	defer r.leaveTransfer(rollbackLedger, &committed)

	if err := r.ledger.Collect(from, amount); err != nil {
		return err
	}
	newBalance := r.balance.Add(amount)
	if r.store != nil {
		if err := r.saveState(newBalance, r.eventSeq, nil); err != nil {
			return err
		}
	}
	r.balance = newBalance
	committed = true
	return nil
}

// queries; available while paused, never fail on missing names

// GetRecord returns a copy; the zero Record (zero owner) means unregistered.
func (r *Registry) GetRecord(name string) schema.Record {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	record := r.records[name]
	if !record.IsRegistered() {
		return schema.Record{}
	}
	return *record
}

func (r *Registry) IsAvailable(name string) bool {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	return !r.records[name].IsRegistered()
}

// GetOwnedNames returns the full ownership history of account: every name it
// ever held, in acquisition order, repeats included.
func (r *Registry) GetOwnedNames(account common.Address) []string {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	names := make([]string, len(r.ownedNames[account]))
	copy(names, r.ownedNames[account])
	return names
}

func (r *Registry) RegistrationFee() decimal.Decimal {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	return r.fee
}

func (r *Registry) State() schema.RegistryState {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	return r.state()
}

func (r *Registry) RecordCount() int64 {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	return int64(len(r.records))
}

// Snapshot copies every registered record, for reindexing and inspection.
func (r *Registry) Snapshot() map[string]schema.Record {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()
	records := make(map[string]schema.Record, len(r.records))
	for name, record := range r.records {
		records[name] = *record
	}
	return records
}

// admin operations; available while paused so the admin can always unpause

func (r *Registry) SetRegistrationFee(caller common.Address, newFee decimal.Decimal) (ev *schema.Event, err error) {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	if caller != r.admin {
		return nil, schema.ErrNotAdmin
	}
	if newFee.Sign() < 0 {
		return nil, schema.ErrBadAmount
	}

	oldFee := r.fee
	seq := r.eventSeq + 1
	ev = &schema.Event{
		Seq:       seq,
		Action:    schema.ActionFeeUpdated,
		Caller:    caller,
		OldFee:    oldFee.String(),
		NewFee:    newFee.String(),
		Timestamp: r.now(),
	}

	r.fee = newFee
	if r.store != nil {
		if err = r.saveState(r.balance, seq, ev); err != nil {
			r.fee = oldFee
			r.compensate(func() error { return r.store.SaveRegistryState(r.state()) })
			return nil, err
		}
	}
	r.eventSeq = seq

	r.emit(ev)
	return
}

func (r *Registry) Pause(caller common.Address) error {
	return r.setPaused(caller, true)
}

func (r *Registry) Unpause(caller common.Address) error {
	return r.setPaused(caller, false)
}

func (r *Registry) setPaused(caller common.Address, paused bool) error {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	if caller != r.admin {
		return schema.ErrNotAdmin
	}
	if r.paused == paused {
		if paused {
			return schema.ErrRegistryPaused
		}
		return schema.ErrRegistryNotPaused
	}

	r.paused = paused
	if r.store != nil {
		if err := r.saveState(r.balance, r.eventSeq, nil); err != nil {
			r.paused = !paused
			return err
		}
	}
	return nil
}

// Withdraw pays the whole registry balance out to `to`. The balance is
// zeroed before the payout so a nested call cannot withdraw twice.
func (r *Registry) Withdraw(caller common.Address, to common.Address) (ev *schema.Event, err error) {
	r.opLocker.Lock()
	defer r.opLocker.Unlock()

	if caller != r.admin {
		return nil, schema.ErrNotAdmin
	}
	if to == (common.Address{}) {
		return nil, schema.ErrNullAddress
	}
	if r.balance.Sign() <= 0 {
		return nil, schema.ErrZeroBalance
	}

	rollbackLedger, err := r.enterTransfer()
	if err != nil {
		return nil, err
	}
	committed := false
	defer r.leaveTransfer(rollbackLedger, &committed)

	amount := r.balance
	seq := r.eventSeq + 1
	ev = &schema.Event{
		Seq:       seq,
		Action:    schema.ActionFundsWithdrawn,
		Caller:    caller,
		To:        to,
		Amount:    amount.String(),
		Timestamp: r.now(),
	}

	// effects before interaction
	r.balance = decimal.Zero
	r.eventSeq = seq

	if err = r.ledger.Payout(to, amount); err == nil && r.store != nil {
		err = r.saveState(r.balance, seq, ev)
	}
	if err != nil {
		r.balance = amount
		r.eventSeq = seq - 1
		if r.store != nil {
			r.compensate(func() error { return r.store.SaveRegistryState(r.state()) })
		}
		return nil, err
	}
	committed = true

	r.emit(ev)
	return
}

// internal

func (r *Registry) state() schema.RegistryState {
	return schema.RegistryState{
		Admin:           r.admin,
		RegistrationFee: r.fee,
		Paused:          r.paused,
		Balance:         r.balance,
		EventSeq:        r.eventSeq,
	}
}

func (r *Registry) saveState(balance decimal.Decimal, seq uint64, ev *schema.Event) error {
	st := r.state()
	st.Balance = balance
	st.EventSeq = seq
	if err := r.store.SaveRegistryState(st); err != nil {
		return err
	}
	if ev != nil {
		return r.store.SavePendingEvent(ev)
	}
	return nil
}

// compensate undoes store writes an aborted operation already made, in
// reverse write order. Undo failures are only logged; the keys involved get
// rewritten by the next successful operation on them.
func (r *Registry) compensate(undos ...func() error) {
	for _, undo := range undos {
		if err := undo(); err != nil {
			log.Error("rollback persisted write failed", "err", err)
		}
	}
}

// restoreOwnedNames rewrites the committed history blob of owner, dropping
// the key when the owner never held a name.
func (r *Registry) restoreOwnedNames(owner common.Address) error {
	prior := r.ownedNames[owner]
	if len(prior) == 0 {
		return r.store.DeleteOwnedNames(owner)
	}
	return r.store.SaveOwnedNames(owner, prior)
}

// enterTransfer opens the critical section around outbound ledger movement
// and snapshots the ledger; leaveTransfer releases it on every exit path and
// unwinds the ledger when the operation did not commit.
func (r *Registry) enterTransfer() (rollback func(), err error) {
	if r.inTransfer {
		return nil, schema.ErrReentrantCall
	}
	r.inTransfer = true
	return r.ledger.Begin(), nil
}

func (r *Registry) leaveTransfer(rollback func(), committed *bool) {
	if !*committed {
		rollback()
	}
	r.inTransfer = false
}

func (r *Registry) emit(ev *schema.Event) {
	if r.sink != nil {
		r.sink.Push(ev)
	}
}

func appendName(names []string, name string) []string {
	next := make([]string, len(names), len(names)+1)
	copy(next, names)
	return append(next, name)
}

// updatedAt must never decrease, even if the wall clock does
func monotonic(now, last int64) int64 {
	if now < last {
		return last
	}
	return now
}

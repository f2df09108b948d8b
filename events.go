package arnames

import (
	"encoding/json"
	"sync"

	"github.com/everFinance/arnames/schema"
	"github.com/panjf2000/ants/v2"
)

const dispatcherPoolSize = 10

// Dispatcher fans committed registry events out to the sql event log, kafka
// and in-process subscribers. The registry has already written each event to
// the pending bucket before Push, so a dispatch failure is retried by
// jobs.go instead of being lost.
type Dispatcher struct {
	store *Store
	wdb   *Wdb
	kw    *KWriter
	pool  *ants.Pool

	subLocker sync.RWMutex
	subs      []chan *schema.Event
}

func NewDispatcher(store *Store, wdb *Wdb, kw *KWriter) (*Dispatcher, error) {
	pool, err := ants.NewPool(dispatcherPoolSize)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		store: store,
		wdb:   wdb,
		kw:    kw,
		pool:  pool,
	}, nil
}

// Push implements EventSink. Delivery is async; the caller holds the
// registry lock, so nothing heavy happens here.
func (d *Dispatcher) Push(ev *schema.Event) {
	evCopy := *ev
	if err := d.pool.Submit(func() {
		d.deliver(&evCopy)
	}); err != nil {
		log.Error("submit event delivery failed", "err", err, "seq", evCopy.Seq)
	}
}

func (d *Dispatcher) deliver(ev *schema.Event) {
	if err := d.Flush(ev); err != nil {
		// leave the pending copy in the store, jobs.go retries it
		log.Error("flush event failed", "err", err, "seq", ev.Seq, "action", ev.Action)
		return
	}
	d.notify(ev)
}

// Flush writes one event into wdb and kafka and drops its pending copy.
// Inserts are idempotent on seq, so a retried flush is harmless.
func (d *Dispatcher) Flush(ev *schema.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if d.wdb != nil {
		if err := d.wdb.InsertEventLog(schema.EventLog{
			Seq:       ev.Seq,
			Action:    ev.Action,
			Name:      ev.Name,
			Caller:    ev.Caller.Hex(),
			Payload:   payload,
			Timestamp: ev.Timestamp,
		}); err != nil {
			return err
		}
		if err := d.applyToIndex(ev); err != nil {
			return err
		}
	}

	if d.kw != nil {
		if err := d.kw.Write(payload); err != nil {
			return err
		}
	}

	metricEvent(ev.Action)

	if d.store != nil {
		return d.store.DelPendingEvent(ev.Seq)
	}
	return nil
}

// applyToIndex keeps the RecordRow table in step with the event stream; it
// is the queryable current-ownership view the core deliberately lacks.
func (d *Dispatcher) applyToIndex(ev *schema.Event) error {
	switch ev.Action {
	case schema.ActionRegistered:
		return d.wdb.InsertRecordRow(schema.RecordRow{
			Name:         ev.Name,
			Owner:        ev.Caller.Hex(),
			Data:         ev.Data,
			RegisteredAt: ev.Timestamp,
			ModifiedAt:   ev.Timestamp,
		})
	case schema.ActionUpdated:
		return d.wdb.UpdateRecordData(ev.Name, ev.Data, ev.Timestamp)
	case schema.ActionTransferred:
		return d.wdb.UpdateRecordOwner(ev.Name, ev.NewOwner.Hex(), ev.Timestamp)
	}
	return nil
}

// Subscribe returns a channel fed with every event after it is flushed.
// Slow subscribers drop events rather than block delivery.
func (d *Dispatcher) Subscribe() <-chan *schema.Event {
	ch := make(chan *schema.Event, 64)
	d.subLocker.Lock()
	d.subs = append(d.subs, ch)
	d.subLocker.Unlock()
	return ch
}

func (d *Dispatcher) notify(ev *schema.Event) {
	d.subLocker.RLock()
	defer d.subLocker.RUnlock()
	for _, ch := range d.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (d *Dispatcher) Close() {
	d.pool.Release()
	d.subLocker.Lock()
	defer d.subLocker.Unlock()
	for _, ch := range d.subs {
		close(ch)
	}
	d.subs = nil
}

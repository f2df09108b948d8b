package arnames

import (
	"encoding/json"
	"testing"

	"github.com/everFinance/arnames/schema"
	"github.com/stretchr/testify/assert"
)

func testWdb(t *testing.T) *Wdb {
	w := NewSqliteDb(t.TempDir())
	assert.NoError(t, w.Migrate())
	t.Cleanup(w.Close)
	return w
}

func TestWdb_EventLog(t *testing.T) {
	w := testWdb(t)

	payload, err := json.Marshal(&schema.Event{Seq: 1, Action: schema.ActionRegistered, Name: "alice"})
	assert.NoError(t, err)

	ev := schema.EventLog{Seq: 1, Action: schema.ActionRegistered, Name: "alice", Payload: payload, Timestamp: 1000}
	assert.NoError(t, w.InsertEventLog(ev))
	// a retried flush inserts the same seq again, silently dropped
	assert.NoError(t, w.InsertEventLog(ev))

	assert.NoError(t, w.InsertEventLog(schema.EventLog{Seq: 2, Action: schema.ActionUpdated, Name: "alice", Timestamp: 1001}))
	assert.NoError(t, w.InsertEventLog(schema.EventLog{Seq: 3, Action: schema.ActionTransferred, Name: "alice", Timestamp: 1002}))

	logs, err := w.GetEventLogs(0, "", 100)
	assert.NoError(t, err)
	assert.Len(t, logs, 3)
	assert.Equal(t, uint64(1), logs[0].Seq)
	assert.Equal(t, uint64(3), logs[2].Seq)

	logs, err = w.GetEventLogs(2, "", 100)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = w.GetEventLogs(0, schema.ActionUpdated, 100)
	assert.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, uint64(2), logs[0].Seq)

	logs, err = w.GetEventLogs(0, "", 2)
	assert.NoError(t, err)
	assert.Len(t, logs, 2)

	last, err := w.GetLastEventSeq()
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), last)
}

func TestWdb_RecordRow(t *testing.T) {
	w := testWdb(t)

	owner := "0x61EbF673c200646236B2c53465bcA0699455d5F1"
	newOwner := "0xab6c371B6c466BE4f93201D48B39a1907B874761"

	assert.NoError(t, w.InsertRecordRow(schema.RecordRow{
		Name: "alice", Owner: owner, Data: "v1", RegisteredAt: 1000, ModifiedAt: 1000,
	}))

	row, err := w.GetRecordRow("alice")
	assert.NoError(t, err)
	assert.Equal(t, owner, row.Owner)
	assert.Equal(t, "v1", row.Data)

	assert.NoError(t, w.UpdateRecordData("alice", "v2", 1001))
	row, err = w.GetRecordRow("alice")
	assert.NoError(t, err)
	assert.Equal(t, "v2", row.Data)
	assert.Equal(t, int64(1001), row.ModifiedAt)

	assert.NoError(t, w.UpdateRecordOwner("alice", newOwner, 1002))
	row, err = w.GetRecordRow("alice")
	assert.NoError(t, err)
	assert.Equal(t, newOwner, row.Owner)

	// current-ownership view follows the transfer
	rows, err := w.GetRecordsByOwner(owner)
	assert.NoError(t, err)
	assert.Len(t, rows, 0)
	rows, err = w.GetRecordsByOwner(newOwner)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)

	count, err := w.RecordCount()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// replayed insert for an existing name overwrites, not duplicates
	assert.NoError(t, w.InsertRecordRow(schema.RecordRow{
		Name: "alice", Owner: owner, Data: "v3", RegisteredAt: 1000, ModifiedAt: 1003,
	}))
	count, err = w.RecordCount()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWdb_DepositReceipt(t *testing.T) {
	w := testWdb(t)

	from := "0x61EbF673c200646236B2c53465bcA0699455d5F1"
	assert.NoError(t, w.InsertReceipt(schema.DepositReceipt{ReceiptId: "r-1", From: from, Amount: "5", Direct: false}))
	assert.NoError(t, w.InsertReceipt(schema.DepositReceipt{ReceiptId: "r-2", From: from, Amount: "3", Direct: true}))

	receipts, err := w.GetReceiptsByFrom(from)
	assert.NoError(t, err)
	assert.Len(t, receipts, 2)
}

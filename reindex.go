package arnames

import (
	"github.com/everFinance/arnames/schema"
)

// Reindex rebuilds the sql RecordRow view from the authoritative kv state.
// The event pipeline normally keeps the view in step; this is the recovery
// path after a lost or corrupted sql database.
func (s *Arnames) Reindex() (schema.RespReindex, error) {
	report := schema.RespReindex{}

	for name, record := range s.registry.Snapshot() {
		err := s.wdb.InsertRecordRow(schema.RecordRow{
			Name:         name,
			Owner:        record.Owner.Hex(),
			Data:         record.Data,
			RegisteredAt: record.CreatedAt,
			ModifiedAt:   record.UpdatedAt,
		})
		if err != nil {
			log.Error("reindex record failed", "err", err, "name", name)
			report.Failed++
			continue
		}
		report.Indexed++
	}

	// flush whatever the dispatcher has not written yet, so the event log
	// catches up together with the record view
	pending, err := s.store.LoadPendingEvents()
	if err != nil {
		return report, err
	}
	for _, ev := range pending {
		if err := s.dispatcher.Flush(ev); err != nil {
			log.Error("reindex flush event failed", "err", err, "seq", ev.Seq)
			report.Failed++
			continue
		}
		report.FlushedEvents++
	}
	return report, nil
}

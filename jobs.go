package arnames

func (s *Arnames) runJobs() {
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.flushPendingEvents)
	s.scheduler.Every(30).Seconds().SingletonMode().Do(s.updateMetrics)
	s.scheduler.Every(5).Minute().SingletonMode().Do(s.snapshotAccountBook)

	s.scheduler.StartAsync()
}

// flushPendingEvents retries events a crash left behind in the pending
// bucket; a normal flush already deleted its entry.
func (s *Arnames) flushPendingEvents() {
	events, err := s.store.LoadPendingEvents()
	if err != nil {
		log.Error("load pending events failed", "err", err)
		return
	}
	for _, ev := range events {
		if err := s.dispatcher.Flush(ev); err != nil {
			log.Error("flush pending event failed", "err", err, "seq", ev.Seq)
		}
	}
	if len(events) > 0 {
		log.Info("flushed pending events", "count", len(events))
	}
}

func (s *Arnames) updateMetrics() {
	st := s.registry.State()
	metricRegistryState(st.Balance, s.registry.RecordCount())
}

func (s *Arnames) snapshotAccountBook() {
	for addr, balance := range s.book.Balances() {
		if err := s.store.SaveAccountBalance(addr, balance); err != nil {
			log.Error("snapshot account balance failed", "err", err, "addr", addr.Hex())
		}
	}
}

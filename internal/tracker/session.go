package tracker

// SessionReport summarizes a session start.
type SessionReport struct {
	Linked      int
	Materialize MaterializeReport
}

// StartSession runs the ordered start-up steps on freshly restored state:
// legacy instances are linked to templates, today's instances are
// materialized and the statistics are repaired. Observers receive a single
// notification.
func (t *Tracker) StartSession() SessionReport {
	var report SessionReport
	t.mutate(func() error {
		report.Linked = t.syncTemplatesLocked()
		report.Materialize = t.materializeLocked()
		t.rebuildLocked()
		t.log.Info("session started",
			"day", t.todayKey(),
			"todos", len(t.todos),
			"templates", len(t.templates),
			"punch_records", len(t.punches))
		return nil
	})
	return report
}

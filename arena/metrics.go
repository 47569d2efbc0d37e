package arena

import "sync/atomic"

// Metrics counts room activity. Safe to read from any goroutine.
type Metrics struct {
	TickCount      int64
	TotalTickNs    int64
	EmptyTicks     int64 // ticks that produced no events
	EventsEmitted  int64
	DeltasSent     int64 // per-connection delta frames
	InputsAccepted int64
	InputsRejected int64 // malformed payloads dropped before the room
	Joins          int64
	Leaves         int64
}

func (m *Metrics) AddTick(ns int64, events int) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
	if events == 0 {
		atomic.AddInt64(&m.EmptyTicks, 1)
		return
	}
	atomic.AddInt64(&m.EventsEmitted, int64(events))
}

func (m *Metrics) IncDeltaSent() { atomic.AddInt64(&m.DeltasSent, 1) }
func (m *Metrics) IncAccepted()  { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *Metrics) IncRejected()  { atomic.AddInt64(&m.InputsRejected, 1) }
func (m *Metrics) IncJoin()      { atomic.AddInt64(&m.Joins, 1) }
func (m *Metrics) IncLeave()     { atomic.AddInt64(&m.Leaves, 1) }

// Snapshot returns a read-only copy for the admin API
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":      tick,
		"avg_tick_ms":     avgMs,
		"empty_ticks":     atomic.LoadInt64(&m.EmptyTicks),
		"events_emitted":  atomic.LoadInt64(&m.EventsEmitted),
		"deltas_sent":     atomic.LoadInt64(&m.DeltasSent),
		"inputs_accepted": atomic.LoadInt64(&m.InputsAccepted),
		"inputs_rejected": atomic.LoadInt64(&m.InputsRejected),
		"joins":           atomic.LoadInt64(&m.Joins),
		"leaves":          atomic.LoadInt64(&m.Leaves),
	}
}

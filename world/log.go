package world

// Log is an ordered list of events. The world keeps one for events raised
// between ticks and builds a fresh one per tick.
type Log struct {
	events []Event
}

func (l *Log) Append(evs ...Event) {
	l.events = append(l.events, evs...)
}

func (l *Log) Len() int {
	return len(l.events)
}

// Events returns the recorded events without clearing them
func (l *Log) Events() []Event {
	return l.events
}

// Drain returns the recorded events and resets the log
func (l *Log) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}

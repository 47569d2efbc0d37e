package store

import (
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	PlayerID  string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics persists events and finished sessions with batched background
// writes. Track and EndSession never block the caller.
type Analytics struct {
	db       *DB
	log      *zap.SugaredLogger
	events   chan AnalyticsEvent
	sessions chan SessionRow
	stop     chan struct{}
	wg       sync.WaitGroup

	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewAnalytics creates and starts the background writer. Batches are
// flushed every interval or once batchSize records are pending.
func NewAnalytics(db *DB, log *zap.SugaredLogger, interval time.Duration, batchSize int) *Analytics {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	a := &Analytics{
		db:        db,
		log:       log,
		events:    make(chan AnalyticsEvent, 1024),
		sessions:  make(chan SessionRow, 256),
		stop:      make(chan struct{}),
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence
func (a *Analytics) Track(evtType, playerID, data string) {
	select {
	case a.events <- AnalyticsEvent{Type: evtType, PlayerID: playerID, Data: data, Timestamp: a.now().UTC()}:
	default:
		a.log.Warnw("analytics queue full, dropping event", "type", evtType)
	}
}

// EndSession enqueues a finished session
func (a *Analytics) EndSession(playerID, name string, score int, joinedAt time.Time) {
	select {
	case a.sessions <- NewSessionRow(playerID, name, score, joinedAt, a.now()):
	default:
		a.log.Warnw("analytics queue full, dropping session", "player", playerID)
	}
}

// Stop flushes everything queued and shuts the writer down
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

type batch struct {
	events   []AnalyticsEvent
	sessions []SessionRow
}

func (b *batch) len() int { return len(b.events) + len(b.sessions) }

func (b *batch) reset() {
	b.events = b.events[:0]
	b.sessions = b.sessions[:0]
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	var b batch
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			b.events = append(b.events, evt)
		case s := <-a.sessions:
			b.sessions = append(b.sessions, s)
		case <-ticker.C:
			a.flush(&b)
			continue
		case <-a.stop:
			a.drain(&b)
			a.flush(&b)
			return
		}
		if b.len() >= a.batchSize {
			a.flush(&b)
		}
	}
}

// drain pulls whatever is still queued without blocking
func (a *Analytics) drain(b *batch) {
	for {
		select {
		case evt := <-a.events:
			b.events = append(b.events, evt)
		case s := <-a.sessions:
			b.sessions = append(b.sessions, s)
		default:
			return
		}
	}
}

// flush writes a batch in one transaction
func (a *Analytics) flush(b *batch) {
	if b.len() == 0 {
		return
	}
	defer b.reset()

	tx, err := a.db.conn.Begin()
	if err != nil {
		a.log.Errorw("analytics: begin tx", "err", err)
		return
	}
	defer tx.Rollback()

	evStmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, player_id, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		a.log.Errorw("analytics: prepare", "err", err)
		return
	}
	defer evStmt.Close()
	for _, evt := range b.events {
		pid := sql.NullString{String: evt.PlayerID, Valid: evt.PlayerID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := evStmt.Exec(evt.Type, pid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			a.log.Errorw("analytics: insert event", "err", err)
		}
	}

	sessStmt, err := tx.Prepare(`INSERT INTO sessions (player_id, name, score, joined_at, left_at, duration_sec) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		a.log.Errorw("analytics: prepare", "err", err)
		return
	}
	defer sessStmt.Close()
	for _, s := range b.sessions {
		if _, err := sessStmt.Exec(s.PlayerID, s.Name, s.Score, s.JoinedAt, s.LeftAt, s.DurationSec); err != nil {
			a.log.Errorw("analytics: insert session", "err", err)
		}
	}

	if err := tx.Commit(); err != nil {
		a.log.Errorw("analytics: commit", "err", err)
	}
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			return nil, err
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// Package arena runs a world on a single goroutine and fans its changes
// out to connections.
package arena

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"foodarena/interest"
	"foodarena/protocol"
	"foodarena/world"
)

// ErrClosed is returned once the room loop has exited
var ErrClosed = errors.New("room closed")

// Analytics event types
const (
	EvtJoin      = "join"
	EvtLeave     = "leave"
	EvtFoodEaten = "food_eaten"
)

const inboxSize = 256

// Conn is the outbound half of a connection. Send must not block.
type Conn interface {
	Send(env protocol.Envelope)
	Close()
}

// Tracker receives analytics. Implementations must not block.
type Tracker interface {
	Track(evtType, playerID, data string)
	EndSession(playerID, name string, score int, joinedAt time.Time)
}

type Options struct {
	LeaderboardPeriod time.Duration
	Logger            *zap.SugaredLogger
	Tracker           Tracker
}

// Room owns a World. All mutation happens on the goroutine running Run;
// other goroutines talk to it through the inbox.
type Room struct {
	inbox    chan any
	done     chan struct{}
	world    *world.World
	cfg      world.Config
	interest *interest.Manager

	clients  map[string]Conn
	order    []string // join order, for deterministic fan-out
	joinedAt map[string]time.Time

	leaderboardPeriod time.Duration
	log               *zap.SugaredLogger
	tracker           Tracker
	metrics           *Metrics
}

func New(w *world.World, opts Options) *Room {
	cfg := w.Config()
	if opts.LeaderboardPeriod <= 0 {
		opts.LeaderboardPeriod = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Room{
		inbox:             make(chan any, inboxSize),
		done:              make(chan struct{}),
		world:             w,
		cfg:               cfg,
		interest:          interest.NewManager(cfg.ViewportWidth, cfg.ViewportHeight),
		clients:           make(map[string]Conn),
		joinedAt:          make(map[string]time.Time),
		leaderboardPeriod: opts.LeaderboardPeriod,
		log:               opts.Logger,
		tracker:           opts.Tracker,
		metrics:           &Metrics{},
	}
}

func (r *Room) Metrics() *Metrics { return r.metrics }

// Done is closed when Run returns
func (r *Room) Done() <-chan struct{} { return r.done }

// Run drives the simulation until ctx is cancelled. A slow tick delays the
// next one; ticks never overlap.
func (r *Room) Run(ctx context.Context) {
	defer close(r.done)

	tick := time.NewTicker(r.cfg.TickPeriod)
	defer tick.Stop()
	leaderboard := time.NewTicker(r.leaderboardPeriod)
	defer leaderboard.Stop()

	r.log.Infow("room started", "tick", r.cfg.TickPeriod, "world", [2]float64{r.cfg.Width, r.cfg.Height})
	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		case <-tick.C:
			r.step()
		case <-leaderboard.C:
			r.broadcastLeaderboard()
		}
	}
}

func (r *Room) shutdown() {
	for _, id := range r.order {
		if view, ok := r.world.Player(id); ok && r.tracker != nil {
			r.tracker.EndSession(id, view.Name, view.Score, r.joinedAt[id])
		}
		r.clients[id].Close()
	}
	r.log.Infow("room stopped", "players", len(r.clients), "ticks", r.world.TickCount())
}

// --- commands ---

type joinCmd struct {
	id    string
	name  string
	conn  Conn
	reply chan<- error
}

type inputCmd struct {
	id    string
	input world.Input
}

type leaveCmd struct {
	id string
}

type kickCmd struct {
	id    string
	reply chan<- bool
}

type statsCmd struct {
	reply chan<- Stats
}

// Stats is a point-in-time view of the room for the admin API
type Stats struct {
	Players  int    `json:"players"`
	Food     int    `json:"food"`
	Tick     uint64 `json:"tick"`
	Consumed uint64 `json:"consumed"`
}

func (r *Room) submit(ctx context.Context, cmd any) error {
	select {
	case <-r.done:
		return ErrClosed
	default:
	}
	select {
	case r.inbox <- cmd:
		return nil
	case <-r.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, r *Room, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-r.done:
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Join admits player id and sends it the initial snapshot through conn
// before returning.
func (r *Room) Join(ctx context.Context, id, name string, conn Conn) error {
	reply := make(chan error, 1)
	if err := r.submit(ctx, joinCmd{id: id, name: name, conn: conn, reply: reply}); err != nil {
		return err
	}
	err, waitErr := await(ctx, r, reply)
	if waitErr != nil {
		return waitErr
	}
	return err
}

// SetInput records the latest input for id. It is applied on the next tick.
func (r *Room) SetInput(ctx context.Context, id string, in world.Input) error {
	return r.submit(ctx, inputCmd{id: id, input: in})
}

// Leave removes id. The connection is assumed to be gone already.
func (r *Room) Leave(ctx context.Context, id string) error {
	return r.submit(ctx, leaveCmd{id: id})
}

// Kick removes id and closes its connection. Reports whether id was present.
func (r *Room) Kick(ctx context.Context, id string) (bool, error) {
	reply := make(chan bool, 1)
	if err := r.submit(ctx, kickCmd{id: id, reply: reply}); err != nil {
		return false, err
	}
	return await(ctx, r, reply)
}

func (r *Room) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	if err := r.submit(ctx, statsCmd{reply: reply}); err != nil {
		return Stats{}, err
	}
	return await(ctx, r, reply)
}

func (r *Room) handle(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- r.join(c)
	case inputCmd:
		if err := r.world.SetInput(c.id, c.input); err != nil {
			r.log.Debugw("input dropped", "id", c.id, "err", err)
			return
		}
		r.metrics.IncAccepted()
	case leaveCmd:
		r.remove(c.id, false)
	case kickCmd:
		c.reply <- r.remove(c.id, true)
	case statsCmd:
		c.reply <- Stats{
			Players:  r.world.PlayerCount(),
			Food:     r.world.FoodCount(),
			Tick:     r.world.TickCount(),
			Consumed: r.world.Consumed(),
		}
	default:
		r.log.Warnf("unknown room command %T", cmd)
	}
}

func (r *Room) join(c joinCmd) error {
	view, err := r.world.Join(c.id, c.name)
	if err != nil {
		r.log.Warnw("join rejected", "id", c.id, "err", err)
		return err
	}
	r.clients[c.id] = c.conn
	r.order = append(r.order, c.id)
	r.joinedAt[c.id] = time.Now()

	snap := protocol.SnapshotFrom(c.id, r.world.Snapshot(), r.cfg)
	c.conn.Send(protocol.Envelope{T: protocol.MsgSnapshot, Data: snap})

	r.metrics.IncJoin()
	r.track(EvtJoin, c.id, map[string]any{"name": view.Name})
	r.log.Infow("player joined", "id", c.id, "name", view.Name, "x", view.X, "y", view.Y)
	return nil
}

func (r *Room) remove(id string, closeConn bool) bool {
	view, ok := r.world.Player(id)
	if !ok {
		return false
	}
	r.world.Leave(id)
	conn := r.clients[id]
	delete(r.clients, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	joinedAt := r.joinedAt[id]
	delete(r.joinedAt, id)

	r.metrics.IncLeave()
	r.track(EvtLeave, id, map[string]any{"score": view.Score})
	if r.tracker != nil {
		r.tracker.EndSession(id, view.Name, view.Score, joinedAt)
	}
	r.log.Infow("player left", "id", id, "name", view.Name, "score", view.Score, "kicked", closeConn)

	if closeConn && conn != nil {
		conn.Close()
	}
	return true
}

// step runs one tick and sends each connection the part of the log it can
// see. Connections with nothing visible get no frame.
func (r *Room) step() {
	start := time.Now()
	events := r.world.Tick()
	r.metrics.AddTick(time.Since(start).Nanoseconds(), len(events))
	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		if su, ok := ev.(world.ScoreUpdated); ok {
			r.track(EvtFoodEaten, su.ID, map[string]any{"score": su.Score})
		}
	}

	for _, id := range r.order {
		p, ok := r.world.Player(id)
		if !ok {
			continue
		}
		visible := r.interest.Filter(events, interest.Viewer{ID: id, X: p.X, Y: p.Y})
		if len(visible) == 0 {
			continue
		}
		r.clients[id].Send(protocol.Envelope{T: protocol.MsgDelta, Data: protocol.ChangesFrom(visible)})
		r.metrics.IncDeltaSent()
	}
}

func (r *Room) broadcastLeaderboard() {
	if len(r.order) == 0 {
		return
	}
	env := protocol.Envelope{
		T:    protocol.MsgLeaderboard,
		Data: protocol.LeaderboardFrom(r.world.Leaderboard(r.cfg.LeaderboardSize)),
	}
	for _, id := range r.order {
		r.clients[id].Send(env)
	}
}

func (r *Room) track(evtType, playerID string, data map[string]any) {
	if r.tracker == nil {
		return
	}
	b, err := json.Marshal(data)
	if err != nil {
		r.log.Errorw("analytics marshal", "err", err)
		return
	}
	r.tracker.Track(evtType, playerID, string(b))
}

package world

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"foodarena/spatial"
)

var (
	ErrDuplicatePlayer = errors.New("player already joined")
	ErrUnknownPlayer   = errors.New("unknown player")
)

// Option customises a World at construction
type Option func(*World)

// WithRand sets the random source used for spawn positions and colours
func WithRand(r *rand.Rand) Option {
	return func(w *World) { w.rng = r }
}

// WithSpawner overrides how spawn positions are chosen. fn is called for
// every new player and food item.
func WithSpawner(fn func() (x, y float64)) Option {
	return func(w *World) { w.spawn = fn }
}

// World is the authoritative state: player registry, food registry and the
// spatial index over both. It is not safe for concurrent use; arena.Room
// owns it from a single goroutine.
type World struct {
	cfg     Config
	roster  []*Player // join order
	players map[string]*Player
	food    map[string]*Food
	grid    *spatial.Grid
	pending Log

	rng      *rand.Rand
	spawn    func() (float64, float64)
	foodSeq  uint64
	tick     uint64
	consumed uint64
}

// New creates an empty world. Call SeedFood to stock it.
func New(cfg Config, opts ...Option) *World {
	w := &World{
		cfg:     cfg,
		players: make(map[string]*Player),
		food:    make(map[string]*Food),
		grid:    spatial.NewGrid(cfg.CellSize()),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.spawn == nil {
		w.spawn = w.randomPosition
	}
	return w
}

func (w *World) Config() Config { return w.cfg }

// randomPosition picks an integer-aligned point inside the world
func (w *World) randomPosition() (float64, float64) {
	return float64(w.rng.IntN(int(w.cfg.Width))), float64(w.rng.IntN(int(w.cfg.Height)))
}

func (w *World) randomHue() int {
	return w.rng.IntN(360)
}

// SeedFood spawns n food items. Their FoodAdded events are delivered with
// the next tick.
func (w *World) SeedFood(n int) {
	for i := 0; i < n; i++ {
		f := w.spawnFood()
		w.pending.Append(FoodAdded{Food: f.View()})
	}
}

func (w *World) spawnFood() *Food {
	w.foodSeq++
	x, y := w.spawn()
	f := &Food{
		ID:    fmt.Sprintf("food-%d", w.foodSeq),
		X:     x,
		Y:     y,
		Color: fmt.Sprintf("hsl(%d, 100%%, 50%%)", w.randomHue()),
		seq:   w.foodSeq,
	}
	w.food[f.ID] = f
	w.grid.Insert(f)
	return f
}

func (w *World) removeFood(f *Food) {
	w.grid.Remove(f)
	delete(w.food, f.ID)
}

// Join admits a new player at a spawn position and queues PlayerJoined.
// The returned view is what the joiner's snapshot should show for itself.
func (w *World) Join(id, name string) (PlayerView, error) {
	if id == "" {
		return PlayerView{}, fmt.Errorf("join: empty player id")
	}
	if _, ok := w.players[id]; ok {
		return PlayerView{}, fmt.Errorf("join %s: %w", id, ErrDuplicatePlayer)
	}
	x, y := w.spawn()
	p := &Player{
		ID:    id,
		Name:  SanitizeName(name, w.cfg.MaxNameLen, w.cfg.DefaultName),
		X:     x,
		Y:     y,
		Color: fmt.Sprintf("hsl(%d, 70%%, 70%%)", w.randomHue()),
	}
	w.players[id] = p
	w.roster = append(w.roster, p)
	w.grid.Insert(p)
	w.pending.Append(PlayerJoined{Player: p.View()})
	return p.View(), nil
}

// Leave removes a player and queues PlayerLeft. Reports whether the
// player existed.
func (w *World) Leave(id string) bool {
	p, ok := w.players[id]
	if !ok {
		return false
	}
	w.grid.Remove(p)
	delete(w.players, id)
	if i := slices.Index(w.roster, p); i >= 0 {
		w.roster = slices.Delete(w.roster, i, i+1)
	}
	w.pending.Append(PlayerLeft{ID: id, X: p.X, Y: p.Y})
	return true
}

// SetInput replaces the player's input. Last value wins.
func (w *World) SetInput(id string, in Input) error {
	p, ok := w.players[id]
	if !ok {
		return fmt.Errorf("input for %s: %w", id, ErrUnknownPlayer)
	}
	p.Input = in
	return nil
}

// Tick advances the simulation one step and returns this tick's events:
// everything queued since the previous tick followed by movement and
// consumption in player join order. An empty result means nothing changed.
func (w *World) Tick() []Event {
	w.tick++
	var log Log
	log.Append(w.pending.Drain()...)

	for _, p := range w.roster {
		if p.Input.Neutral() {
			continue
		}
		nx, ny := Step(p.X, p.Y, p.Input, w.cfg.Speed, w.cfg.Width, w.cfg.Height)
		if nx == p.X && ny == p.Y {
			continue
		}
		p.X, p.Y = nx, ny
		w.grid.Relocate(p)
		log.Append(PlayerMoved{ID: p.ID, X: p.X, Y: p.Y})
		w.consume(p, &log)
	}
	return log.Drain()
}

// consume eats at most one food lying exactly under p
func (w *World) consume(p *Player, log *Log) {
	for _, e := range w.grid.Neighbors(p.X, p.Y) {
		f, ok := e.(*Food)
		if !ok || f.X != p.X || f.Y != p.Y {
			continue
		}
		w.removeFood(f)
		log.Append(FoodRemoved{ID: f.ID, X: f.X, Y: f.Y})
		p.Score++
		log.Append(ScoreUpdated{ID: p.ID, Score: p.Score})
		repl := w.spawnFood()
		log.Append(FoodAdded{Food: repl.View()})
		w.consumed++
		return
	}
}

// Player returns a copy of the player's current state
func (w *World) Player(id string) (PlayerView, bool) {
	p, ok := w.players[id]
	if !ok {
		return PlayerView{}, false
	}
	return p.View(), true
}

// Snapshot is the full visible state handed to a joining client
type Snapshot struct {
	Players []PlayerView
	Food    []FoodView
}

// Snapshot returns every player in join order and every food item in
// spawn order.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Players: make([]PlayerView, 0, len(w.roster)),
		Food:    make([]FoodView, 0, len(w.food)),
	}
	for _, p := range w.roster {
		s.Players = append(s.Players, p.View())
	}
	food := make([]*Food, 0, len(w.food))
	for _, f := range w.food {
		food = append(food, f)
	}
	slices.SortFunc(food, func(a, b *Food) int { return cmp.Compare(a.seq, b.seq) })
	for _, f := range food {
		s.Food = append(s.Food, f.View())
	}
	return s
}

func (w *World) PlayerCount() int { return len(w.players) }
func (w *World) FoodCount() int   { return len(w.food) }

// TickCount returns the number of ticks run so far
func (w *World) TickCount() uint64 { return w.tick }

// Consumed returns how many food items have been eaten since start
func (w *World) Consumed() uint64 { return w.consumed }

// CheckIndex verifies that every entity is indexed under the cell of its
// current position and that the grid holds nothing else.
func (w *World) CheckIndex() error {
	want := len(w.players) + len(w.food)
	if w.grid.Count() != want {
		return fmt.Errorf("grid holds %d entities, registries hold %d", w.grid.Count(), want)
	}
	var err error
	w.grid.Each(func(k spatial.Key, e spatial.Entity) {
		if err != nil {
			return
		}
		if got := w.grid.KeyFor(e.Position()); got != k {
			err = fmt.Errorf("entity at cell %s stored under %s", got, k)
			return
		}
		switch v := e.(type) {
		case *Player:
			if w.players[v.ID] != v {
				err = fmt.Errorf("grid holds unregistered player %s", v.ID)
			}
		case *Food:
			if w.food[v.ID] != v {
				err = fmt.Errorf("grid holds unregistered food %s", v.ID)
			}
		}
	})
	return err
}

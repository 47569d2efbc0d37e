package client

import (
	"fmt"

	"foodarena/protocol"
	"foodarena/world"
)

// Mirror is the client's copy of the world. It is not safe for concurrent
// use; one goroutine applies messages, ticks and renders.
type Mirror struct {
	self    string
	cfg     protocol.WorldConfig
	players map[string]*RemotePlayer
	food    map[string]protocol.FoodState

	leaderboard []protocol.LeaderboardEntry
	predictor   *Predictor
	interp      Interpolator
	input       world.Input
	ignored     int
}

func NewMirror() *Mirror {
	return &Mirror{
		players: make(map[string]*RemotePlayer),
		food:    make(map[string]protocol.FoodState),
		interp:  Interpolator{Factor: DefaultSmoothing},
	}
}

// Joined reports whether a snapshot has been applied
func (m *Mirror) Joined() bool { return m.predictor != nil }

func (m *Mirror) Self() string                 { return m.self }
func (m *Mirror) Config() protocol.WorldConfig { return m.cfg }

// Handle decodes and applies one server message
func (m *Mirror) Handle(codec protocol.Codec, t string, payload []byte) error {
	switch t {
	case protocol.MsgSnapshot:
		s, err := protocol.DecodePayload[protocol.Snapshot](codec, payload)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		m.ApplySnapshot(s)
	case protocol.MsgDelta:
		changes, err := protocol.DecodePayload[[]protocol.Change](codec, payload)
		if err != nil {
			return fmt.Errorf("delta: %w", err)
		}
		m.ApplyDelta(changes)
	case protocol.MsgLeaderboard:
		rows, err := protocol.DecodePayload[[]protocol.LeaderboardEntry](codec, payload)
		if err != nil {
			return fmt.Errorf("leaderboard: %w", err)
		}
		m.ApplyLeaderboard(rows)
	case protocol.MsgError:
		e, err := protocol.DecodePayload[protocol.ErrorMsg](codec, payload)
		if err != nil {
			return fmt.Errorf("error message: %w", err)
		}
		return fmt.Errorf("server: %s", e.Msg)
	default:
		m.ignored++
	}
	return nil
}

// ApplySnapshot replaces the whole mirror with the server's state
func (m *Mirror) ApplySnapshot(s protocol.Snapshot) {
	m.self = s.Self
	m.cfg = s.Config
	m.interp.CenterX = s.Config.CanvasWidth / 2
	m.interp.CenterY = s.Config.CanvasHeight / 2
	m.players = make(map[string]*RemotePlayer, len(s.Players))
	m.food = make(map[string]protocol.FoodState, len(s.Food))
	for _, p := range s.Players {
		m.upsertPlayer(p)
	}
	for _, f := range s.Food {
		m.food[f.ID] = f
	}

	b := Bounds{Width: s.Config.WorldWidth, Height: s.Config.WorldHeight, Speed: s.Config.Speed}
	if me, ok := m.players[s.Self]; ok {
		m.predictor = NewPredictor(me.X, me.Y, b)
	} else {
		m.predictor = NewPredictor(b.Width/2, b.Height/2, b)
	}
}

func (m *Mirror) upsertPlayer(ps protocol.PlayerState) {
	if p, ok := m.players[ps.ID]; ok {
		p.PlayerState = ps
		return
	}
	m.players[ps.ID] = &RemotePlayer{PlayerState: ps, DisplayX: ps.X, DisplayY: ps.Y, hasDisplay: true}
}

// ApplyDelta applies a batch in order. Unknown change kinds are skipped.
func (m *Mirror) ApplyDelta(changes []protocol.Change) {
	for _, c := range changes {
		switch c.K {
		case protocol.ChangePlayerJoined:
			if c.Player != nil {
				m.upsertPlayer(*c.Player)
			}
		case protocol.ChangePlayerMoved:
			p, ok := m.players[c.ID]
			if !ok {
				continue
			}
			p.X, p.Y = c.X, c.Y
			if c.ID == m.self && m.predictor != nil {
				m.predictor.Confirm(c.X, c.Y)
			}
		case protocol.ChangePlayerLeft:
			delete(m.players, c.ID)
		case protocol.ChangeFoodAdded:
			if c.Food != nil {
				m.food[c.Food.ID] = *c.Food
			}
		case protocol.ChangeFoodRemoved:
			delete(m.food, c.ID)
		case protocol.ChangeScoreUpdated:
			if p, ok := m.players[c.ID]; ok {
				p.Score = c.Score
			}
		default:
			m.ignored++
		}
	}
}

func (m *Mirror) ApplyLeaderboard(rows []protocol.LeaderboardEntry) {
	m.leaderboard = rows
}

func (m *Mirror) Leaderboard() []protocol.LeaderboardEntry { return m.leaderboard }

// SetInput replaces the local input; it is predicted on the next Tick
func (m *Mirror) SetInput(in world.Input) { m.input = in }
func (m *Mirror) Input() world.Input      { return m.input }

// Tick runs one logic step of local prediction
func (m *Mirror) Tick() (float64, float64) {
	if m.predictor == nil {
		return 0, 0
	}
	return m.predictor.Tick(m.input)
}

// Frame advances every remote player's display position
func (m *Mirror) Frame() {
	for id, p := range m.players {
		if id == m.self {
			continue
		}
		m.interp.Apply(p)
	}
}

// Position is the predicted position of the local player
func (m *Mirror) Position() (float64, float64) {
	if m.predictor == nil {
		return 0, 0
	}
	return m.predictor.Position()
}

// Player returns a copy of what the mirror knows about id
func (m *Mirror) Player(id string) (RemotePlayer, bool) {
	p, ok := m.players[id]
	if !ok {
		return RemotePlayer{}, false
	}
	return *p, true
}

func (m *Mirror) PlayerCount() int { return len(m.players) }
func (m *Mirror) FoodCount() int   { return len(m.food) }

// Score is the local player's last confirmed score
func (m *Mirror) Score() int {
	if p, ok := m.players[m.self]; ok {
		return p.Score
	}
	return 0
}

// Ignored counts messages and changes of unknown kind
func (m *Mirror) Ignored() int { return m.ignored }

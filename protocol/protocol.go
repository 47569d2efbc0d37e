package protocol

import (
	"encoding/json"
	"fmt"

	"foodarena/world"
)

// Client -> Server message types
const (
	MsgJoin  = "join"
	MsgInput = "input"
)

// Server -> Client message types
const (
	MsgSnapshot    = "snapshot"
	MsgDelta       = "delta"
	MsgLeaderboard = "leaderboard"
	MsgError       = "error"
)

// Change kinds carried in a delta
const (
	ChangePlayerJoined = "playerJoined"
	ChangePlayerMoved  = "playerMoved"
	ChangePlayerLeft   = "playerLeft"
	ChangeFoodAdded    = "foodAdded"
	ChangeFoodRemoved  = "foodRemoved"
	ChangeScoreUpdated = "scoreUpdated"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; the payload is decoded once
// the type is known.
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg is sent once per connection to enter the world
type JoinMsg struct {
	Name string `json:"name"`
}

// InputMsg is the four directional flags; it maps onto world.Input
type InputMsg = world.Input

type ErrorMsg struct {
	Msg string `json:"msg"`
}

// PlayerState is the wire form of a player
type PlayerState struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Score int     `json:"score"`
}

type FoodState struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

// WorldConfig is the subset of world.Config a client needs to render and
// predict
type WorldConfig struct {
	CanvasWidth    float64 `json:"canvasWidth"`
	CanvasHeight   float64 `json:"canvasHeight"`
	ViewportWidth  float64 `json:"viewportWidth"`
	ViewportHeight float64 `json:"viewportHeight"`
	WorldWidth     float64 `json:"worldWidth"`
	WorldHeight    float64 `json:"worldHeight"`
	Speed          float64 `json:"speed"`
	TickMs         int64   `json:"tickMs"`
}

// Snapshot is the full state sent to a connection right after it joins
type Snapshot struct {
	Self    string        `json:"self"`
	Players []PlayerState `json:"players"`
	Food    []FoodState   `json:"food"`
	Config  WorldConfig   `json:"config"`
}

// Change is one entry of a delta batch. x and y are always encoded, zero
// included; which optional fields are set depends on K.
type Change struct {
	K      string       `json:"k"`
	ID     string       `json:"id"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Score  int          `json:"score,omitempty"`
	Player *PlayerState `json:"player,omitempty"`
	Food   *FoodState   `json:"food,omitempty"`
}

// LeaderboardEntry is one row of the periodic leaderboard
type LeaderboardEntry struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score int     `json:"score"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

func PlayerStateFrom(p world.PlayerView) PlayerState {
	return PlayerState{ID: p.ID, Name: p.Name, X: p.X, Y: p.Y, Color: p.Color, Score: p.Score}
}

func FoodStateFrom(f world.FoodView) FoodState {
	return FoodState{ID: f.ID, X: f.X, Y: f.Y, Color: f.Color}
}

func ConfigFrom(c world.Config) WorldConfig {
	return WorldConfig{
		CanvasWidth:    c.CanvasWidth,
		CanvasHeight:   c.CanvasHeight,
		ViewportWidth:  c.ViewportWidth,
		ViewportHeight: c.ViewportHeight,
		WorldWidth:     c.Width,
		WorldHeight:    c.Height,
		Speed:          c.Speed,
		TickMs:         c.TickPeriod.Milliseconds(),
	}
}

// SnapshotFrom builds the snapshot sent to the player self
func SnapshotFrom(self string, s world.Snapshot, c world.Config) Snapshot {
	out := Snapshot{
		Self:    self,
		Players: make([]PlayerState, 0, len(s.Players)),
		Food:    make([]FoodState, 0, len(s.Food)),
		Config:  ConfigFrom(c),
	}
	for _, p := range s.Players {
		out.Players = append(out.Players, PlayerStateFrom(p))
	}
	for _, f := range s.Food {
		out.Food = append(out.Food, FoodStateFrom(f))
	}
	return out
}

// ChangeFrom converts one simulation event to its wire form
func ChangeFrom(ev world.Event) Change {
	switch e := ev.(type) {
	case world.PlayerJoined:
		ps := PlayerStateFrom(e.Player)
		return Change{K: ChangePlayerJoined, ID: ps.ID, X: ps.X, Y: ps.Y, Player: &ps}
	case world.PlayerMoved:
		return Change{K: ChangePlayerMoved, ID: e.ID, X: e.X, Y: e.Y}
	case world.PlayerLeft:
		return Change{K: ChangePlayerLeft, ID: e.ID, X: e.X, Y: e.Y}
	case world.FoodAdded:
		fs := FoodStateFrom(e.Food)
		return Change{K: ChangeFoodAdded, ID: fs.ID, X: fs.X, Y: fs.Y, Food: &fs}
	case world.FoodRemoved:
		return Change{K: ChangeFoodRemoved, ID: e.ID, X: e.X, Y: e.Y}
	case world.ScoreUpdated:
		return Change{K: ChangeScoreUpdated, ID: e.ID, Score: e.Score}
	default:
		panic(fmt.Sprintf("protocol: unhandled event %T", ev))
	}
}

func ChangesFrom(evs []world.Event) []Change {
	out := make([]Change, len(evs))
	for i, ev := range evs {
		out[i] = ChangeFrom(ev)
	}
	return out
}

func LeaderboardFrom(rows []world.Standing) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = LeaderboardEntry{ID: r.ID, Name: r.Name, Score: r.Score, X: r.X, Y: r.Y}
	}
	return out
}

package world

import "fmt"

// Kind names an event variant
type Kind uint8

const (
	KindPlayerJoined Kind = iota + 1
	KindPlayerMoved
	KindPlayerLeft
	KindFoodAdded
	KindFoodRemoved
	KindScoreUpdated
)

func (k Kind) String() string {
	switch k {
	case KindPlayerJoined:
		return "playerJoined"
	case KindPlayerMoved:
		return "playerMoved"
	case KindPlayerLeft:
		return "playerLeft"
	case KindFoodAdded:
		return "foodAdded"
	case KindFoodRemoved:
		return "foodRemoved"
	case KindScoreUpdated:
		return "scoreUpdated"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Event is a state change produced by the simulation. The set of
// variants is closed: only this package implements it.
type Event interface {
	Kind() Kind
	event()
}

type PlayerJoined struct {
	Player PlayerView
}

type PlayerMoved struct {
	ID   string
	X, Y float64
}

// PlayerLeft carries the last known position of the player
type PlayerLeft struct {
	ID   string
	X, Y float64
}

type FoodAdded struct {
	Food FoodView
}

type FoodRemoved struct {
	ID   string
	X, Y float64
}

type ScoreUpdated struct {
	ID    string
	Score int
}

func (PlayerJoined) Kind() Kind { return KindPlayerJoined }
func (PlayerMoved) Kind() Kind  { return KindPlayerMoved }
func (PlayerLeft) Kind() Kind   { return KindPlayerLeft }
func (FoodAdded) Kind() Kind    { return KindFoodAdded }
func (FoodRemoved) Kind() Kind  { return KindFoodRemoved }
func (ScoreUpdated) Kind() Kind { return KindScoreUpdated }

func (PlayerJoined) event() {}
func (PlayerMoved) event()  {}
func (PlayerLeft) event()   {}
func (FoodAdded) event()    {}
func (FoodRemoved) event()  {}
func (ScoreUpdated) event() {}

// Position returns where ev happened. ScoreUpdated has no position.
func Position(ev Event) (x, y float64, ok bool) {
	switch e := ev.(type) {
	case PlayerJoined:
		return e.Player.X, e.Player.Y, true
	case PlayerMoved:
		return e.X, e.Y, true
	case PlayerLeft:
		return e.X, e.Y, true
	case FoodAdded:
		return e.Food.X, e.Food.Y, true
	case FoodRemoved:
		return e.X, e.Y, true
	case ScoreUpdated:
		return 0, 0, false
	default:
		panic(fmt.Sprintf("world: unhandled event %T", ev))
	}
}

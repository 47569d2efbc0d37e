// Package interest decides which simulation events each connection sees.
package interest

import (
	"fmt"

	"foodarena/world"
)

// Rect is an axis-aligned region with inclusive bounds
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Viewer is the player a batch is being filtered for
type Viewer struct {
	ID   string
	X, Y float64
}

// Manager filters tick logs down to what one viewer should receive
type Manager struct {
	width, height float64
}

func NewManager(viewportWidth, viewportHeight float64) *Manager {
	return &Manager{width: viewportWidth, height: viewportHeight}
}

// Region returns the viewport centred on (x, y)
func (m *Manager) Region(x, y float64) Rect {
	hw, hh := m.width/2, m.height/2
	return Rect{MinX: x - hw, MinY: y - hh, MaxX: x + hw, MaxY: y + hh}
}

// Filter returns the events of log that v should receive, in log order.
// Score changes and roster changes are global; movement and food are
// culled to the viewport. A viewer never receives its own join. Returns
// nil when nothing is visible.
func (m *Manager) Filter(log []world.Event, v Viewer) []world.Event {
	region := m.Region(v.X, v.Y)
	var out []world.Event
	for _, ev := range log {
		if m.visible(ev, v.ID, region) {
			out = append(out, ev)
		}
	}
	return out
}

func (m *Manager) visible(ev world.Event, viewerID string, region Rect) bool {
	switch e := ev.(type) {
	case world.ScoreUpdated, world.PlayerLeft:
		return true
	case world.PlayerJoined:
		return e.Player.ID != viewerID
	case world.PlayerMoved:
		return region.Contains(e.X, e.Y)
	case world.FoodAdded:
		return region.Contains(e.Food.X, e.Food.Y)
	case world.FoodRemoved:
		return region.Contains(e.X, e.Y)
	default:
		panic(fmt.Sprintf("interest: unhandled event %T", ev))
	}
}

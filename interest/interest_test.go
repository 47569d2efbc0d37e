package interest

import (
	"testing"

	"foodarena/world"
)

func TestRegionInclusive(t *testing.T) {
	m := NewManager(60, 60)
	r := m.Region(50, 50)
	if r.MinX != 20 || r.MaxX != 80 || r.MinY != 20 || r.MaxY != 80 {
		t.Fatalf("unexpected region %+v", r)
	}
	for _, p := range [][2]float64{{20, 20}, {80, 80}, {20, 80}, {50, 50}} {
		if !r.Contains(p[0], p[1]) {
			t.Errorf("expected %v inside", p)
		}
	}
	for _, p := range [][2]float64{{19.9, 50}, {80.1, 50}, {50, 81}} {
		if r.Contains(p[0], p[1]) {
			t.Errorf("expected %v outside", p)
		}
	}
}

func TestFilterVisibility(t *testing.T) {
	m := NewManager(60, 60)
	viewer := Viewer{ID: "me", X: 50, Y: 50}

	cases := []struct {
		name string
		ev   world.Event
		want bool
	}{
		{"move inside", world.PlayerMoved{ID: "b", X: 60, Y: 60}, true},
		{"move on edge", world.PlayerMoved{ID: "b", X: 80, Y: 20}, true},
		{"move outside", world.PlayerMoved{ID: "b", X: 100, Y: 100}, false},
		{"own move", world.PlayerMoved{ID: "me", X: 51, Y: 50}, true},
		{"food added inside", world.FoodAdded{Food: world.FoodView{ID: "f", X: 30, Y: 30}}, true},
		{"food added outside", world.FoodAdded{Food: world.FoodView{ID: "f", X: 0, Y: 0}}, false},
		{"food removed inside", world.FoodRemoved{ID: "f", X: 79, Y: 79}, true},
		{"food removed outside", world.FoodRemoved{ID: "f", X: 119, Y: 0}, false},
		{"score far away", world.ScoreUpdated{ID: "b", Score: 4}, true},
		{"leave far away", world.PlayerLeft{ID: "b", X: 119, Y: 119}, true},
		{"join far away", world.PlayerJoined{Player: world.PlayerView{ID: "b", X: 119, Y: 119}}, true},
		{"own join", world.PlayerJoined{Player: world.PlayerView{ID: "me", X: 50, Y: 50}}, false},
	}
	for _, c := range cases {
		got := m.Filter([]world.Event{c.ev}, viewer)
		if (len(got) == 1) != c.want {
			t.Errorf("%s: visible=%v, want %v", c.name, len(got) == 1, c.want)
		}
	}
}

func TestFilterKeepsOrderAndReturnsNilWhenEmpty(t *testing.T) {
	m := NewManager(60, 60)
	viewer := Viewer{ID: "me", X: 10, Y: 10}
	log := []world.Event{
		world.PlayerMoved{ID: "b", X: 100, Y: 100},
		world.FoodRemoved{ID: "f1", X: 100, Y: 100},
		world.ScoreUpdated{ID: "b", Score: 1},
		world.FoodAdded{Food: world.FoodView{ID: "f2", X: 12, Y: 12}},
	}
	got := m.Filter(log, viewer)
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Kind() != world.KindScoreUpdated || got[1].Kind() != world.KindFoodAdded {
		t.Errorf("order not preserved: %v, %v", got[0].Kind(), got[1].Kind())
	}

	if got := m.Filter(log[:2], viewer); got != nil {
		t.Errorf("expected nil batch, got %v", got)
	}
}

// A player far from a consumption sees only the score change.
func TestFilterRemoteConsumption(t *testing.T) {
	m := NewManager(60, 60)
	log := []world.Event{
		world.PlayerMoved{ID: "a", X: 11, Y: 10},
		world.FoodRemoved{ID: "f1", X: 11, Y: 10},
		world.ScoreUpdated{ID: "a", Score: 1},
		world.FoodAdded{Food: world.FoodView{ID: "f2", X: 5, Y: 5}},
	}
	got := m.Filter(log, Viewer{ID: "b", X: 110, Y: 110})
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	su, ok := got[0].(world.ScoreUpdated)
	if !ok || su.ID != "a" || su.Score != 1 {
		t.Errorf("expected ScoreUpdated a=1, got %#v", got[0])
	}

	near := m.Filter(log, Viewer{ID: "a", X: 11, Y: 10})
	if len(near) != 4 {
		t.Errorf("the consumer should see all 4 events, got %d", len(near))
	}
}

package world

import "testing"

func TestStep(t *testing.T) {
	cases := []struct {
		name   string
		x, y   float64
		in     Input
		wx, wy float64
	}{
		{"idle", 5, 5, Input{}, 5, 5},
		{"right", 5, 5, Input{Right: true}, 6, 5},
		{"up", 5, 5, Input{Up: true}, 5, 4},
		{"diagonal is not normalised", 5, 5, Input{Down: true, Left: true}, 4, 6},
		{"opposing keys cancel", 5, 5, Input{Left: true, Right: true}, 5, 5},
		{"clamp low", 0, 0, Input{Up: true, Left: true}, 0, 0},
		{"clamp high", 119, 119, Input{Down: true, Right: true}, 119, 119},
	}
	for _, c := range cases {
		x, y := Step(c.x, c.y, c.in, 1, 120, 120)
		if x != c.wx || y != c.wy {
			t.Errorf("%s: got (%v,%v), want (%v,%v)", c.name, x, y, c.wx, c.wy)
		}
	}
}

func TestInputNeutral(t *testing.T) {
	if !(Input{}).Neutral() {
		t.Error("zero input should be neutral")
	}
	if !(Input{Up: true, Down: true}).Neutral() {
		t.Error("up+down should be neutral")
	}
	if (Input{Up: true}).Neutral() {
		t.Error("up should not be neutral")
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	cfg := DefaultConfig()
	cfg.TickPeriod = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero tick period")
	}
	if got := DefaultConfig().CellSize(); got != 60 {
		t.Errorf("expected cell size 60, got %v", got)
	}
}

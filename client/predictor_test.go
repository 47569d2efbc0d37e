package client

import (
	"math"
	"testing"

	"foodarena/world"
)

var testBounds = Bounds{Width: 120, Height: 120, Speed: 1}

func TestPredictorMovesImmediately(t *testing.T) {
	p := NewPredictor(10, 10, testBounds)
	x, y := p.Tick(world.Input{Right: true, Up: true})
	if x != 11 || y != 9 {
		t.Errorf("expected (11,9), got (%v,%v)", x, y)
	}
	x, y = p.Tick(world.Input{Left: true})
	if x != 10 || y != 9 {
		t.Errorf("expected (10,9), got (%v,%v)", x, y)
	}
}

func TestPredictorClampsLikeServer(t *testing.T) {
	p := NewPredictor(119, 0, testBounds)
	x, y := p.Tick(world.Input{Right: true, Up: true})
	if x != 119 || y != 0 {
		t.Errorf("expected clamp at (119,0), got (%v,%v)", x, y)
	}
}

// With a fixed authoritative position and no input, prediction converges
// and then snaps exactly.
func TestPredictorConverges(t *testing.T) {
	p := NewPredictor(0, 0, testBounds)
	p.Confirm(10, 20)

	x, y := p.Tick(world.Input{})
	if math.Abs(x-6) > 1e-9 || math.Abs(y-12) > 1e-9 {
		t.Errorf("first correction should cover 60%%, got (%v,%v)", x, y)
	}

	for i := 0; i < 20 && p.Pending(); i++ {
		x, y = p.Tick(world.Input{})
	}
	if p.Pending() {
		t.Fatal("prediction did not converge in 20 ticks")
	}
	if x != 10 || y != 20 {
		t.Errorf("expected exact snap to (10,20), got (%v,%v)", x, y)
	}
}

func TestPredictorSnapsWithinEpsilon(t *testing.T) {
	p := NewPredictor(5, 5, testBounds)
	p.Confirm(5.05, 4.95)
	x, y := p.Tick(world.Input{})
	if x != 5.05 || y != 4.95 {
		t.Errorf("expected snap to (5.05,4.95), got (%v,%v)", x, y)
	}
	if p.Pending() {
		t.Error("pending should be cleared after snapping")
	}
}

// Each axis is inside epsilon but the distance is not, so this corrects
// rather than snaps.
func TestPredictorCorrectsDiagonalError(t *testing.T) {
	p := NewPredictor(10, 10, testBounds)
	p.Confirm(10.09, 10.09)
	x, y := p.Tick(world.Input{})
	want := 10 + 0.09*DefaultCorrection
	if math.Abs(x-want) > 1e-9 || math.Abs(y-want) > 1e-9 {
		t.Errorf("expected correction to (%v,%v), got (%v,%v)", want, want, x, y)
	}
	if !p.Pending() {
		t.Error("confirmed position should still be pending")
	}

	// Remaining error is 0.036 per axis, about 0.051 in distance
	x, y = p.Tick(world.Input{})
	if x != 10.09 || y != 10.09 || p.Pending() {
		t.Errorf("expected snap to (10.09,10.09), got (%v,%v) pending=%v", x, y, p.Pending())
	}
}

func TestPredictorNaNFallsBackToCentre(t *testing.T) {
	p := NewPredictor(math.NaN(), 3, testBounds)
	x, y := p.Position()
	if x != 60 || y != 60 {
		t.Errorf("expected centre (60,60), got (%v,%v)", x, y)
	}

	p.Confirm(math.NaN(), 1)
	if p.Pending() {
		t.Error("NaN confirmation should be ignored")
	}
}

package world

// Input is the latest directional intent of a player
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Neutral reports whether the input produces no displacement
func (in Input) Neutral() bool {
	dx, dy := in.Axes()
	return dx == 0 && dy == 0
}

// Axes returns the unit displacement per axis. Opposing keys cancel.
func (in Input) Axes() (dx, dy float64) {
	if in.Up {
		dy--
	}
	if in.Down {
		dy++
	}
	if in.Left {
		dx--
	}
	if in.Right {
		dx++
	}
	return dx, dy
}

// Step applies one tick of movement and clamps the result to
// [0, width-1] x [0, height-1]. Diagonals are not normalised, so a
// diagonal step covers speed on both axes. Clients predict with the same
// function.
func Step(x, y float64, in Input, speed, width, height float64) (float64, float64) {
	dx, dy := in.Axes()
	return Clamp(x+dx*speed, 0, width-1), Clamp(y+dy*speed, 0, height-1)
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

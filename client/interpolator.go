package client

import (
	"math"

	"foodarena/protocol"
)

// DefaultSmoothing is the fraction of the remaining distance a remote
// player's display position covers each frame
const DefaultSmoothing = 0.6

// RemotePlayer is another player as the client knows it: the last logical
// position from the server plus a smoothed display position.
type RemotePlayer struct {
	protocol.PlayerState
	DisplayX, DisplayY float64

	hasDisplay bool
}

// Interpolator smooths remote players toward their logical positions
type Interpolator struct {
	Factor float64
	// fallback for a NaN logical position
	CenterX, CenterY float64
}

// Apply advances p's display position by one frame
func (ip Interpolator) Apply(p *RemotePlayer) {
	lx, ly := p.X, p.Y
	if math.IsNaN(lx) || math.IsNaN(ly) {
		lx, ly = ip.CenterX, ip.CenterY
	}
	if !p.hasDisplay || math.IsNaN(p.DisplayX) || math.IsNaN(p.DisplayY) {
		p.DisplayX, p.DisplayY = lx, ly
		p.hasDisplay = true
		return
	}
	p.DisplayX += (lx - p.DisplayX) * ip.Factor
	p.DisplayY += (ly - p.DisplayY) * ip.Factor
}

// Package client mirrors the server's world on the client side: local
// prediction with reconciliation, and smoothing for everyone else.
package client

import (
	"math"

	"foodarena/world"
)

const (
	// DefaultCorrection is the fraction of the prediction error removed per tick
	DefaultCorrection = 0.6
	// ReconcileEpsilon is the error distance at or below which prediction snaps
	ReconcileEpsilon = 0.1
)

// Bounds is what the predictor needs to replay the server's movement
type Bounds struct {
	Width, Height float64
	Speed         float64
}

// Predictor moves the local player immediately on input and pulls it toward
// server-confirmed positions.
type Predictor struct {
	bounds     Bounds
	correction float64

	x, y    float64
	pending bool
	ax, ay  float64
}

func NewPredictor(x, y float64, b Bounds) *Predictor {
	p := &Predictor{bounds: b, correction: DefaultCorrection, x: x, y: y}
	p.guard()
	return p
}

func (p *Predictor) Position() (float64, float64) {
	return p.x, p.y
}

// Confirm records an authoritative position. It is applied on the next Tick.
func (p *Predictor) Confirm(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	p.pending = true
	p.ax, p.ay = x, y
}

// Pending reports whether a confirmed position is still being reconciled
func (p *Predictor) Pending() bool {
	return p.pending
}

// Tick reconciles toward the last confirmed position, then predicts one
// step of movement for in.
func (p *Predictor) Tick(in world.Input) (float64, float64) {
	p.reconcile()
	p.x, p.y = world.Step(p.x, p.y, in, p.bounds.Speed, p.bounds.Width, p.bounds.Height)
	p.guard()
	return p.x, p.y
}

func (p *Predictor) reconcile() {
	if !p.pending {
		return
	}
	dx, dy := p.ax-p.x, p.ay-p.y
	if math.Hypot(dx, dy) > ReconcileEpsilon {
		p.x += dx * p.correction
		p.y += dy * p.correction
		return
	}
	p.x, p.y = p.ax, p.ay
	p.pending = false
}

// guard replaces a NaN position with the world centre
func (p *Predictor) guard() {
	if math.IsNaN(p.x) || math.IsNaN(p.y) {
		p.x, p.y = p.bounds.Width/2, p.bounds.Height/2
	}
}

package world

import (
	"fmt"
	"math"
	"time"
)

// Config holds the immutable parameters of one world
type Config struct {
	Width  float64
	Height float64

	TickPeriod time.Duration
	Speed      float64 // world units per tick per axis

	CanvasWidth    float64
	CanvasHeight   float64
	ViewportWidth  float64 // interest region, canvas plus margin
	ViewportHeight float64

	InitialFood     int
	MaxNameLen      int
	DefaultName     string
	LeaderboardSize int
}

// DefaultConfig mirrors the shipped defaults.yaml
func DefaultConfig() Config {
	return Config{
		Width:           120,
		Height:          120,
		TickPeriod:      50 * time.Millisecond,
		Speed:           1,
		CanvasWidth:     40,
		CanvasHeight:    40,
		ViewportWidth:   60,
		ViewportHeight:  60,
		InitialFood:     40,
		MaxNameLen:      15,
		DefaultName:     "Anonymous",
		LeaderboardSize: 10,
	}
}

// CellSize is the spatial grid cell edge: the larger viewport dimension
func (c Config) CellSize() float64 {
	return math.Max(c.ViewportWidth, c.ViewportHeight)
}

// Validate checks that the config describes a usable world
func (c Config) Validate() error {
	switch {
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("world size must be at least 1x1, got %vx%v", c.Width, c.Height)
	case c.TickPeriod <= 0:
		return fmt.Errorf("tick period must be positive, got %v", c.TickPeriod)
	case c.Speed <= 0:
		return fmt.Errorf("speed must be positive, got %v", c.Speed)
	case c.ViewportWidth <= 0 || c.ViewportHeight <= 0:
		return fmt.Errorf("viewport must be positive, got %vx%v", c.ViewportWidth, c.ViewportHeight)
	case c.InitialFood < 0:
		return fmt.Errorf("initial food must not be negative, got %d", c.InitialFood)
	case c.MaxNameLen < 1:
		return fmt.Errorf("max name length must be positive, got %d", c.MaxNameLen)
	case c.LeaderboardSize < 1:
		return fmt.Errorf("leaderboard size must be positive, got %d", c.LeaderboardSize)
	}
	return nil
}

package world

import (
	"strings"
	"unicode/utf8"

	"foodarena/spatial"
)

// Player is one connected participant. Only the World mutates it.
type Player struct {
	ID    string
	Name  string
	X, Y  float64
	Color string
	Input Input
	Score int

	cell spatial.Key
}

func (p *Player) Position() (float64, float64) { return p.X, p.Y }
func (p *Player) CellKey() spatial.Key         { return p.cell }
func (p *Player) SetCellKey(k spatial.Key)     { p.cell = k }

// View returns a value copy safe to hand outside the simulation goroutine
func (p *Player) View() PlayerView {
	return PlayerView{ID: p.ID, Name: p.Name, X: p.X, Y: p.Y, Color: p.Color, Score: p.Score}
}

// PlayerView is an immutable snapshot of a player
type PlayerView struct {
	ID    string
	Name  string
	X, Y  float64
	Color string
	Score int
}

// Food is a consumable pellet at an integer-aligned position
type Food struct {
	ID    string
	X, Y  float64
	Color string

	seq  uint64
	cell spatial.Key
}

func (f *Food) Position() (float64, float64) { return f.X, f.Y }
func (f *Food) CellKey() spatial.Key         { return f.cell }
func (f *Food) SetCellKey(k spatial.Key)     { f.cell = k }

func (f *Food) View() FoodView {
	return FoodView{ID: f.ID, X: f.X, Y: f.Y, Color: f.Color}
}

// FoodView is an immutable snapshot of a food item
type FoodView struct {
	ID    string
	X, Y  float64
	Color string
}

// SanitizeName trims name, cuts it to maxLen runes and falls back to
// fallback when nothing is left.
func SanitizeName(name string, maxLen int, fallback string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxLen {
		name = strings.TrimSpace(string([]rune(name)[:maxLen]))
	}
	if name == "" {
		return fallback
	}
	return name
}

package world

import (
	"cmp"
	"slices"
)

// Standing is one leaderboard row
type Standing struct {
	ID    string
	Name  string
	Score int
	X, Y  float64
}

// Leaderboard returns the n highest scores. Equal scores keep join order.
func (w *World) Leaderboard(n int) []Standing {
	rows := make([]Standing, 0, len(w.roster))
	for _, p := range w.roster {
		rows = append(rows, Standing{ID: p.ID, Name: p.Name, Score: p.Score, X: p.X, Y: p.Y})
	}
	slices.SortStableFunc(rows, func(a, b Standing) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

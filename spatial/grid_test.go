package spatial

import "testing"

type point struct {
	id   string
	x, y float64
	key  Key
}

func (p *point) Position() (float64, float64) { return p.x, p.y }
func (p *point) CellKey() Key                 { return p.key }
func (p *point) SetCellKey(k Key)             { p.key = k }

func hasEntity(list []Entity, e Entity) bool {
	for _, got := range list {
		if got == e {
			return true
		}
	}
	return false
}

func TestGridKeyFor(t *testing.T) {
	g := NewGrid(60)
	cases := []struct {
		x, y float64
		want string
	}{
		{0, 0, "0:0"},
		{59.9, 59.9, "0:0"},
		{60, 0, "1:0"},
		{119, 61, "1:1"},
		{-0.5, -61, "-1:-2"},
	}
	for _, c := range cases {
		if got := g.KeyFor(c.x, c.y).String(); got != c.want {
			t.Errorf("KeyFor(%v, %v) = %s, want %s", c.x, c.y, got, c.want)
		}
	}
}

func TestGridInsertAndNeighbors(t *testing.T) {
	g := NewGrid(60)
	near := &point{id: "near", x: 10, y: 10}
	adjacent := &point{id: "adj", x: 70, y: 70}
	far := &point{id: "far", x: 200, y: 200}
	g.Insert(near)
	g.Insert(adjacent)
	g.Insert(far)

	results := g.Neighbors(30, 30)
	if !hasEntity(results, near) {
		t.Error("expected entity in same cell")
	}
	if !hasEntity(results, adjacent) {
		t.Error("expected entity in diagonal neighbour cell")
	}
	if hasEntity(results, far) {
		t.Error("entity three cells away should not be returned")
	}
	if g.Count() != 3 {
		t.Errorf("expected 3 entities, got %d", g.Count())
	}
}

func TestGridNeighborsCoverFullBlock(t *testing.T) {
	g := NewGrid(10)
	var pts []*point
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			p := &point{x: 55 + float64(dx)*10, y: 55 + float64(dy)*10}
			pts = append(pts, p)
			g.Insert(p)
		}
	}
	results := g.Neighbors(55, 55)
	if len(results) != 9 {
		t.Fatalf("expected 9 neighbours, got %d", len(results))
	}
	for _, p := range pts {
		if !hasEntity(results, p) {
			t.Errorf("missing entity at (%v, %v)", p.x, p.y)
		}
	}
}

func TestGridRelocate(t *testing.T) {
	g := NewGrid(60)
	p := &point{x: 10, y: 10}
	g.Insert(p)

	p.x = 20
	if g.Relocate(p) {
		t.Error("relocate within the same cell should be a no-op")
	}
	if g.Cells() != 1 {
		t.Errorf("expected 1 cell, got %d", g.Cells())
	}

	p.x = 70
	if !g.Relocate(p) {
		t.Error("relocate across a cell boundary should report a move")
	}
	if p.key != (Key{1, 0}) {
		t.Errorf("expected key 1:0, got %s", p.key)
	}
	if g.CellLen(Key{0, 0}) != 0 {
		t.Error("old cell should be empty")
	}
	if g.Cells() != 1 {
		t.Errorf("empty cell should be pruned, got %d cells", g.Cells())
	}
	if g.Count() != 1 {
		t.Errorf("expected count 1, got %d", g.Count())
	}
}

func TestGridRemovePrunesAndIgnoresUnknown(t *testing.T) {
	g := NewGrid(60)
	a := &point{x: 1, y: 1}
	b := &point{x: 2, y: 2}
	g.Insert(a)
	g.Insert(b)

	g.Remove(a)
	if g.Contains(a) {
		t.Error("removed entity still indexed")
	}
	if g.CellLen(Key{0, 0}) != 1 {
		t.Errorf("expected 1 entity left in cell, got %d", g.CellLen(Key{0, 0}))
	}

	// Removing twice, or removing something never inserted, is harmless.
	g.Remove(a)
	g.Remove(&point{x: 500, y: 500})
	if g.Count() != 1 {
		t.Errorf("expected count 1, got %d", g.Count())
	}

	g.Remove(b)
	if g.Cells() != 0 {
		t.Errorf("expected no cells after removing everything, got %d", g.Cells())
	}
}

func TestGridInsertTwiceDoesNotDuplicate(t *testing.T) {
	g := NewGrid(60)
	p := &point{x: 5, y: 5}
	g.Insert(p)
	g.Insert(p)
	if got := len(g.Neighbors(5, 5)); got != 1 {
		t.Errorf("expected entity once, got %d", got)
	}
	if g.Count() != 1 {
		t.Errorf("expected count 1, got %d", g.Count())
	}
}

func TestGridQueryKeepsInsertionOrder(t *testing.T) {
	g := NewGrid(60)
	a := &point{id: "a", x: 1, y: 1}
	b := &point{id: "b", x: 2, y: 2}
	c := &point{id: "c", x: 3, y: 3}
	g.Insert(a)
	g.Insert(b)
	g.Insert(c)
	g.Remove(a)

	got := g.Neighbors(1, 1)
	if len(got) != 2 || got[0] != b || got[1] != c {
		t.Errorf("expected [b c], got %v", got)
	}
}

func TestGridRemoveAnyPositionKeepsOrder(t *testing.T) {
	g := NewGrid(60)
	pts := make([]*point, 5)
	for i := range pts {
		pts[i] = &point{id: string(rune('a' + i)), x: float64(i), y: 1}
		g.Insert(pts[i])
	}
	g.Remove(pts[0]) // head
	g.Remove(pts[2]) // middle
	g.Remove(pts[4]) // tail
	g.Insert(pts[0]) // re-added at the back

	want := []*point{pts[1], pts[3], pts[0]}
	got := g.Neighbors(0, 0)
	if len(got) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i].id, got[i].(*point).id)
		}
	}
	if n := g.CellLen(Key{}); n != 3 {
		t.Errorf("expected cell length 3, got %d", n)
	}

	for _, p := range want {
		g.Remove(p)
	}
	if g.Cells() != 0 || g.Count() != 0 {
		t.Errorf("expected empty grid, got %d cells %d entities", g.Cells(), g.Count())
	}
}

func TestGridEachReportsStoredKeys(t *testing.T) {
	g := NewGrid(60)
	pts := []*point{{x: 0, y: 0}, {x: 61, y: 0}, {x: 0, y: 130}}
	for _, p := range pts {
		g.Insert(p)
	}
	seen := 0
	g.Each(func(k Key, e Entity) {
		seen++
		if k != g.KeyFor(e.Position()) {
			t.Errorf("entity stored under %s but sits in %s", k, g.KeyFor(e.Position()))
		}
	})
	if seen != len(pts) {
		t.Errorf("expected %d entities, got %d", len(pts), seen)
	}
}

package spatial

import (
	"fmt"
	"math"
)

// Key identifies a grid cell
type Key struct {
	CX, CY int
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.CX, k.CY)
}

// Entity is anything the grid can index. The grid stores the entity's
// current cell through SetCellKey so removal never has to search.
type Entity interface {
	Position() (x, y float64)
	CellKey() Key
	SetCellKey(k Key)
}

// cell keeps members in insertion order as a doubly linked list, indexed
// by entity so add and remove are O(1).
type cell struct {
	head, tail *node
	index      map[Entity]*node
}

type node struct {
	e          Entity
	prev, next *node
}

func newCell() *cell {
	return &cell{index: make(map[Entity]*node)}
}

func (c *cell) len() int {
	return len(c.index)
}

func (c *cell) add(e Entity) {
	if _, ok := c.index[e]; ok {
		return
	}
	n := &node{e: e, prev: c.tail}
	if c.tail != nil {
		c.tail.next = n
	} else {
		c.head = n
	}
	c.tail = n
	c.index[e] = n
}

func (c *cell) remove(e Entity) bool {
	n, ok := c.index[e]
	if !ok {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	delete(c.index, e)
	return true
}

// appendTo appends the members in insertion order
func (c *cell) appendTo(out []Entity) []Entity {
	for n := c.head; n != nil; n = n.next {
		out = append(out, n.e)
	}
	return out
}

// Grid is an unbounded uniform hash grid. Only non-empty cells are stored.
type Grid struct {
	cellSize float64
	cells    map[Key]*cell
	count    int
}

// NewGrid creates a grid with square cells of the given size
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		panic("spatial: cell size must be positive")
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[Key]*cell),
	}
}

// CellSize returns the edge length of a cell
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// KeyFor returns the key of the cell containing (x, y)
func (g *Grid) KeyFor(x, y float64) Key {
	return Key{
		CX: int(math.Floor(x / g.cellSize)),
		CY: int(math.Floor(y / g.cellSize)),
	}
}

// Insert indexes e under the cell of its current position. Inserting an
// entity that is already indexed relocates it instead.
func (g *Grid) Insert(e Entity) {
	if g.Contains(e) {
		g.Relocate(e)
		return
	}
	k := g.KeyFor(e.Position())
	c, ok := g.cells[k]
	if !ok {
		c = newCell()
		g.cells[k] = c
	}
	c.add(e)
	e.SetCellKey(k)
	g.count++
}

// Remove drops e from the grid. No-op if e is not indexed.
func (g *Grid) Remove(e Entity) {
	k := e.CellKey()
	c, ok := g.cells[k]
	if !ok || !c.remove(e) {
		return
	}
	if c.len() == 0 {
		delete(g.cells, k)
	}
	g.count--
}

// Relocate moves e to the cell of its current position and reports
// whether the cell changed.
func (g *Grid) Relocate(e Entity) bool {
	k := g.KeyFor(e.Position())
	if k == e.CellKey() && g.Contains(e) {
		return false
	}
	g.Remove(e)
	c, ok := g.cells[k]
	if !ok {
		c = newCell()
		g.cells[k] = c
	}
	c.add(e)
	e.SetCellKey(k)
	g.count++
	return true
}

// Contains reports whether e is indexed under its recorded cell
func (g *Grid) Contains(e Entity) bool {
	c, ok := g.cells[e.CellKey()]
	if !ok {
		return false
	}
	_, ok = c.index[e]
	return ok
}

// Neighbors returns every entity in the 3x3 block of cells centred on the
// cell containing (x, y).
func (g *Grid) Neighbors(x, y float64) []Entity {
	return g.NeighborsWithin(x, y, 1)
}

// NeighborsWithin returns every entity within radius cells (Chebyshev) of
// the cell containing (x, y). Cells are visited column by column.
func (g *Grid) NeighborsWithin(x, y float64, radius int) []Entity {
	center := g.KeyFor(x, y)
	var out []Entity
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			c, ok := g.cells[Key{CX: center.CX + dx, CY: center.CY + dy}]
			if !ok {
				continue
			}
			out = c.appendTo(out)
		}
	}
	return out
}

// CellLen returns the number of entities in cell k
func (g *Grid) CellLen(k Key) int {
	if c, ok := g.cells[k]; ok {
		return c.len()
	}
	return 0
}

// Cells returns the number of non-empty cells
func (g *Grid) Cells() int {
	return len(g.cells)
}

// Count returns the number of indexed entities
func (g *Grid) Count() int {
	return g.count
}

// Each calls fn for every indexed entity with the key it is stored under
func (g *Grid) Each(fn func(k Key, e Entity)) {
	for k, c := range g.cells {
		for n := c.head; n != nil; n = n.next {
			fn(k, n.e)
		}
	}
}

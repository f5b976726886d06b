package engine

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrOutOfBounds  = errors.New("coordinate out of bounds")
	ErrInvalidLevel = errors.New("invalid tile level")
)

// Board is a fixed-size grid of tile levels stored as a flat slice indexed by x + y*width.
// Row 0 is the bottom; gravity pulls toward it.
type Board struct {
	width   int
	height  int
	cells   []int
	highest int
}

// NewBoard allocates an empty board. Non-positive dimensions are a programming error.
func NewBoard(width, height int) *Board {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("engine: invalid board size %dx%d", width, height))
	}
	return &Board{
		width:   width,
		height:  height,
		cells:   make([]int, width*height),
		highest: InitialHighest,
	}
}

// Width returns the number of columns
func (b *Board) Width() int { return b.width }

// Height returns the number of rows
func (b *Board) Height() int { return b.height }

// Highest returns the highest level this board has produced (at least InitialHighest)
func (b *Board) Highest() int { return b.highest }

func (b *Board) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Board) index(x, y int) int {
	if !b.inBounds(x, y) {
		panic(fmt.Sprintf("engine: %v (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height))
	}
	return x + y*b.width
}

// Get returns the level at (x, y). Out-of-range coordinates panic.
func (b *Board) Get(x, y int) int {
	return b.cells[b.index(x, y)]
}

// Set writes a level at (x, y). Out-of-range coordinates panic.
func (b *Board) Set(x, y, value int) {
	b.cells[b.index(x, y)] = value
}

// Lookup is the checked variant of Get for coordinates coming from outside the engine
func (b *Board) Lookup(x, y int) (int, error) {
	if !b.inBounds(x, y) {
		return 0, fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height)
	}
	return b.cells[x+y*b.width], nil
}

// Store is the checked variant of Set for coordinates and levels coming from outside the engine
func (b *Board) Store(x, y, value int) error {
	if !b.inBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d board", ErrOutOfBounds, x, y, b.width, b.height)
	}
	if value < Empty || value > MaxLevel {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidLevel, value, Empty, MaxLevel)
	}
	b.cells[x+y*b.width] = value
	return nil
}

// ApplyGravity compacts every column toward row 0, keeping the vertical order of tiles
func (b *Board) ApplyGravity() {
	for x := 0; x < b.width; x++ {
		free := 0
		for y := 0; y < b.height; y++ {
			value := b.cells[x+y*b.width]
			if value == Empty {
				continue
			}
			if y != free {
				b.cells[x+y*b.width] = Empty
				b.cells[x+free*b.width] = value
			}
			free++
		}
	}
}

// neighbors appends the in-grid 4-neighbours of (x, y) to dst
func (b *Board) neighbors(dst []Position, x, y int) []Position {
	if x > 0 {
		dst = append(dst, Position{x - 1, y})
	}
	if x+1 < b.width {
		dst = append(dst, Position{x + 1, y})
	}
	if y > 0 {
		dst = append(dst, Position{x, y - 1})
	}
	if y+1 < b.height {
		dst = append(dst, Position{x, y + 1})
	}
	return dst
}

// FindGroups returns every maximal component of at least two connected cells sharing a level.
// Isolated tiles are not reported. Each group is sorted by (row, col).
func (b *Board) FindGroups() []Group {
	var groups []Group
	seen := make([]bool, len(b.cells))
	stack := make([]Position, 0, len(b.cells))
	adj := make([]Position, 0, 4)

	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			start := x + y*b.width
			level := b.cells[start]
			if level == Empty || seen[start] {
				continue
			}

			seen[start] = true
			stack = append(stack[:0], Position{x, y})
			var group Group
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				group = append(group, p)

				adj = b.neighbors(adj[:0], p.X, p.Y)
				for _, n := range adj {
					i := n.X + n.Y*b.width
					if seen[i] || b.cells[i] != level {
						continue
					}
					seen[i] = true
					stack = append(stack, n)
				}
			}

			if len(group) < 2 {
				continue
			}
			slices.SortFunc(group, func(a, c Position) int {
				switch {
				case a.Less(c):
					return -1
				case c.Less(a):
					return 1
				}
				return 0
			})
			groups = append(groups, group)
		}
	}
	return groups
}

// TransformMatches merges every group of MinMergeSize or more cells into one tile of the next
// level, written at the group's lowest row (lowest column on ties). It returns the number of
// groups merged. Gravity is not applied.
func (b *Board) TransformMatches() int {
	merges := 0
	for _, group := range b.FindGroups() {
		if len(group) < MinMergeSize {
			continue
		}
		anchor := group.Anchor()
		value := b.cells[anchor.X+anchor.Y*b.width]
		for _, p := range group {
			b.cells[p.X+p.Y*b.width] = Empty
		}
		b.cells[anchor.X+anchor.Y*b.width] = value + 1

		// highest climbs one step at a time, even when a merge jumps further
		if value+1 > b.highest {
			b.highest++
		}
		merges++
	}
	return merges
}

// Evolve alternates gravity and merging until a pass merges nothing.
// Every merge removes at least two tiles, so the loop is bounded by the tile count.
func (b *Board) Evolve() EvolveStats {
	var stats EvolveStats
	for {
		b.ApplyGravity()
		merged := b.TransformMatches()
		stats.Passes++
		if merged == 0 {
			return stats
		}
		stats.Merges += merged
	}
}

// RandomValue draws a level uniformly from [1, highest]
func (b *Board) RandomValue(r Random) int {
	return IntRange(r, 1, b.highest)
}

// Clone returns an independent deep copy
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	clone := *b
	clone.cells = slices.Clone(b.cells)
	return &clone
}

// Equal reports whether both boards have the same dimensions, cells and highest level
func (b *Board) Equal(other *Board) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.width == other.width &&
		b.height == other.height &&
		b.highest == other.highest &&
		slices.Equal(b.cells, other.cells)
}

// SameCells reports whether both boards hold the same tiles, ignoring highest
func (b *Board) SameCells(other *Board) bool {
	return b.width == other.width && b.height == other.height && slices.Equal(b.cells, other.cells)
}

// TileCount returns the number of non-empty cells
func (b *Board) TileCount() int {
	count := 0
	for _, v := range b.cells {
		if v != Empty {
			count++
		}
	}
	return count
}

// MaxLevel returns the highest level currently on the board
func (b *Board) MaxLevel() int {
	return slices.Max(b.cells)
}

// IsStable reports whether no group is large enough to merge
func (b *Board) IsStable() bool {
	for _, g := range b.FindGroups() {
		if len(g) >= MinMergeSize {
			return false
		}
	}
	return true
}

// Levels returns a copy of the cells in storage order (x + y*width)
func (b *Board) Levels() []int {
	return slices.Clone(b.cells)
}

package engine

import "fmt"

const (
	// Board dimension limits
	MinBoardSize  = 2
	MaxBoardSize  = 32
	DefaultWidth  = 10
	DefaultHeight = 10

	// Empty is the level of a cell without a tile
	Empty = 0

	// InitialHighest is the highest level a fresh board can draw
	InitialHighest = 2

	// MinMergeSize is the smallest group that merges into a single tile
	MinMergeSize = 3

	// MaxLevel is the highest level the text format can represent (1-9, then a-z)
	MaxLevel = 35
)

// Position represents a cell coordinate. X is the column, Y the row; row 0 is the bottom.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Less orders positions by row first, then column
func (p Position) Less(o Position) bool {
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.X < o.X
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Group is a maximal set of connected cells sharing one level, sorted by (row, col)
type Group []Position

// Anchor returns the cell that receives the merged tile
func (g Group) Anchor() Position {
	return g[0]
}

// Pair holds the two levels waiting to be placed
type Pair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// Move is a placement choice: the column of the first cell and the orientation
type Move struct {
	Column      int         `json:"column"`
	Orientation Orientation `json:"orientation"`
}

func (m Move) String() string {
	return fmt.Sprintf("%d/%s", m.Column, m.Orientation)
}

// Placement is a single cell write performed by a move
type Placement struct {
	Pos   Position `json:"pos"`
	Value int      `json:"value"`
}

// EvolveStats summarises one stabilisation of the board
type EvolveStats struct {
	Passes int `json:"passes"`
	Merges int `json:"merges"`
}

// GameState is a JSON-friendly snapshot of a game
type GameState struct {
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Rows        []string `json:"rows"`
	Highest     int      `json:"highest"`
	Current     Pair     `json:"current"`
	Turn        int      `json:"turn"`
	TileCount   int      `json:"tile_count"`
	MaxLevel    int      `json:"max_level"`
	GameOver    bool     `json:"game_over"`
	Message     string   `json:"message"`
	ConfigName  string   `json:"config_name,omitempty"`
	TotalMerges int      `json:"total_merges"`
}

// MoveHistoryEntry represents a single play in the game history
type MoveHistoryEntry struct {
	Turn      int   `json:"turn"`
	Move      Move  `json:"move"`
	Pair      Pair  `json:"pair"`
	Merges    int   `json:"merges"`
	Success   bool  `json:"success"`
	Timestamp int64 `json:"timestamp"`
}

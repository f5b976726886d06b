package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGameOver           = errors.New("move rejected: game over")
	ErrInvalidMove        = errors.New("invalid move")
	ErrInvalidOrientation = errors.New("invalid orientation")
)

// Orientation is the shape and order in which the current pair is written
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
	RevHorizontal
	RevVertical
)

var orientationNames = [...]string{
	Horizontal:    "horizontal",
	Vertical:      "vertical",
	RevHorizontal: "rev_horizontal",
	RevVertical:   "rev_vertical",
}

// Orientations lists every orientation
func Orientations() []Orientation {
	return []Orientation{Horizontal, Vertical, RevHorizontal, RevVertical}
}

func (o Orientation) String() string {
	if o.Valid() {
		return orientationNames[o]
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// Valid reports whether o is one of the four orientations
func (o Orientation) Valid() bool {
	return o >= Horizontal && o <= RevVertical
}

// IsHorizontal reports whether the pair lies on one row
func (o Orientation) IsHorizontal() bool {
	return o == Horizontal || o == RevHorizontal
}

// IsReversed reports whether the second value of the pair is written first
func (o Orientation) IsReversed() bool {
	return o == RevHorizontal || o == RevVertical
}

// MarshalText implements encoding.TextMarshaler
func (o Orientation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOrientation, int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOrientation accepts the orientation names plus the short forms h, v, rh and rv
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	case "rev_horizontal", "revhorizontal", "rh":
		return RevHorizontal, nil
	case "rev_vertical", "revvertical", "rv":
		return RevVertical, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
}

// Placements maps an orientation and the current pair to the cells it writes.
// The first placement is always at (column, lastRow).
func Placements(o Orientation, column, lastRow int, pair Pair) []Placement {
	first, second := pair.First, pair.Second
	if o.IsReversed() {
		first, second = second, first
	}
	if o.IsHorizontal() {
		return []Placement{
			{Pos: Position{column, lastRow}, Value: first},
			{Pos: Position{column + 1, lastRow}, Value: second},
		}
	}
	return []Placement{
		{Pos: Position{column, lastRow}, Value: first},
		{Pos: Position{column, lastRow - 1}, Value: second},
	}
}

// ValidateMove checks that a move fits a board of the given size
func ValidateMove(m Move, width, height int) error {
	if !m.Orientation.Valid() {
		return fmt.Errorf("%w: %w: %d", ErrInvalidMove, ErrInvalidOrientation, int(m.Orientation))
	}
	maxColumn := width - 1
	if m.Orientation.IsHorizontal() {
		maxColumn = width - 2
	} else if height < 2 {
		return fmt.Errorf("%w: vertical placement needs at least 2 rows", ErrInvalidMove)
	}
	if m.Column < 0 || m.Column > maxColumn {
		return fmt.Errorf("%w: column %d out of range [0, %d] for %s", ErrInvalidMove, m.Column, maxColumn, m.Orientation)
	}
	return nil
}

// place writes the pair onto the top row of b, or leaves b untouched and
// returns ErrGameOver when any target cell is occupied.
func place(b *Board, m Move, pair Pair) error {
	writes := Placements(m.Orientation, m.Column, b.height-1, pair)
	for _, w := range writes {
		if b.Get(w.Pos.X, w.Pos.Y) != Empty {
			return fmt.Errorf("%w: cell %v is occupied", ErrGameOver, w.Pos)
		}
	}
	for _, w := range writes {
		b.Set(w.Pos.X, w.Pos.Y, w.Value)
	}
	return nil
}

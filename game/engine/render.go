package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyLayout      = errors.New("layout is empty")
	ErrInconsistentRows = errors.New("layout rows have different lengths")
	ErrInvalidCharacter = errors.New("layout contains an invalid character")
)

// LevelChar returns the single-character label of a level: blank for empty,
// digits for 1-9, letters from 'a' for 10 and above.
func LevelChar(level int) byte {
	switch {
	case level == Empty:
		return ' '
	case level < 10:
		return byte('0' + level)
	case level <= MaxLevel:
		return byte('a' + level - 10)
	default:
		return '+'
	}
}

// String draws the board inside a frame, highest row first
func (b *Board) String() string {
	var sb strings.Builder
	border := strings.Repeat("-", b.width+2)

	sb.WriteString(border)
	sb.WriteByte('\n')
	for y := b.height - 1; y >= 0; y-- {
		sb.WriteByte('|')
		for x := 0; x < b.width; x++ {
			sb.WriteByte(LevelChar(b.cells[x+y*b.width]))
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	sb.WriteByte('\n')
	return sb.String()
}

// Rows returns the board as text lines, top row first, with '0' for empty cells.
// Levels 1-9 round-trip through ParseBoard; higher levels are written as letters.
func (b *Board) Rows() []string {
	rows := make([]string, 0, b.height)
	line := make([]byte, b.width)
	for y := b.height - 1; y >= 0; y-- {
		for x := 0; x < b.width; x++ {
			c := LevelChar(b.cells[x+y*b.width])
			if c == ' ' {
				c = '0'
			}
			line[x] = c
		}
		rows = append(rows, string(line))
	}
	return rows
}

// ParseBoard builds a board from lines of digits. The last line is row 0.
// Blank lines and surrounding whitespace are ignored. The board's highest level
// is the larger of InitialHighest and the largest digit present.
func ParseBoard(text string) (*Board, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			rows = append(rows, line)
		}
	}
	return ParseRows(rows)
}

// ParseRows is ParseBoard for input already split into lines, top row first
func ParseRows(rows []string) (*Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyLayout
	}

	width, height := len(rows[0]), len(rows)
	b := NewBoard(width, height)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInconsistentRows, i+1, len(row), width)
		}
		y := height - 1 - i
		for x := 0; x < width; x++ {
			ch := row[x]
			if ch < '0' || ch > '9' {
				return nil, fmt.Errorf("%w: '%c' at row %d, col %d", ErrInvalidCharacter, ch, i+1, x+1)
			}
			level := int(ch - '0')
			b.cells[x+y*width] = level
			if level > b.highest {
				b.highest = level
			}
		}
	}
	return b, nil
}

// MustParseBoard is ParseBoard for fixtures known to be valid
func MustParseBoard(text string) *Board {
	b, err := ParseBoard(text)
	if err != nil {
		panic(err)
	}
	return b
}

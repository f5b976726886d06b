package engine

import (
	"fmt"
	"time"
)

// Game owns a board and the pair of tiles waiting to be placed
type Game struct {
	board   *Board
	current Pair
	rng     Random

	configName  string
	turn        int
	totalMerges int
	over        bool
	message     string

	history    []MoveHistoryEntry
	recordMove bool
}

// NewGame creates a game on an empty board and draws the first pair
func NewGame(width, height int, rng Random) *Game {
	return NewGameFromBoard(NewBoard(width, height), rng)
}

// NewGameFromBoard starts a game on an existing board, which the game takes ownership of
func NewGameFromBoard(b *Board, rng Random) *Game {
	if rng == nil {
		rng = NewRandom()
	}
	g := &Game{
		board:      b,
		rng:        rng,
		history:    []MoveHistoryEntry{},
		recordMove: true,
		message:    "Place the pair",
	}
	g.current = g.drawPair()
	return g
}

// NewGameFromConfig builds the starting board described by config and starts a game on it
func NewGameFromConfig(config *GameConfig, rng Random) (*Game, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	b, err := config.NewBoard()
	if err != nil {
		return nil, err
	}
	g := NewGameFromBoard(b, rng)
	g.configName = config.Name
	return g, nil
}

func (g *Game) drawPair() Pair {
	return Pair{
		First:  g.board.RandomValue(g.rng),
		Second: g.board.RandomValue(g.rng),
	}
}

// Board returns the live board. Callers must treat it as read-only.
func (g *Game) Board() *Board {
	return g.board
}

// Current returns the pair waiting to be placed
func (g *Game) Current() Pair {
	return g.current
}

// Turn returns the number of successful plays
func (g *Game) Turn() int {
	return g.turn
}

// TotalMerges returns the number of merges produced by all plays
func (g *Game) TotalMerges() int {
	return g.totalMerges
}

// IsGameOver reports whether the most recent play was rejected
func (g *Game) IsGameOver() bool {
	return g.over
}

// Message returns a human-readable description of the last play
func (g *Game) Message() string {
	return g.message
}

// ConfigName returns the name of the configuration the game was built from, if any
func (g *Game) ConfigName() string {
	return g.configName
}

// PlayMove is Play for a Move value
func (g *Game) PlayMove(m Move) error {
	return g.Play(m.Column, m.Orientation)
}

// Play places the current pair on the top row(s), stabilises the board and draws a new pair.
// A move that does not fit the board returns ErrInvalidMove. A move that lands on an occupied
// cell returns ErrGameOver and leaves the board and the current pair unchanged.
func (g *Game) Play(column int, o Orientation) error {
	m := Move{Column: column, Orientation: o}
	if err := ValidateMove(m, g.board.width, g.board.height); err != nil {
		return err
	}

	pair := g.current
	if err := place(g.board, m, pair); err != nil {
		g.over = true
		g.message = fmt.Sprintf("Game over: %s blocked (%v)", m, err)
		g.record(m, pair, 0, false)
		return err
	}

	stats := g.board.Evolve()
	g.current = g.drawPair()
	g.turn++
	g.totalMerges += stats.Merges
	g.over = false
	if stats.Merges > 0 {
		g.message = fmt.Sprintf("Played %s: %d merge(s)", m, stats.Merges)
	} else {
		g.message = fmt.Sprintf("Played %s", m)
	}
	g.record(m, pair, stats.Merges, true)
	return nil
}

func (g *Game) record(m Move, pair Pair, merges int, success bool) {
	if !g.recordMove {
		return
	}
	g.history = append(g.history, MoveHistoryEntry{
		Turn:      g.turn,
		Move:      m,
		Pair:      pair,
		Merges:    merges,
		Success:   success,
		Timestamp: time.Now().Unix(),
	})
}

// Clone returns an independent copy for simulation. The copy has its own board,
// does not record history and draws new pairs from a fixed source, so playing it
// never affects the original game or its random stream.
func (g *Game) Clone() *Game {
	return &Game{
		board:       g.board.Clone(),
		current:     g.current,
		rng:         frozenRandom{},
		configName:  g.configName,
		turn:        g.turn,
		totalMerges: g.totalMerges,
		over:        g.over,
		message:     g.message,
	}
}

// MoveHistory returns every play attempted, including rejected ones
func (g *Game) MoveHistory() []MoveHistoryEntry {
	return g.history
}

// LastMove returns the last play made, or nil if none
func (g *Game) LastMove() *MoveHistoryEntry {
	if len(g.history) == 0 {
		return nil
	}
	return &g.history[len(g.history)-1]
}

// State returns a snapshot of the game
func (g *Game) State() *GameState {
	return &GameState{
		Width:       g.board.width,
		Height:      g.board.height,
		Rows:        g.board.Rows(),
		Highest:     g.board.highest,
		Current:     g.current,
		Turn:        g.turn,
		TileCount:   g.board.TileCount(),
		MaxLevel:    g.board.MaxLevel(),
		GameOver:    g.over,
		Message:     g.message,
		ConfigName:  g.configName,
		TotalMerges: g.totalMerges,
	}
}

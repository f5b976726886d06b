package bot

import (
	"context"
	"errors"
	"math/big"
	"slices"
	"testing"

	"github.com/zyedidia/generic/mapset"

	"github.com/wricardo/merge-drop-game/game/engine"
)

// zeroRandom always draws level 1 and keeps candidate order
type zeroRandom struct{}

func (zeroRandom) IntN(int) int                 { return 0 }
func (zeroRandom) Shuffle(int, func(i, j int)) {}

func newTestGame(layout string) *engine.Game {
	return engine.NewGameFromBoard(engine.MustParseBoard(layout), zeroRandom{})
}

func TestAvailableMoves(t *testing.T) {
	moves := AvailableMoves(10)
	if len(moves) != 38 {
		t.Fatalf("Expected 38 moves, got %d", len(moves))
	}

	checks := map[int]engine.Move{
		0:  {Column: 0, Orientation: engine.Horizontal},
		8:  {Column: 8, Orientation: engine.Horizontal},
		9:  {Column: 0, Orientation: engine.RevHorizontal},
		18: {Column: 0, Orientation: engine.Vertical},
		27: {Column: 9, Orientation: engine.Vertical},
		28: {Column: 0, Orientation: engine.RevVertical},
		37: {Column: 9, Orientation: engine.RevVertical},
	}
	for i, want := range checks {
		if moves[i] != want {
			t.Errorf("Move %d: expected %v, got %v", i, want, moves[i])
		}
	}

	for _, m := range moves {
		if err := engine.ValidateMove(m, 10, 10); err != nil {
			t.Errorf("Move %v should fit a 10x10 board: %v", m, err)
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		layout string
		want   string
	}{
		{"empty cells count one", "00\n00", "4"},
		{"levels", "12", "110"},
		{"mixed", "30\n21", "1111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(engine.MustParseBoard(tt.layout))
			if got.String() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestScoreDoesNotOverflow(t *testing.T) {
	b := engine.NewBoard(1, 1)
	b.Set(0, 0, 40)

	want := new(big.Int).Exp(big.NewInt(10), big.NewInt(40), nil)
	if got := Score(b); got.Cmp(want) != 0 {
		t.Errorf("Expected 10^40, got %s", got)
	}
}

func TestBestPicksFirstMaximum(t *testing.T) {
	evals := []Evaluation{
		{Move: engine.Move{Column: 0}, Score: big.NewInt(1)},
		{Move: engine.Move{Column: 1}, Score: big.NewInt(3)},
		{Move: engine.Move{Column: 2}, Score: big.NewInt(3)},
		{Move: engine.Move{Column: 3}, Score: big.NewInt(2)},
	}
	if got := Best(evals); got.Move.Column != 1 {
		t.Errorf("Expected column 1, got %d", got.Move.Column)
	}
}

func TestBestMovePrefersMerge(t *testing.T) {
	game := newTestGame(`
		000
		000
		100
	`)
	b := New(WithRandom(zeroRandom{}))

	move := b.BestMove(game)
	if move != (engine.Move{Column: 0, Orientation: engine.Horizontal}) {
		t.Errorf("Expected first merging move 0/horizontal, got %v", move)
	}

	if err := game.PlayMove(move); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if game.Board().Get(0, 0) != 2 || game.Board().TileCount() != 1 {
		t.Errorf("Expected a single merged 2, got:\n%s", game.Board())
	}
}

func TestBestMoveAvoidsBlockedPlacements(t *testing.T) {
	game := newTestGame(`
		120
		210
		121
	`)
	b := New(WithRandom(zeroRandom{}))

	evals, err := b.Evaluate(context.Background(), game)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	failed := 0
	for _, e := range evals {
		if e.Failed {
			failed++
			if e.Score.Sign() != 0 {
				t.Errorf("Expected failed move %v to score 0, got %s", e.Move, e.Score)
			}
		}
	}
	if len(evals) != 10 || failed != 8 {
		t.Errorf("Expected 8 of 10 candidates to fail, got %d of %d", failed, len(evals))
	}

	move := b.BestMove(game)
	if move != (engine.Move{Column: 2, Orientation: engine.Vertical}) {
		t.Errorf("Expected 2/vertical, got %v", move)
	}
}

func TestBestMoveWhenEverythingIsBlocked(t *testing.T) {
	game := newTestGame(`
		12
		21
	`)
	b := New(WithRandom(zeroRandom{}))

	suggestion, err := b.Suggest(context.Background(), game)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if suggestion.Score.Sign() != 0 {
		t.Errorf("Expected zero score, got %s", suggestion.Score)
	}
	for _, e := range suggestion.Evaluations {
		if !e.Failed {
			t.Errorf("Expected %v to fail", e.Move)
		}
	}

	move := b.BestMove(game)
	if !slices.Contains(AvailableMoves(2), move) {
		t.Errorf("Expected one of the available moves, got %v", move)
	}
	if err := game.PlayMove(move); !errors.Is(err, engine.ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
}

func TestEvaluateDoesNotTouchGame(t *testing.T) {
	game := engine.NewGame(6, 6, engine.NewSeededRandom(8))
	for _, m := range []engine.Move{{Column: 0, Orientation: engine.Vertical}, {Column: 3, Orientation: engine.Horizontal}} {
		if err := game.PlayMove(m); err != nil {
			t.Fatalf("Setup move %v failed: %v", m, err)
		}
	}

	board := game.Board().Clone()
	pair := game.Current()
	history := len(game.MoveHistory())

	b := New(WithRandom(engine.NewSeededRandom(1)), WithWorkers(4))
	if _, err := b.Evaluate(context.Background(), game); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !game.Board().Equal(board) {
		t.Error("Evaluation changed the board")
	}
	if game.Current() != pair {
		t.Error("Evaluation changed the current pair")
	}
	if len(game.MoveHistory()) != history {
		t.Error("Evaluation added history entries")
	}
}

func TestEvaluateMovesParallelMatchesSequential(t *testing.T) {
	game := engine.NewGame(8, 8, engine.NewSeededRandom(17))
	b := New(WithRandom(engine.NewSeededRandom(2)))
	for i := 0; i < 12; i++ {
		if err := game.PlayMove(b.BestMove(game)); err != nil {
			t.Fatalf("Setup play %d failed: %v", i, err)
		}
	}

	moves := AvailableMoves(8)
	sequential, err := EvaluateMoves(context.Background(), game, moves, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	parallel, err := EvaluateMoves(context.Background(), game, moves, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i := range moves {
		s, p := sequential[i], parallel[i]
		if s.Move != moves[i] || p.Move != moves[i] {
			t.Fatalf("Result %d out of order: %v / %v", i, s.Move, p.Move)
		}
		if s.Score.Cmp(p.Score) != 0 || s.Failed != p.Failed || s.Merges != p.Merges {
			t.Errorf("Move %v: sequential %+v, parallel %+v", moves[i], s, p)
		}
	}
}

func TestEvaluateMovesCancelled(t *testing.T) {
	game := engine.NewGame(4, 4, engine.NewSeededRandom(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 3} {
		_, err := EvaluateMoves(ctx, game, AvailableMoves(4), workers)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Workers %d: expected context.Canceled, got %v", workers, err)
		}
	}
}

func TestShuffledTieBreak(t *testing.T) {
	// every placement on an empty board scores the same
	game := newTestGame(`
		0000
		0000
		0000
		0000
	`)
	b := New(WithRandom(engine.NewSeededRandom(99)))

	chosen := mapset.New[engine.Move]()
	for i := 0; i < 40; i++ {
		chosen.Put(b.BestMove(game))
	}
	if chosen.Size() < 2 {
		t.Errorf("Expected ties to resolve to different moves, got %d distinct", chosen.Size())
	}
}

func TestRandomStrategy(t *testing.T) {
	game := engine.NewGame(5, 5, engine.NewSeededRandom(3))
	b := New(WithStrategy(Random), WithRandom(engine.NewSeededRandom(4)))

	moves := AvailableMoves(5)
	for i := 0; i < 20; i++ {
		if m := b.Choose(game); !slices.Contains(moves, m) {
			t.Fatalf("Random move %v is not available", m)
		}
	}

	suggestion, err := b.Suggest(context.Background(), game)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(suggestion.Evaluations) != 1 {
		t.Errorf("Expected a single evaluation, got %d", len(suggestion.Evaluations))
	}
	if suggestion.Strategy != engine.StrategyRandom {
		t.Errorf("Expected strategy %q, got %q", engine.StrategyRandom, suggestion.Strategy)
	}
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", Greedy, false},
		{"greedy", Greedy, false},
		{"Random", Random, false},
		{"minimax", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	b, err := NewFromConfig(engine.BotConfig{Strategy: "random", Workers: 3}, zeroRandom{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if b.Strategy() != Random || b.workers != 3 {
		t.Errorf("Expected random strategy with 3 workers, got %v with %d", b.Strategy(), b.workers)
	}

	if _, err := NewFromConfig(engine.BotConfig{Strategy: "minimax"}, nil); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}

func TestSuggestRejectsNarrowBoard(t *testing.T) {
	game := newTestGame("0\n0")
	if _, err := New().Suggest(context.Background(), game); !errors.Is(err, engine.ErrInvalidMove) {
		t.Errorf("Expected ErrInvalidMove, got %v", err)
	}
}

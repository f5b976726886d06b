package bot

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/merge-drop-game/game/engine"
)

// Strategy selects how the bot picks a move
type Strategy int

const (
	// Greedy plays the placement whose resulting board scores highest
	Greedy Strategy = iota
	// Random plays a uniformly chosen placement without looking at the board
	Random
)

func (s Strategy) String() string {
	switch s {
	case Greedy:
		return engine.StrategyGreedy
	case Random:
		return engine.StrategyRandom
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a configuration name to a Strategy. An empty name means Greedy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", engine.StrategyGreedy:
		return Greedy, nil
	case engine.StrategyRandom:
		return Random, nil
	}
	return 0, fmt.Errorf("unknown bot strategy %q", name)
}

// Evaluation is the outcome of simulating one candidate move
type Evaluation struct {
	Move   engine.Move `json:"move"`
	Score  *big.Int    `json:"score"`
	Merges int         `json:"merges"`
	Failed bool        `json:"failed"`
}

// Suggestion is the move a bot picked together with the evaluations behind it
type Suggestion struct {
	Move        engine.Move  `json:"move"`
	Score       *big.Int     `json:"score"`
	Strategy    string       `json:"strategy"`
	Evaluations []Evaluation `json:"evaluations"`
}

// Bot picks moves for a game. A bot using a seeded source is not safe for concurrent use.
type Bot struct {
	strategy Strategy
	rng      engine.Random
	workers  int
}

// Option configures a Bot
type Option func(*Bot)

// WithStrategy sets the strategy (default Greedy)
func WithStrategy(s Strategy) Option {
	return func(b *Bot) { b.strategy = s }
}

// WithRandom sets the source used for shuffling candidates and random moves
func WithRandom(r engine.Random) Option {
	return func(b *Bot) { b.rng = r }
}

// WithWorkers evaluates candidates on up to n goroutines. Values below 2 evaluate sequentially.
func WithWorkers(n int) Option {
	return func(b *Bot) { b.workers = n }
}

// New creates a bot
func New(opts ...Option) *Bot {
	b := &Bot{strategy: Greedy, workers: 1}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = engine.NewRandom()
	}
	return b
}

// NewFromConfig creates a bot following the configuration's bot section
func NewFromConfig(config engine.BotConfig, rng engine.Random) (*Bot, error) {
	strategy, err := ParseStrategy(config.Strategy)
	if err != nil {
		return nil, err
	}
	return New(WithStrategy(strategy), WithRandom(rng), WithWorkers(config.Workers)), nil
}

// Strategy returns the configured strategy
func (b *Bot) Strategy() Strategy {
	return b.strategy
}

// AvailableMoves lists every placement that fits a board of the given width:
// horizontal and reversed horizontal from column 0 to width-2, then vertical
// and reversed vertical from column 0 to width-1.
func AvailableMoves(width int) []engine.Move {
	moves := make([]engine.Move, 0, 4*width)
	for _, o := range []engine.Orientation{engine.Horizontal, engine.RevHorizontal} {
		for x := 0; x+1 < width; x++ {
			moves = append(moves, engine.Move{Column: x, Orientation: o})
		}
	}
	for _, o := range []engine.Orientation{engine.Vertical, engine.RevVertical} {
		for x := 0; x < width; x++ {
			moves = append(moves, engine.Move{Column: x, Orientation: o})
		}
	}
	return moves
}

// EvaluateMoves plays each move on its own clone of g and scores the result.
// The returned slice is in the order of moves. With workers above 1 the clones
// are played concurrently; g is only read.
func EvaluateMoves(ctx context.Context, g *engine.Game, moves []engine.Move, workers int) ([]Evaluation, error) {
	results := make([]Evaluation, len(moves))
	baseMerges := g.TotalMerges()

	evaluate := func(i int, clone *engine.Game) {
		m := moves[i]
		if err := clone.PlayMove(m); err != nil {
			results[i] = Evaluation{Move: m, Score: new(big.Int), Failed: true}
			return
		}
		results[i] = Evaluation{
			Move:   m,
			Score:  Score(clone.Board()),
			Merges: clone.TotalMerges() - baseMerges,
		}
	}

	if workers < 2 {
		for i := range moves {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			evaluate(i, g.Clone())
		}
		return results, nil
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range moves {
		clone := g.Clone()
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			evaluate(i, clone)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Evaluate scores every available move for g in a shuffled order
func (b *Bot) Evaluate(ctx context.Context, g *engine.Game) ([]Evaluation, error) {
	moves := AvailableMoves(g.Board().Width())
	b.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})
	return EvaluateMoves(ctx, g, moves, b.workers)
}

// Best returns the first evaluation with the highest score
func Best(evals []Evaluation) Evaluation {
	best := evals[0]
	for _, e := range evals[1:] {
		if e.Score.Cmp(best.Score) > 0 {
			best = e
		}
	}
	return best
}

// Suggest picks a move for g according to the bot's strategy without playing it
func (b *Bot) Suggest(ctx context.Context, g *engine.Game) (*Suggestion, error) {
	width := g.Board().Width()
	if width < engine.MinBoardSize {
		return nil, fmt.Errorf("%w: board is too narrow for a pair", engine.ErrInvalidMove)
	}

	var evals []Evaluation
	var err error
	switch b.strategy {
	case Random:
		evals, err = EvaluateMoves(ctx, g, []engine.Move{b.RandomMove(g)}, 1)
	default:
		evals, err = b.Evaluate(ctx, g)
	}
	if err != nil {
		return nil, err
	}

	best := Best(evals)
	log.Debug().
		Str("strategy", b.strategy.String()).
		Int("candidates", len(evals)).
		Stringer("move", best.Move).
		Str("score", best.Score.String()).
		Bool("failed", best.Failed).
		Msg("bot-suggestion")

	return &Suggestion{
		Move:        best.Move,
		Score:       best.Score,
		Strategy:    b.strategy.String(),
		Evaluations: evals,
	}, nil
}

// BestMove returns the greedy choice for g. It always returns a move for boards
// at least two columns wide, even when every placement is blocked.
func (b *Bot) BestMove(g *engine.Game) engine.Move {
	evals, err := b.Evaluate(context.Background(), g)
	if err != nil || len(evals) == 0 {
		return engine.Move{Column: 0, Orientation: engine.Vertical}
	}
	return Best(evals).Move
}

// RandomMove returns a uniformly chosen placement that fits the board
func (b *Bot) RandomMove(g *engine.Game) engine.Move {
	return engine.Pick(b.rng, AvailableMoves(g.Board().Width()))
}

// Choose returns the move the configured strategy would play
func (b *Bot) Choose(g *engine.Game) engine.Move {
	if b.strategy == Random {
		return b.RandomMove(g)
	}
	return b.BestMove(g)
}

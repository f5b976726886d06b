package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/merge-drop-game/game/bot"
	"github.com/wricardo/merge-drop-game/game/engine"
	"github.com/wricardo/merge-drop-game/game/service"
)

// benchOptions configures a strategy benchmark
type benchOptions struct {
	Config     *engine.GameConfig
	Strategies []string
	Games      int
	Seed       uint64
	MaxMoves   int
	Parallel   int
}

// gameResult is the outcome of one benchmark game
type gameResult struct {
	Moves    int
	Merges   int
	MaxLevel int
	Score    *big.Int
	Blocked  bool
}

// benchReport aggregates the games of one strategy
type benchReport struct {
	Strategy   string
	Games      int
	Blocked    int
	MeanMoves  float64
	MeanMerges float64
	BestLevel  int
	BestScore  *big.Int
	Results    []gameResult
}

// runBench plays opts.Games seeded games per strategy. Game i of every strategy
// starts from seed opts.Seed+i, so reports are reproducible.
func runBench(ctx context.Context, opts benchOptions) ([]benchReport, error) {
	if opts.Config == nil {
		return nil, errors.New("bench needs a board preset")
	}
	if opts.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", opts.Games)
	}
	if opts.MaxMoves <= 0 {
		return nil, fmt.Errorf("max-moves must be positive, got %d", opts.MaxMoves)
	}
	if len(opts.Strategies) == 0 {
		return nil, errors.New("at least one strategy is required")
	}
	for _, name := range opts.Strategies {
		if _, err := bot.ParseStrategy(name); err != nil {
			return nil, err
		}
	}

	reports := make([]benchReport, 0, len(opts.Strategies))
	for _, name := range opts.Strategies {
		config := *opts.Config
		config.Bot.Strategy = name
		// games already run in parallel
		config.Bot.Workers = 1

		results := make([]gameResult, opts.Games)
		eg, ctx := errgroup.WithContext(ctx)
		eg.SetLimit(max(1, opts.Parallel))
		for i := range results {
			seed := opts.Seed + uint64(i)
			eg.Go(func() error {
				res, err := playBenchGame(ctx, &config, seed, opts.MaxMoves)
				if err != nil {
					return fmt.Errorf("game %d (seed %d): %w", i, seed, err)
				}
				results[i] = res
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		report := summarize(name, results)
		log.Debug().
			Str("strategy", name).
			Int("games", report.Games).
			Float64("mean_moves", report.MeanMoves).
			Int("best_level", report.BestLevel).
			Msg("bench-strategy-done")
		reports = append(reports, report)
	}
	return reports, nil
}

// playBenchGame lets the bot play one game until it is blocked or maxMoves moves were made
func playBenchGame(ctx context.Context, config *engine.GameConfig, seed uint64, maxMoves int) (gameResult, error) {
	game, b, err := service.NewSessionGame(config, &seed)
	if err != nil {
		return gameResult{}, err
	}

	var res gameResult
	for res.Moves < maxMoves {
		suggestion, err := b.Suggest(ctx, game)
		if err != nil {
			return gameResult{}, err
		}
		err = game.PlayMove(suggestion.Move)
		if errors.Is(err, engine.ErrGameOver) {
			res.Blocked = true
			break
		}
		if err != nil {
			return gameResult{}, err
		}
		res.Moves++
	}

	board := game.Board()
	res.Merges = game.TotalMerges()
	res.MaxLevel = board.MaxLevel()
	res.Score = bot.Score(board)
	return res, nil
}

func summarize(strategy string, results []gameResult) benchReport {
	report := benchReport{
		Strategy:  strategy,
		Games:     len(results),
		BestScore: new(big.Int),
		Results:   results,
	}
	var moves, merges int
	for _, r := range results {
		moves += r.Moves
		merges += r.Merges
		if r.Blocked {
			report.Blocked++
		}
		report.BestLevel = max(report.BestLevel, r.MaxLevel)
		if r.Score.Cmp(report.BestScore) > 0 {
			report.BestScore = r.Score
		}
	}
	if len(results) > 0 {
		report.MeanMoves = float64(moves) / float64(len(results))
		report.MeanMerges = float64(merges) / float64(len(results))
	}
	return report
}

func printBenchReports(out io.Writer, config *engine.GameConfig, reports []benchReport) {
	fmt.Fprintf(out, "Preset: %s (%dx%d)\n\n", config.Name, config.Width, config.Height)
	fmt.Fprintf(out, "%-8s %6s %8s %10s %11s %10s  %s\n",
		"strategy", "games", "blocked", "avg moves", "avg merges", "best tile", "best score")
	for _, r := range reports {
		fmt.Fprintf(out, "%-8s %6d %8d %10.1f %11.1f %10c  %s\n",
			r.Strategy, r.Games, r.Blocked, r.MeanMoves, r.MeanMerges, engine.LevelChar(r.BestLevel), r.BestScore.String())
	}
}

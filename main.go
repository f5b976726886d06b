// Command merge-drop runs the Merge Drop Game.
//
// It supports three commands:
//  1. "demo" – the bot plays a game in the terminal, one rendered board per move
//  2. "mcp" – serves the game as MCP tools over stdio
//  3. "bench" – plays many seeded games per bot strategy and reports the results
//
// Flags control the preset directory, logging, and per-command options. A .env
// file in the working directory is loaded first, so CONFIG_DIR, LOG_LEVEL and
// GAME_SEED can be set there.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/merge-drop-game/game/bot"
	"github.com/wricardo/merge-drop-game/game/config"
	"github.com/wricardo/merge-drop-game/game/engine"
	"github.com/wricardo/merge-drop-game/game/service"
	"github.com/wricardo/merge-drop-game/game/session"
	"github.com/wricardo/merge-drop-game/transport/mcp"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Merge Drop Game"
)

// Session retention for the long-running mcp command
const (
	sessionMaxAge          = 24 * time.Hour
	sessionCleanupInterval = time.Hour
)

// app holds the root flags shared by every command
type app struct {
	configDir string
}

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("exit")
	}
}

// newApp builds the command tree. Rendered output goes to out; logs go to stderr.
func newApp(out io.Writer) *cli.Command {
	a := &app{}

	return &cli.Command{
		Name:    "merge-drop",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing board presets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.String("log-level"), cmd.Bool("debug"))
			a.configDir = cmd.String("config-dir")
			return ctx, nil
		},
		Commands: []*cli.Command{
			a.demoCommand(out),
			a.mcpCommand(),
			a.benchCommand(out),
		},
	}
}

// setupLogging routes zerolog to a console writer on stderr. Stdout is reserved
// for rendered boards and the MCP stdio transport.
func setupLogging(level string, debug bool) {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// seedFlag returns the seed when the flag or GAME_SEED was given
func seedFlag(cmd *cli.Command) *uint64 {
	if !cmd.IsSet("seed") {
		return nil
	}
	seed := cmd.Uint64("seed")
	return &seed
}

// loadPreset returns the named preset, or the directory's default when name is empty
func loadPreset(configDir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

func (a *app) demoCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "watch the bot play a game",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "board preset (default: classic)"},
			&cli.Uint64Flag{Name: "seed", Usage: "seed for a reproducible game", Sources: cli.EnvVars("GAME_SEED")},
			&cli.DurationFlag{Name: "delay", Value: 300 * time.Millisecond, Usage: "pause between moves"},
			&cli.IntFlag{Name: "max-moves", Usage: "stop after this many moves (0 plays until blocked)"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only print the final board"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			preset, err := loadPreset(a.configDir, cmd.String("config"))
			if err != nil {
				return err
			}
			summary, err := runDemo(ctx, out, demoOptions{
				Config:   preset,
				Seed:     seedFlag(cmd),
				Delay:    cmd.Duration("delay"),
				MaxMoves: cmd.Int("max-moves"),
				Quiet:    cmd.Bool("quiet"),
			})
			if err != nil {
				return err
			}
			log.Info().
				Str("config", preset.Name).
				Int("moves", summary.Moves).
				Int("merges", summary.Merges).
				Int("max_level", summary.MaxLevel).
				Bool("game_over", summary.GameOver).
				Msg("demo-finished")
			return nil
		},
	}
}

func (a *app) mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "serve the game as MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameService, sessions, err := initializeServices(a.configDir)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			go sessionCleanupRoutine(ctx, sessions)

			log.Info().Str("config_dir", a.configDir).Msg("mcp-stdio-start")
			return mcp.NewServer(gameService).ServeStdio()
		},
	}
}

func (a *app) benchCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "compare bot strategies over many seeded games",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "board preset (default: classic)"},
			&cli.StringSliceFlag{Name: "strategy", Value: []string{engine.StrategyGreedy, engine.StrategyRandom}, Usage: "strategies to compare"},
			&cli.IntFlag{Name: "games", Value: 20, Usage: "games per strategy"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "seed of the first game", Sources: cli.EnvVars("GAME_SEED")},
			&cli.IntFlag{Name: "max-moves", Value: 1000, Usage: "move cap per game"},
			&cli.IntFlag{Name: "parallel", Value: 4, Usage: "games played concurrently"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			preset, err := loadPreset(a.configDir, cmd.String("config"))
			if err != nil {
				return err
			}
			reports, err := runBench(ctx, benchOptions{
				Config:     preset,
				Strategies: cmd.StringSlice("strategy"),
				Games:      cmd.Int("games"),
				Seed:       cmd.Uint64("seed"),
				MaxMoves:   cmd.Int("max-moves"),
				Parallel:   cmd.Int("parallel"),
			})
			if err != nil {
				return err
			}
			printBenchReports(out, preset, reports)
			return nil
		},
	}
}

// initializeServices wires session/config managers and the game service
func initializeServices(configDir string) (service.GameService, *session.Manager, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	return service.NewGameService(sessionManager, configManager), sessionManager, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("expired-sessions-cleaned")
			}
		}
	}
}

// demoOptions configures a terminal demo game
type demoOptions struct {
	Config   *engine.GameConfig
	Seed     *uint64
	Delay    time.Duration
	MaxMoves int
	Quiet    bool
}

// demoSummary describes how a demo game ended
type demoSummary struct {
	Moves    int
	Merges   int
	MaxLevel int
	Score    string
	GameOver bool
}

// runDemo lets the configured bot play until a placement is rejected, MaxMoves
// moves were played, or ctx is cancelled
func runDemo(ctx context.Context, out io.Writer, opts demoOptions) (*demoSummary, error) {
	game, b, err := service.NewSessionGame(opts.Config, opts.Seed)
	if err != nil {
		return nil, err
	}

	summary := &demoSummary{}
	if !opts.Quiet {
		fmt.Fprintf(out, "%s (%dx%d), bot: %s\n", opts.Config.Name, opts.Config.Width, opts.Config.Height, b.Strategy())
		fmt.Fprint(out, game.Board())
	}

	for opts.MaxMoves <= 0 || summary.Moves < opts.MaxMoves {
		suggestion, err := b.Suggest(ctx, game)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return nil, err
		}

		pair := game.Current()
		err = game.PlayMove(suggestion.Move)
		if errors.Is(err, engine.ErrGameOver) {
			summary.GameOver = true
			fmt.Fprintf(out, "Game over after %d moves: %v\n", summary.Moves, err)
			break
		}
		if err != nil {
			return nil, err
		}
		summary.Moves++

		if !opts.Quiet {
			fmt.Fprintf(out, "\nTurn %d: %c,%c at %s (score %s)\n", game.Turn(),
				engine.LevelChar(pair.First), engine.LevelChar(pair.Second), suggestion.Move, suggestion.Score.String())
			fmt.Fprint(out, game.Board())
		}

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(opts.Delay):
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	board := game.Board()
	summary.Merges = game.TotalMerges()
	summary.MaxLevel = board.MaxLevel()
	summary.Score = bot.Score(board).String()

	if opts.Quiet {
		fmt.Fprint(out, board)
	}
	fmt.Fprintf(out, "Moves: %d | Merges: %d | Highest tile: %c | Score: %s\n",
		summary.Moves, summary.Merges, engine.LevelChar(summary.MaxLevel), summary.Score)
	return summary, nil
}

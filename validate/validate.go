// Command validate provides a small CLI that validates board preset JSON
// files in the ../configs directory (or the directory given as argument). It checks:
//   - JSON structure, with unknown keys rejected
//   - Required fields, board dimensions and bot settings
//   - Layout shape and characters (digits 0-9, top row first)
//   - Layout physics: no floating tiles and no group ready to merge
//   - Playability: at least one pair placement fits the starting board
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/merge-drop-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	board := engine.NewBoard(config.Width, config.Height)
	if len(config.Layout) > 0 {
		// ValidateGameConfig already parsed the layout
		board, _ = engine.ParseRows(config.Layout)
		physics := validateLayout(board)
		if !physics.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, physics.Errors...)
	}

	if result.Valid {
		playability := validatePlayability(board)
		if !playability.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, playability.Errors...)
	}

	if result.Valid {
		strategy := config.Bot.Strategy
		if strategy == "" {
			strategy = engine.StrategyGreedy
		}
		result.info("Name: %s", config.Name)
		result.info("Board: %dx%d", config.Width, config.Height)
		result.info("Starting tiles: %d", board.TileCount())
		result.info("Bot: %s", strategy)
		if config.Seed != nil {
			result.info("Seed: %d", *config.Seed)
		}
	}

	return result
}

// validateLayout checks that the layout is exactly what the player will see:
// every tile rests on the floor or another tile, and no group is large enough
// to merge before the first move.
func validateLayout(board *engine.Board) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	settled := board.Clone()
	settled.ApplyGravity()
	if !settled.SameCells(board) {
		result.Valid = false
		for x, h := range engine.ColumnHeights(board) {
			for y := h; y < board.Height(); y++ {
				if board.Get(x, y) != engine.Empty {
					result.Errors = append(result.Errors,
						fmt.Sprintf("Floating tile '%c' at column %d, row %d", engine.LevelChar(board.Get(x, y)), x, y))
				}
			}
		}
	}

	for _, g := range settled.FindGroups() {
		if len(g) < engine.MinMergeSize {
			continue
		}
		anchor := g.Anchor()
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Group of %d '%c' tiles at %s merges before the first move",
			len(g), engine.LevelChar(settled.Get(anchor.X, anchor.Y)), anchor))
	}

	if result.Valid {
		result.Errors = append(result.Errors, "✓ Layout: settled")
	}
	return result
}

// validatePlayability ensures the starting board accepts at least one placement
func validatePlayability(board *engine.Board) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	start := board.Clone()
	start.Evolve()
	legal := engine.LegalMoveCount(start)
	if legal == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Playability failure: no placement fits the starting board")
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Playability: %d legal moves (%s)", legal, engine.AnalyzeBoardRisk(start)))
	return result
}

// run validates every *.json file in configDir, prints a concise report and
// reports whether all of them are valid
func run(out io.Writer, configDir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("error finding config files: %w", err)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Fprintln(out, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid, nil
}

func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	ok, err := run(os.Stdout, configDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

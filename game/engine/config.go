package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Bot strategy names accepted in configurations
const (
	StrategyGreedy = "greedy"
	StrategyRandom = "random"
)

// BotConfig selects how the built-in bot plays a game created from this configuration
type BotConfig struct {
	Strategy string `json:"strategy,omitempty"`
	Workers  int    `json:"workers,omitempty"`
}

// GameConfig describes a board preset loaded from JSON
type GameConfig struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Layout      []string  `json:"layout,omitempty"` // optional starting tiles, top row first
	Seed        *uint64   `json:"seed,omitempty"`   // fixes the tile sequence when set
	Bot         BotConfig `json:"bot"`
}

// DefaultGameConfig returns the 10x10 empty board played by the greedy bot
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Empty 10x10 board",
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Bot:         BotConfig{Strategy: StrategyGreedy},
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Width < MinBoardSize || config.Width > MaxBoardSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Width)
	}
	if config.Height < MinBoardSize || config.Height > MaxBoardSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinBoardSize, MaxBoardSize, config.Height)
	}

	if len(config.Layout) > 0 {
		if err := validateLayout(config); err != nil {
			return err
		}
	}

	switch config.Bot.Strategy {
	case "", StrategyGreedy, StrategyRandom:
	default:
		return fmt.Errorf("config validation: bot.strategy must be %q or %q, got %q", StrategyGreedy, StrategyRandom, config.Bot.Strategy)
	}
	if config.Bot.Workers < 0 {
		return fmt.Errorf("config validation: bot.workers must not be negative, got %d", config.Bot.Workers)
	}

	return nil
}

func validateLayout(config *GameConfig) error {
	if len(config.Layout) != config.Height {
		return fmt.Errorf("config validation: layout must have %d rows to match height, got %d",
			config.Height, len(config.Layout))
	}
	b, err := ParseRows(config.Layout)
	if err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if b.Width() != config.Width {
		return fmt.Errorf("config validation: layout rows must have %d characters to match width, got %d",
			config.Width, b.Width())
	}

	// the top row receives the pair, so a full top row can never be played
	b.Evolve()
	for x := 0; x < b.Width(); x++ {
		if b.Get(x, b.Height()-1) == Empty {
			return nil
		}
	}
	return fmt.Errorf("config validation: layout top row is full after settling, no move can be played")
}

// NewBoard returns the starting board of the configuration. The layout's tiles are
// stabilised so a game never starts with a pending merge.
func (c *GameConfig) NewBoard() (*Board, error) {
	if len(c.Layout) == 0 {
		return NewBoard(c.Width, c.Height), nil
	}
	b, err := ParseRows(c.Layout)
	if err != nil {
		return nil, err
	}
	b.Evolve()
	return b, nil
}

// NewRandom returns the configured seeded source, or a fresh unseeded one
func (c *GameConfig) NewRandom() Random {
	if c.Seed != nil {
		return NewSeededRandom(*c.Seed)
	}
	return NewRandom()
}

// LoadGameConfig loads and validates a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a configuration from the configs directory by name, with or without the .json extension
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	config, err := LoadGameConfig(filepath.Join("configs", configName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file '%s' not found", configName)
		}
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

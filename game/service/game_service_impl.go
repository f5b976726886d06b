package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/merge-drop-game/game/bot"
	"github.com/wricardo/merge-drop-game/game/engine"
)

// MaxAutoPlayMoves caps a single AutoPlay call
const MaxAutoPlayMoves = 500

// topCandidates is how many evaluations SuggestMove reports
const topCandidates = 5

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// NewSessionGame builds the game and bot for a session. The seed argument takes
// precedence over the configuration's seed; with either set the tile sequence
// and the bot's tie-breaks are reproducible.
func NewSessionGame(config *engine.GameConfig, seed *uint64) (*engine.Game, *bot.Bot, error) {
	if config == nil {
		return nil, nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if seed == nil {
		seed = config.Seed
	}

	gameRng, botRng := engine.NewRandom(), engine.NewRandom()
	if seed != nil {
		gameRng = engine.NewSeededRandom(*seed)
		botRng = engine.NewSeededRandom(*seed + 1)
	}

	game, err := engine.NewGameFromConfig(config, gameRng)
	if err != nil {
		return nil, nil, err
	}
	b, err := bot.NewFromConfig(config.Bot, botRng)
	if err != nil {
		return nil, nil, err
	}
	return game, b, nil
}

// Snapshot returns the game state with the board score and risk assessment
func Snapshot(game *engine.Game) *GameSnapshot {
	board := game.Board()
	return &GameSnapshot{
		GameState:  game.State(),
		Score:      bot.Score(board).String(),
		LegalMoves: engine.LegalMoveCount(board),
		Risk:       riskCode(engine.AnalyzeBoardRisk(board)),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		Strategy:       sess.Bot.Strategy().String(),
		Seed:           sess.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      Snapshot(sess.Game),
		GameConfig:     sess.Config,
	}
}

// session looks up a session and marks it accessed
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use list_configs to see available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	sess, err := s.sessions.Create("", config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Debug().Str("session", sess.ID).Str("config", configID).Msg("session-created")
	return s.sessionInfo(sess, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	sessions := s.sessions.List()
	s.mu.RUnlock()

	slices.SortFunc(sessions, func(a, b *Session) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Debug().Str("session", sessionID).Msg("session-deleted")
	return nil
}

// Play places the current pair of a session. A placement on an occupied cell is
// reported as an unsuccessful result; a move that does not fit the board is an error.
func (s *gameServiceImpl) Play(ctx context.Context, sessionID string, move engine.Move) (*PlayResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	pair := sess.Game.Current()
	mergesBefore := sess.Game.TotalMerges()
	err = sess.Game.PlayMove(move)
	if err != nil && !errors.Is(err, engine.ErrGameOver) {
		return nil, err
	}

	result := &PlayResult{
		Success:   err == nil,
		Move:      move,
		Pair:      pair,
		Merges:    sess.Game.TotalMerges() - mergesBefore,
		GameState: Snapshot(sess.Game),
		Message:   sess.Game.Message(),
	}
	result.Events = playEvents(result)
	return result, nil
}

func playEvents(result *PlayResult) []GameEvent {
	now := time.Now()
	if !result.Success {
		return []GameEvent{{
			Type:      "game_over",
			Message:   result.Message,
			Timestamp: now,
		}}
	}

	events := []GameEvent{{
		Type:      "place",
		Message:   fmt.Sprintf("Placed %d,%d at %s", result.Pair.First, result.Pair.Second, result.Move),
		Timestamp: now,
	}}
	if result.Merges > 0 {
		events = append(events, GameEvent{
			Type:      "merge",
			Message:   fmt.Sprintf("%d group(s) merged, highest level %d", result.Merges, result.GameState.MaxLevel),
			Timestamp: now,
		})
	}
	return events
}

// SuggestMove asks the session's bot for a move without playing it
func (s *gameServiceImpl) SuggestMove(ctx context.Context, sessionID string) (*SuggestResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	suggestion, err := sess.Bot.Suggest(ctx, sess.Game)
	if err != nil {
		return nil, err
	}

	ranked := slices.Clone(suggestion.Evaluations)
	slices.SortStableFunc(ranked, func(a, b bot.Evaluation) int {
		return b.Score.Cmp(a.Score)
	})

	result := &SuggestResult{
		Move:       suggestion.Move,
		Score:      suggestion.Score.String(),
		Strategy:   suggestion.Strategy,
		Candidates: len(suggestion.Evaluations),
	}
	for _, e := range suggestion.Evaluations {
		if e.Failed {
			result.Blocked++
		}
	}
	for _, e := range ranked[:min(topCandidates, len(ranked))] {
		result.Top = append(result.Top, CandidateInfo{
			Move:   e.Move,
			Score:  e.Score.String(),
			Merges: e.Merges,
			Failed: e.Failed,
		})
	}
	return result, nil
}

// AutoPlay lets the session's bot play until a placement is rejected, maxMoves
// placements were made, or ctx is cancelled
func (s *gameServiceImpl) AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*AutoPlayResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	if maxMoves <= 0 {
		return nil, fmt.Errorf("max_moves must be positive, got %d", maxMoves)
	}

	sess.Lock()
	defer sess.Unlock()

	game := sess.Game
	result := &AutoPlayResult{
		RequestedMoves: maxMoves,
		StartScore:     bot.Score(game.Board()).String(),
		Events:         make([]GameEvent, 0),
	}
	if maxMoves > MaxAutoPlayMoves {
		result.Truncated = true
		result.Limit = MaxAutoPlayMoves
		maxMoves = MaxAutoPlayMoves
	}

	for i := 1; i <= maxMoves; i++ {
		move, err := sess.chooseMove(ctx)
		if err != nil {
			result.StoppedReason = "auto-play cancelled: " + err.Error()
			result.StopReasonCode = StopCancelled
			result.StoppedOnMove = i
			break
		}

		pair := game.Current()
		mergesBefore := game.TotalMerges()
		playErr := game.PlayMove(move)
		if playErr != nil && !errors.Is(playErr, engine.ErrGameOver) {
			return nil, playErr
		}

		step := AutoPlayStep{
			Idx:     i,
			Move:    move,
			Pair:    pair,
			Merges:  game.TotalMerges() - mergesBefore,
			Score:   bot.Score(game.Board()).String(),
			Success: playErr == nil,
		}
		result.Steps = append(result.Steps, step)

		if playErr != nil {
			result.StoppedReason = game.Message()
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i
			result.Events = append(result.Events, GameEvent{
				Type:      "game_over",
				Message:   game.Message(),
				Timestamp: time.Now(),
			})
			break
		}

		result.MovesExecuted++
		result.TotalMerges += step.Merges
		if step.Merges > 0 {
			result.Events = append(result.Events, GameEvent{
				Type:      "merge",
				Message:   fmt.Sprintf("Move %d (%s): %d group(s) merged", i, move, step.Merges),
				Timestamp: time.Now(),
			})
		}
	}
	if result.StopReasonCode == "" {
		result.StopReasonCode = StopLimit
		result.StoppedReason = fmt.Sprintf("played %d move(s)", result.MovesExecuted)
	}

	result.EndScore = bot.Score(game.Board()).String()
	result.GameOver = game.IsGameOver()
	result.GameState = Snapshot(game)

	log.Debug().
		Str("session", sess.ID).
		Int("moves", result.MovesExecuted).
		Str("stop", result.StopReasonCode).
		Str("score", result.EndScore).
		Msg("auto-play")

	return result, nil
}

// chooseMove asks the bot for its strategy's move. Callers hold the session lock.
func (s *Session) chooseMove(ctx context.Context) (engine.Move, error) {
	suggestion, err := s.Bot.Suggest(ctx, s.Game)
	if err != nil {
		return engine.Move{}, err
	}
	return suggestion.Move, nil
}

// Reset restarts a session's game from its configuration and seed
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	game, b, err := NewSessionGame(sess.Config, sess.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to reset session: %w", err)
	}
	sess.Game = game
	sess.Bot = b

	log.Debug().Str("session", sess.ID).Msg("session-reset")
	return Snapshot(game), nil
}

// GetGameState returns the current game state for a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return Snapshot(sess.Game), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := slices.Clone(sess.Game.MoveHistory())
	sess.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := min(start+opts.Limit, total)

	var moves []engine.MoveHistoryEntry
	if opts.Order == "desc" {
		// most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = history[start:end]
	}

	if moves == nil {
		moves = []engine.MoveHistoryEntry{}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func riskCode(text string) string {
	for _, code := range []string{"CRITICAL", "DANGER", "CAUTION", "LOW", "SAFE"} {
		if strings.HasPrefix(text, code) {
			return code
		}
	}
	return "UNKNOWN"
}

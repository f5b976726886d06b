package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/merge-drop-game/game/bot"
	"github.com/wricardo/merge-drop-game/game/engine"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Play(ctx context.Context, sessionID string, move engine.Move) (*PlayResult, error)
	SuggestMove(ctx context.Context, sessionID string) (*SuggestResult, error)
	AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*AutoPlayResult, error)
	Reset(ctx context.Context, sessionID string) (*GameSnapshot, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*GameSnapshot, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, seed *uint64) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. Game and Bot must only be used
// while holding the session lock.
type Session struct {
	ID             string
	Game           *engine.Game
	Bot            *bot.Bot
	Config         *engine.GameConfig
	Seed           *uint64
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu sync.Mutex
}

// Lock serializes operations on the session's game
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock
func (s *Session) Unlock() { s.mu.Unlock() }

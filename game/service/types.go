package service

import (
	"time"

	"github.com/wricardo/merge-drop-game/game/engine"
)

// Stop reason codes reported by AutoPlay
const (
	StopGameOver  = "game_over"
	StopLimit     = "limit"
	StopCancelled = "cancelled"
)

// GameSnapshot is the engine state enriched with the bot score and decision aids
type GameSnapshot struct {
	*engine.GameState
	Score      string `json:"score"`
	LegalMoves int    `json:"legal_moves"`
	Risk       string `json:"risk"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Strategy       string             `json:"strategy"`
	Seed           *uint64            `json:"seed,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *GameSnapshot      `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// PlayResult contains the result of a single placement
type PlayResult struct {
	Success   bool          `json:"success"`
	Move      engine.Move   `json:"move"`
	Pair      engine.Pair   `json:"pair"`
	Merges    int           `json:"merges"`
	GameState *GameSnapshot `json:"game_state"`
	Message   string        `json:"message"`
	Events    []GameEvent   `json:"events,omitempty"`
}

// CandidateInfo summarises one evaluated placement
type CandidateInfo struct {
	Move   engine.Move `json:"move"`
	Score  string      `json:"score"`
	Merges int         `json:"merges"`
	Failed bool        `json:"failed"`
}

// SuggestResult contains the bot's choice for the current position
type SuggestResult struct {
	Move       engine.Move     `json:"move"`
	Score      string          `json:"score"`
	Strategy   string          `json:"strategy"`
	Candidates int             `json:"candidates"`
	Blocked    int             `json:"blocked"`
	Top        []CandidateInfo `json:"top"`
}

// AutoPlayStep is a compact record for each placement made by AutoPlay
type AutoPlayStep struct {
	Idx     int         `json:"idx"`
	Move    engine.Move `json:"move"`
	Pair    engine.Pair `json:"pair"`
	Merges  int         `json:"merges"`
	Score   string      `json:"score"`
	Success bool        `json:"success"`
}

// AutoPlayResult contains the result of letting the bot play several moves
type AutoPlayResult struct {
	MovesExecuted  int    `json:"moves_executed"`
	RequestedMoves int    `json:"requested_moves"`
	Truncated      bool   `json:"truncated,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	StoppedReason  string `json:"stopped_reason,omitempty"`
	StopReasonCode string `json:"stop_reason_code,omitempty"` // game_over|limit|cancelled
	StoppedOnMove  int    `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop

	StartScore  string `json:"start_score"`
	EndScore    string `json:"end_score"`
	TotalMerges int    `json:"total_merges"`

	Steps []AutoPlayStep `json:"steps,omitempty"`

	GameOver  bool          `json:"game_over"`
	GameState *GameSnapshot `json:"game_state"`
	Events    []GameEvent   `json:"events"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "place", "merge", "game_over", "reset"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Strategy    string `json:"strategy"`
	HasLayout   bool   `json:"has_layout"`
	Seeded      bool   `json:"seeded"`
}

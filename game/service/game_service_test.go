package service_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/merge-drop-game/game/engine"
	"github.com/wricardo/merge-drop-game/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
	created  int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig, seed *uint64) (*service.Session, error) {
	if id == "" {
		id = fmt.Sprintf("test_%d", m.created+1)
	}
	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	game, b, err := service.NewSessionGame(config, seed)
	if err != nil {
		return nil, err
	}

	m.created++
	session := &service.Session{
		ID:     id,
		Game:   game,
		Bot:    b,
		Config: config,
		Seed:   seed,
		// distinct creation times keep ListSessions ordering deterministic
		CreatedAt:      time.Unix(int64(m.created), 0),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config, nil)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return errors.New("session not found")
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
	}
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
	saved   map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	open := &engine.GameConfig{
		Name:        "test",
		Description: "Empty 10x10 test board",
		Width:       10,
		Height:      10,
		Bot:         engine.BotConfig{Strategy: engine.StrategyGreedy, Workers: 2},
	}
	small := &engine.GameConfig{
		Name:        "small",
		Description: "Empty 4x4 test board",
		Width:       4,
		Height:      4,
		Bot:         engine.BotConfig{Strategy: engine.StrategyGreedy},
	}
	// every placement on this board lands on an occupied cell
	blocked := &engine.GameConfig{
		Name:        "blocked",
		Description: "2x2 board with a single open cell",
		Width:       2,
		Height:      2,
		Layout:      []string{"30", "43"},
		Bot:         engine.BotConfig{Strategy: engine.StrategyGreedy},
	}

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"test":    open,
			"small":   small,
			"blocked": blocked,
		},
		saved: make(map[string]*engine.GameConfig),
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", service.ErrConfigNotFound, name)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	result := make([]*service.ConfigInfo, 0, len(m.configs))
	for name, config := range m.configs {
		result = append(result, &service.ConfigInfo{
			Filename:    name + ".json",
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			Width:       config.Width,
			Height:      config.Height,
			Strategy:    config.Bot.Strategy,
			HasLayout:   len(config.Layout) > 0,
		})
	}
	slices.SortFunc(result, func(a, b *service.ConfigInfo) int {
		return strings.Compare(a.ConfigID, b.ConfigID)
	})
	return result, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", service.ErrInvalidConfig, err)
	}
	m.saved[name] = config
	return nil
}

func newTestService() service.GameService {
	return service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
}

func createSession(t *testing.T, svc service.GameService, configName string, seed *uint64) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), configName, seed)
	if err != nil {
		t.Fatalf("CreateSession(%q) failed: %v", configName, err)
	}
	return info
}

func seedPtr(v uint64) *uint64 { return &v }

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	tests := []struct {
		name       string
		configName string
		wantConfig string
		wantWidth  int
		wantErr    bool
	}{
		{name: "create with default config", configName: "", wantConfig: "test", wantWidth: 10},
		{name: "create with specific config", configName: "small", wantConfig: "small", wantWidth: 4},
		{name: "create with invalid config", configName: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.configName, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateSession() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, service.ErrConfigNotFound) {
					t.Errorf("Expected ErrConfigNotFound, got %v", err)
				}
				if !strings.Contains(err.Error(), "Available configs") {
					t.Errorf("Expected available configs in error, got %q", err.Error())
				}
				return
			}
			if info.ConfigName != tt.wantConfig {
				t.Errorf("ConfigName = %q, want %q", info.ConfigName, tt.wantConfig)
			}
			if info.GameState.Width != tt.wantWidth {
				t.Errorf("Width = %d, want %d", info.GameState.Width, tt.wantWidth)
			}
			if info.Strategy != engine.StrategyGreedy {
				t.Errorf("Strategy = %q, want %q", info.Strategy, engine.StrategyGreedy)
			}
			if info.GameState.Turn != 0 || info.GameState.Score == "" {
				t.Errorf("Unexpected initial state: turn %d, score %q", info.GameState.Turn, info.GameState.Score)
			}
		})
	}
}

func TestGameService_SeededSessionsAreReproducible(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	a := createSession(t, svc, "small", seedPtr(99))
	b := createSession(t, svc, "small", seedPtr(99))

	if a.GameState.Current != b.GameState.Current {
		t.Fatalf("Same seed gave different first pairs: %+v vs %+v", a.GameState.Current, b.GameState.Current)
	}
	if a.Seed == nil || *a.Seed != 99 {
		t.Errorf("Expected seed 99 recorded, got %v", a.Seed)
	}

	ra, err := svc.AutoPlay(ctx, a.ID, 4)
	if err != nil {
		t.Fatalf("AutoPlay failed: %v", err)
	}
	rb, err := svc.AutoPlay(ctx, b.ID, 4)
	if err != nil {
		t.Fatalf("AutoPlay failed: %v", err)
	}

	if !slices.Equal(ra.GameState.Rows, rb.GameState.Rows) {
		t.Errorf("Seeded sessions diverged:\n%v\n%v", ra.GameState.Rows, rb.GameState.Rows)
	}
	if ra.EndScore != rb.EndScore {
		t.Errorf("EndScore differs: %s vs %s", ra.EndScore, rb.EndScore)
	}
}

func TestGameService_Play(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	t.Run("successful placement", func(t *testing.T) {
		info := createSession(t, svc, "test", nil)
		pair := info.GameState.Current

		result, err := svc.Play(ctx, info.ID, engine.Move{Column: 0, Orientation: engine.Horizontal})
		if err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		if !result.Success {
			t.Fatalf("Expected success, got message %q", result.Message)
		}
		if result.Pair != pair {
			t.Errorf("Pair = %+v, want %+v", result.Pair, pair)
		}
		if result.GameState.Turn != 1 {
			t.Errorf("Turn = %d, want 1", result.GameState.Turn)
		}
		if result.GameState.TileCount != 2 {
			t.Errorf("TileCount = %d, want 2", result.GameState.TileCount)
		}
		if len(result.Events) == 0 || result.Events[0].Type != "place" {
			t.Errorf("Expected a place event, got %+v", result.Events)
		}
	})

	t.Run("occupied cell ends the game without error", func(t *testing.T) {
		info := createSession(t, svc, "blocked", nil)
		before := info.GameState.Rows

		result, err := svc.Play(ctx, info.ID, engine.Move{Column: 0, Orientation: engine.Horizontal})
		if err != nil {
			t.Fatalf("Play returned error: %v", err)
		}
		if result.Success {
			t.Error("Expected unsuccessful placement")
		}
		if !result.GameState.GameOver {
			t.Error("Expected game over flag")
		}
		if !slices.Equal(result.GameState.Rows, before) {
			t.Errorf("Board changed on rejected placement: %v -> %v", before, result.GameState.Rows)
		}
		if result.GameState.Current != info.GameState.Current {
			t.Error("Pair changed on rejected placement")
		}
		if len(result.Events) != 1 || result.Events[0].Type != "game_over" {
			t.Errorf("Expected a single game_over event, got %+v", result.Events)
		}
	})

	t.Run("out of range move is an error", func(t *testing.T) {
		info := createSession(t, svc, "small", nil)

		tests := []engine.Move{
			{Column: 3, Orientation: engine.Horizontal},
			{Column: -1, Orientation: engine.Vertical},
			{Column: 4, Orientation: engine.RevVertical},
			{Column: 0, Orientation: engine.Orientation(9)},
		}
		for _, move := range tests {
			_, err := svc.Play(ctx, info.ID, move)
			if !errors.Is(err, engine.ErrInvalidMove) {
				t.Errorf("Play(%+v) error = %v, want ErrInvalidMove", move, err)
			}
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Play(ctx, "missing", engine.Move{})
		if err == nil {
			t.Error("Expected error for unknown session")
		}
	})
}

func TestGameService_SuggestMove(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "small", seedPtr(3))

	result, err := svc.SuggestMove(ctx, info.ID)
	if err != nil {
		t.Fatalf("SuggestMove failed: %v", err)
	}

	// 3 horizontal + 3 reversed horizontal + 4 vertical + 4 reversed vertical
	if result.Candidates != 14 {
		t.Errorf("Candidates = %d, want 14", result.Candidates)
	}
	if result.Blocked != 0 {
		t.Errorf("Blocked = %d, want 0", result.Blocked)
	}
	if len(result.Top) != 5 {
		t.Fatalf("len(Top) = %d, want 5", len(result.Top))
	}
	if result.Top[0].Score != result.Score {
		t.Errorf("Top score %s does not match suggestion score %s", result.Top[0].Score, result.Score)
	}
	for i := 1; i < len(result.Top); i++ {
		prev, _ := new(big.Int).SetString(result.Top[i-1].Score, 10)
		cur, _ := new(big.Int).SetString(result.Top[i].Score, 10)
		if prev.Cmp(cur) < 0 {
			t.Errorf("Top not sorted: %s before %s", prev, cur)
		}
	}

	state, err := svc.GetGameState(ctx, info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Turn != 0 {
		t.Error("SuggestMove must not play the move")
	}
}

func TestGameService_SuggestMove_AllBlocked(t *testing.T) {
	svc := newTestService()
	info := createSession(t, svc, "blocked", nil)

	result, err := svc.SuggestMove(context.Background(), info.ID)
	if err != nil {
		t.Fatalf("SuggestMove failed: %v", err)
	}
	if result.Blocked != result.Candidates {
		t.Errorf("Blocked = %d, want all %d candidates", result.Blocked, result.Candidates)
	}
	if result.Score != "0" {
		t.Errorf("Score = %s, want 0", result.Score)
	}
}

func TestGameService_AutoPlay(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	t.Run("stops at the move limit", func(t *testing.T) {
		info := createSession(t, svc, "test", seedPtr(5))

		result, err := svc.AutoPlay(ctx, info.ID, 3)
		if err != nil {
			t.Fatalf("AutoPlay failed: %v", err)
		}
		if result.StopReasonCode != service.StopLimit {
			t.Errorf("StopReasonCode = %q, want %q", result.StopReasonCode, service.StopLimit)
		}
		if result.MovesExecuted != 3 || len(result.Steps) != 3 {
			t.Errorf("Executed %d moves with %d steps, want 3", result.MovesExecuted, len(result.Steps))
		}
		if result.GameState.Turn != 3 {
			t.Errorf("Turn = %d, want 3", result.GameState.Turn)
		}
		if result.StartScore != info.GameState.Score {
			t.Errorf("StartScore = %s, want %s", result.StartScore, info.GameState.Score)
		}
		if result.EndScore != result.GameState.Score {
			t.Errorf("EndScore = %s, state score %s", result.EndScore, result.GameState.Score)
		}
	})

	t.Run("stops when the board is blocked", func(t *testing.T) {
		info := createSession(t, svc, "blocked", nil)

		result, err := svc.AutoPlay(ctx, info.ID, 10)
		if err != nil {
			t.Fatalf("AutoPlay failed: %v", err)
		}
		if result.StopReasonCode != service.StopGameOver {
			t.Errorf("StopReasonCode = %q, want %q", result.StopReasonCode, service.StopGameOver)
		}
		if result.StoppedOnMove != 1 || result.MovesExecuted != 0 {
			t.Errorf("StoppedOnMove = %d, MovesExecuted = %d", result.StoppedOnMove, result.MovesExecuted)
		}
		if !result.GameOver {
			t.Error("Expected GameOver")
		}
		if len(result.Steps) != 1 || result.Steps[0].Success {
			t.Errorf("Expected one failed step, got %+v", result.Steps)
		}
	})

	t.Run("large requests are truncated", func(t *testing.T) {
		info := createSession(t, svc, "blocked", nil)

		result, err := svc.AutoPlay(ctx, info.ID, service.MaxAutoPlayMoves+1)
		if err != nil {
			t.Fatalf("AutoPlay failed: %v", err)
		}
		if !result.Truncated || result.Limit != service.MaxAutoPlayMoves {
			t.Errorf("Truncated = %v, Limit = %d", result.Truncated, result.Limit)
		}
		if result.RequestedMoves != service.MaxAutoPlayMoves+1 {
			t.Errorf("RequestedMoves = %d", result.RequestedMoves)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		info := createSession(t, svc, "test", nil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		result, err := svc.AutoPlay(cctx, info.ID, 5)
		if err != nil {
			t.Fatalf("AutoPlay failed: %v", err)
		}
		if result.StopReasonCode != service.StopCancelled {
			t.Errorf("StopReasonCode = %q, want %q", result.StopReasonCode, service.StopCancelled)
		}
		if result.MovesExecuted != 0 {
			t.Errorf("MovesExecuted = %d, want 0", result.MovesExecuted)
		}
	})

	t.Run("non-positive move count", func(t *testing.T) {
		info := createSession(t, svc, "test", nil)
		if _, err := svc.AutoPlay(ctx, info.ID, 0); err == nil {
			t.Error("Expected error for max_moves 0")
		}
	})
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "test", nil)

	for _, col := range []int{0, 3, 6} {
		if _, err := svc.Play(ctx, info.ID, engine.Move{Column: col, Orientation: engine.Horizontal}); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantTurns []int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{name: "defaults are newest first", opts: service.HistoryOptions{}, wantTurns: []int{3, 2, 1}, wantPages: 1},
		{name: "ascending", opts: service.HistoryOptions{Order: "asc"}, wantTurns: []int{1, 2, 3}, wantPages: 1},
		{name: "first page", opts: service.HistoryOptions{Limit: 2}, wantTurns: []int{3, 2}, wantPages: 2, wantNext: true},
		{name: "second page ascending", opts: service.HistoryOptions{Page: 2, Limit: 2, Order: "asc"}, wantTurns: []int{3}, wantPages: 2, wantPrev: true},
		{name: "page past the end", opts: service.HistoryOptions{Page: 5, Limit: 2}, wantTurns: []int{}, wantPages: 2, wantPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetMoveHistory(ctx, info.ID, tt.opts)
			if err != nil {
				t.Fatalf("GetMoveHistory failed: %v", err)
			}
			turns := make([]int, 0, len(resp.Moves))
			for _, m := range resp.Moves {
				turns = append(turns, m.Turn)
			}
			if !slices.Equal(turns, tt.wantTurns) {
				t.Errorf("turns = %v, want %v", turns, tt.wantTurns)
			}
			if resp.TotalMoves != 3 {
				t.Errorf("TotalMoves = %d, want 3", resp.TotalMoves)
			}
			if resp.TotalPages != tt.wantPages || resp.HasNext != tt.wantNext || resp.HasPrevious != tt.wantPrev {
				t.Errorf("pages=%d next=%v prev=%v, want %d %v %v",
					resp.TotalPages, resp.HasNext, resp.HasPrevious, tt.wantPages, tt.wantNext, tt.wantPrev)
			}
		})
	}
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	first := createSession(t, svc, "test", nil)
	second := createSession(t, svc, "small", nil)

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != first.ID || sessions[1].ID != second.ID {
		t.Errorf("Expected oldest first, got %s, %s", sessions[0].ID, sessions[1].ID)
	}

	if err := svc.DeleteSession(ctx, first.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, first.ID); err == nil {
		t.Error("Expected deleted session to be gone")
	}
	if err := svc.DeleteSession(ctx, first.ID); err == nil {
		t.Error("Expected error deleting a missing session")
	}
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createSession(t, svc, "small", seedPtr(11))

	if _, err := svc.AutoPlay(ctx, info.ID, 3); err != nil {
		t.Fatalf("AutoPlay failed: %v", err)
	}

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Turn != 0 || state.TileCount != 0 {
		t.Errorf("Expected fresh game, got turn %d with %d tiles", state.Turn, state.TileCount)
	}
	if state.Current != info.GameState.Current {
		t.Errorf("Seeded reset should replay the same first pair: %+v vs %+v", state.Current, info.GameState.Current)
	}

	history, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if history.TotalMoves != 0 {
		t.Errorf("Expected empty history after reset, got %d", history.TotalMoves)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 3 {
		t.Errorf("Expected 3 configs, got %d", len(configs))
	}

	config, err := svc.LoadConfig(ctx, "blocked")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Width != 2 {
		t.Errorf("Width = %d, want 2", config.Width)
	}

	if err := svc.SaveConfig(ctx, "bad", &engine.GameConfig{Name: "bad"}); !errors.Is(err, service.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewSessionGame(t *testing.T) {
	config := &engine.GameConfig{
		Name:        "seeded",
		Description: "seeded config",
		Width:       5,
		Height:      5,
		Seed:        seedPtr(8),
	}

	g1, _, err := service.NewSessionGame(config, nil)
	if err != nil {
		t.Fatalf("NewSessionGame failed: %v", err)
	}
	g2, _, _ := service.NewSessionGame(config, nil)
	if g1.Current() != g2.Current() {
		t.Error("Config seed should make the first pair reproducible")
	}

	if _, _, err := service.NewSessionGame(nil, nil); !errors.Is(err, service.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil config, got %v", err)
	}
}

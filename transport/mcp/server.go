package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/merge-drop-game/game/engine"
	"github.com/wricardo/merge-drop-game/game/service"
)

// defaultAutoPlayMoves is used when auto_play is called without max_moves
const defaultAutoPlayMoves = 50

// Server exposes a GameService as MCP tools
type Server struct {
	service   service.GameService
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server backed by the given game service
func NewServer(svc service.GameService) *Server {
	s := &Server{service: svc}
	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Merge Drop Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Merge Drop Game - MCP Interface

GAME OBJECTIVE:
Drop pairs of numbered tiles onto the board. Three or more connected tiles of the
same level merge into one tile of the next level. Build the highest tiles you can
before the top row is blocked.

AVAILABLE TOOLS:
- create_session: Create new game session (optional config and seed)
- list_sessions: List all active sessions
- get_session: Get session details
- delete_session: Remove a session
- game_state: Get current board, pair and score
- play: Place the current pair (column + orientation)
- suggest_move: Ask the bot for its best placement without playing it
- auto_play: Let the bot play several moves
- reset_game: Restart the session from its preset
- move_history: View past placements
- list_configs: List available board presets
- game_instructions: Get the full rules`),
	)

	s.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Session management
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the board preset to use (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible tile sequence (optional)",
				},
			},
		},
	}, s.handleCreateSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSessions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, s.handleGetSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a game session",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, s.handleDeleteSession)

	// Game operations
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, pair, score and risk",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "play",
		Description: "Place the current pair on the top row. The pair falls, then groups of three or more equal tiles merge.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the first tile (0-based, leftmost is 0)",
				},
				"orientation": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"horizontal", "vertical", "rev_horizontal", "rev_vertical"},
					"description": "horizontal puts the second tile to the right, vertical puts it below; rev_ swaps the two tiles",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this placement",
				},
			},
			Required: []string{"session_id", "column", "orientation"},
		},
	}, s.handlePlay)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "suggest_move",
		Description: "Ask the session's bot for its placement without playing it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, s.handleSuggestMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "auto_play",
		Description: "Let the session's bot play until the board is blocked or max_moves placements were made",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"max_moves": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Maximum placements (default %d, capped at %d)", defaultAutoPlayMoves, service.MaxAutoPlayMoves),
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleAutoPlay)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restart the game from its preset. Seeded sessions replay the same tiles.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}, s.handleReset)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "desc lists the newest placement first",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleMoveHistory)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListConfigs)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until the input closes
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg reads an integer argument. JSON numbers arrive as float64; strings are accepted too.
func intArg(args map[string]interface{}, name string) (int, bool, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%s must be an integer, got %v", name, v)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, true, fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		return n, true, nil
	}
	return 0, true, fmt.Errorf("%s must be an integer, got %T", name, raw)
}

func requireSessionID(args map[string]interface{}) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	var seed *uint64
	n, ok, err := intArg(args, "seed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		if n < 0 {
			return mcp.NewToolResultError("seed must not be negative"), nil
		}
		v := uint64(n)
		seed = &v
	}

	session, err := s.service.CreateSession(ctx, configName, seed)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nBot: %s\n\n%s",
		session.ID, session.ConfigName, session.Strategy, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.service.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", len(sessions))
	for _, sess := range sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Turn: %d, Score: %s, Created: %s)\n",
			sess.ID, sess.ConfigName, sess.GameState.Turn, sess.GameState.Score, sess.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := s.service.GetSession(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(session)), nil
}

func (s *Server) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.service.DeleteSession(ctx, sessionID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted session: %s", sessionID)), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.service.GetGameState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(state)), nil
}

func (s *Server) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	column, ok, err := intArg(args, "column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		return mcp.NewToolResultError("column is required"), nil
	}

	orientationName, _ := args["orientation"].(string)
	orientation, err := engine.ParseOrientation(orientationName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// intent is for the caller's own reasoning
	_, _ = args["intent"].(string)

	result, err := s.service.Play(ctx, sessionID, engine.Move{Column: column, Orientation: orientation})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPlayResult(result)), nil
}

func (s *Server) handleSuggestMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	suggestion, err := s.service.SuggestMove(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSuggestion(suggestion)), nil
}

func (s *Server) handleAutoPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	maxMoves, ok, err := intArg(args, "max_moves")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !ok {
		maxMoves = defaultAutoPlayMoves
	}

	result, err := s.service.AutoPlay(ctx, sessionID, maxMoves)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAutoPlayResult(sessionID, result)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requireSessionID(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.service.Reset(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Game reset\n\n" + formatGameState(state)), nil
}

func (s *Server) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requireSessionID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var opts service.HistoryOptions
	if opts.Page, _, err = intArg(args, "page"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.Limit, _, err = intArg(args, "limit"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts.Order, _ = args["order"].(string)
	if opts.Order != "" && opts.Order != "asc" && opts.Order != "desc" {
		return mcp.NewToolResultError(fmt.Sprintf("order must be asc or desc, got %q", opts.Order)), nil
	}

	history, err := s.service.GetMoveHistory(ctx, sessionID, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(history)), nil
}

func (s *Server) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configs, err := s.service.ListConfigs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Board: %dx%d, Bot: %s",
			config.Name, config.ConfigID, config.Description, config.Width, config.Height, config.Strategy)
		if config.HasLayout {
			b.WriteString(", starting layout")
		}
		if config.Seeded {
			b.WriteString(", seeded")
		}
		b.WriteString("\n\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Merge Drop Game - Complete Instructions

BOARD:
• A grid of cells, row 0 at the bottom. Each cell is empty or holds a tile with a level (1, 2, 3, ...).
• Boards are drawn top row first. Empty cells are blank; levels above 9 are shown as letters (a=10, b=11, ...).

EACH TURN:
1. You receive a pair of tiles (first, second).
2. Choose a column and an orientation:
   • horizontal: first at (column, top), second at (column+1, top)
   • rev_horizontal: same cells, tiles swapped
   • vertical: first at (column, top), second directly below it
   • rev_vertical: same cells, tiles swapped
3. Tiles fall straight down until they rest on another tile or the floor.
4. Every group of 3 or more orthogonally connected tiles with the same level merges into a
   single tile one level higher, placed at the group's lowest-row, leftmost cell.
5. Falling and merging repeat until the board is stable.
6. A new pair is drawn. Levels range from 1 to the highest level the board has produced.

GAME OVER:
A placement whose target cell is already occupied is rejected. The board and the pair stay as they
were and the game is flagged as over.

SCORING:
The board score is the sum of 10^level over all cells (an empty cell counts 1), so one higher tile
outweighs any number of lower ones.

TIPS:
• suggest_move shows what the greedy bot would play and the best candidates it found.
• auto_play lets the bot drive; use a seeded session to reproduce a game.
• Keep the top row clear: a column that reaches it blocks vertical and horizontal drops there.`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	seed := "none"
	if session.Seed != nil {
		seed = strconv.FormatUint(*session.Seed, 10)
	}
	return fmt.Sprintf("Session: %s\nConfig: %s\nBot: %s\nSeed: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Strategy, seed,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *service.GameSnapshot) string {
	if state == nil || state.GameState == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Turn: %d | Score: %s | Next pair: %s | Highest: %d | Merges: %d\n",
		state.Turn, state.Score, pairLabel(state.Current), state.Highest, state.TotalMerges)
	fmt.Fprintf(&b, "Tiles: %d/%d | Legal moves: %d | Risk: %s\n\n",
		state.TileCount, state.Width*state.Height, state.LegalMoves, state.Risk)

	b.WriteString(formatRows(state.Rows, state.Width))

	if state.GameOver {
		b.WriteString("\nGAME OVER")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}
	return b.String()
}

func pairLabel(p engine.Pair) string {
	return string([]byte{engine.LevelChar(p.First), ',', engine.LevelChar(p.Second)})
}

// formatRows draws the board top row first with a column ruler underneath
func formatRows(rows []string, width int) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", width) + "+\n"
	b.WriteString(border)
	for _, row := range rows {
		b.WriteString("|")
		b.WriteString(strings.ReplaceAll(row, "0", " "))
		b.WriteString("|\n")
	}
	b.WriteString(border)
	b.WriteString(" ")
	for x := 0; x < width; x++ {
		b.WriteString(strconv.Itoa(x % 10))
	}
	b.WriteString("\n")
	return b.String()
}

func formatPlayResult(result *service.PlayResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ Placed %s at %s\n", pairLabel(result.Pair), result.Move)
	} else {
		fmt.Fprintf(&b, "✗ Placement %s rejected\n", result.Move)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatSuggestion(result *service.SuggestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggested move: %s (strategy: %s)\n", result.Move, result.Strategy)
	fmt.Fprintf(&b, "Score after move: %s\n", result.Score)
	fmt.Fprintf(&b, "Candidates evaluated: %d, blocked: %d\n", result.Candidates, result.Blocked)

	if len(result.Top) > 0 {
		b.WriteString("\nBest candidates:\n")
		for i, c := range result.Top {
			status := "✓"
			if c.Failed {
				status = "✗"
			}
			fmt.Fprintf(&b, "%d. %s %s score=%s merges=%d\n", i+1, c.Move, status, c.Score, c.Merges)
		}
	}
	return b.String()
}

func formatAutoPlayResult(sessionID string, result *service.AutoPlayResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session: %s\n", sessionID)
	requested := result.RequestedMoves
	if result.Truncated {
		requested = result.Limit
	}
	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, requested)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to %d moves\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped (%s): %s\n", result.StopReasonCode, result.StoppedReason)
	}
	fmt.Fprintf(&b, "Score: %s → %s | Merges: %d\n", result.StartScore, result.EndScore, result.TotalMerges)

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, step := range result.Steps {
			status := "✓"
			if !step.Success {
				status = "✗"
			}
			fmt.Fprintf(&b, "%d. %s pair=%s merges=%d %s\n", step.Idx, step.Move, pairLabel(step.Pair), step.Merges, status)
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "Turn %d. %s pair=%s merges=%d %s\n",
			move.Turn, move.Move, pairLabel(move.Pair), move.Merges, status)
	}
	if len(history.Moves) == 0 {
		b.WriteString("(no moves)\n")
	}
	return b.String()
}

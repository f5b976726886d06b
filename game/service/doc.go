// Package service provides the business logic layer for the Merge Drop Game.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Placement processing and bot suggestions
//   - Auto-play, the bot driving a session until the board is blocked
//   - Move history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages board preset loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (MCP, CLI) and the game
// engine, providing session isolation, configuration management, and business
// logic orchestration. Each session owns its own game and bot; operations on
// one session are serialized by the session lock, so different sessions can be
// played concurrently.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "classic", nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Drop the current pair vertically into column 4
//	result, err := gameService.Play(ctx, sessionInfo.ID, engine.Move{Column: 4, Orientation: engine.Vertical})
//
// Scores:
//
// Board scores are the sum of 10^level over all cells. They grow past any
// fixed-width integer, so results carry them as decimal strings.
package service

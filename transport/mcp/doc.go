// Package mcp exposes the Merge Drop Game as a Model Context Protocol tool server.
//
// The server wraps a service.GameService, so every tool call works on the same
// in-memory sessions as the rest of the process. Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - game_state: board, next pair, score and risk
//   - play: place the current pair at a column and orientation
//   - suggest_move: the bot's choice plus its best candidates
//   - auto_play: let the bot play up to max_moves placements
//   - reset_game, move_history, list_configs, game_instructions
//
// Tool errors (unknown session, invalid move, bad arguments) are returned as
// error results rather than protocol errors, so agents can read and recover.
//
// Usage:
//
//	srv := mcp.NewServer(gameService)
//	if err := srv.ServeStdio(); err != nil {
//		log.Fatal().Err(err).Msg("mcp-server")
//	}
//
// Stdout carries the protocol in stdio mode; logs must go to stderr.
package mcp

// Package session provides session management for the Merge Drop Game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session store. Each session owns a game and the bot that
// plays it, built from a board preset and an optional seed.
//
// Session Identifiers:
//
// Generated IDs are the first eight hex characters of a random UUID. Lookups
// are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session with a reproducible tile sequence
//	seed := uint64(42)
//	sess, err := manager.Create("", config, &seed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sess.ID)
//
// Sessions live in memory only. CleanupExpiredSessions drops sessions that
// have not been accessed for a given duration.
package session

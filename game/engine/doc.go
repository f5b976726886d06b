// Package engine provides the core game logic for the Merge Drop Game.
//
// The engine package implements the game mechanics including:
//   - Grid storage with bounds-checked access
//   - Gravity that compacts every column toward the bottom row
//   - Connected-group discovery with an iterative flood fill
//   - Merging groups of three or more tiles into one tile of the next level
//   - The evolve loop that alternates gravity and merging until the board is stable
//   - Pair placement in four orientations and game-over detection
//   - Configuration loading and validation
//
// Core Types:
//
// Board holds the grid of levels (0 is empty) with row 0 at the bottom. Game
// owns a Board plus the current pair of tiles waiting to be placed. Random
// abstracts the randomness used to draw new tiles; NewSeededRandom gives
// reproducible games.
//
// Usage:
//
//	game := engine.NewGame(10, 10, engine.NewSeededRandom(42))
//
//	// Drop the current pair vertically into column 3
//	if err := game.Play(3, engine.Vertical); errors.Is(err, engine.ErrGameOver) {
//		log.Fatal("board is full")
//	}
//	fmt.Print(game.Board())
//
// Game Rules:
//
// Each turn a pair of tiles is written onto the top row (horizontally) or the
// top two rows of one column (vertically). Gravity then pulls tiles down and
// any group of three or more connected tiles of the same level collapses into
// a single tile one level higher, at the group's lowest-left cell. Merges
// cascade until nothing more merges. A placement onto an occupied cell is
// rejected and ends the game.
package engine

// Package bot chooses placements for a merge drop game.
//
// The greedy strategy looks one move ahead: every candidate placement is
// played on an independent clone of the game and the resulting board is
// scored as the sum of 10^level over all cells. Candidates are shuffled
// before evaluation so ties resolve uniformly at random. Placements that
// are rejected on the clone score zero and are only chosen when nothing
// else fits.
//
// Usage:
//
//	b := bot.New(bot.WithWorkers(4))
//	move := b.BestMove(game)
//	if err := game.PlayMove(move); err != nil {
//		// every placement was blocked
//	}
package bot

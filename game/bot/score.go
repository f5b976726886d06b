package bot

import (
	"math/big"

	"github.com/wricardo/merge-drop-game/game/engine"
)

var ten = big.NewInt(10)

// Score returns the sum over all cells of 10^level. Empty cells count 1, so any
// board scores at least its area.
func Score(b *engine.Board) *big.Int {
	powers := make(map[int]*big.Int)
	total := new(big.Int)
	for _, level := range b.Levels() {
		p, ok := powers[level]
		if !ok {
			p = new(big.Int).Exp(ten, big.NewInt(int64(level)), nil)
			powers[level] = p
		}
		total.Add(total, p)
	}
	return total
}

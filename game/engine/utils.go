package engine

// ColumnHeights returns the number of tiles stacked in each column.
// On a settled board a column's tiles are exactly its lowest cells.
func ColumnHeights(b *Board) []int {
	heights := make([]int, b.width)
	for x := 0; x < b.width; x++ {
		for y := 0; y < b.height; y++ {
			if b.cells[x+y*b.width] != Empty {
				heights[x]++
			}
		}
	}
	return heights
}

// CountLevel counts the tiles of a specific level
func CountLevel(b *Board, level int) int {
	count := 0
	for _, v := range b.cells {
		if v == level {
			count++
		}
	}
	return count
}

// LevelHistogram maps each level present on the board to its tile count
func LevelHistogram(b *Board) map[int]int {
	hist := make(map[int]int)
	for _, v := range b.cells {
		if v != Empty {
			hist[v]++
		}
	}
	return hist
}

// OpenColumns returns the columns whose top cell is empty
func OpenColumns(b *Board) []int {
	var open []int
	top := b.height - 1
	for x := 0; x < b.width; x++ {
		if b.cells[x+top*b.width] == Empty {
			open = append(open, x)
		}
	}
	return open
}

// LegalMoveCount counts the moves that would not be rejected on the current board
func LegalMoveCount(b *Board) int {
	top := b.height - 1
	free := func(x, y int) bool { return b.cells[x+y*b.width] == Empty }
	count := 0
	for x := 0; x < b.width; x++ {
		if x+1 < b.width && free(x, top) && free(x+1, top) {
			count += 2 // horizontal and reversed
		}
		if b.height > 1 && free(x, top) && free(x, top-1) {
			count += 2 // vertical and reversed
		}
	}
	return count
}

// AnalyzeBoardRisk assesses how close the board is to rejecting every move
func AnalyzeBoardRisk(b *Board) string {
	legal := LegalMoveCount(b)
	tallest := 0
	for _, h := range ColumnHeights(b) {
		tallest = max(tallest, h)
	}

	switch {
	case legal == 0:
		return "CRITICAL: No move fits, game over!"
	case legal <= 4:
		return "DANGER: Only a few placements remain"
	case tallest >= b.height-2:
		return "CAUTION: A column is close to the top"
	case b.TileCount()*2 >= len(b.cells):
		return "LOW: Board is half full"
	}
	return "SAFE: Plenty of room"
}

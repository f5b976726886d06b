// Package config loads and caches board presets for the Merge Drop Game.
//
// Presets are JSON files in the configs directory, one per file. A preset sets
// the board size, an optional starting layout (top row first, one digit
// per cell), an optional seed that fixes the tile sequence, and the
// strategy the built-in bot plays with:
//
//	{
//	  "name": "small",
//	  "description": "6x6 board for quick games",
//	  "width": 6,
//	  "height": 6,
//	  "bot": {"strategy": "greedy", "workers": 4}
//	}
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	small, err := manager.LoadConfig("small")
//	presets, err := manager.ListConfigs()
//
// When classic.json is absent the first valid preset becomes the default, and an
// empty directory falls back to the built-in 10x10 board.
package config

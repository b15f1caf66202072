package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/mergedrop.yaml
var defaultMergeDropYAML []byte

// DefaultMergeDropConfig returns the hardcoded configuration used when the
// embedded YAML cannot be parsed.
func DefaultMergeDropConfig() MergeDropConfig {
	return MergeDropConfig{
		Ranks: []RankConfig{
			{Name: "Cherry", Glyph: "c", Color: "red"},
			{Name: "Strawberry", Glyph: "s", Color: "bright_red"},
			{Name: "Grape", Glyph: "g", Color: "magenta"},
			{Name: "Dekopon", Glyph: "d", Color: "orange"},
			{Name: "Persimmon", Glyph: "p", Color: "yellow"},
			{Name: "Apple", Glyph: "a", Color: "bright_green"},
			{Name: "Pear", Glyph: "r", Color: "bright_yellow"},
			{Name: "Peach", Glyph: "h", Color: "bright_magenta"},
			{Name: "Pineapple", Glyph: "P", Color: "bright_white"},
			{Name: "Melon", Glyph: "M", Color: "green"},
			{Name: "Watermelon", Glyph: "W", Color: "bright_cyan"},
		},
		Board: BoardConfig{
			HorizontalLimit: 4,
			HoldHeight:      -1,
			Rows:            12,
			LineHeight:      1,
			Tag:             "fruit",
		},
		Timing: TimingConfig{
			DropCooldown:     400 * time.Millisecond,
			SettleDelay:      400 * time.Millisecond,
			ContactThreshold: 5 * time.Second,
			TimeAttack:       60 * time.Second,
			FallInterval:     100 * time.Millisecond,
		},
		Spawn: SpawnConfig{
			EasyCap: 3,
		},
		Merge: MergeConfig{
			Impulse: 0.5,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "mergedrop", "mergedrop_timer":
		return defaultMergeDropYAML
	default:
		return nil
	}
}

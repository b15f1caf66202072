// Package config provides YAML-based configuration loading, difficulty
// presets and environment overrides for the merge-drop game.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/mergedrop/internal/engine"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// MergeDropConfig contains all configuration for the merge-drop game.
type MergeDropConfig struct {
	Ranks  []RankConfig `yaml:"ranks"`
	Board  BoardConfig  `yaml:"board"`
	Timing TimingConfig `yaml:"timing"`
	Spawn  SpawnConfig  `yaml:"spawn"`
	Merge  MergeConfig  `yaml:"merge"`
	Debug  DebugConfig  `yaml:"debug"`
}

// RankConfig describes one token rank. The index in the rank table is the
// rank itself.
type RankConfig struct {
	Name  string `yaml:"name"`
	Glyph string `yaml:"glyph"` // single rune drawn inside the token cell
	Color string `yaml:"color"` // core color name, e.g. "bright_red"
}

// BoardConfig defines the well geometry.
type BoardConfig struct {
	HorizontalLimit float64 `yaml:"horizontal_limit"` // cursor range is [-limit, limit]
	HoldHeight      float64 `yaml:"hold_height"`      // row of the held token, above the well
	Rows            int     `yaml:"rows"`
	LineHeight      int     `yaml:"line_height"` // boundary line row, counted from the top
	Tag             string  `yaml:"tag"`
}

// TimingConfig defines drop pacing and end conditions.
type TimingConfig struct {
	DropCooldown     time.Duration `yaml:"drop_cooldown"`
	SettleDelay      time.Duration `yaml:"settle_delay"`
	ContactThreshold time.Duration `yaml:"contact_threshold"`
	TimeAttack       time.Duration `yaml:"time_attack"`
	FallInterval     time.Duration `yaml:"fall_interval"`
}

// SpawnConfig tunes the spawn roll.
type SpawnConfig struct {
	EasyCap int `yaml:"easy_cap"` // highest roll while the board apex is below rank 2
}

// MergeConfig tunes merge cosmetics.
type MergeConfig struct {
	Impulse float64 `yaml:"impulse"`
}

// DebugConfig toggles verbose engine logging.
type DebugConfig struct {
	Logs bool `yaml:"logs"`
}

// Columns returns the well width implied by the horizontal limit.
func (c MergeDropConfig) Columns() int {
	return 2*int(c.Board.HorizontalLimit) + 1
}

// MaxRank returns the highest configured rank, or -1 for an empty table.
func (c MergeDropConfig) MaxRank() int {
	return len(c.Ranks) - 1
}

// Validate reports the first setting the game cannot run with.
func (c MergeDropConfig) Validate() error {
	switch {
	case len(c.Ranks) == 0:
		return fmt.Errorf("%w: rank table is empty", ErrInvalid)
	case c.Board.HorizontalLimit < 0:
		return fmt.Errorf("%w: board.horizontal_limit must not be negative", ErrInvalid)
	case c.Board.Rows < 2:
		return fmt.Errorf("%w: board.rows must be at least 2, got %d", ErrInvalid, c.Board.Rows)
	case c.Board.LineHeight < 0 || c.Board.LineHeight >= c.Board.Rows:
		return fmt.Errorf("%w: board.line_height %d is outside the well", ErrInvalid, c.Board.LineHeight)
	case c.Board.HoldHeight >= 0:
		return fmt.Errorf("%w: board.hold_height must be above the well (negative)", ErrInvalid)
	case c.Timing.ContactThreshold <= 0:
		return fmt.Errorf("%w: timing.contact_threshold must be positive", ErrInvalid)
	case c.Timing.DropCooldown < 0 || c.Timing.SettleDelay < 0:
		return fmt.Errorf("%w: timing delays must not be negative", ErrInvalid)
	case c.Timing.TimeAttack <= 0:
		return fmt.Errorf("%w: timing.time_attack must be positive", ErrInvalid)
	case c.Timing.FallInterval <= 0:
		return fmt.Errorf("%w: timing.fall_interval must be positive", ErrInvalid)
	case c.Spawn.EasyCap < 0:
		return fmt.Errorf("%w: spawn.easy_cap must not be negative", ErrInvalid)
	}
	for i, r := range c.Ranks {
		if r.Glyph == "" {
			return fmt.Errorf("%w: rank %d (%s) has no glyph", ErrInvalid, i, r.Name)
		}
	}
	// Timer mode is the stricter of the two.
	if err := c.Session(engine.ModeTimer).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Session converts the game config into engine tunables for one mode.
// The horizontal limit is truncated to whole well columns.
func (c MergeDropConfig) Session(mode engine.Mode) engine.Config {
	return engine.Config{
		Ranks:            len(c.Ranks),
		Tag:              c.Board.Tag,
		HorizontalLimit:  float64(int(c.Board.HorizontalLimit)),
		HoldHeight:       c.Board.HoldHeight,
		DropCooldown:     c.Timing.DropCooldown,
		SettleDelay:      c.Timing.SettleDelay,
		ContactThreshold: c.Timing.ContactThreshold,
		TimeLimit:        c.Timing.TimeAttack,
		EasyCap:          c.Spawn.EasyCap,
		Impulse:          c.Merge.Impulse,
		Mode:             mode,
	}
}

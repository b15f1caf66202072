package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/engine"
)

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	var cfg MergeDropConfig
	if err := yaml.Unmarshal(GetDefaultYAML("mergedrop"), &cfg); err != nil {
		t.Fatalf("embedded default does not parse: %v", err)
	}
	want := DefaultMergeDropConfig()

	if len(cfg.Ranks) != len(want.Ranks) {
		t.Fatalf("ranks = %d, expected %d", len(cfg.Ranks), len(want.Ranks))
	}
	for i := range cfg.Ranks {
		if cfg.Ranks[i] != want.Ranks[i] {
			t.Errorf("rank %d = %+v, expected %+v", i, cfg.Ranks[i], want.Ranks[i])
		}
	}
	if cfg.Board != want.Board || cfg.Timing != want.Timing || cfg.Spawn != want.Spawn || cfg.Merge != want.Merge {
		t.Errorf("embedded = %+v\nhardcoded = %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("embedded default invalid: %v", err)
	}
}

func TestDefaultRankColorsResolve(t *testing.T) {
	for i, r := range DefaultMergeDropConfig().Ranks {
		if _, ok := core.ParseColor(r.Color); !ok {
			t.Errorf("rank %d color %q unknown", i, r.Color)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte(`
ranks:
  - { name: Pebble, glyph: o, color: gray }
  - { name: Rock, glyph: O, color: white }
board:
  horizontal_limit: 2
  hold_height: -1
  rows: 6
  line_height: 1
  tag: stone
timing:
  drop_cooldown: 250ms
  settle_delay: 1s
  contact_threshold: 2s
  time_attack: 30s
  fall_interval: 50ms
spawn:
  easy_cap: 1
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, DifficultyNormal)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxRank() != 1 || cfg.Columns() != 5 || cfg.Board.Tag != "stone" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Timing.DropCooldown != 250*time.Millisecond || cfg.Timing.SettleDelay != time.Second {
		t.Errorf("timing = %+v", cfg.Timing)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, err := LoadMergeDrop(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing custom config")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("ranks: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMergeDrop(bad); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *MergeDropConfig)
	}{
		{"empty ranks", func(c *MergeDropConfig) { c.Ranks = nil }},
		{"zero threshold", func(c *MergeDropConfig) { c.Timing.ContactThreshold = 0 }},
		{"negative cooldown", func(c *MergeDropConfig) { c.Timing.DropCooldown = -1 }},
		{"line below well", func(c *MergeDropConfig) { c.Board.LineHeight = c.Board.Rows }},
		{"hold inside well", func(c *MergeDropConfig) { c.Board.HoldHeight = 0 }},
		{"tiny well", func(c *MergeDropConfig) { c.Board.Rows = 1 }},
		{"missing glyph", func(c *MergeDropConfig) { c.Ranks[2].Glyph = "" }},
		{"zero fall interval", func(c *MergeDropConfig) { c.Timing.FallInterval = 0 }},
		{"too many ranks", func(c *MergeDropConfig) {
			for len(c.Ranks) <= 32 {
				c.Ranks = append(c.Ranks, RankConfig{Name: "Extra", Glyph: "x", Color: "white"})
			}
		}},
		{"negative impulse", func(c *MergeDropConfig) { c.Merge.Impulse = -0.5 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultMergeDropConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, expected ErrInvalid", err)
			}
		})
	}
}

func TestValidateMatchesEngine(t *testing.T) {
	for _, mutate := range []func(c *MergeDropConfig){
		func(c *MergeDropConfig) { c.Merge.Impulse = -1 },
		func(c *MergeDropConfig) {
			for len(c.Ranks) <= 32 {
				c.Ranks = append(c.Ranks, RankConfig{Name: "Extra", Glyph: "x", Color: "white"})
			}
		},
	} {
		cfg := DefaultMergeDropConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Validate() = %v, expected the engine rule to fail", err)
		}
	}

	cfg := DefaultMergeDropConfig()
	for _, mode := range []engine.Mode{engine.ModeClassic, engine.ModeTimer} {
		sc := cfg.Session(mode)
		if err := sc.Validate(); err != nil {
			t.Errorf("default %v session config invalid: %v", mode, err)
		}
		if sc.Ranks != len(cfg.Ranks) || sc.Mode != mode || sc.ContactThreshold != cfg.Timing.ContactThreshold {
			t.Errorf("Session(%v) = %+v", mode, sc)
		}
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset    DifficultyPreset
		threshold time.Duration
		easyCap   int
	}{
		{DifficultyEasy, 8 * time.Second, 3},
		{DifficultyNormal, 5 * time.Second, 3},
		{DifficultyHard, 3 * time.Second, 2},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultMergeDropConfig()
			ApplyPreset(&cfg, tc.preset)
			if cfg.Timing.ContactThreshold != tc.threshold || cfg.Spawn.EasyCap != tc.easyCap {
				t.Errorf("threshold=%v easyCap=%d, expected %v/%d",
					cfg.Timing.ContactThreshold, cfg.Spawn.EasyCap, tc.threshold, tc.easyCap)
			}
		})
	}
}

func TestParseDifficulty(t *testing.T) {
	if p, err := ParseDifficulty(""); err != nil || p != DifficultyNormal {
		t.Errorf("ParseDifficulty(\"\") = %q, %v", p, err)
	}
	if p, err := ParseDifficulty("hard"); err != nil || p != DifficultyHard {
		t.Errorf("ParseDifficulty(hard) = %q, %v", p, err)
	}
	if _, err := ParseDifficulty("nightmare"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("MERGEDROP_DB", "/tmp/scores.db")
	t.Setenv("MERGEDROP_SEED", "99")
	t.Setenv("MERGEDROP_SOUND", "true")

	e, err := LoadRuntimeEnv()
	if err != nil {
		t.Fatalf("LoadRuntimeEnv() error = %v", err)
	}
	if e.DBPath != "/tmp/scores.db" || e.Seed != 99 || !e.Sound {
		t.Errorf("env = %+v", e)
	}
	if e.LogLevel != "info" || e.Difficulty != "normal" {
		t.Errorf("defaults not applied: %+v", e)
	}

	t.Setenv("MERGEDROP_SEED", "not-a-number")
	if _, err := LoadRuntimeEnv(); err == nil {
		t.Error("expected error for malformed seed")
	}
}

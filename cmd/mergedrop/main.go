// mergedrop is a terminal merge-and-drop puzzle: aim a token above the
// well, drop it, and merge equal neighbours into bigger ones before the
// pile crosses the line.
//
// Usage:
//
//	mergedrop list             - List game modes
//	mergedrop play [mode]      - Play a mode (default: mergedrop)
//	mergedrop menu             - Pick a mode interactively
//	mergedrop serve            - Start SSH server for remote play
//	mergedrop scores [mode]    - Show high scores
//	mergedrop sim              - Run a headless bot game
//
// Global flags default to MERGEDROP_* environment variables:
//
//	--fps <rate>          - Tick rate (default: 60)
//	--seed <value>        - RNG seed for reproducible play (MERGEDROP_SEED)
//	--db <path>           - Scores database (MERGEDROP_DB)
//	--config <path>       - Game config YAML (MERGEDROP_CONFIG)
//	--difficulty <name>   - easy, normal or hard (MERGEDROP_DIFFICULTY)
//	--log-level <level>   - debug, info, warn, error (MERGEDROP_LOG_LEVEL)
//	--log-file <path>     - Log destination (MERGEDROP_LOG_FILE)
//	--sound               - Play sound cues (MERGEDROP_SOUND)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergedrop/internal/config"
	"github.com/vovakirdan/mergedrop/internal/games/mergedrop"
)

const defaultDBPath = "~/.mergedrop/scores.db"

var (
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
	flagLogFile    string
	flagSound      bool
)

func main() {
	env, err := config.LoadRuntimeEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	bindGlobalFlags(env)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mergedrop",
	Short: "Merge Drop - drop and merge tokens in your terminal",
	Long: `Merge Drop is a terminal puzzle game. Aim the held token, drop it
into the well, and merge equal tokens into bigger ones. A token that
rests on the line too long ends the game.

Available commands:
  list     - Show game modes
  play     - Play a mode directly
  menu     - Interactive mode picker
  serve    - Start SSH server for remote play
  scores   - View high scores
  sim      - Run a headless bot game

Examples:
  mergedrop play
  mergedrop play mergedrop_timer --difficulty hard
  mergedrop menu --sound
  mergedrop serve --ssh :2222
  mergedrop sim --seed 42 --ticks 6000`,
	SilenceUsage:      true,
	PersistentPreRunE: applyGameSettings,
}

// bindGlobalFlags registers persistent flags with environment defaults, so
// an explicit flag always wins.
func bindGlobalFlags(env config.RuntimeEnv) {
	dbPath := env.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	pf := rootCmd.PersistentFlags()
	pf.IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	pf.Int64Var(&flagSeed, "seed", env.Seed, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", dbPath, "Path to scores database")
	pf.StringVar(&flagConfig, "config", env.ConfigPath, "Path to custom game config YAML")
	pf.StringVar(&flagDifficulty, "difficulty", env.Difficulty, "Difficulty preset: easy, normal, hard")
	pf.StringVar(&flagLogLevel, "log-level", env.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flagLogFile, "log-file", env.LogFile, "Write logs to this file")
	pf.BoolVar(&flagSound, "sound", env.Sound, "Play sound cues")
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(simCmd)
}

// applyGameSettings validates the shared flags and the game config, then
// hands them to the game package before any command creates a game.
func applyGameSettings(_ *cobra.Command, _ []string) error {
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	preset, err := config.ParseDifficulty(flagDifficulty)
	if err != nil {
		return err
	}
	if _, err := log.ParseLevel(flagLogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	if _, err := config.Load(flagConfig, preset); err != nil {
		return fmt.Errorf("load game config: %w", err)
	}
	mergedrop.SetConfigPath(flagConfig)
	mergedrop.SetDifficultyPreset(flagDifficulty)
	return nil
}

// newLogger builds the process logger. Interactive commands own the
// terminal, so without --log-file their logs are discarded. The returned
// func closes the log file.
func newLogger(interactive bool) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case flagLogFile != "":
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	case interactive:
		out = io.Discard
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          "mergedrop",
		Level:           level,
	})
	mergedrop.SetLogger(logger)
	return logger, closeFn, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mergedrop/internal/audio"
	"github.com/vovakirdan/mergedrop/internal/core"
	"github.com/vovakirdan/mergedrop/internal/games/mergedrop"
	"github.com/vovakirdan/mergedrop/internal/platform/tui"
	"github.com/vovakirdan/mergedrop/internal/registry"
	"github.com/vovakirdan/mergedrop/internal/storage"
)

const soundVolume = 0.6

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a game mode",
	Long: `Start playing the given mode (default: mergedrop).

Modes:
  mergedrop        - Classic: play until the pile overflows
  mergedrop_timer  - Time attack: score as much as you can in the time limit

Controls:
  Left/Right, A/D   - Aim
  Space, Down       - Drop
  P                 - Pause
  Esc/B             - Back to menu (when paused or over)
  R                 - Restart (after game over)
  Q/Ctrl+C          - Quit

Difficulty options:
  easy    - 8s grace on the line
  normal  - As configured
  hard    - 3s grace on the line, smaller openers

Examples:
  mergedrop play
  mergedrop play mergedrop_timer
  mergedrop play --difficulty easy --sound
  mergedrop play --config ./my-mergedrop.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := mergedrop.IDClassic
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'mergedrop list' to see available modes.")
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	stopSound := setupSound(logger)
	defer stopSound()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	if _, err := tui.Run(game, store, terminalConfig(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}

// terminalConfig builds the runtime config from the terminal size and the
// global flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// openStore opens the scores database. The game still works without one.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database", "path", flagDBPath, "err", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

// setupSound installs the speaker as the game's cue sink when --sound is
// set. The returned func releases the speaker.
func setupSound(logger *log.Logger) func() {
	if !flagSound {
		return func() {}
	}
	player := audio.NewPlayer(soundVolume, logger)
	if err := player.Init(); err != nil {
		logger.Warn("sound disabled", "err", err)
		return func() {}
	}
	mergedrop.SetCueSink(player)
	return func() {
		mergedrop.SetCueSink(nil)
		player.Close()
	}
}

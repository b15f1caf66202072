package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mergedrop/internal/games/mergedrop"
	"github.com/vovakirdan/mergedrop/internal/registry"
	"github.com/vovakirdan/mergedrop/internal/storage"
)

var (
	flagScoresLimit int
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores for a mode",
	Long: `Display the top scores for the given mode (default: mergedrop).

Examples:
  mergedrop scores
  mergedrop scores mergedrop_timer --limit 20
  mergedrop scores --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all scores for the mode")
}

func runScores(_ *cobra.Command, args []string) {
	gameID := mergedrop.IDClassic
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'mergedrop list' to see available modes.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}
	title := game.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearScores(gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared scores for %s.\n", title)
		return
	}

	scores, err := store.TopScores(gameID, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'mergedrop play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-8s  %-4s  %-9s  %-6s  %s\n", "#", "Score", "Tier", "Ended", "Time", "Date")
	fmt.Printf("  %-4s  %-8s  %-4s  %-9s  %-6s  %s\n", "-", "-----", "----", "-----", "----", "----")
	for i, e := range scores {
		tier := "-"
		if e.HighestRank >= 0 {
			tier = fmt.Sprintf("%d", e.HighestRank+1)
		}
		reason := e.EndReason
		if reason == "" {
			reason = "-"
		}
		fmt.Printf("  %-4d  %-8d  %-4s  %-9s  %-6s  %s\n",
			i+1, e.Score, tier, reason, e.Duration.Round(time.Second), e.CreatedAt.Format("2006-01-02 15:04"))
	}

	stats, err := store.GetGameStats(gameID)
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("Games: %d  Best: %d  Average: %.0f", stats.GamesCount, stats.HighScore, stats.AvgScore)
	if stats.HighestRank >= 0 {
		fmt.Printf("  Best tier: %d", stats.HighestRank+1)
	}
	fmt.Println()
}

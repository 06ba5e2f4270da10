package cmd

import (
	"fmt"
	"io"

	"go-match/internal/config"
	"go-match/internal/scoring"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the best time for each difficulty",
	Long: `Scores prints the best recorded time and its move count for every
difficulty. Use --reset to forget all records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		ledger := loadLedger(e)
		if reset, _ := cmd.Flags().GetBool("reset"); reset {
			if err := ledger.Clear(); err != nil {
				return fmt.Errorf("error clearing scores: %w", err)
			}
			color.Green("✓ Best scores cleared")
			return nil
		}

		printScores(cmd.OutOrStdout(), ledger.Table())
		return nil
	},
}

func init() {
	scoresCmd.Flags().Bool("reset", false, "clear all best scores")
}

func printScores(w io.Writer, table scoring.Table) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	green := color.New(color.FgGreen)

	bold.Fprintln(w, "Best scores")
	for _, tier := range config.Tiers {
		d, _ := config.DifficultyFor(tier)
		label := fmt.Sprintf("  %-7s", d.Label)
		best, ok := table.Get(tier)
		if !ok {
			fmt.Fprint(w, label)
			faint.Fprintln(w, "no record yet")
			continue
		}
		fmt.Fprint(w, label)
		green.Fprintf(w, "%02d:%02d", best.Time/60, best.Time%60)
		fmt.Fprintf(w, " in %d moves\n", best.Moves)
	}
}

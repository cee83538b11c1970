package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
)

var scoreCmd = &cobra.Command{
	Use:   "score <value>",
	Short: "Supply a complexity score for a session",
	Long: `Record a complexity score delivered outside of a scorer step invocation.

The first in-range score of a cycle resolves the session's tier; later scores
are recorded but do not change the tier. Scores outside every tier range are
recorded as configuration violations.

Examples:
  warden score 42 --session abc123
  warden score 87.5 --session abc123 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var scoreFlags struct {
	format string
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreFlags.format, "format", "text", "output format: text, json")
}

func runScore(cmd *cobra.Command, args []string) error {
	score, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid score %q: %w", args[0], err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("invalid score %q: not a finite number", args[0])
	}
	format, err := cli.ParseFormat(scoreFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := a.gk.SupplyScore(cmd.Context(), a.session(), score)
	if err != nil {
		return cli.NewCommandError("score", err)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), stateView(state))
}

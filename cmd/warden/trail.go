package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/trail"
)

var errTrailDisabled = errors.New("decision trail is disabled (trail.enabled: false)")

var trailCmd = &cobra.Command{
	Use:   "trail",
	Short: "Query and prune the decision trail",
}

var trailListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded decisions",
	Long: `List recorded decisions, oldest first.

Examples:
  # Decisions of one session
  warden trail list --session abc123

  # Blocks in the last hour, as CSV
  warden trail list --outcome block --since 1h --format csv

  # Count only
  warden trail list --session abc123 --count`,
	Args: cobra.NoArgs,
	RunE: runTrailList,
}

var trailPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply trail retention and remove stale sessions",
	Long: `Delete trail records older than trail.retention and session state untouched
for longer than state.stale_after. "warden serve" runs the same pass on
trail.prune_schedule.

Examples:
  warden trail prune
  warden trail prune --older-than 24h`,
	Args: cobra.NoArgs,
	RunE: runTrailPrune,
}

var trailFlags struct {
	outcome   string
	since     time.Duration
	limit     int
	format    string
	count     bool
	olderThan time.Duration
}

func init() {
	rootCmd.AddCommand(trailCmd)
	trailCmd.AddCommand(trailListCmd)
	trailCmd.AddCommand(trailPruneCmd)

	trailListCmd.Flags().StringVar(&trailFlags.outcome, "outcome", "", "filter by outcome: allow, allow-and-record, block")
	trailListCmd.Flags().DurationVar(&trailFlags.since, "since", 0, "only decisions newer than this duration")
	trailListCmd.Flags().IntVar(&trailFlags.limit, "limit", trail.DefaultQueryLimit, "maximum number of records")
	trailListCmd.Flags().StringVar(&trailFlags.format, "format", "text", "output format: text, json, csv")
	trailListCmd.Flags().BoolVar(&trailFlags.count, "count", false, "print the number of matching records only")

	trailPruneCmd.Flags().DurationVar(&trailFlags.olderThan, "older-than", 0, "override trail.retention for this run")
}

func runTrailList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(trailFlags.format)
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
	if a.trail == nil {
		return errTrailDisabled
	}

	query := &trail.Query{
		SessionID: sessionID,
		Outcome:   trailFlags.outcome,
		Limit:     trailFlags.limit,
	}
	if trailFlags.since > 0 {
		start := time.Now().Add(-trailFlags.since)
		query.StartTime = &start
	}

	if trailFlags.count {
		n, err := a.trail.Count(cmd.Context(), query)
		if err != nil {
			return cli.NewCommandError("trail list", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	}

	records, err := a.trail.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("trail list", err)
	}
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), records)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), recordTable(records))
}

func runTrailPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if trailFlags.olderThan > 0 {
		cfg.Trail.Retention = trailFlags.olderThan
	}
	a, err := newApp(cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pruner().Prune(cmd.Context())
	a.metrics.RecordTrailPruned(result.Records)
	if err != nil {
		return cli.NewCommandError("trail prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "pruned %d trail records, %d stale sessions\n", result.Records, result.Sessions)
	return nil
}

type recordTable []*trail.Record

func (t recordTable) Headers() []string {
	return []string{"TIME", "SESSION", "KIND", "IDENTIFIER", "OUTCOME", "RULE", "TIER", "MISSING"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		outcome := r.Outcome
		if r.Advisory {
			outcome += " (advisory)"
		}
		identifier := r.Identifier
		if r.Score != nil {
			identifier = strconv.FormatFloat(*r.Score, 'g', -1, 64)
		}
		rows = append(rows, []string{
			r.Time.Format(time.RFC3339),
			r.SessionID,
			r.Kind,
			identifier,
			outcome,
			r.Rule,
			r.Tier,
			strings.Join(r.Missing, ","),
		})
	}
	return rows
}

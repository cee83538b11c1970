package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/session"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show a session's workflow state",
	Long: `Print the persisted state of a session: whether the entry gate was
passed, the resolved tier and score, the executed steps, the action count and
the violation log.

Examples:
  warden state --session abc123
  warden state --session abc123 --violations
  warden state --session abc123 --format json`,
	Args: cobra.NoArgs,
	RunE: runState,
}

var stateFlags struct {
	format     string
	violations bool
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.Flags().StringVar(&stateFlags.format, "format", "text", "output format: text, json, csv")
	stateCmd.Flags().BoolVar(&stateFlags.violations, "violations", false, "list the violation log instead of the summary")
}

func runState(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(stateFlags.format)
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

	id := a.session()
	state, err := a.gk.State(cmd.Context(), id)
	if err != nil {
		return cli.NewCommandError("state", err)
	}
	if state == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "no state recorded for session %q\n", id)
		return cli.NewExitError(1)
	}

	var out any = stateView(state)
	if stateFlags.violations {
		out = violationTable(state.Violations)
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), out)
}

// stateSummary renders a State as field/value rows and as plain JSON.
type stateSummary struct {
	*session.State
}

func stateView(s *session.State) stateSummary {
	return stateSummary{State: s}
}

func (s stateSummary) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

func (s stateSummary) Rows() [][]string {
	score := "-"
	if s.ComplexityScore != nil {
		score = strconv.FormatFloat(*s.ComplexityScore, 'g', -1, 64)
	}
	tierName := s.ResolvedTier
	if tierName == "" {
		tierName = "-"
	}
	steps := strings.Join(s.ExecutedSteps, ",")
	if steps == "" {
		steps = "-"
	}
	return [][]string{
		{"session", s.SessionID},
		{"gate_passed", strconv.FormatBool(s.GatePassed)},
		{"tier", tierName},
		{"score", score},
		{"steps", steps},
		{"actions", strconv.FormatInt(s.ActionCount, 10)},
		{"violations", strconv.Itoa(len(s.Violations))},
	}
}

type violationTable []session.Violation

func (v violationTable) Headers() []string {
	return []string{"AT", "KIND", "CATEGORY", "ACTION", "MISSING", "DETAIL"}
}

func (v violationTable) Rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, violation := range v {
		rows = append(rows, []string{
			violation.At.Format(time.RFC3339),
			violation.Kind,
			string(violation.Category),
			violation.Action,
			strings.Join(violation.Missing, ","),
			violation.Detail,
		})
	}
	return rows
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
)

var (
	// Global flags
	cfgFile   string
	sessionID string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Warden - tiered workflow policy for coding assistant hooks",
	Long: `Warden is a policy engine for AI coding assistant tool calls.

It runs as a pre-tool-use hook and enforces a tiered workflow:
  - every cycle opens with an entry gate
  - a complexity score selects a tier from the tier catalog
  - each tier names the prerequisite steps required before mutation
  - blocked actions are explained on stderr with the missing steps

Session state persists between hook invocations, decisions are kept in a
queryable trail, and "warden serve" adds catalog hot reload, scheduled
retention and a metrics endpoint.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "warden.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "session id (default: hook.default_session)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override telemetry.logging.level")
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/hook"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Decide a tool call (PreToolUse hook)",
	Long: `Read a PreToolUse hook event from stdin and decide whether the tool call
may proceed.

Exit codes:
  0  the action is allowed (or blocked in advisory mode, with a warning)
  1  warden could not decide a read-class request; it proceeds
  2  the action is blocked; the reason and missing steps are on stderr.
     Faults on anything but read-class requests (unreadable event, invalid
     configuration, state store failure) also exit 2, marked [FAULT].

Examples:
  # Hook configuration
  warden check --config .warden/warden.yaml

  # Manual check
  echo '{"session_id":"s1","tool_name":"Write","tool_input":{"file_path":"main.go"}}' | warden check`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Start a new cycle (UserPromptSubmit hook)",
	Long: `Reset a session for a new interaction cycle: the entry gate must be passed
again, executed steps and the resolved tier are cleared, and the session's
decision trail and violation log are deleted.

The session is taken from --session, else from the hook event on stdin, else
hook.default_session.

Examples:
  warden reset < event.json
  warden reset --session abc123`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(resetCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := hookApp()
	if err != nil {
		code := hook.CheckUnavailable(cmd.InOrStdin(), cmd.ErrOrStderr(), err)
		return cli.NewExitError(code)
	}
	defer a.Close()

	code := a.handler().Check(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr())
	return cli.NewExitError(code)
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := hookApp()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[FAULT] warden: %v\n", err)
		return cli.NewExitError(hook.ExitFault)
	}
	defer a.Close()

	if sessionID != "" {
		if _, err := a.gk.Begin(cmd.Context(), sessionID); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "[FAULT] warden: session could not be reset: %v\n", err)
			return cli.NewExitError(hook.ExitFault)
		}
		return nil
	}

	code := a.handler().Reset(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr())
	return cli.NewExitError(code)
}

// hookApp builds the app for a hook command. Callers report setup failures
// in the hook's fault format.
func hookApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, nil)
}

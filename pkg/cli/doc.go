/*
Package cli provides helpers shared by the warden commands.

Output Formatting:

Commands that print records support text, JSON and CSV output:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, records); err != nil {
		return err
	}

Text output aligns any Table as columns; CSV output requires one.

Exit Codes:

Hook commands report their verdict through the process exit code. An
ExitError carries the code to main without printing anything else:

	return cli.NewExitError(2)

Signal Handling:

Long-running commands stop on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli

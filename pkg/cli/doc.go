/*
Package cli provides command-line helpers shared by govctl subcommands.

Output Formatting:

Results are printed as text, JSON or CSV. Values implementing Table render
as aligned columns in text mode and as rows in CSV mode:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, result); err != nil {
		return err
	}

Errors and Exit Codes:

Commands wrap failures in CommandError. ExitCode maps the governance error
taxonomy onto the process status: 2 for rejected input, 3 for a missing
record, 1 otherwise.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli

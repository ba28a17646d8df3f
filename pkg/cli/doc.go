// Package cli holds helpers shared by the relay command: error types with
// exit codes, result formatters, a progress reporter for journal exports and
// signal-aware contexts.
//
//	ctx, stop := cli.SetupSignalHandler(context.Background())
//	defer stop()
//
//	formatter := cli.NewFormatter(cli.FormatJSON)
//	if err := formatter.FormatTo(os.Stdout, doc); err != nil {
//		return cli.NewCommandError("materialize", err)
//	}
package cli

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/materialize"
	"mercator-hq/relay/pkg/proxy"
)

var materializeFlags struct {
	grammar string
	compact bool
}

var materializeCmd = &cobra.Command{
	Use:   "materialize QUERY",
	Short: "Print the JSON document a query string becomes",
	Long: `Run a query string through the same materializer the server uses and
print the resulting document. A leading "?" is ignored.

Without --grammar the grammar comes from the configuration.

Examples:
  relay materialize 'params.Image.Resolution=1920x1080&params.count.=3'
  relay materialize --grammar anchored '$.a.b=1&$.a.c=hello'`,
	Args: cobra.ExactArgs(1),
	RunE: materializeQuery,
}

func init() {
	rootCmd.AddCommand(materializeCmd)

	materializeCmd.Flags().StringVarP(&materializeFlags.grammar, "grammar", "g", "", "path grammar: marker, anchored")
	materializeCmd.Flags().BoolVar(&materializeFlags.compact, "compact", false, "print the document on one line")
}

func materializeQuery(cmd *cobra.Command, args []string) error {
	grammarName := materializeFlags.grammar
	if grammarName == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		grammarName = cfg.Relay.PathGrammar
	}

	grammar, err := materialize.ParseGrammar(grammarName)
	if err != nil {
		return cli.NewCommandError("materialize", err)
	}

	entries, err := materialize.ParseQuery(strings.TrimPrefix(args[0], "?"))
	if err != nil {
		return cli.NewCommandError("materialize", proxy.MaterializeError(err))
	}

	doc, err := materialize.Materialize(entries, grammar)
	if err != nil {
		return cli.NewCommandError("materialize", proxy.MaterializeError(err))
	}

	formatter := &cli.JSONFormatter{Indent: !materializeFlags.compact}
	return formatter.FormatTo(cmd.OutOrStdout(), doc)
}

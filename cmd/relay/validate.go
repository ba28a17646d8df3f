package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file with RELAY_* overrides applied, validate it
and print the effective settings.

Exit status is 2 when the configuration is invalid.

Examples:
  relay validate --config relay.yaml
  RELAY_RELAY_PATH_GRAMMAR=anchored relay validate`,
	Args: cobra.NoArgs,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	source := cfgFile
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(out, "configuration valid (%s)\n", source)
	fmt.Fprintf(out, "  listen:       %s\n", cfg.Proxy.ListenAddress)
	fmt.Fprintf(out, "  route prefix: %s\n", cfg.Proxy.RoutePrefix)
	fmt.Fprintf(out, "  grammar:      %s\n", cfg.Relay.PathGrammar)
	fmt.Fprintf(out, "  upstream:     %s\n", cfg.Upstream.BaseURL)
	if cfg.Journal.Enabled {
		fmt.Fprintf(out, "  journal:      %s\n", cfg.Journal.Backend)
	} else {
		fmt.Fprintln(out, "  journal:      disabled")
	}
	if verbose {
		fmt.Fprintf(out, "  tls:          %t\n", cfg.Security.TLS.Enabled)
		fmt.Fprintf(out, "  metrics:      %t (%s)\n", cfg.Telemetry.Metrics.Enabled, cfg.Telemetry.Metrics.Path)
		fmt.Fprintf(out, "  tracing:      %t (%s)\n", cfg.Telemetry.Tracing.Enabled, cfg.Telemetry.Tracing.Endpoint)
		fmt.Fprintf(out, "  api keys:     %d\n", len(cfg.Security.Auth.APIKeys))
		fmt.Fprintf(out, "  log level:    %s\n", cfg.Telemetry.Logging.Level)
	}
	return nil
}

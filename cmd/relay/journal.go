package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/relay/pkg/cli"
	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/journal"
	"mercator-hq/relay/pkg/journal/export"
	"mercator-hq/relay/pkg/journal/query"
	"mercator-hq/relay/pkg/journal/retention"
	"mercator-hq/relay/pkg/journal/storage"
)

type journalOptions struct {
	format    string
	output    string
	pretty    bool
	progress  bool
	since     time.Duration
	timeRange string
	target    string
	status    string
	errorKind string
	limit     int
	offset    int

	maxAge     time.Duration
	maxRecords int64
	result     string
}

var journalFlags journalOptions

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect and maintain the exchange journal",
	Long: `Read and prune the journal of relayed exchanges.

The commands open the sqlite journal named in the configuration. A memory
journal only lives inside a running server and cannot be read here.`,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export journal records as JSON or CSV",
	Long: `Stream journal records matching the filters, newest first.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-10-18T00:00:00Z/2026-10-19T00:00:00Z"

Examples:
  # Last day as CSV
  relay journal export --format csv --since 24h

  # Failed requests for one target
  relay journal export --status error --target axis-cgi/param.cgi

  # Write to a file with a progress line on stderr
  relay journal export --output journal.json --progress`,
	Args: cobra.NoArgs,
	RunE: exportJournal,
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Delete journal records older than the retention max age and, when a
record cap is set, the oldest records above it.

Flags override the configured retention for this run only.`,
	Args: cobra.NoArgs,
	RunE: pruneJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalExportCmd, journalPruneCmd)

	f := journalExportCmd.Flags()
	f.StringVar(&journalFlags.format, "format", "json", "export format: json, csv")
	f.StringVarP(&journalFlags.output, "output", "o", "", "output file (default: stdout)")
	f.BoolVar(&journalFlags.pretty, "pretty", false, "indent JSON output")
	f.BoolVar(&journalFlags.progress, "progress", false, "report progress on stderr")
	f.DurationVar(&journalFlags.since, "since", 0, "only records from the last duration (e.g. 24h)")
	f.StringVar(&journalFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	f.StringVar(&journalFlags.target, "target", "", "filter by upstream target")
	f.StringVar(&journalFlags.status, "status", "", "filter by status: success, error")
	f.StringVar(&journalFlags.errorKind, "error-kind", "", "filter by error kind (e.g. invalid_query)")
	f.IntVar(&journalFlags.limit, "limit", query.MaxLimit, "max records")
	f.IntVar(&journalFlags.offset, "offset", 0, "pagination offset")

	p := journalPruneCmd.Flags()
	p.DurationVar(&journalFlags.maxAge, "max-age", 0, "override retention max age")
	p.Int64Var(&journalFlags.maxRecords, "max-records", 0, "override retention record cap")
	p.StringVarP(&journalFlags.result, "output", "o", "text", "output format: text, json")
}

// openJournal opens the configured sqlite journal.
func openJournal() (*config.Config, journal.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Journal.Backend != "sqlite" {
		return nil, nil, cli.NewConfigError(cfgFile,
			fmt.Errorf("journal commands need the sqlite backend, journal.backend is %q", cfg.Journal.Backend))
	}

	store, err := storage.NewStorage(&cfg.Journal)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func exportJournal(cmd *cobra.Command, args []string) error {
	q, err := buildExportQuery(time.Now())
	if err != nil {
		return cli.NewCommandError("journal export", err)
	}

	exporter, err := export.NewExporter(journalFlags.format, journalFlags.pretty)
	if err != nil {
		return cli.NewCommandError("journal export", err)
	}

	_, store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = cmd.OutOrStdout()
	if journalFlags.output != "" {
		file, err := os.Create(journalFlags.output)
		if err != nil {
			return cli.NewCommandError("journal export", fmt.Errorf("failed to create output file: %w", err))
		}
		defer file.Close()
		w = file
	}

	ctx := cmd.Context()
	if journalFlags.progress {
		total, err := store.Count(ctx, q)
		if err != nil {
			return cli.NewCommandError("journal export", err)
		}
		total = min(max(total-int64(q.Offset), 0), int64(q.Limit))

		progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "exported")
		progress.Start(total)
		exporter = &progressExporter{StreamExporter: exporter, progress: progress}
		defer progress.Finish()
	}

	if err := export.Stream(ctx, store, q, exporter, w); err != nil {
		return cli.NewCommandError("journal export", err)
	}
	return nil
}

// buildExportQuery turns the export flags into a journal query.
func buildExportQuery(now time.Time) (*journal.Query, error) {
	q := &journal.Query{
		Target:    journalFlags.target,
		Status:    journalFlags.status,
		ErrorKind: journalFlags.errorKind,
		Limit:     journalFlags.limit,
		Offset:    journalFlags.offset,
	}

	if journalFlags.since > 0 && journalFlags.timeRange != "" {
		return nil, fmt.Errorf("--since and --time-range are mutually exclusive")
	}

	if journalFlags.since > 0 {
		start := now.Add(-journalFlags.since)
		q.StartTime = &start
	}

	if journalFlags.timeRange != "" {
		parts := strings.Split(journalFlags.timeRange, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid time range format (expected: start/end)")
		}

		start, err := time.Parse(time.RFC3339, parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid start time: %w", err)
		}
		end, err := time.Parse(time.RFC3339, parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid end time: %w", err)
		}
		q.StartTime = &start
		q.EndTime = &end
	}

	if err := query.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

// progressExporter counts records on their way to the wrapped exporter.
type progressExporter struct {
	export.StreamExporter
	progress cli.ProgressReporter
}

func (p *progressExporter) ExportStream(ctx context.Context, recordsCh <-chan *journal.Record, w io.Writer) error {
	counted := make(chan *journal.Record)
	go func() {
		defer close(counted)
		for record := range recordsCh {
			counted <- record
			p.progress.Add(1)
		}
	}()

	err := p.StreamExporter.ExportStream(ctx, counted, w)
	// Drain so the forwarder and the storage producer can finish.
	for range counted {
	}
	if err != nil {
		p.progress.Error(err)
	}
	return err
}

type pruneResult struct {
	Deleted    int64  `json:"deleted"`
	MaxAge     string `json:"max_age,omitempty"`
	MaxRecords int64  `json:"max_records,omitempty"`
}

func (r pruneResult) String() string {
	return fmt.Sprintf("deleted %d records", r.Deleted)
}

func pruneJournal(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(journalFlags.result)
	if err != nil {
		return err
	}

	cfg, store, err := openJournal()
	if err != nil {
		return err
	}
	defer store.Close()

	retentionCfg := &retention.Config{
		MaxAge:        cfg.Journal.Retention.MaxAge,
		MaxRecords:    cfg.Journal.Retention.MaxRecords,
		PruneSchedule: cfg.Journal.Retention.PruneSchedule,
	}
	if journalFlags.maxAge > 0 {
		retentionCfg.MaxAge = journalFlags.maxAge
	}
	if journalFlags.maxRecords > 0 {
		retentionCfg.MaxRecords = journalFlags.maxRecords
	}

	deleted, err := retention.NewPruner(store, retentionCfg, nil).Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("journal prune", err)
	}

	result := pruneResult{Deleted: deleted, MaxRecords: retentionCfg.MaxRecords}
	if retentionCfg.MaxAge > 0 {
		result.MaxAge = retentionCfg.MaxAge.String()
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}

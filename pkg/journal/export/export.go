package export

import (
	"context"
	"fmt"
	"io"

	"mercator-hq/relay/pkg/journal"
)

// StreamExporter is an exporter that can also consume a record stream.
type StreamExporter interface {
	journal.Exporter
	ExportStream(ctx context.Context, recordsCh <-chan *journal.Record, w io.Writer) error
}

// Formats lists the accepted export formats.
var Formats = []string{"json", "csv"}

// NewExporter returns the exporter for format.
func NewExporter(format string, pretty bool) (StreamExporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(pretty), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, journal.NewExportError(format, 0, fmt.Errorf("unsupported format %q (must be one of %v)", format, Formats))
	}
}

// Stream runs q against storage and writes the result to w.
func Stream(ctx context.Context, storage journal.Storage, q *journal.Query, exporter StreamExporter, w io.Writer) error {
	recordsCh, errCh, err := storage.QueryStream(ctx, q)
	if err != nil {
		return err
	}

	if err := exporter.ExportStream(ctx, recordsCh, w); err != nil {
		// Unblock the producer before returning.
		for range recordsCh {
		}
		return err
	}
	return <-errCh
}

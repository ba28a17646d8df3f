package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"mercator-hq/relay/pkg/journal"
)

// CSVExporter writes records as CSV rows.
type CSVExporter struct {
	// IncludeHeader writes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Header is the CSV column order.
var Header = []string{
	"id", "request_id",
	"method", "path", "target", "remote_addr", "user_agent", "entry_count", "request_hash",
	"status_code", "content_type", "response_size", "response_hash",
	"error_kind", "error",
	"duration_ms", "request_time", "recorded_at",
}

// Export writes records to w.
func (e *CSVExporter) Export(ctx context.Context, records []*journal.Record, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header); err != nil {
			return journal.NewExportError("csv", 0, err)
		}
	}

	for i, record := range records {
		if err := writer.Write(recordToRow(record)); err != nil {
			return journal.NewExportError("csv", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return journal.NewExportError("csv", len(records), err)
	}
	return nil
}

// ExportStream writes records from recordsCh until it is closed, flushing
// every 100 rows.
func (e *CSVExporter) ExportStream(ctx context.Context, recordsCh <-chan *journal.Record, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(Header); err != nil {
			return journal.NewExportError("csv", 0, err)
		}
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return journal.NewExportError("csv", recordCount, err)
				}
				return nil
			}

			if err := writer.Write(recordToRow(record)); err != nil {
				return journal.NewExportError("csv", recordCount, err)
			}
			recordCount++

			if recordCount%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return journal.NewExportError("csv", recordCount, err)
				}
			}
		}
	}
}

func recordToRow(record *journal.Record) []string {
	formatTime := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	}

	return []string{
		record.ID,
		record.RequestID,
		record.Method,
		record.Path,
		record.Target,
		record.RemoteAddr,
		record.UserAgent,
		strconv.Itoa(record.EntryCount),
		record.RequestHash,
		strconv.Itoa(record.StatusCode),
		record.ContentType,
		strconv.FormatInt(record.ResponseSize, 10),
		record.ResponseHash,
		record.ErrorKind,
		record.Error,
		strconv.FormatInt(record.Duration.Milliseconds(), 10),
		formatTime(record.RequestTime),
		formatTime(record.RecordedAt),
	}
}

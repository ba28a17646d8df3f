package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/relay/pkg/journal"
)

// JSONExporter writes records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// Export writes records as a JSON array, "[]" when there are none.
func (e *JSONExporter) Export(ctx context.Context, records []*journal.Record, w io.Writer) error {
	if records == nil {
		records = []*journal.Record{}
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(records, "", "  ")
	} else {
		data, err = json.Marshal(records)
	}
	if err != nil {
		return journal.NewExportError("json", 0, err)
	}

	if _, err := w.Write(data); err != nil {
		return journal.NewExportError("json", 0, err)
	}
	return nil
}

// ExportStream writes records from recordsCh as one JSON array without
// holding them in memory. It returns when recordsCh is closed.
func (e *JSONExporter) ExportStream(ctx context.Context, recordsCh <-chan *journal.Record, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return journal.NewExportError("json", 0, err)
	}

	recordCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case record, ok := <-recordsCh:
			if !ok {
				closing := "]"
				if e.Pretty && recordCount > 0 {
					closing = "\n]"
				}
				if _, err := io.WriteString(w, closing); err != nil {
					return journal.NewExportError("json", recordCount, err)
				}
				return nil
			}

			sep := ""
			if recordCount > 0 {
				sep = ","
			}
			if e.Pretty {
				sep += "\n  "
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return journal.NewExportError("json", recordCount, err)
			}

			data, err := e.serializeRecord(record)
			if err != nil {
				return journal.NewExportError("json", recordCount, err)
			}
			if _, err := w.Write(data); err != nil {
				return journal.NewExportError("json", recordCount, err)
			}

			recordCount++
		}
	}
}

func (e *JSONExporter) serializeRecord(record *journal.Record) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(record, "  ", "  ")
	}
	return json.Marshal(record)
}

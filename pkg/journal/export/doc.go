// Package export writes journal records as JSON or CSV.
//
// Export works on a slice; ExportStream consumes the channel returned by
// journal.Storage.QueryStream so large journals are written without loading
// every record. Stream wires the two together and is what the
// "relay journal export" command uses.
package export

// Relay serves an HTTP endpoint that turns query strings into JSON documents
// and forwards them to a local device API.
//
// Usage:
//
//	# Start the relay with defaults (127.0.0.1:2001 -> http://127.0.0.12)
//	relay run
//
//	# Start with a configuration file
//	relay run --config /etc/relay/relay.yaml
//
//	# Show the document a query string becomes
//	relay materialize 'params.Image.Resolution=1920x1080&params.count.=3'
//
//	# Export the journal as CSV
//	relay journal export --format csv --since 24h
package main

import "os"

func main() {
	os.Exit(Execute())
}

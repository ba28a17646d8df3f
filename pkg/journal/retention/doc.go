// Package retention keeps the journal bounded.
//
// Pruner.Prune deletes records older than MaxAge and then the oldest
// records beyond MaxRecords. Scheduler runs Prune on a cron schedule
// (github.com/robfig/cron/v3); the "relay journal prune" command runs it
// once by hand.
package retention

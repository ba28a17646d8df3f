package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/relay/pkg/journal"
	"mercator-hq/relay/pkg/journal/query"
)

// PruneObserver is told how many records each prune removed.
// *metrics.Collector satisfies it.
type PruneObserver interface {
	RecordJournalPrune(deleted int64)
}

// Config contains configuration for the retention pruner.
type Config struct {
	// MaxAge deletes records whose request time is older than now - MaxAge.
	// 0 disables age-based pruning.
	MaxAge time.Duration

	// MaxRecords keeps at most this many records, oldest deleted first.
	// 0 disables count-based pruning.
	MaxRecords int64

	// PruneSchedule is a standard cron expression for Scheduler.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAge:        30 * 24 * time.Hour,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces retention on a journal.
type Pruner struct {
	storage  journal.Storage
	config   *Config
	observer PruneObserver
	now      func() time.Time
	logger   *slog.Logger
}

// NewPruner creates a new retention pruner. observer may be nil.
func NewPruner(storage journal.Storage, config *Config, observer PruneObserver) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	return &Pruner{
		storage:  storage,
		config:   config,
		observer: observer,
		now:      time.Now,
		logger:   slog.Default().With("component", "journal.retention"),
	}
}

// Config returns the pruner's configuration.
func (p *Pruner) Config() *Config {
	return p.config
}

// Prune deletes records older than MaxAge, then the oldest records beyond
// MaxRecords, and returns the total number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.MaxAge > 0 {
		deleted, err := p.pruneByAge(ctx)
		totalDeleted += deleted
		if err != nil {
			p.observe(totalDeleted)
			return totalDeleted, journal.NewRetentionError("age", err)
		}
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		totalDeleted += deleted
		if err != nil {
			p.observe(totalDeleted)
			return totalDeleted, journal.NewRetentionError("count", err)
		}
	}

	p.observe(totalDeleted)

	if totalDeleted == 0 {
		p.logger.Debug("no journal records pruned",
			"max_age", p.config.MaxAge,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Info("journal pruning completed",
			"total_deleted", totalDeleted,
			"max_age", p.config.MaxAge,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.config.MaxAge)

	p.logger.Debug("pruning by age", "cutoff_time", cutoff)

	// EndTime is inclusive; move it one nanosecond back so the cutoff
	// itself survives.
	end := cutoff.Add(-time.Nanosecond)
	return p.storage.Delete(ctx, &journal.Query{EndTime: &end})
}

// pruneByCount deletes the oldest records beyond MaxRecords in batches of
// query.MaxLimit IDs.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &journal.Query{})
	if err != nil {
		return 0, err
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	excess := count - p.config.MaxRecords
	p.logger.Info("journal exceeds record limit, pruning oldest",
		"current_count", count,
		"max_records", p.config.MaxRecords,
		"to_delete", excess,
	)

	var deleted int64
	for excess > 0 {
		batch := excess
		if batch > query.MaxLimit {
			batch = query.MaxLimit
		}

		oldest, err := p.storage.Query(ctx, &journal.Query{
			SortBy:    "request_time",
			SortOrder: "asc",
			Limit:     int(batch),
		})
		if err != nil {
			return deleted, err
		}
		if len(oldest) == 0 {
			break
		}

		ids := make([]string, len(oldest))
		for i, r := range oldest {
			ids[i] = r.ID
		}

		n, err := p.storage.Delete(ctx, &journal.Query{IDs: ids})
		deleted += n
		if err != nil {
			return deleted, err
		}
		if n == 0 {
			break
		}
		excess -= n
	}

	return deleted, nil
}

func (p *Pruner) observe(deleted int64) {
	if p.observer != nil {
		p.observer.RecordJournalPrune(deleted)
	}
}

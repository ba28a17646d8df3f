package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/relay/pkg/journal"
	"mercator-hq/relay/pkg/proxy"
)

// Write results reported to a WriteObserver.
const (
	ResultStored  = "stored"
	ResultDropped = "dropped"
	ResultFailed  = "failed"
)

// WriteObserver is told the result of every record. *metrics.Collector
// satisfies it.
type WriteObserver interface {
	RecordJournalWrite(result string)
}

// Config contains configuration for the journal recorder.
type Config struct {
	// AsyncBuffer is the size of the write queue. Records that arrive while
	// it is full are dropped.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes journal records in the background so that recording never
// delays or fails a relay request.
type Recorder struct {
	storage    journal.Storage
	config     *Config
	observer   WriteObserver
	recordChan chan *journal.Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	mu         sync.RWMutex
	closed     bool
	logger     *slog.Logger
}

// NewRecorder starts a recorder writing to storage. observer may be nil.
func NewRecorder(storage journal.Storage, config *Config, observer WriteObserver) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		observer:   observer,
		recordChan: make(chan *journal.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "journal.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record builds a journal record for one exchange and queues it. It never
// blocks: when the queue is full or the recorder is closed the record is
// dropped and false is returned.
func (r *Recorder) Record(ctx context.Context, req *proxy.RequestMetadata, resp *proxy.ResponseMetadata) bool {
	record := NewRecord(req, resp)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.WarnContext(ctx, "recorder closed, dropping journal record",
			"record_id", record.ID,
		)
		r.observe(ResultDropped)
		return false
	}

	select {
	case r.recordChan <- record:
		return true
	default:
		r.logger.WarnContext(ctx, "journal queue full, dropping record",
			"record_id", record.ID,
			"queue_capacity", r.config.AsyncBuffer,
		)
		r.observe(ResultDropped)
		return false
	}
}

// Close stops accepting records, writes everything already queued and
// returns once the queue is drained.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down journal recorder")

		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.done)
		r.wg.Wait()

		r.logger.Info("journal recorder shut down complete")
	})
	return nil
}

// Pending returns the number of queued records.
func (r *Recorder) Pending() int {
	return len(r.recordChan)
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Debug("draining journal queue before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *journal.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	record.RecordedAt = start.UTC()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store journal record",
			"record_id", record.ID,
			"request_id", record.RequestID,
			"error", err,
		)
		r.observe(ResultFailed)
		return
	}
	r.observe(ResultStored)

	duration := time.Since(start)
	r.logger.Debug("journal record stored",
		"record_id", record.ID,
		"request_id", record.RequestID,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow journal write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

func (r *Recorder) observe(result string) {
	if r.observer != nil {
		r.observer.RecordJournalWrite(result)
	}
}

// NewRecord converts exchange metadata to a journal record.
func NewRecord(req *proxy.RequestMetadata, resp *proxy.ResponseMetadata) *journal.Record {
	record := &journal.Record{
		ID:           uuid.NewString(),
		RequestID:    req.RequestID,
		Method:       req.Method,
		Path:         req.Path,
		Target:       req.Target,
		RemoteAddr:   req.RemoteAddr,
		UserAgent:    req.UserAgent,
		EntryCount:   req.EntryCount,
		StatusCode:   resp.StatusCode,
		ContentType:  resp.ContentType,
		ResponseSize: int64(len(resp.Body)),
		ResponseHash: HashContent(resp.Body),
		Duration:     resp.Latency,
		RequestTime:  req.Timestamp.UTC(),
	}

	if req.Document != nil {
		if body, err := json.Marshal(req.Document); err == nil {
			record.RequestHash = HashContent(body)
		}
	}

	if resp.Error != nil {
		record.ErrorKind = resp.Error.Kind.String()
		record.Error = resp.Error.Error()
	}

	return record
}

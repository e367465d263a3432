package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	latestKeyPrefix = "location:latest:"
	latestTTL       = 30 * time.Minute

	defaultBufferSize    = 1024
	defaultFlushInterval = 2 * time.Second
	defaultBatchSize     = 50
)

func latestKey(employeeID string) string {
	return latestKeyPrefix + employeeID
}

// Sink is what the attendance engine writes raw samples to. Append must
// never block and never fail from the engine's perspective.
//
//go:generate mockgen -source=history_writer.go -destination=mock/history_sink_mock.go -package=mock
type Sink interface {
	Append(sample Sample)
	Latest(ctx context.Context, employeeID string) (*Sample, error)
}

// Writer buffers samples on a channel and flushes them to the repository
// in batches. A full buffer drops the sample and logs it; the producer is
// never back-pressured.
type Writer struct {
	repo   Repository
	rdb    *redis.Client
	buf    chan Sample
	done   chan struct{}
	logger *zap.Logger

	flushInterval time.Duration
	batchSize     int
}

func NewWriter(repo Repository, rdb *redis.Client, logger ...*zap.Logger) *Writer {
	l := zap.L().Named("history.writer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("history.writer")
	}
	return &Writer{
		repo:          repo,
		rdb:           rdb,
		buf:           make(chan Sample, defaultBufferSize),
		done:          make(chan struct{}),
		logger:        l,
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
	}
}

// Run flushes batches until ctx is cancelled, then drains what is left.
func (w *Writer) Run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	w.logger.Info("history writer started",
		zap.Duration("flush_interval", w.flushInterval),
		zap.Int("batch_size", w.batchSize),
	)

	pending := make([]Sample, 0, w.batchSize)
	for {
		select {
		case <-ctx.Done():
			w.drain(pending)
			w.logger.Info("history writer stopped")
			return
		case sample := <-w.buf:
			w.cacheLatest(sample)
			pending = append(pending, sample)
			if len(pending) >= w.batchSize {
				pending = w.flush(pending)
			}
		case <-ticker.C:
			pending = w.flush(pending)
		}
	}
}

func (w *Writer) Append(sample Sample) {
	select {
	case w.buf <- sample:
	default:
		w.logger.Warn("history buffer full, sample dropped",
			zap.String("employee_id", sample.EmployeeID.String()),
			zap.Time("timestamp", sample.Timestamp),
		)
	}
}

// Latest reads the cached last position; on a cache miss it falls back
// to the newest persisted sample.
func (w *Writer) Latest(ctx context.Context, employeeID string) (*Sample, error) {
	if w.rdb != nil {
		if cached, err := w.rdb.Get(ctx, latestKey(employeeID)).Result(); err == nil {
			var s Sample
			if json.Unmarshal([]byte(cached), &s) == nil {
				return &s, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			w.logger.Warn("latest location cache read failed", zap.Error(err))
		}
	}

	rows, err := w.repo.FindByEmployee(ctx, employeeID, nil, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (w *Writer) cacheLatest(sample Sample) {
	if w.rdb == nil {
		return
	}
	payload, err := json.Marshal(sample)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.rdb.Set(ctx, latestKey(sample.EmployeeID.String()), payload, latestTTL).Err(); err != nil {
		w.logger.Warn("latest location cache write failed", zap.Error(err))
	}
}

func (w *Writer) flush(pending []Sample) []Sample {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.repo.CreateBatch(ctx, pending); err != nil {
		w.logger.Error("flush location samples failed",
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
		// Keep the batch; it retries on the next tick unless it has
		// grown past twice the batch size.
		if len(pending) < w.batchSize*2 {
			return pending
		}
		w.logger.Warn("discarding unflushable samples", zap.Int("count", len(pending)))
	}
	return pending[:0]
}

func (w *Writer) drain(pending []Sample) {
	for {
		select {
		case sample := <-w.buf:
			pending = append(pending, sample)
		default:
			w.flush(pending)
			return
		}
	}
}

// Done is closed once Run has drained and returned.
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

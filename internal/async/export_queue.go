package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/receipts-insights/constants"
)

// Exporter writes share id into dir and returns the file path.
type Exporter interface {
	ExportToDir(ctx context.Context, id, dir string) (string, error)
}

// JobState is the last known state of a share's export.
type JobState struct {
	Status    constants.JobStatus
	Path      string
	Error     string
	UpdatedAt time.Time
}

// ExportQueue runs share exports on a fixed pool of workers.
type ExportQueue struct {
	exporter Exporter
	dir      string
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex // guards closed and sends on ch
	closed bool

	statesMu sync.Mutex
	states   map[string]JobState
}

type Option func(*ExportQueue)

func WithWorkers(n int) Option {
	return func(q *ExportQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ExportQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ExportQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewExportQueue(exporter Exporter, dir string, logger *slog.Logger, opts ...Option) *ExportQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ExportQueue{
		exporter: exporter,
		dir:      dir,
		logger:   logger,
		workers:  2,
		timeout:  time.Minute,
		ch:       make(chan Job, 64),
		states:   make(map[string]JobState),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ExportQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("export worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("export worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ExportQueue) run(workerID int, job Job) {
	q.setState(job.ShareID, JobState{Status: constants.JobStatusRunning})

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	path, err := q.exporter.ExportToDir(ctx, job.ShareID, q.dir)
	cancel()

	if err != nil {
		q.logger.Error("export failed", "worker_id", workerID, "share_id", job.ShareID, "request_id", job.RequestID, "error", err)
		q.setState(job.ShareID, JobState{Status: constants.JobStatusFailed, Error: err.Error()})
		return
	}
	q.logger.Info("export finished", "worker_id", workerID, "share_id", job.ShareID, "path", path,
		"queued_for", time.Since(job.SubmittedAt))
	q.setState(job.ShareID, JobState{Status: constants.JobStatusDone, Path: path})
}

// Enqueue schedules job, blocking while the queue is full unless ctx ends
// first.
func (q *ExportQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "share_id", job.ShareID)
		return ErrQueueClosed
	}
	q.setState(job.ShareID, JobState{Status: constants.JobStatusQueued})

	select {
	case q.ch <- job:
		q.logger.Info("queued share for export", "share_id", job.ShareID)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "share_id", job.ShareID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		q.statesMu.Lock()
		delete(q.states, job.ShareID)
		q.statesMu.Unlock()
		return ctx.Err()
	}
}

// State reports the export state of shareID.
func (q *ExportQueue) State(shareID string) (JobState, bool) {
	q.statesMu.Lock()
	defer q.statesMu.Unlock()
	st, ok := q.states[shareID]
	return st, ok
}

func (q *ExportQueue) setState(shareID string, st JobState) {
	st.UpdatedAt = time.Now()
	q.statesMu.Lock()
	q.states[shareID] = st
	q.statesMu.Unlock()
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx
// to end.
func (q *ExportQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("export queue drained, shutdown complete")
	}
}

// Package async bounds concurrency of structuring-provider calls across all
// in-flight extraction jobs with a fixed worker pool.
package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Sourabsb/tbi-hackathon/internal/llm"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

// ErrPoolClosed is returned by Submit once the pool is shutting down.
var ErrPoolClosed = errors.New("extraction pool is shut down")

type task struct {
	ctx   context.Context
	req   llm.ExtractRequest
	reply chan result
}

type result struct {
	records []record.Record
	err     error
}

// ExtractorPool funnels ExtractRecords calls through a bounded set of
// workers. Callers block until their own call completes, so per-job file
// ordering is preserved while total provider concurrency stays capped.
type ExtractorPool struct {
	extractor llm.RecordExtractor
	logger    *slog.Logger
	workers   int
	timeout   time.Duration

	ch   chan task
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ExtractorPool)

func WithWorkers(n int) Option {
	return func(p *ExtractorPool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *ExtractorPool) {
		if n > 0 {
			p.ch = make(chan task, n)
		}
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(p *ExtractorPool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewExtractorPool(extractor llm.RecordExtractor, logger *slog.Logger, opts ...Option) *ExtractorPool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &ExtractorPool{
		extractor: extractor,
		logger:    logger,
		workers:   4,
		timeout:   2 * time.Minute,
		ch:        make(chan task, 256),
	}
	for _, o := range opts {
		o(p)
	}
	p.start()
	return p
}

func (p *ExtractorPool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func(workerID int) {
				defer p.wg.Done()
				p.logger.Info("pool.worker.started", "worker_id", workerID)

				for t := range p.ch {
					ctx, cancel := context.WithTimeout(t.ctx, p.timeout)
					recs, err := p.extractor.ExtractRecords(ctx, t.req)
					cancel()

					if err != nil {
						p.logger.Error("pool.extract.failed",
							"worker_id", workerID, "filename", t.req.Filename, "error", err)
					}
					t.reply <- result{records: recs, err: err}
				}

				p.logger.Info("pool.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Submit queues an extraction call and waits for its outcome. The caller's
// context cancels both the wait and the provider call.
func (p *ExtractorPool) Submit(ctx context.Context, req llm.ExtractRequest) ([]record.Record, error) {
	t := task{ctx: ctx, req: req, reply: make(chan result, 1)}

	// The lock is held across the send so Shutdown can never close the
	// channel with an enqueue in flight.
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	select {
	case p.ch <- t:
	default:
		p.logger.Warn("pool.queue_full", "filename", req.Filename)
		p.ch <- t
	}
	p.mu.Unlock()

	select {
	case res := <-t.reply:
		return res.records, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown stops accepting work and waits for queued calls to drain, or for
// ctx to expire.
func (p *ExtractorPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); p.wg.Wait() }()

	select {
	case <-ctx.Done():
		p.logger.Warn("pool.shutdown_interrupted")
	case <-done:
		p.logger.Info("pool.drained")
	}
}

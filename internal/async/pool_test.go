package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sourabsb/tbi-hackathon/internal/llm"
	"github.com/Sourabsb/tbi-hackathon/internal/record"
)

type fakeExtractor struct {
	mu       sync.Mutex
	inflight int32
	peak     int32
	delay    time.Duration
	fn       func(req llm.ExtractRequest) ([]record.Record, error)
}

func (f *fakeExtractor) ExtractRecords(ctx context.Context, req llm.ExtractRequest) ([]record.Record, error) {
	cur := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)

	f.mu.Lock()
	if cur > f.peak {
		f.peak = cur
	}
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.fn != nil {
		return f.fn(req)
	}
	return []record.Record{{Event: "from " + req.Filename}}, nil
}

func TestSubmitReturnsWorkerResult(t *testing.T) {
	fe := &fakeExtractor{}
	p := NewExtractorPool(fe, nil, WithWorkers(2))
	defer p.Shutdown(context.Background())

	recs, err := p.Submit(context.Background(), llm.ExtractRequest{Text: "x", Filename: "a.png"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "from a.png", recs[0].Event)
}

func TestSubmitPropagatesExtractorError(t *testing.T) {
	wantErr := errors.New("provider down")
	fe := &fakeExtractor{fn: func(llm.ExtractRequest) ([]record.Record, error) { return nil, wantErr }}
	p := NewExtractorPool(fe, nil, WithWorkers(1))
	defer p.Shutdown(context.Background())

	_, err := p.Submit(context.Background(), llm.ExtractRequest{Filename: "a.png"})
	assert.ErrorIs(t, err, wantErr)
}

func TestConcurrencyBoundedByWorkers(t *testing.T) {
	fe := &fakeExtractor{delay: 50 * time.Millisecond}
	p := NewExtractorPool(fe, nil, WithWorkers(2), WithQueueSize(16))
	defer p.Shutdown(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = p.Submit(context.Background(), llm.ExtractRequest{Filename: "f.png"})
		}()
	}
	wg.Wait()

	fe.mu.Lock()
	defer fe.mu.Unlock()
	assert.LessOrEqual(t, fe.peak, int32(2))
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := NewExtractorPool(&fakeExtractor{}, nil, WithWorkers(1))
	p.Shutdown(context.Background())

	_, err := p.Submit(context.Background(), llm.ExtractRequest{Filename: "a.png"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestSubmitHonorsCallerContext(t *testing.T) {
	fe := &fakeExtractor{delay: time.Second}
	p := NewExtractorPool(fe, nil, WithWorkers(1))
	defer p.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Submit(ctx, llm.ExtractRequest{Filename: "slow.png"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package storage

import (
	"context"
	"sync"

	"eggcelent-store/internal/logger"
	"eggcelent-store/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type MirrorOptions struct {
	// Rate and Burst pace durable writes; zero Rate means unlimited.
	Rate    float64
	Burst   int
	Metrics *metrics.StoreMetrics
}

// Mirror copies in-memory state to a Store in the background. Scheduled
// batches coalesce per key so only the latest state of a key is written, at
// most one write is in flight, and all keys pending at the time of a write go
// out in a single atomic batch. Write failures are logged and dropped.
type Mirror struct {
	name    string
	store   Store
	limiter *rate.Limiter
	metrics *metrics.StoreMetrics

	mu        sync.Mutex
	pending   *Batch
	scheduled uint64
	attempted uint64
	waiters   []flushWaiter
	closed    bool

	wake   chan struct{}
	stop   chan struct{}
	done   chan struct{}
	cancel context.CancelFunc
	ctx    context.Context
}

type flushWaiter struct {
	gen uint64
	ch  chan struct{}
}

func NewMirror(name string, store Store, opts MirrorOptions) *Mirror {
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Mirror{
		name:    name,
		store:   store,
		limiter: rate.NewLimiter(limit, burst),
		metrics: opts.Metrics,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
	go m.run()
	return m
}

// Schedule queues batch for writing and returns immediately.
func (m *Mirror) Schedule(ctx context.Context, batch *Batch) {
	if batch.Len() == 0 {
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		logger.FromCtx(ctx).Warn("mirror closed, dropping write",
			zap.String("mirror", m.name),
			zap.Strings("keys", batch.Keys()),
		)
		return
	}

	if m.pending == nil {
		m.pending = NewBatch()
	}
	for i := m.pending.merge(batch); i > 0; i-- {
		m.metrics.KeyCoalesced(m.name)
	}
	m.scheduled++
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Flush blocks until every batch scheduled before the call has been written
// or has failed.
func (m *Mirror) Flush(ctx context.Context) error {
	m.mu.Lock()
	if m.attempted >= m.scheduled {
		m.mu.Unlock()
		return nil
	}
	w := flushWaiter{gen: m.scheduled, ch: make(chan struct{})}
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()

	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes whatever is pending without pacing and stops the worker.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	close(m.stop)

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) run() {
	defer close(m.done)

	for {
		select {
		case <-m.wake:
			// a cancelled limiter only means Close is draining
			_ = m.limiter.Wait(m.ctx)
			m.writePending()
		case <-m.stop:
			m.writePending()
			return
		}
	}
}

func (m *Mirror) writePending() {
	m.mu.Lock()
	batch := m.pending
	gen := m.scheduled
	m.pending = nil
	m.mu.Unlock()

	if batch.Len() > 0 {
		m.write(batch)
	}

	m.mu.Lock()
	m.attempted = gen
	remaining := m.waiters[:0]
	for _, w := range m.waiters {
		if w.gen <= gen {
			close(w.ch)
			continue
		}
		remaining = append(remaining, w)
	}
	m.waiters = remaining
	m.mu.Unlock()
}

func (m *Mirror) write(batch *Batch) {
	log := logger.L().With(
		zap.String("layer", "storage"),
		zap.String("mirror", m.name),
		zap.Strings("keys", batch.Keys()),
	)

	timer := metrics.StartTimer()
	if err := m.store.Apply(context.Background(), batch); err != nil {
		m.metrics.BatchFailed(m.name)
		log.Error("durable write failed", zap.Error(err))
		return
	}

	m.metrics.BatchWritten(m.name, timer.Duration())
	log.Debug("durable write done", zap.Duration("duration", timer.Duration()))
}

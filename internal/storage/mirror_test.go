package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eggcelent-store/internal/logger"
	"eggcelent-store/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// gatedStore records every batch and can hold Apply until released.
type gatedStore struct {
	*MemoryStore

	mu      sync.Mutex
	batches [][]Op
	started chan struct{}
	release chan struct{}
	err     error
}

func newGatedStore() *gatedStore {
	return &gatedStore{MemoryStore: NewMemoryStore()}
}

func (g *gatedStore) Apply(ctx context.Context, batch *Batch) error {
	g.mu.Lock()
	g.batches = append(g.batches, batch.Ops())
	started, release, err := g.started, g.release, g.err
	// only the first write is gated
	g.started, g.release = nil, nil
	g.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return err
	}
	return g.MemoryStore.Apply(ctx, batch)
}

func (g *gatedStore) recorded() [][]Op {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([][]Op(nil), g.batches...)
}

func TestMirror_FlushWritesScheduledState(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	m := NewMirror("cart", store, MirrorOptions{})
	defer m.Close(ctx)

	m.Schedule(ctx, NewBatch().Set("cart", "[1]"))
	require.NoError(t, m.Flush(ctx))

	v, ok, err := store.Get(ctx, "cart")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1]", v)
}

func TestMirror_CoalescesWhileWriteInFlight(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	started, release := make(chan struct{}), make(chan struct{})
	store.started, store.release = started, release

	reg := prometheus.NewRegistry()
	m := NewMirror("cart", store, MirrorOptions{Metrics: metrics.NewStoreMetrics(reg)})
	defer m.Close(ctx)

	m.Schedule(ctx, NewBatch().Set("cart", "v1"))
	<-started

	// first write is in flight; these three collapse into one
	m.Schedule(ctx, NewBatch().Set("cart", "v2"))
	m.Schedule(ctx, NewBatch().Set("cart", "v3"))
	m.Schedule(ctx, NewBatch().Set("orders", "o1"))

	close(release)

	require.NoError(t, m.Flush(ctx))

	batches := store.recorded()
	require.Len(t, batches, 2)
	assert.Equal(t, []Op{{Key: "cart", Value: "v1"}}, batches[0])
	assert.Equal(t, []Op{
		{Key: "cart", Value: "v3"},
		{Key: "orders", Value: "o1"},
	}, batches[1])

	v, _, _ := store.Get(ctx, "cart")
	assert.Equal(t, "v3", v)
}

func TestMirror_FailureIsLoggedAndSwallowed(t *testing.T) {
	core, observed := observer.New(zapcore.ErrorLevel)
	defer logger.Replace(zap.New(core))()

	ctx := context.Background()
	store := newGatedStore()
	store.err = errors.New("storage unavailable")
	m := NewMirror("session", store, MirrorOptions{})
	defer m.Close(ctx)

	m.Schedule(ctx, NewBatch().Set("user", "{}"))
	require.NoError(t, m.Flush(ctx))

	logs := observed.FilterMessage("durable write failed").All()
	require.Len(t, logs, 1)
	assert.Equal(t, "session", logs[0].ContextMap()["mirror"])

	_, ok, _ := store.Get(ctx, "user")
	assert.False(t, ok)
}

func TestMirror_CloseDrainsPending(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	// one write per hour: only Close can get the second batch out in time
	m := NewMirror("cart", store, MirrorOptions{Rate: 1.0 / 3600, Burst: 1})

	m.Schedule(ctx, NewBatch().Set("a", "1"))
	require.NoError(t, m.Flush(ctx))
	m.Schedule(ctx, NewBatch().Set("b", "2"))

	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, m.Close(closeCtx))

	v, ok, _ := store.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	// idempotent, and late writes are dropped
	assert.NoError(t, m.Close(ctx))
	m.Schedule(ctx, NewBatch().Set("c", "3"))
	assert.NoError(t, m.Flush(ctx))
	_, ok, _ = store.Get(ctx, "c")
	assert.False(t, ok)
}

func TestMirror_FlushHonoursContext(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	started, release := make(chan struct{}), make(chan struct{})
	store.started, store.release = started, release
	m := NewMirror("cart", store, MirrorOptions{})

	m.Schedule(ctx, NewBatch().Set("a", "1"))
	<-started

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Flush(short), context.DeadlineExceeded)

	close(release)
	require.NoError(t, m.Close(ctx))
}

func TestMirror_EmptyBatchIgnored(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	m := NewMirror("cart", store, MirrorOptions{})
	defer m.Close(ctx)

	m.Schedule(ctx, NewBatch())
	require.NoError(t, m.Flush(ctx))
	assert.Empty(t, store.recorded())
}

package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics tracks the durable mirror and the storefront stores.
type StoreMetrics struct {
	batchesWritten *prometheus.CounterVec
	batchesFailed  *prometheus.CounterVec
	keysCoalesced  *prometheus.CounterVec
	writeDuration  *prometheus.HistogramVec

	ordersPlaced    prometheus.Counter
	sessionsStarted prometheus.Counter
}

// NewStoreMetrics registers the collectors on registerer (default registerer when nil).
func NewStoreMetrics(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		batchesWritten: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_mirror_batches_written_total",
			Help: "Batches written to durable storage",
		}, []string{"mirror"})),
		batchesFailed: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_mirror_batches_failed_total",
			Help: "Batches that failed to reach durable storage",
		}, []string{"mirror"})),
		keysCoalesced: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_mirror_keys_coalesced_total",
			Help: "Pending writes replaced by a newer state before being written",
		}, []string{"mirror"})),
		writeDuration: register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_mirror_write_duration_seconds",
			Help:    "Duration of durable batch writes",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"mirror"})),
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders created at checkout",
		})),
		sessionsStarted: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_sessions_started_total",
			Help: "Sessions created by login or registration",
		})),
	}
}

// register returns the already registered collector of the same kind if there is one.
func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := already.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type: %v", err))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

func (m *StoreMetrics) BatchWritten(mirror string, d time.Duration) {
	if m == nil {
		return
	}
	m.batchesWritten.WithLabelValues(mirror).Inc()
	m.writeDuration.WithLabelValues(mirror).Observe(d.Seconds())
}

func (m *StoreMetrics) BatchFailed(mirror string) {
	if m == nil {
		return
	}
	m.batchesFailed.WithLabelValues(mirror).Inc()
}

func (m *StoreMetrics) KeyCoalesced(mirror string) {
	if m == nil {
		return
	}
	m.keysCoalesced.WithLabelValues(mirror).Inc()
}

func (m *StoreMetrics) OrderPlaced() {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *StoreMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

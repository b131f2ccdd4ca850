package engine

import (
	"time"

	"github.com/leapstack-labs/leapviz/pkg/core"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	Operations  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	RowsWritten *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leapviz_operations_total",
		Help: "Total engine operations by outcome",
	}, []string{"operation", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leapviz_operation_duration_seconds",
		Help:    "Engine operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	rowsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leapviz_rows_written_total",
		Help: "Rows committed to the row store by source type",
	}, []string{"source_type"})

	reg.MustRegister(operations, duration, rowsWritten)

	return &Metrics{
		Operations:  operations,
		Duration:    duration,
		RowsWritten: rowsWritten,
	}
}

// statusLabel classifies an outcome for the status label.
func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch core.KindOf(err) {
	case core.KindNotFound:
		return "not_found"
	case core.KindInvalidArgument:
		return "invalid_argument"
	case core.KindOperationFailed:
		return "failed"
	default:
		return "error"
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, statusLabel(err)).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) rows(st core.SourceType, n int) {
	if m == nil {
		return
	}
	m.RowsWritten.WithLabelValues(string(st)).Add(float64(n))
}

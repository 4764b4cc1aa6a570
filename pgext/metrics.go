package pgext

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/go-pg/entmap"
)

// MetricsHook is a query hook that exports command counts and latencies
// to Prometheus, labelled by operation and table.
type MetricsHook struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

var _ entmap.QueryHook = (*MetricsHook)(nil)

// NewMetricsHook registers the hook metrics on registerer.
// A nil registerer means prometheus.DefaultRegisterer.
func NewMetricsHook(registerer prometheus.Registerer) *MetricsHook {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &MetricsHook{
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "entmap_command_duration_seconds",
				Help:    "Duration of executed commands in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation", "table"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entmap_command_errors_total",
				Help: "Total number of commands that failed",
			},
			[]string{"operation", "table"},
		),
	}
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *entmap.QueryEvent) (context.Context, error) {
	return ctx, nil
}

func (h *MetricsHook) AfterQuery(_ context.Context, evt *entmap.QueryEvent) error {
	op, table := evt.Command.Operation(), evt.Command.Table
	h.duration.WithLabelValues(op, table).Observe(time.Since(evt.StartTime).Seconds())
	if evt.Err != nil {
		h.errors.WithLabelValues(op, table).Inc()
	}
	return nil
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/pinnbar/internal/pinn"
)

// Telemetry exports training progress as Prometheus metrics. Each instance
// owns its registry so several runs can coexist in one process.
type Telemetry struct {
	registry *prometheus.Registry

	loss         *prometheus.GaugeVec
	epochs       prometheus.Counter
	stepDuration prometheus.Histogram
}

func NewTelemetry(optimizer string) *Telemetry {
	labels := prometheus.Labels{"optimizer": optimizer}
	t := &Telemetry{
		registry: prometheus.NewRegistry(),
		loss: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "pinnbar_loss",
				Help:        "Current training loss by term.",
				ConstLabels: labels,
			},
			[]string{"term"},
		),
		epochs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name:        "pinnbar_epochs_total",
				Help:        "Number of completed training epochs.",
				ConstLabels: labels,
			},
		),
		stepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "pinnbar_step_seconds",
				Help:        "Duration of one optimizer step, in seconds.",
				ConstLabels: labels,
				Buckets:     prometheus.ExponentialBuckets(1e-4, 4, 10),
			},
		),
	}

	t.registry.MustRegister(t.loss, t.epochs, t.stepDuration)
	return t
}

func (t *Telemetry) Registry() *prometheus.Registry { return t.registry }

func (t *Telemetry) OnEpoch(epoch int, loss pinn.Loss, step time.Duration) {
	t.loss.WithLabelValues("pde").Set(loss.PDE)
	t.loss.WithLabelValues("bc").Set(loss.BC)
	t.loss.WithLabelValues("total").Set(loss.Total)
	t.epochs.Inc()
	t.stepDuration.Observe(step.Seconds())
}

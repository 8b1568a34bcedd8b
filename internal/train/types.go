package train

import (
	"time"

	"github.com/san-kum/pinnbar/internal/metrics"
	"github.com/san-kum/pinnbar/internal/pinn"
)

const (
	DefaultEpochs     = 50
	DefaultLogEvery   = 10
	DefaultEvalPoints = 201
)

type Metric interface {
	Name() string
	Observe(epoch int, loss pinn.Loss)
	Value() float64
	Reset()
}

type Observer interface {
	OnEpoch(epoch int, loss pinn.Loss, step time.Duration)
}

type Config struct {
	Epochs     int
	LogEvery   int
	Tolerance  float64
	EvalPoints int
}

func DefaultConfig() Config {
	return Config{
		Epochs:     DefaultEpochs,
		LogEvery:   DefaultLogEvery,
		EvalPoints: DefaultEvalPoints,
	}
}

// Stop reasons reported in Result.StopReason.
const (
	StopEpochs    = "epochs"
	StopTolerance = "tolerance"
	StopConverged = "converged"
)

type Result struct {
	// History holds the loss evaluated before each optimizer step.
	History    []pinn.Loss
	Final      pinn.Loss
	Epochs     int
	Elapsed    time.Duration
	StopReason string
	Accuracy   metrics.Accuracy
	Metrics    map[string]float64
}

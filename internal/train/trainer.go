package train

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/pinnbar/internal/metrics"
	"github.com/san-kum/pinnbar/internal/optim"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/pinn"
)

type Trainer struct {
	model     *pinn.Model
	optimizer optim.Optimizer
	metrics   []Metric
	observers []Observer
	log       logrus.FieldLogger

	epoch   int
	history []pinn.Loss
	elapsed time.Duration
}

func New(model *pinn.Model, optimizer optim.Optimizer, log logrus.FieldLogger) *Trainer {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Trainer{
		model:     model,
		optimizer: optimizer,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log,
	}
}

func (t *Trainer) AddMetric(m Metric)     { t.metrics = append(t.metrics, m) }
func (t *Trainer) AddObserver(o Observer) { t.observers = append(t.observers, o) }

func (t *Trainer) Model() *pinn.Model         { return t.model }
func (t *Trainer) History() []pinn.Loss       { return t.history }
func (t *Trainer) Epoch() int                 { return t.epoch }
func (t *Trainer) Optimizer() optim.Optimizer { return t.optimizer }

// Reset clears the history, metrics and optimizer state but keeps the
// network's current weights.
func (t *Trainer) Reset() {
	t.epoch = 0
	t.history = nil
	t.elapsed = 0
	t.optimizer.Reset()
	for _, m := range t.metrics {
		m.Reset()
	}
}

// Run trains for cfg.Epochs epochs. On error the partial result is returned
// alongside it.
func (t *Trainer) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	t.Reset()

	stop := StopEpochs
	for t.epoch < cfg.Epochs {
		select {
		case <-ctx.Done():
			return t.result(cfg, stop), &TrainError{
				Epoch:   t.epoch,
				Loss:    t.lastLoss(),
				Wrapped: fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()),
			}
		default:
		}

		loss, err := t.Step(cfg)
		if err != nil {
			if errors.Is(err, optim.ErrConverged) {
				stop = StopConverged
				t.log.WithField("epoch", t.epoch).Debugf("optimizer stopped: %v", err)
				break
			}
			return t.result(cfg, stop), err
		}

		if cfg.Tolerance > 0 && loss.Total < cfg.Tolerance {
			stop = StopTolerance
			break
		}
	}

	res := t.result(cfg, stop)
	if !res.Final.IsFinite() {
		return res, &TrainError{Epoch: t.epoch, Loss: res.Final, Wrapped: ErrDiverged}
	}

	t.log.WithFields(logrus.Fields{
		"epochs":  res.Epochs,
		"loss":    res.Final.Total,
		"rel_l2":  res.Accuracy.RelL2,
		"stop":    res.StopReason,
		"elapsed": res.Elapsed.Round(time.Millisecond),
	}).Info("training finished")
	return res, nil
}

// Step runs one epoch: evaluate and record the loss, log, then take one
// optimizer step. The returned loss is the pre-step value. A loss below
// cfg.Tolerance is recorded without stepping.
func (t *Trainer) Step(cfg Config) (pinn.Loss, error) {
	loss := t.model.CostFunction()
	t.history = append(t.history, loss)

	if !loss.IsFinite() {
		return loss, &TrainError{Epoch: t.epoch, Loss: loss, Wrapped: ErrDiverged}
	}

	for _, m := range t.metrics {
		m.Observe(t.epoch, loss)
	}

	logEvery := cfg.LogEvery
	if logEvery <= 0 {
		logEvery = DefaultLogEvery
	}
	if t.epoch%logEvery == 0 {
		t.log.WithFields(logrus.Fields{
			"epoch": t.epoch,
			"pde":   loss.PDE,
			"bc":    loss.BC,
		}).Infof("epoch %d/%d, loss %g", t.epoch, cfg.Epochs, loss.Total)
	}

	if cfg.Tolerance > 0 && loss.Total < cfg.Tolerance {
		t.epoch++
		return loss, nil
	}

	start := time.Now()
	_, err := t.optimizer.Step(t.model)
	step := time.Since(start)
	t.elapsed += step

	for _, obs := range t.observers {
		obs.OnEpoch(t.epoch, loss, step)
	}
	t.epoch++

	if err != nil && !errors.Is(err, optim.ErrConverged) {
		return loss, &TrainError{Epoch: t.epoch - 1, Loss: loss, Wrapped: err}
	}
	return loss, err
}

func (t *Trainer) lastLoss() pinn.Loss {
	if len(t.history) == 0 {
		return pinn.Loss{}
	}
	return t.history[len(t.history)-1]
}

func (t *Trainer) result(cfg Config, stop string) *Result {
	res := &Result{
		History:    append([]pinn.Loss(nil), t.history...),
		Final:      t.model.CostFunction(),
		Epochs:     t.epoch,
		Elapsed:    t.elapsed,
		StopReason: stop,
		Metrics:    make(map[string]float64),
	}

	points := cfg.EvalPoints
	if points < 2 {
		points = DefaultEvalPoints
	}
	xs, err := physics.Collocation(t.model.Bar.L, points, physics.SamplingLinspace, nil)
	if err == nil {
		res.Accuracy = metrics.Compare(t.model.Displacements(xs), t.model.Exact(xs))
		for k, v := range res.Accuracy.Map() {
			res.Metrics[k] = v
		}
	}

	for _, m := range t.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	res.Metrics["final_loss"] = res.Final.Total
	res.Metrics["final_pde"] = res.Final.PDE
	res.Metrics["final_bc"] = res.Final.BC
	return res
}

func validateConfig(cfg Config) error {
	if cfg.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrInvalidConfig, cfg.Epochs)
	}
	if cfg.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be non-negative", ErrInvalidConfig)
	}
	return nil
}

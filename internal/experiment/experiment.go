package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/metrics"
	"github.com/san-kum/pinnbar/internal/nn"
	"github.com/san-kum/pinnbar/internal/physics"
	"github.com/san-kum/pinnbar/internal/pinn"
	"github.com/san-kum/pinnbar/internal/train"
)

// Experiment is one configured training run: model, optimizer and trainer
// built from a config.
type Experiment struct {
	cfg        *config.Config
	model      *pinn.Model
	trainer    *train.Trainer
	telemetry  *metrics.Telemetry
	randSource *rand.Rand
}

func New(cfg *config.Config, registry *Registry, log logrus.FieldLogger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}

	load, err := registry.GetLoad(cfg.Load.Type, cfg.Load.Params)
	if err != nil {
		return nil, err
	}

	net, err := nn.New(cfg.Network.Hidden, e.randSource)
	if err != nil {
		return nil, err
	}

	bar := cfg.GetBar()
	xs, err := physics.Collocation(bar.L, cfg.Sampling.Points, cfg.Sampling.Strategy, e.randSource)
	if err != nil {
		return nil, err
	}

	e.model, err = pinn.NewModel(bar, load, net, xs)
	if err != nil {
		return nil, err
	}
	e.model.Weights = pinn.Weights{PDE: cfg.Training.WeightPDE, BC: cfg.Training.WeightBC}

	opt, err := registry.GetOptimizer(cfg.Optimizer.Name, cfg.Optimizer.Params)
	if err != nil {
		return nil, err
	}

	e.trainer = train.New(e.model, opt, log)
	for _, m := range registry.DefaultMetrics() {
		e.trainer.AddMetric(m)
	}

	e.telemetry = metrics.NewTelemetry(opt.Name())
	e.trainer.AddObserver(e.telemetry)

	return e, nil
}

// Restore replaces the freshly initialized network weights with a saved
// network of the same shape.
func (e *Experiment) Restore(net *nn.Network) error {
	want, got := e.model.Net.Sizes(), net.Sizes()
	if fmt.Sprint(want) != fmt.Sprint(got) {
		return fmt.Errorf("%w: saved network %v, config expects %v", nn.ErrInvalidShape, got, want)
	}
	return e.model.Net.SetParams(net.Params())
}

func (e *Experiment) Run(ctx context.Context) (*train.Result, error) {
	return e.trainer.Run(ctx, e.cfg.GetTrainConfig())
}

func (e *Experiment) Config() *config.Config        { return e.cfg }
func (e *Experiment) Model() *pinn.Model            { return e.model }
func (e *Experiment) Trainer() *train.Trainer       { return e.trainer }
func (e *Experiment) Telemetry() *metrics.Telemetry { return e.telemetry }

package experiment

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/pinnbar/internal/config"
	"github.com/san-kum/pinnbar/internal/optim"
)

// Sweepable parameter names accepted by ApplyParam.
var sweepParams = map[string]func(*config.Config, float64){
	"lr":         func(c *config.Config, v float64) { setParam(&c.Optimizer.Params, "lr", v) },
	"momentum":   func(c *config.Config, v float64) { setParam(&c.Optimizer.Params, "momentum", v) },
	"max_iter":   func(c *config.Config, v float64) { setParam(&c.Optimizer.Params, "max_iter", v) },
	"points":     func(c *config.Config, v float64) { c.Sampling.Points = int(v) },
	"epochs":     func(c *config.Config, v float64) { c.Training.Epochs = int(v) },
	"weight_bc":  func(c *config.Config, v float64) { c.Training.WeightBC = v },
	"weight_pde": func(c *config.Config, v float64) { c.Training.WeightPDE = v },
	"width": func(c *config.Config, v float64) {
		for i := range c.Network.Hidden {
			c.Network.Hidden[i] = int(v)
		}
	},
	"depth": func(c *config.Config, v float64) {
		width := 40
		if len(c.Network.Hidden) > 0 {
			width = c.Network.Hidden[0]
		}
		c.Network.Hidden = make([]int, int(v))
		for i := range c.Network.Hidden {
			c.Network.Hidden[i] = width
		}
	},
	"seed": func(c *config.Config, v float64) { c.Seed = int64(v) },
}

func setParam(p *map[string]float64, name string, v float64) {
	if *p == nil {
		*p = make(map[string]float64)
	}
	(*p)[name] = v
}

func SweepParams() []string { return keys(sweepParams) }

// ApplyParam sets a named hyperparameter on cfg.
func ApplyParam(cfg *config.Config, name string, value float64) error {
	apply, ok := sweepParams[name]
	if !ok {
		return fmt.Errorf("unknown sweep parameter: %s (available: %v)", name, SweepParams())
	}
	apply(cfg, value)
	return nil
}

// ParseRange parses "name=v1,v2,v3".
func ParseRange(arg string) (string, []float64, error) {
	name, list, ok := strings.Cut(arg, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("invalid range %q (want name=v1,v2,...)", arg)
	}
	if _, ok := sweepParams[name]; !ok {
		return "", nil, fmt.Errorf("unknown sweep parameter: %s (available: %v)", name, SweepParams())
	}
	var vals []float64
	for _, s := range strings.Split(list, ",") {
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%g", &v); err != nil {
			return "", nil, fmt.Errorf("invalid value %q for %s: %w", s, name, err)
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// Sweep trains one experiment per grid point and ranks them by metric.
func Sweep(ctx context.Context, base *config.Config, registry *Registry, ranges map[string][]float64, metric string, log logrus.FieldLogger) (map[string]float64, float64, []optim.Trial, error) {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	names := keys(ranges)
	vals := make([][]float64, len(names))
	for i, n := range names {
		vals[i] = ranges[n]
	}

	grid := optim.NewGridSearch(names, vals)
	return grid.Search(ctx, func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := base.Clone()
		for name, v := range params {
			if err := ApplyParam(cfg, name, v); err != nil {
				return 0, err
			}
		}

		exp, err := New(cfg, registry, log)
		if err != nil {
			return 0, err
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return 0, err
		}

		val, ok := res.Metrics[metric]
		if !ok {
			return 0, fmt.Errorf("metric %q not reported", metric)
		}
		log.WithFields(logrus.Fields{"params": params, metric: val}).Info("trial finished")
		return val, nil
	})
}

package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pinnbar/internal/pinn"
)

// Loss values are plotted on a log10 scale and floored here so an exact zero
// does not stretch the axis.
const logFloor = -16.0

func log10(v float64) float64 {
	if v <= 0 {
		return logFloor
	}
	return math.Max(math.Log10(v), logFloor)
}

// LossSeries returns log10 of the total, PDE and BC terms. Non-finite
// entries are skipped.
func LossSeries(history []pinn.Loss) (total, pde, bc []float64) {
	for _, l := range history {
		if !l.IsFinite() {
			continue
		}
		total = append(total, log10(l.Total))
		pde = append(pde, log10(l.PDE))
		bc = append(bc, log10(l.BC))
	}
	return total, pde, bc
}

// LossPlot renders the log10 total loss curve. A zero width lets the curve
// take one column per epoch.
func LossPlot(history []pinn.Loss, width, height int) string {
	total, _, _ := LossSeries(history)
	if len(total) == 0 {
		return ""
	}
	return asciigraph.Plot(total,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption("log10 loss"),
	)
}

// LossTermsPlot renders the PDE and BC terms on one log10 chart.
func LossTermsPlot(history []pinn.Loss, width, height int) string {
	_, pde, bc := LossSeries(history)
	if len(pde) == 0 {
		return ""
	}
	return asciigraph.PlotMany([][]float64{pde, bc},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.Caption("log10 pde (cyan) / bc (red)"),
	)
}

// ProfilePlot renders the predicted displacement against the exact one.
func ProfilePlot(predicted, exact []float64, width, height int) string {
	if len(predicted) == 0 || len(predicted) != len(exact) || !finite(predicted) || !finite(exact) {
		return ""
	}
	return asciigraph.PlotMany([][]float64{predicted, exact},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
		asciigraph.Caption("u(x) predicted (cyan) / exact (red)"),
	)
}

func finite(xs []float64) bool {
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/pinnbar/internal/pinn"
)

func TestProfileChartSVG(t *testing.T) {
	xs := []float64{0, 0.25, 0.5, 0.75, 1}
	exact := []float64{0, 1, 0, -1, 0}
	pred := []float64{0, 0.9, 0.1, -0.9, 0}

	var buf bytes.Buffer
	if err := ProfileChart(xs, pred, exact).WriteSVG(&buf); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output is not a complete svg document")
	}
	if got := strings.Count(out, "<path"); got != 2 {
		t.Errorf("expected 2 paths, got %d", got)
	}
	if !strings.Contains(out, "predicted") || !strings.Contains(out, "exact") {
		t.Error("missing legend entries")
	}
}

func TestLossChartSkipsNonFinite(t *testing.T) {
	history := []pinn.Loss{
		{PDE: 10, BC: 1, Total: 11},
		{PDE: 1, BC: 0, Total: 1},
		{PDE: 0.1, BC: 0.01, Total: 0.11},
	}

	var buf bytes.Buffer
	if err := LossChart(history).WriteSVG(&buf); err != nil {
		t.Fatalf("WriteSVG failed: %v", err)
	}
	if strings.Contains(buf.String(), "NaN") || strings.Contains(buf.String(), "Inf") {
		t.Error("non-finite coordinates leaked into the svg")
	}
}

func TestWriteSVGErrors(t *testing.T) {
	tests := []struct {
		name  string
		chart Chart
	}{
		{"mismatch", Chart{Width: 100, Height: 100, Series: []Series{{X: []float64{0, 1}, Y: []float64{0}}}}},
		{"empty", Chart{Width: 100, Height: 100}},
		{"all nan", Chart{Width: 100, Height: 100, Series: []Series{{X: []float64{0}, Y: []float64{math.NaN()}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.chart.WriteSVG(&bytes.Buffer{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEscape(t *testing.T) {
	if got := escape("a<b & c>d"); got != "a&lt;b &amp; c&gt;d" {
		t.Errorf("escape = %q", got)
	}
}

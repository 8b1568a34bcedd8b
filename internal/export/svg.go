package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/pinnbar/internal/pinn"
)

// Series is one polyline of a chart.
type Series struct {
	Name   string
	Color  string
	X, Y   []float64
	Dashed bool
}

// Chart is a minimal line chart rendered to SVG.
type Chart struct {
	Title         string
	XLabel        string
	YLabel        string
	Width, Height int
	Series        []Series
}

const margin = 48.0

type bounds struct{ minX, maxX, minY, maxY float64 }

func (c Chart) bounds() (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, s := range c.Series {
		for i := range s.X {
			x, y := s.X[i], s.Y[i]
			if math.IsNaN(y) || math.IsInf(y, 0) {
				continue
			}
			b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
			b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
			found = true
		}
	}
	if !found {
		return b, false
	}

	if b.maxX == b.minX {
		b.maxX = b.minX + 1
	}
	rangeY := b.maxY - b.minY
	if rangeY == 0 {
		rangeY = 1
	}
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b, true
}

// WriteSVG renders the chart. Non-finite points break the polyline.
func (c Chart) WriteSVG(w io.Writer) error {
	for _, s := range c.Series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("series %q: %d x values, %d y values", s.Name, len(s.X), len(s.Y))
		}
	}
	b, ok := c.bounds()
	if !ok {
		return fmt.Errorf("chart %q has no finite points", c.Title)
	}

	width, height := float64(c.Width), float64(c.Height)
	plotW, plotH := width-2*margin, height-2*margin
	px := func(x float64) float64 { return margin + (x-b.minX)/(b.maxX-b.minX)*plotW }
	py := func(y float64) float64 { return height - margin - (y-b.minY)/(b.maxY-b.minY)*plotH }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="12">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, c.Width, c.Height, c.Width, c.Height)

	fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#444466"/>
`, margin, margin, plotW, plotH)
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#ffffff" text-anchor="middle">%s</text>
`, width/2, margin/2, escape(c.Title))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#888899" text-anchor="middle">%s</text>
`, width/2, height-margin/4, escape(c.XLabel))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#888899" text-anchor="middle" transform="rotate(-90 %.1f %.1f)">%s</text>
`, margin/3, height/2, margin/3, height/2, escape(c.YLabel))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#888899">%.3g</text>
<text x="%.1f" y="%.1f" fill="#888899">%.3g</text>
`, 2.0, margin+4, b.maxY, 2.0, height-margin, b.minY)

	for i, s := range c.Series {
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="6 4"`
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5"%s d="`, s.Color, dash)
		pen := false
		for j := range s.X {
			y := s.Y[j]
			if math.IsNaN(y) || math.IsInf(y, 0) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, px(s.X[j]), py(y))
			pen = true
		}
		sb.WriteString("\"/>\n")

		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s">%s</text>
`, width-margin-120, margin+16*float64(i+1), s.Color, escape(s.Name))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// ProfileChart plots predicted against exact displacement.
func ProfileChart(xs, predicted, exact []float64) Chart {
	return Chart{
		Title:  "displacement",
		XLabel: "x",
		YLabel: "u(x)",
		Width:  720,
		Height: 400,
		Series: []Series{
			{Name: "exact", Color: "#ff4444", X: xs, Y: exact, Dashed: true},
			{Name: "predicted", Color: "#00ffff", X: xs, Y: predicted},
		},
	}
}

// LossChart plots log10 of the loss terms per epoch.
func LossChart(history []pinn.Loss) Chart {
	epochs := make([]float64, len(history))
	total := make([]float64, len(history))
	pde := make([]float64, len(history))
	bc := make([]float64, len(history))
	for i, l := range history {
		epochs[i] = float64(i)
		total[i] = math.Log10(l.Total)
		pde[i] = math.Log10(l.PDE)
		bc[i] = math.Log10(l.BC)
	}
	return Chart{
		Title:  "training loss",
		XLabel: "epoch",
		YLabel: "log10 loss",
		Width:  720,
		Height: 400,
		Series: []Series{
			{Name: "total", Color: "#ffffff", X: epochs, Y: total},
			{Name: "pde", Color: "#00ffff", X: epochs, Y: pde, Dashed: true},
			{Name: "bc", Color: "#ff00ff", X: epochs, Y: bc, Dashed: true},
		},
	}
}

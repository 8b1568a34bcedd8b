package metrics

import (
	"math"

	"github.com/san-kum/pinnbar/internal/pinn"
)

// BestLoss tracks the lowest total loss seen.
type BestLoss struct {
	best    float64
	samples int
}

func NewBestLoss() *BestLoss { return &BestLoss{best: math.Inf(1)} }

func (b *BestLoss) Name() string { return "best_loss" }

func (b *BestLoss) Observe(epoch int, loss pinn.Loss) {
	if loss.Total < b.best {
		b.best = loss.Total
	}
	b.samples++
}

func (b *BestLoss) Value() float64 {
	if b.samples == 0 {
		return 0
	}
	return b.best
}

func (b *BestLoss) Reset() {
	b.best = math.Inf(1)
	b.samples = 0
}

// LossReduction is log10(first/last) of the total loss: orders of magnitude
// gained over the run.
type LossReduction struct {
	first, last float64
	samples     int
}

func NewLossReduction() *LossReduction { return &LossReduction{} }

func (l *LossReduction) Name() string { return "loss_reduction" }

func (l *LossReduction) Observe(epoch int, loss pinn.Loss) {
	if l.samples == 0 {
		l.first = loss.Total
	}
	l.last = loss.Total
	l.samples++
}

func (l *LossReduction) Value() float64 {
	if l.samples == 0 || l.first <= 0 || l.last <= 0 {
		return 0
	}
	return math.Log10(l.first / l.last)
}

func (l *LossReduction) Reset() {
	l.first, l.last = 0, 0
	l.samples = 0
}

// BoundaryShare is BC/(PDE+BC) of the last observed unweighted loss terms.
type BoundaryShare struct {
	last pinn.Loss
	seen bool
}

func NewBoundaryShare() *BoundaryShare { return &BoundaryShare{} }

func (b *BoundaryShare) Name() string { return "bc_share" }

func (b *BoundaryShare) Observe(epoch int, loss pinn.Loss) {
	b.last = loss
	b.seen = true
}

func (b *BoundaryShare) Value() float64 {
	sum := b.last.PDE + b.last.BC
	if !b.seen || sum == 0 {
		return 0
	}
	return b.last.BC / sum
}

func (b *BoundaryShare) Reset() {
	b.last = pinn.Loss{}
	b.seen = false
}

package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Accuracy compares a predicted displacement field with the analytic one.
type Accuracy struct {
	RelL2  float64 `json:"rel_l2"`
	MaxAbs float64 `json:"max_abs"`
	RMSE   float64 `json:"rmse"`
}

// Compare returns the error of pred against exact. RelL2 falls back to the
// absolute L2 norm when exact is identically zero.
func Compare(pred, exact []float64) Accuracy {
	if len(pred) == 0 || len(pred) != len(exact) {
		return Accuracy{RelL2: math.NaN(), MaxAbs: math.NaN(), RMSE: math.NaN()}
	}

	diff := make([]float64, len(pred))
	floats.SubTo(diff, pred, exact)

	errNorm := floats.Norm(diff, 2)
	ref := floats.Norm(exact, 2)

	acc := Accuracy{
		MaxAbs: floats.Norm(diff, math.Inf(1)),
		RMSE:   errNorm / math.Sqrt(float64(len(diff))),
	}
	if ref > 0 {
		acc.RelL2 = errNorm / ref
	} else {
		acc.RelL2 = errNorm
	}
	return acc
}

func (a Accuracy) Map() map[string]float64 {
	return map[string]float64{
		"rel_l2":  a.RelL2,
		"max_abs": a.MaxAbs,
		"rmse":    a.RMSE,
	}
}

package train

import (
	"errors"
	"fmt"

	"github.com/san-kum/pinnbar/internal/pinn"
)

var (
	// ErrDiverged indicates the loss became NaN or Inf.
	ErrDiverged = errors.New("train: loss diverged (NaN or Inf)")

	// ErrCanceled indicates training was interrupted by its context.
	ErrCanceled = errors.New("train: canceled by context")

	// ErrInvalidConfig indicates unusable training settings.
	ErrInvalidConfig = errors.New("train: invalid config")
)

// TrainError wraps an error with the epoch and loss at which it happened.
type TrainError struct {
	Epoch   int
	Loss    pinn.Loss
	Wrapped error
}

func (e *TrainError) Error() string {
	return fmt.Sprintf("epoch %d (loss=%g): %v", e.Epoch, e.Loss.Total, e.Wrapped)
}

func (e *TrainError) Unwrap() error {
	return e.Wrapped
}

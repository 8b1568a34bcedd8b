package physics

import "errors"

var (
	// ErrParameterBounds indicates a physical parameter outside its valid range.
	ErrParameterBounds = errors.New("physics: parameter out of valid bounds")

	// ErrUnknownLoad indicates a load name with no registered constructor.
	ErrUnknownLoad = errors.New("physics: unknown load")
)

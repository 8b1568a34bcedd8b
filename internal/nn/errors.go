package nn

import "errors"

// ErrInvalidShape indicates a layer layout or parameter vector that does not
// match the network.
var ErrInvalidShape = errors.New("nn: invalid shape")

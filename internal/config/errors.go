package config

import "errors"

// ErrInvalidConfig indicates a configuration that cannot produce a run.
var ErrInvalidConfig = errors.New("config: invalid")

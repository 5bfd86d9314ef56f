package config

import "errors"

var (
	// ErrInvalidConfig is wrapped by every Validate failure.
	ErrInvalidConfig = errors.New("invalid talentflow config")
	// ErrLoadConfig is wrapped when a file or env layer cannot be read.
	ErrLoadConfig = errors.New("load talentflow config")
)

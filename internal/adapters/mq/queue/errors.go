package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("ingest queue full")
	ErrClosed = errors.New("ingest queue closed")
)

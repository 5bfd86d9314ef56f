package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for domain errors. These allow errors.Is from callers.
var (
	ErrValidation     = errors.New("validation failed")
	ErrGraphQuery     = errors.New("graph query failed")
	ErrNotFound       = errors.New("not found")
	ErrInvalidWindow  = errors.New("window start must precede end")
	ErrUnknownRanking = errors.New("unknown ranking algorithm")
)

// ValidationError reports a malformed input record. It is reported per record
// and never aborts a batch.
type ValidationError struct {
	Record string `json:"record,omitempty"` // profile_urn when known
	Index  int    `json:"index"`            // position in the submitted batch
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("record %d (%s): %s: %s", e.Index, e.Record, e.Field, e.Reason)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// GraphQueryError wraps a backing store failure. It is surfaced verbatim and never retried here.
type GraphQueryError struct {
	Op  string
	Err error
}

// NewGraphQueryError wraps err for op; nil stays nil.
func NewGraphQueryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &GraphQueryError{Op: op, Err: err}
}

func (e *GraphQueryError) Error() string {
	return fmt.Sprintf("graph query %s: %v", e.Op, e.Err)
}

func (e *GraphQueryError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrGraphQuery) true.
func (e *GraphQueryError) Is(target error) bool { return target == ErrGraphQuery }

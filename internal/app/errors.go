package service

import (
	"errors"
	"fmt"

	"github.com/okian/talentflow/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrBackpressure = errors.New("ingest queue full")
	ErrNotStarted   = errors.New("service not started")
	ErrJobNotFound  = fmt.Errorf("job %w", model.ErrNotFound)
)

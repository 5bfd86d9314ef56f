package repository

import (
	"errors"
	"fmt"

	"github.com/okian/talentflow/internal/domain/model"
)

// Sentinel kinds for store errors.
var (
	ErrNoSnapshot    = fmt.Errorf("ranking snapshot %w", model.ErrNotFound)
	ErrCompanyAbsent = fmt.Errorf("company %w", model.ErrNotFound)
	ErrProfileAbsent = fmt.Errorf("profile %w", model.ErrNotFound)
	ErrInvalidLimit  = errors.New("invalid ranking limit")
	ErrClosed        = errors.New("store closed")
)

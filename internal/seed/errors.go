package seed

import (
	"errors"
	"fmt"
)

// ErrRequest marks a request the API answered with an error status.
var ErrRequest = errors.New("api request failed")

// APIError is an error response of the talentflow API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Is makes errors.Is(err, ErrRequest) true.
func (e *APIError) Is(target error) bool { return target == ErrRequest }

package credentials

import (
	"errors"
	"net/http"
)

// Domain errors for credential selection.
var (
	ErrInvalidKey       = errors.New("api key is required")
	ErrNoPendingRequest = errors.New("no credential selection is pending")
	ErrInvalidRequest   = errors.New("invalid credential request")
)

// MapHTTPStatus maps credential domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidKey), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoPendingRequest):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

package runs

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/colorbook/pkg/database"
	"github.com/JaimeStill/colorbook/pkg/repository"
)

// Domain errors for run history operations.
var (
	ErrNotFound  = errors.New("run not found")
	ErrDuplicate = errors.New("run already recorded")
	ErrInvalidID = errors.New("invalid run id")
	ErrInvalid   = errors.New("run violates history constraints")
)

var dbErrors = repository.Errors{
	NotFound:  ErrNotFound,
	Duplicate: ErrDuplicate,
	Invalid:   ErrInvalid,
}

// MapHTTPStatus maps run history errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

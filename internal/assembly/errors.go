package assembly

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput          = errors.New("invalid document input")
	ErrIncompleteArtifactSet = errors.New("artifact set is incomplete")
	ErrInvalidImage          = errors.New("page image could not be decoded")
	ErrRender                = errors.New("document rendering failed")
)

// MapHTTPStatus maps assembly errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIncompleteArtifactSet):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidImage):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

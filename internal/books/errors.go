package books

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/colorbook/internal/assembly"
	"github.com/JaimeStill/colorbook/internal/generation"
)

var (
	ErrInvalidRequest  = errors.New("invalid book request")
	ErrDocumentExpired = errors.New("document is no longer available")
)

// MapHTTPStatus maps book, assembly, and orchestration errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrDocumentExpired):
		return http.StatusGone
	case errors.Is(err, assembly.ErrInvalidInput),
		errors.Is(err, assembly.ErrIncompleteArtifactSet),
		errors.Is(err, assembly.ErrInvalidImage),
		errors.Is(err, assembly.ErrRender):
		return assembly.MapHTTPStatus(err)
	}
	return generation.MapHTTPStatus(err)
}

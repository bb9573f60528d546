package imagegen

import (
	"errors"
	"net/http"
)

// Outcome classes for a single image request.
var (
	ErrInvalidInput       = errors.New("invalid image request")
	ErrCredentialRequired = errors.New("credential required")
	ErrNoImageReturned    = errors.New("no image returned")
	ErrTransient          = errors.New("image service failure")
)

// DefaultNoImageDetail explains an empty response when the model supplied no text.
const DefaultNoImageDetail = "No image data was returned by the AI model. Try a different theme or resolution."

// Error carries a classified failure. Kind is one of the package sentinels;
// Detail is the model's explanation for ErrNoImageReturned; Err is the
// underlying service error, preserved unchanged.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return e.Kind.Error() + ": " + e.Err.Error()
	case e.Detail != "":
		return e.Kind.Error() + ": " + e.Detail
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// MapHTTPStatus maps image service errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrCredentialRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNoImageReturned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransient):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

package imagegen

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

var credentialStatuses = []string{
	"PERMISSION_DENIED",
	"UNAUTHENTICATED",
	"NOT_FOUND",
}

// Substrings observed in authorization failures whose structure was lost
// in transit. Matching on message text is fragile and only applies when no
// structured API error is available.
var credentialMarkers = []string{
	"Requested entity was not found",
	"403",
	"PERMISSION_DENIED",
	"API key not valid",
}

// Classify converts a raw service error into an *Error of kind
// ErrCredentialRequired or ErrTransient. Context cancellation passes through
// unchanged so callers can distinguish an abort from a service failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var classified *Error
	if errors.As(err, &classified) {
		return err
	}

	if IsCredentialFailure(err) {
		return &Error{Kind: ErrCredentialRequired, Err: err}
	}
	return &Error{Kind: ErrTransient, Err: err}
}

// IsCredentialFailure reports whether err indicates a missing, invalid, or
// unauthorized credential.
func IsCredentialFailure(err error) bool {
	if err == nil {
		return false
	}

	if apiErr, ok := asAPIError(err); ok {
		return credentialCode(apiErr.Code) || credentialStatus(apiErr.Status)
	}

	msg := err.Error()
	for _, marker := range credentialMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}
	return genai.APIError{}, false
}

func credentialCode(code int) bool {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func credentialStatus(status string) bool {
	for _, s := range credentialStatuses {
		if strings.Contains(status, s) {
			return true
		}
	}
	return false
}

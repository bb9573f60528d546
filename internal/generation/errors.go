package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/colorbook/internal/imagegen"
	"github.com/JaimeStill/colorbook/internal/pages"
)

// Orchestration errors.
var (
	ErrInvalidInput       = errors.New("invalid generation request")
	ErrCredentialDeclined = errors.New("credential selection declined")
	ErrRunInProgress      = errors.New("a generation run is already in progress")
	ErrNoActiveRun        = errors.New("no active generation run")
	ErrRunNotComplete     = errors.New("generation run is not complete")
	ErrPageNotFound       = errors.New("page not generated")
)

// MapHTTPStatus maps orchestration errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pages.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrCredentialDeclined):
		return http.StatusForbidden
	case errors.Is(err, ErrRunInProgress), errors.Is(err, ErrRunNotComplete):
		return http.StatusConflict
	case errors.Is(err, ErrNoActiveRun), errors.Is(err, ErrPageNotFound):
		return http.StatusNotFound
	}
	return imagegen.MapHTTPStatus(err)
}

// UserMessage returns plain-language text describing err for display.
func UserMessage(err error) string {
	var ierr *imagegen.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pages.ErrInvalidInput), errors.Is(err, imagegen.ErrInvalidInput):
		return fmt.Sprintf("Please check your request: %v.", err)
	case errors.Is(err, ErrCredentialDeclined):
		return "High and Ultra quality need a paid API key. Select a key or choose Standard quality."
	case errors.Is(err, imagegen.ErrCredentialRequired):
		return "This request failed. If you're using High or Ultra quality, please make sure you've selected a paid API key with billing enabled, then try again."
	case errors.Is(err, imagegen.ErrNoImageReturned):
		detail := imagegen.DefaultNoImageDetail
		if errors.As(err, &ierr) && ierr.Detail != "" {
			detail = ierr.Detail
		}
		return "The AI could not draw this page: " + detail
	case errors.Is(err, imagegen.ErrTransient):
		return "Generation failed. Try a simpler theme or lower resolution if the problem persists."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Generation was interrupted before the book was finished. Please try again."
	case errors.Is(err, ErrRunInProgress):
		return "A coloring book is already being drawn. Wait for it to finish or cancel it first."
	case errors.Is(err, ErrNoActiveRun):
		return "There is no coloring book in progress."
	case errors.Is(err, ErrRunNotComplete):
		return "The coloring book is not finished yet."
	case errors.Is(err, ErrPageNotFound):
		return "That page has not been drawn yet."
	}
	return "Something went wrong. Please try again."
}

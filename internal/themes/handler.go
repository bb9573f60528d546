package themes

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/colorbook/pkg/handlers"
	"github.com/JaimeStill/colorbook/pkg/routes"
)

// SuggestRequest is the body of a brainstorm request.
type SuggestRequest struct {
	Prompt string `json:"prompt"`
}

// Handler exposes theme brainstorming over HTTP.
type Handler struct {
	svc         *Service
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler backed by svc.
func NewHandler(svc *Service, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		svc:         svc,
		logger:      logger.With("handler", "themes"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group for theme endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/themes",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/suggest", Handler: h.Suggest},
			{Method: "DELETE", Pattern: "/session", Handler: h.Reset},
		},
	}
}

// Suggest returns brainstormed themes for the submitted prompt.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
		return
	}

	suggestion, err := h.svc.Suggest(r.Context(), req.Prompt)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, suggestion)
}

// Reset starts a new brainstorm conversation.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.svc.Reset()
	w.WriteHeader(http.StatusNoContent)
}

package credentials

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/colorbook/pkg/handlers"
	"github.com/JaimeStill/colorbook/pkg/routes"
)

// SelectRequest is the body of a credential selection.
type SelectRequest struct {
	APIKey string `json:"api_key"`
}

// Handler exposes the credential selection surface over HTTP.
type Handler struct {
	store       *Store
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler backed by store.
func NewHandler(store *Store, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		store:       store,
		logger:      logger.With("handler", "credentials"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group for credential endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/credentials",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Status},
			{Method: "POST", Pattern: "", Handler: h.Select},
			{Method: "DELETE", Pattern: "", Handler: h.Clear},
			{Method: "DELETE", Pattern: "/pending", Handler: h.Decline},
		},
	}
}

// Status returns whether a credential is selected and whether a selection is pending.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.store.Status())
}

// Select stores the submitted key and resolves any pending selection.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if err := h.store.Select(req.APIKey); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.store.Status())
}

// Decline resolves the pending selection without a credential.
func (h *Handler) Decline(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Decline(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear forgets the selected credential.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	w.WriteHeader(http.StatusNoContent)
}

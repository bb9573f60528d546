package books

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/colorbook/internal/generation"
	"github.com/JaimeStill/colorbook/internal/imagegen"
	"github.com/JaimeStill/colorbook/pkg/handlers"
	"github.com/JaimeStill/colorbook/pkg/routes"
)

// StartRequest is the body of a new coloring book request. Tier and Pages
// fall back to configured defaults when omitted; an explicit page count must
// be at least 1.
type StartRequest struct {
	Theme string `json:"theme"`
	Owner string `json:"owner"`
	Tier  string `json:"tier,omitempty"`
	Pages *int   `json:"pages,omitempty"`
}

// Handler provides HTTP endpoints for the active coloring book.
type Handler struct {
	books       Books
	publisher   *Publisher
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler.
func NewHandler(books Books, publisher *Publisher, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		books:       books,
		publisher:   publisher,
		logger:      logger.With("handler", "books"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for book endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/books",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Start},
			{Method: "GET", Pattern: "/current", Handler: h.Current},
			{Method: "DELETE", Pattern: "/current", Handler: h.Abort},
			{Method: "POST", Pattern: "/current/retry", Handler: h.Retry},
			{Method: "GET", Pattern: "/current/pages/{index}", Handler: h.Page},
			{Method: "GET", Pattern: "/current/document", Handler: h.Document},
			{Method: "GET", Pattern: "/{id}/document", Handler: h.Delivered},
		},
	}
}

// Start begins generating a coloring book. Elevated tiers without a selected
// credential hold the request open until the selection resolves.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, ErrInvalidRequest)
		return
	}

	var pages int
	if req.Pages != nil {
		if *req.Pages < 1 {
			h.fail(w, fmt.Errorf("%w: pages must be at least 1", generation.ErrInvalidInput))
			return
		}
		pages = *req.Pages
	}

	snap, err := h.books.Start(r.Context(), generation.Request{
		Theme: req.Theme,
		Owner: req.Owner,
		Tier:  imagegen.Tier(req.Tier),
		Pages: pages,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, snap)
}

// Current returns the active run's progress and generated page metadata.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.books.Snapshot())
}

// Abort discards the active run.
func (h *Handler) Abort(w http.ResponseWriter, r *http.Request) {
	if err := h.books.Abort(); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Retry restarts the most recent request from its first page.
func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	snap, err := h.books.Retry(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusAccepted, snap)
}

// Page streams a generated page image for preview.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.fail(w, ErrInvalidRequest)
		return
	}

	page, err := h.books.Page(index)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondBytes(w, page.MediaType, "", page.Data)
}

// Document assembles the completed book, releases the run, and returns the
// PDF as an attachment.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	d, err := h.publisher.Deliver(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respondDocument(w, d)
}

// Delivered re-serves a document delivered earlier in the session.
func (h *Handler) Delivered(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.fail(w, ErrInvalidRequest)
		return
	}

	d, err := h.publisher.Cached(id)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.respondDocument(w, d)
}

func (h *Handler) respondDocument(w http.ResponseWriter, d *Delivery) {
	w.Header().Set("X-Run-ID", d.RunID.String())
	if d.ExportKey != "" {
		w.Header().Set("X-Export-Key", d.ExportKey)
	}
	handlers.RespondBytes(w, "application/pdf", d.Document.Filename(), d.Document.Data)
}

// fail responds with the error and its plain-language explanation.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("handler error", "status", status, "error", err)
	} else {
		h.logger.Warn("handler error", "status", status, "error", err)
	}

	handlers.RespondJSON(w, status, map[string]string{
		"error":   err.Error(),
		"message": generation.UserMessage(err),
	})
}

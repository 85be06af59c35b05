package sweep

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/coursedesk/internal/platform/httpx"
)

// Handler exposes the stored sweep reports.
type Handler struct {
	store  *Store
	logger *slog.Logger
}

// NewHandler constructs an HTTP handler for sweep reports.
func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, logger: logger}
}

// MountRoutes attaches the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Get("/reports/sweep", h.latest)
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.Latest(r.Context())
	if errors.Is(err, ErrNoReport) {
		httpx.Problem(w, http.StatusNotFound, "no sweep report", "no catalog sweep has completed yet")
		return
	}
	if err != nil {
		h.logger.Error("load sweep report", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "")
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

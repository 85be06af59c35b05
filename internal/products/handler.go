package products

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/coursedesk/coursedesk/internal/backbone"
	"github.com/coursedesk/coursedesk/internal/platform/httpx"
)

// ProductService is the view-assembly contract the handler depends on.
type ProductService interface {
	List(ctx context.Context, params backbone.ListParams) (Listing, error)
	View(ctx context.Context, id int64) (View, error)
	Schedule(ctx context.Context, id int64) (View, error)
}

// Handler serves the reconciled product endpoints.
type Handler struct {
	logger   *slog.Logger
	service  ProductService
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service ProductService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

type listQuery struct {
	Limit int `validate:"min=1,max=300"`
	Page  int `validate:"min=1"`
}

func (h *Handler) parseListQuery(r *http.Request) (listQuery, error) {
	q := listQuery{Limit: backbone.DefaultListLimit, Page: 1}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, err
		}
		q.Limit = v
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return q, err
		}
		q.Page = v
	}
	if err := h.validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseListQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid query", "limit must be 1-300 and page >= 1")
		return
	}
	listing, err := h.service.List(r.Context(), backbone.ListParams{Limit: q.Limit, Page: q.Page})
	if err != nil {
		h.respondUpstreamError(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, listing)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	view, err := h.service.View(r.Context(), id)
	if err != nil {
		h.respondUpstreamError(w, "product view", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	view, err := h.service.Schedule(r.Context(), id)
	if err != nil {
		h.respondUpstreamError(w, "product schedule", err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "invalid product id", "product id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondUpstreamError(w http.ResponseWriter, op string, err error) {
	status := httpx.UpstreamStatus(err)
	if status == http.StatusNotFound {
		httpx.Problem(w, status, "product not found", "")
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, status, http.StatusText(status), "upstream catalog request failed")
}

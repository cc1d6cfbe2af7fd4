package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/apperrors"
	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/models"
)

const requestTimeout = 3 * time.Second

type GetHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewGet(s service.LinkServiceIface, l *zap.Logger) *GetHandler {
	return &GetHandler{
		service: s,
		logger:  l,
	}
}

// Redirect handles GET /{slug}: it resolves the slug, records the click and
// redirects to the destination. Slug syntax and the reserved set are checked
// before the service is involved at all.
func (h *GetHandler) Redirect(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	slug := chi.URLParam(req, "slug")
	if !service.ValidSlugPath(slug) || service.IsReservedSlug(slug) {
		http.Error(res, "short link not found", http.StatusNotFound)
		return
	}

	link, err := h.service.GetByActiveSlug(ctx, slug)
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	if err := h.service.RecordClick(ctx, link.ID); err != nil {
		// The quota closed between resolution and increment; the link is no
		// longer usable, so this must not redirect.
		writeError(res, h.logger, err)
		return
	}

	res.Header().Set("Location", link.OriginalURL)
	res.WriteHeader(http.StatusTemporaryRedirect)
}

// ByID handles GET /api/shortlinks/{id}.
func (h *GetHandler) ByID(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	link, err := h.service.GetByID(ctx, chi.URLParam(req, "id"))
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	if link.UserID != userID {
		writeError(res, h.logger, apperrors.Forbidden())
		return
	}

	writeJSON(res, http.StatusOK, models.NewLinkResponse(models.DecoratedLink{
		Link:   *link,
		Status: service.ComputeStatus(link, time.Now()),
	}))
}

// List handles GET /api/shortlinks with page/limit/search/status query
// parameters. The status filter accepts the computed statuses, including
// "expired" which never exists in storage.
func (h *GetHandler) List(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	params := models.ListParams{
		UserID: userID,
		Search: req.URL.Query().Get("search"),
	}
	params.Page, _ = strconv.Atoi(req.URL.Query().Get("page"))
	params.Limit, _ = strconv.Atoi(req.URL.Query().Get("limit"))

	switch status := req.URL.Query().Get("status"); status {
	case "":
	case "active", "disabled", "expired":
		params.Status = models.ComputedStatus(status)
	default:
		writeError(res, h.logger, apperrors.Validation("status", "status must be one of active, disabled, expired"))
		return
	}

	page, err := h.service.ListByUser(ctx, params)
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	items := make([]models.LinkResponse, 0, len(page.Items))
	for _, d := range page.Items {
		items = append(items, models.NewLinkResponse(d))
	}

	writeJSON(res, http.StatusOK, models.ListLinksResponse{
		Items: items,
		Meta:  page.Meta,
	})
}

// PingDB handles GET /ping.
func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil && !errors.Is(err, errors.ErrUnsupported) {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/models"
)

type PatchHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewPatch(s service.LinkServiceIface, l *zap.Logger) *PatchHandler {
	return &PatchHandler{
		service: s,
		logger:  l,
	}
}

// Update handles PATCH /api/shortlinks/{id}. The body follows three-state
// semantics per field: absent keys change nothing, null clears, values set.
func (h *PatchHandler) Update(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.UpdateLinkRequest
	if err := decodeJSONBody(res, req, &request); err != nil {
		writeError(res, h.logger, err)
		return
	}

	link, err := h.service.Update(ctx, userID, chi.URLParam(req, "id"), request.Patch())
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, models.NewLinkResponse(models.DecoratedLink{
		Link:   *link,
		Status: service.ComputeStatus(link, time.Now()),
	}))
}

// Enable handles POST /api/shortlinks/{id}/enable.
func (h *PatchHandler) Enable(res http.ResponseWriter, req *http.Request) {
	h.toggle(res, req, h.service.Enable)
}

// Disable handles POST /api/shortlinks/{id}/disable.
func (h *PatchHandler) Disable(res http.ResponseWriter, req *http.Request) {
	h.toggle(res, req, h.service.Disable)
}

func (h *PatchHandler) toggle(res http.ResponseWriter, req *http.Request, op func(context.Context, string, string) error) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := op(ctx, userID, chi.URLParam(req, "id")); err != nil {
		writeError(res, h.logger, err)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}

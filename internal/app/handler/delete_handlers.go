package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/app/service"
)

type DeleteHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewDelete(s service.LinkServiceIface, l *zap.Logger) *DeleteHandler {
	return &DeleteHandler{
		service: s,
		logger:  l,
	}
}

// Delete handles DELETE /api/shortlinks/{id}: synchronous soft deletion.
func (h *DeleteHandler) Delete(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := h.service.Delete(ctx, userID, chi.URLParam(req, "id")); err != nil {
		writeError(res, h.logger, err)
		return
	}

	res.WriteHeader(http.StatusNoContent)
}

// DeleteBatch handles DELETE /api/shortlinks with a JSON array of ids.
// Deletion happens in the background; the response is 202 Accepted.
func (h *DeleteHandler) DeleteBatch(res http.ResponseWriter, req *http.Request) {
	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var ids []string
	if err := decodeJSONBody(res, req, &ids); err != nil {
		writeError(res, h.logger, err)
		return
	}

	go h.service.DeleteBatch(context.Background(), userID, ids)

	res.WriteHeader(http.StatusAccepted)
}

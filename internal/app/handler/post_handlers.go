package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/go-playground/validator/v10"

	"github.com/mbocharov/go-shortlink/internal/apperrors"
	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/models"
)

type PostHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewPost(s service.LinkServiceIface, l *zap.Logger) *PostHandler {
	return &PostHandler{
		service: s,
		logger:  l,
	}
}

// Create handles POST /api/shortlinks.
func (h *PostHandler) Create(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.CreateLinkRequest
	if err := decodeJSONBody(res, req, &request); err != nil {
		writeError(res, h.logger, err)
		return
	}

	if err := validate.Struct(request); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			writeError(res, h.logger, apperrors.Validation(fieldErrs[0].Field(), "invalid value"))
			return
		}
		writeError(res, h.logger, apperrors.Validation("", "invalid request"))
		return
	}

	link, err := h.service.Create(ctx, userID, models.CreateLinkInput{
		Slug:        request.Slug,
		OriginalURL: request.OriginalURL,
		Description: request.Description,
		ExpiresAt:   request.ExpiresAt,
		MaxClicks:   request.MaxClicks,
	})
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusCreated, models.NewLinkResponse(models.DecoratedLink{
		Link:   *link,
		Status: service.ComputeStatus(link, time.Now()),
	}))
}

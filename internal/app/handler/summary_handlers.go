package handler

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/app/service"
	"github.com/mbocharov/go-shortlink/internal/models"
)

type SummaryHandler struct {
	summary service.SummaryIface
	logger  *zap.Logger
}

func NewSummary(s service.SummaryIface, l *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		summary: s,
		logger:  l,
	}
}

// Get handles GET /api/summary?days=7: the dashboard counters plus the
// clicks chart for the trailing window.
func (h *SummaryHandler) Get(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), requestTimeout)
	defer cancel()

	userID, ok := userIDFromContext(req)
	if !ok {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := h.summary.GetSummary(ctx, userID)
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	chart, err := h.summary.GetClicksChart(ctx, userID, days)
	if err != nil {
		writeError(res, h.logger, err)
		return
	}

	writeJSON(res, http.StatusOK, models.SummaryResponse{
		LinkSummary: *summary,
		ClicksChart: chart,
	})
}

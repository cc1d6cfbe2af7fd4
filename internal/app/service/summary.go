package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/models"
)

// defaultChartDays is the trailing window of the clicks chart.
const defaultChartDays = 7

// SummaryService derives the dashboard numbers from the storage backend.
// The counters come from independent aggregate queries; they are a snapshot,
// not a transactionally joined view.
type SummaryService struct {
	storage Storage
	logger  *zap.Logger
}

// NewSummary creates a summary service over the given storage backend.
func NewSummary(storage Storage, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		storage: storage,
		logger:  logger,
	}
}

// GetSummary returns the per-user link counters and the click sum.
// ExpiredLinks counts links that are unusable without having been deleted:
// stored-disabled ones plus active ones whose expiry or quota has passed.
func (s *SummaryService) GetSummary(ctx context.Context, userID string) (*models.LinkSummary, error) {
	total, err := s.storage.CountByUser(ctx, userID, "", "")
	if err != nil {
		return nil, err
	}

	active, err := s.storage.CountByUser(ctx, userID, "", models.StatusActive)
	if err != nil {
		return nil, err
	}

	disabled, err := s.storage.CountByUser(ctx, userID, "", models.StatusDisabled)
	if err != nil {
		return nil, err
	}

	expired, err := s.storage.CountInactiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	clicks, err := s.storage.SumClicks(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.LinkSummary{
		TotalLinks:    total,
		ActiveLinks:   active,
		DisabledLinks: disabled,
		ExpiredLinks:  expired,
		TotalClicks:   clicks,
	}, nil
}

// GetClicksChart returns click totals for the trailing days window, grouped
// by link creation date. Days without any created links produce no point;
// densifying the series is left to the caller.
func (s *SummaryService) GetClicksChart(ctx context.Context, userID string, days int) ([]models.ClicksPoint, error) {
	if days <= 0 {
		days = defaultChartDays
	}
	return s.storage.GetClicksGroupedByDay(ctx, userID, days)
}

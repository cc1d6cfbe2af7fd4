package service

import (
	"context"

	"github.com/mbocharov/go-shortlink/internal/models"
)

// Storage is the persistence contract the short link service consumes.
// Find methods return (nil, nil) when no row matches; soft-deleted rows are
// excluded everywhere. IncrementClicks must be a single atomic conditional
// write: false means the active+quota condition blocked the increment.
type Storage interface {
	Create(context.Context, models.ShortLink) (*models.ShortLink, error)
	FindByID(context.Context, string) (*models.ShortLink, error)
	FindByActiveSlug(context.Context, string) (*models.ShortLink, error)
	Update(context.Context, string, models.LinkPatch) (*models.ShortLink, error)
	ChangeStatus(context.Context, string, models.StoredStatus) error
	SlugExists(context.Context, string) (bool, error)
	SoftDelete(context.Context, string) error
	SoftDeleteBatch(context.Context, []string) error
	ListByUser(context.Context, models.RepoListParams) ([]models.ShortLink, error)
	IncrementClicks(context.Context, string) (bool, error)
	CountByUser(ctx context.Context, userID, search string, status models.StoredStatus) (int, error)
	SumClicks(ctx context.Context, userID string) (int64, error)
	GetClicksGroupedByDay(ctx context.Context, userID string, days int) ([]models.ClicksPoint, error)
	CountInactiveByUser(ctx context.Context, userID string) (int, error)
	PingContext(context.Context) error
}

// LinkServiceIface is the service surface the HTTP handlers depend on.
type LinkServiceIface interface {
	Create(ctx context.Context, userID string, in models.CreateLinkInput) (*models.ShortLink, error)
	GetByID(ctx context.Context, id string) (*models.ShortLink, error)
	GetByActiveSlug(ctx context.Context, slug string) (*models.ShortLink, error)
	ListByUser(ctx context.Context, p models.ListParams) (*models.LinkPage, error)
	Update(ctx context.Context, userID, linkID string, patch models.LinkPatch) (*models.ShortLink, error)
	Enable(ctx context.Context, userID, linkID string) error
	Disable(ctx context.Context, userID, linkID string) error
	Delete(ctx context.Context, userID, linkID string) error
	DeleteBatch(ctx context.Context, userID string, ids []string)
	RecordClick(ctx context.Context, id string) error
	PingContext(ctx context.Context) error
}

// SummaryIface is the dashboard aggregation surface.
type SummaryIface interface {
	GetSummary(ctx context.Context, userID string) (*models.LinkSummary, error)
	GetClicksChart(ctx context.Context, userID string, days int) ([]models.ClicksPoint, error)
}

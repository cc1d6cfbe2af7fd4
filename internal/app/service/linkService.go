package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/apperrors"
	"github.com/mbocharov/go-shortlink/internal/models"
	"github.com/mbocharov/go-shortlink/internal/worker"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50

	// listFetchLimit bounds the per-user fetch used by ListByUser. The
	// status filter works on the computed status, so filtering and
	// pagination happen in memory over this window.
	listFetchLimit = 1000

	maxDescriptionLength = 500
)

// LinkService orchestrates short link operations over a storage backend,
// using the slug allocator and the status policy.
type LinkService struct {
	storage Storage
	slugs   *SlugAllocator
	logger  *zap.Logger
	ch      chan<- string
}

// NewLink creates the service and starts the background soft-delete worker.
// The worker stops when ctx is cancelled.
func NewLink(ctx context.Context, storage Storage, slugs *SlugAllocator, logger *zap.Logger) *LinkService {
	w := worker.NewSoftDeleteWorker(logger, storage)

	service := LinkService{
		storage: storage,
		slugs:   slugs,
		logger:  logger,
		ch:      w.GetInChannel(),
	}

	go w.FlushRecords(ctx)

	return &service
}

// PingContext reports whether the storage backend is reachable.
func (s *LinkService) PingContext(ctx context.Context) error {
	return s.storage.PingContext(ctx)
}

// Create validates the input, allocates a slug and persists a new link
// owned by userID. New links start active with zero clicks.
func (s *LinkService) Create(ctx context.Context, userID string, in models.CreateLinkInput) (*models.ShortLink, error) {
	now := time.Now()

	if err := validateOriginalURL(in.OriginalURL); err != nil {
		return nil, err
	}
	if len(in.Description) > maxDescriptionLength {
		return nil, apperrors.Validation("description", "description must be at most 500 characters long")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, apperrors.Validation("expiresAt", "expiration date must be in the future")
	}
	if in.MaxClicks != nil && *in.MaxClicks <= 0 {
		return nil, apperrors.Validation("maxClicks", "maxClicks must be a positive integer")
	}

	slug, err := s.slugs.Allocate(ctx, in.Slug)
	if err != nil {
		return nil, err
	}

	link := models.ShortLink{
		ID:          uuid.New().String(),
		UserID:      userID,
		Slug:        slug,
		OriginalURL: in.OriginalURL,
		Description: in.Description,
		Status:      models.StatusActive,
		Clicks:      0,
		MaxClicks:   in.MaxClicks,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.storage.Create(ctx, link)
	if err != nil {
		return nil, err
	}

	s.logger.Info("short link created",
		zap.String("id", created.ID),
		zap.String("slug", created.Slug),
		zap.String("userID", userID))

	return created, nil
}

// GetByID returns a link by id, excluding soft-deleted rows.
func (s *LinkService) GetByID(ctx context.Context, id string) (*models.ShortLink, error) {
	link, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, apperrors.NotFound(id)
	}
	return link, nil
}

// GetByActiveSlug resolves a slug for redirecting. The lookup is already
// filtered to stored-active, non-deleted rows; the computed status is then
// checked against the current time and quota. The check is read-only: an
// expired link is reported, never written back.
func (s *LinkService) GetByActiveSlug(ctx context.Context, slug string) (*models.ShortLink, error) {
	link, err := s.storage.FindByActiveSlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, apperrors.NotFound(slug)
	}

	switch ComputeStatus(link, time.Now()) {
	case models.ComputedDisabled:
		return nil, apperrors.Disabled(link.ID)
	case models.ComputedExpired:
		return nil, apperrors.Expired(link.ID)
	}

	return link, nil
}

// ListByUser returns one page of the user's links decorated with their
// computed status. The order of steps is deliberate: fetch, decorate,
// filter on the computed status, then paginate. "expired" has no stored
// representation, so the filter cannot run in the database.
func (s *LinkService) ListByUser(ctx context.Context, p models.ListParams) (*models.LinkPage, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	limit := p.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	repoParams := models.RepoListParams{
		UserID: p.UserID,
		Limit:  listFetchLimit,
		Offset: 0,
		Search: p.Search,
	}
	// A computed "disabled" can only come from the stored flag, so that one
	// filter is safe to push down.
	if p.Status == models.ComputedDisabled {
		repoParams.Status = models.StatusDisabled
	}

	links, err := s.storage.ListByUser(ctx, repoParams)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	decorated := make([]models.DecoratedLink, 0, len(links))
	for _, link := range links {
		st := ComputeStatus(&link, now)
		if p.Status != "" && st != p.Status {
			continue
		}
		decorated = append(decorated, models.DecoratedLink{Link: link, Status: st})
	}

	total := len(decorated)
	totalPages := (total + limit - 1) / limit

	offset := (page - 1) * limit
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return &models.LinkPage{
		Items: decorated[offset:end],
		Meta: models.PageMeta{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNextPage: page*limit < total,
			HasPrevPage: page > 1,
		},
	}, nil
}

// Update applies a partial update to an owned link. Patch fields follow
// three-state semantics: absent leaves a column untouched, null clears it,
// a value sets it.
func (s *LinkService) Update(ctx context.Context, userID, linkID string, patch models.LinkPatch) (*models.ShortLink, error) {
	link, err := s.storage.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, apperrors.NotFound(linkID)
	}
	if link.UserID != userID {
		return nil, apperrors.Forbidden()
	}

	if err := s.validatePatch(ctx, link, &patch); err != nil {
		return nil, err
	}

	updated, err := s.storage.Update(ctx, linkID, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound(linkID)
	}

	return updated, nil
}

// validatePatch checks the set fields of a patch against the current link
// state. Slug edits keep the explicitly-requested-slug semantics: syntax,
// reserved set and uniqueness are checked, but no slug is generated.
func (s *LinkService) validatePatch(ctx context.Context, link *models.ShortLink, patch *models.LinkPatch) error {
	if patch.Slug.Present {
		if patch.Slug.Null {
			return apperrors.Validation("slug", "slug cannot be null")
		}
		requested := strings.TrimSpace(patch.Slug.Value)
		if requested != link.Slug {
			if !slugPattern.MatchString(requested) {
				return apperrors.Validation("slug", "slug must be 3-64 characters of letters, numbers, _ and -")
			}
			if IsReservedSlug(requested) {
				return apperrors.ReservedSlug(requested)
			}
			exists, err := s.storage.SlugExists(ctx, requested)
			if err != nil {
				return err
			}
			if exists {
				return apperrors.SlugExists(requested)
			}
		}
		patch.Slug.Value = requested
	}

	if patch.OriginalURL.Present {
		if patch.OriginalURL.Null {
			return apperrors.Validation("originalUrl", "originalUrl cannot be null")
		}
		if err := validateOriginalURL(patch.OriginalURL.Value); err != nil {
			return err
		}
	}

	if patch.Description.Present && !patch.Description.Null {
		if len(patch.Description.Value) > maxDescriptionLength {
			return apperrors.Validation("description", "description must be at most 500 characters long")
		}
	}

	if patch.ExpiresAt.Present && !patch.ExpiresAt.Null {
		if !patch.ExpiresAt.Value.After(time.Now()) {
			return apperrors.Validation("expiresAt", "expiration date must be in the future")
		}
	}

	if patch.MaxClicks.Present && !patch.MaxClicks.Null {
		if patch.MaxClicks.Value <= 0 {
			return apperrors.Validation("maxClicks", "maxClicks must be a positive integer")
		}
		// Reject instead of truncating recorded clicks.
		if patch.MaxClicks.Value < link.Clicks {
			return apperrors.QuotaBelowUsage(link.ID)
		}
	}

	return nil
}

// Enable turns the stored flag back to active. A link whose expiry date or
// quota has already passed cannot be re-enabled; the owner has to edit
// expiresAt or maxClicks first.
func (s *LinkService) Enable(ctx context.Context, userID, linkID string) error {
	link, err := s.storage.FindByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return apperrors.NotFound(linkID)
	}
	if link.UserID != userID {
		return apperrors.Forbidden()
	}

	if ExpiredIgnoringDisabled(link, time.Now()) {
		return apperrors.CannotEnableExpired(linkID)
	}

	return s.storage.ChangeStatus(ctx, linkID, models.StatusActive)
}

// Disable turns the stored flag off. Disabling an already disabled link is
// a no-op.
func (s *LinkService) Disable(ctx context.Context, userID, linkID string) error {
	link, err := s.storage.FindByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return apperrors.NotFound(linkID)
	}
	if link.UserID != userID {
		return apperrors.Forbidden()
	}

	if link.Status == models.StatusDisabled {
		return nil
	}

	return s.storage.ChangeStatus(ctx, linkID, models.StatusDisabled)
}

// Delete soft-deletes an owned link: the row keeps its id as a tombstone and
// drops out of every normal query. Deleting twice reports NotFound because
// the first delete already hid the row.
func (s *LinkService) Delete(ctx context.Context, userID, linkID string) error {
	link, err := s.storage.FindByID(ctx, linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return apperrors.NotFound(linkID)
	}
	if link.UserID != userID {
		return apperrors.Forbidden()
	}

	return s.storage.SoftDelete(ctx, linkID)
}

// DeleteBatch queues owned links for background soft deletion. Ids that do
// not belong to userID are skipped and logged.
func (s *LinkService) DeleteBatch(ctx context.Context, userID string, ids []string) {
	for _, id := range ids {
		link, err := s.storage.FindByID(ctx, id)
		if err != nil || link == nil {
			s.logger.Info("skipping unknown link in batch delete", zap.String("id", id))
			continue
		}
		if link.UserID != userID {
			s.logger.Warn("skipping foreign link in batch delete",
				zap.String("id", id),
				zap.String("userID", userID))
			continue
		}
		s.ch <- id
	}
}

// RecordClick increments the click counter by exactly one, but only while
// the link is stored-active and under quota. The check-and-increment is one
// conditional write in the storage layer, so concurrent redirects cannot
// push clicks past maxClicks. A blocked increment surfaces as
// QuotaReachedError; callers must treat it as "link no longer usable".
func (s *LinkService) RecordClick(ctx context.Context, id string) error {
	ok, err := s.storage.IncrementClicks(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.QuotaReached(id)
	}
	return nil
}

// validateOriginalURL requires an absolute http(s) URL.
func validateOriginalURL(raw string) error {
	if raw == "" {
		return apperrors.Validation("originalUrl", "originalUrl is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.Validation("originalUrl", "invalid URL format")
	}
	return nil
}

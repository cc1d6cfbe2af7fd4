// Package storage provides the in-memory implementation of the short link
// repository. It backs local development and the service tests; the
// conditional click increment runs under the same lock as the read, giving
// the same atomicity the SQL implementation gets from its conditional
// UPDATE.
package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mbocharov/go-shortlink/internal/models"
)

// MemoryStorage keeps links in a map guarded by a mutex.
type MemoryStorage struct {
	mu    sync.Mutex
	links map[string]models.ShortLink
}

// CreateMemoryStorage returns an empty in-memory repository.
func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		links: make(map[string]models.ShortLink),
	}, nil
}

func (m *MemoryStorage) Create(_ context.Context, link models.ShortLink) (*models.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links[link.ID] = link
	out := link
	return &out, nil
}

func (m *MemoryStorage) FindByID(_ context.Context, id string) (*models.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil {
		return nil, nil
	}
	out := link
	return &out, nil
}

func (m *MemoryStorage) FindByActiveSlug(_ context.Context, slug string) (*models.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.links {
		if link.Slug == slug && link.Status == models.StatusActive && link.DeletedAt == nil {
			out := link
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemoryStorage) Update(_ context.Context, id string, patch models.LinkPatch) (*models.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil {
		return nil, nil
	}

	if patch.Slug.Present && !patch.Slug.Null {
		link.Slug = patch.Slug.Value
	}
	if patch.OriginalURL.Present && !patch.OriginalURL.Null {
		link.OriginalURL = patch.OriginalURL.Value
	}
	if patch.Description.Present {
		if patch.Description.Null {
			link.Description = ""
		} else {
			link.Description = patch.Description.Value
		}
	}
	if patch.ExpiresAt.Present {
		if patch.ExpiresAt.Null {
			link.ExpiresAt = nil
		} else {
			v := patch.ExpiresAt.Value
			link.ExpiresAt = &v
		}
	}
	if patch.MaxClicks.Present {
		if patch.MaxClicks.Null {
			link.MaxClicks = nil
		} else {
			v := patch.MaxClicks.Value
			link.MaxClicks = &v
		}
	}

	link.UpdatedAt = time.Now()
	m.links[id] = link

	out := link
	return &out, nil
}

func (m *MemoryStorage) ChangeStatus(_ context.Context, id string, status models.StoredStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil {
		return nil
	}

	link.Status = status
	link.UpdatedAt = time.Now()
	m.links[id] = link
	return nil
}

func (m *MemoryStorage) SlugExists(_ context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.links {
		if link.Slug == slug && link.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStorage) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.softDeleteLocked(id)
	return nil
}

func (m *MemoryStorage) SoftDeleteBatch(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		m.softDeleteLocked(id)
	}
	return nil
}

// softDeleteLocked tombstones a row and forces the stored flag off.
func (m *MemoryStorage) softDeleteLocked(id string) {
	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil {
		return
	}

	now := time.Now()
	link.DeletedAt = &now
	link.Status = models.StatusDisabled
	link.UpdatedAt = now
	m.links[id] = link
}

func (m *MemoryStorage) ListByUser(_ context.Context, p models.RepoListParams) ([]models.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]models.ShortLink, 0)
	for _, link := range m.links {
		if link.UserID != p.UserID || link.DeletedAt != nil {
			continue
		}
		if p.Status != "" && link.Status != p.Status {
			continue
		}
		if p.Search != "" && !strings.Contains(strings.ToLower(link.Slug), strings.ToLower(p.Search)) {
			continue
		}
		matched = append(matched, link)
	}

	// createdAt desc, id as the stable tie-break.
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if p.Offset >= len(matched) {
		return []models.ShortLink{}, nil
	}
	end := p.Offset + p.Limit
	if p.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	return matched[p.Offset:end], nil
}

func (m *MemoryStorage) IncrementClicks(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok || link.DeletedAt != nil {
		return false, nil
	}
	if link.Status != models.StatusActive {
		return false, nil
	}
	if link.MaxClicks != nil && link.Clicks >= *link.MaxClicks {
		return false, nil
	}

	link.Clicks++
	link.UpdatedAt = time.Now()
	m.links[id] = link
	return true, nil
}

func (m *MemoryStorage) CountByUser(_ context.Context, userID, search string, status models.StoredStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, link := range m.links {
		if link.UserID != userID || link.DeletedAt != nil {
			continue
		}
		if status != "" && link.Status != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(link.Slug), strings.ToLower(search)) {
			continue
		}
		count++
	}
	return count, nil
}

func (m *MemoryStorage) SumClicks(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sum int64
	for _, link := range m.links {
		if link.UserID == userID && link.DeletedAt == nil {
			sum += link.Clicks
		}
	}
	return sum, nil
}

func (m *MemoryStorage) GetClicksGroupedByDay(_ context.Context, userID string, days int) ([]models.ClicksPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now().AddDate(0, 0, -(days - 1))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	byDay := make(map[string]int64)
	for _, link := range m.links {
		if link.UserID != userID || link.DeletedAt != nil {
			continue
		}
		if link.CreatedAt.Before(start) {
			continue
		}
		byDay[link.CreatedAt.Format("2006-01-02")] += link.Clicks
	}

	points := make([]models.ClicksPoint, 0, len(byDay))
	for date, clicks := range byDay {
		points = append(points, models.ClicksPoint{Date: date, Clicks: clicks})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return points, nil
}

func (m *MemoryStorage) CountInactiveByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for _, link := range m.links {
		if link.UserID != userID || link.DeletedAt != nil {
			continue
		}
		if link.Status == models.StatusDisabled {
			count++
			continue
		}
		expiredByDate := link.ExpiresAt != nil && now.After(*link.ExpiresAt)
		expiredByQuota := link.MaxClicks != nil && link.Clicks >= *link.MaxClicks
		if expiredByDate || expiredByQuota {
			count++
		}
	}
	return count, nil
}

// PingContext reports unsupported: there is no connection to check.
func (m *MemoryStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}

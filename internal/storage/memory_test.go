package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbocharov/go-shortlink/internal/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func seedLink(t *testing.T, m *MemoryStorage, link models.ShortLink) {
	t.Helper()
	_, err := m.Create(context.Background(), link)
	require.NoError(t, err)
}

func TestMemoryStorage_CreateAndFind(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	seedLink(t, m, models.ShortLink{
		ID: "id-1", UserID: "user-id", Slug: "first",
		OriginalURL: "https://example.com", Status: models.StatusActive,
		CreatedAt: time.Now(),
	})

	got, err := m.FindByID(ctx, "id-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.Slug)

	missing, err := m.FindByID(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStorage_FindByActiveSlug(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	seedLink(t, m, models.ShortLink{ID: "a", UserID: "u", Slug: "live", Status: models.StatusActive})
	seedLink(t, m, models.ShortLink{ID: "b", UserID: "u", Slug: "off", Status: models.StatusDisabled})

	got, err := m.FindByActiveSlug(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a", got.ID)

	// Stored-disabled rows are filtered out of the slug lookup.
	got, err = m.FindByActiveSlug(ctx, "off")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStorage_SoftDelete(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	seedLink(t, m, models.ShortLink{ID: "a", UserID: "u", Slug: "doomed", Status: models.StatusActive})

	require.NoError(t, m.SoftDelete(ctx, "a"))

	got, err := m.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = m.FindByActiveSlug(ctx, "doomed")
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := m.SlugExists(ctx, "doomed")
	require.NoError(t, err)
	assert.False(t, exists, "tombstoned slug must be reusable")

	// Deleting again is a silent no-op at the storage level.
	require.NoError(t, m.SoftDelete(ctx, "a"))
}

func TestMemoryStorage_SoftDeleteBatch(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	seedLink(t, m, models.ShortLink{ID: "a", UserID: "u", Slug: "one", Status: models.StatusActive})
	seedLink(t, m, models.ShortLink{ID: "b", UserID: "u", Slug: "two", Status: models.StatusActive})

	require.NoError(t, m.SoftDeleteBatch(ctx, []string{"a", "b", "ghost"}))

	for _, id := range []string{"a", "b"} {
		got, err := m.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestMemoryStorage_IncrementClicks(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	t.Run("counts up to the quota and stops", func(t *testing.T) {
		seedLink(t, m, models.ShortLink{ID: "q", UserID: "u", Slug: "quota", Status: models.StatusActive, MaxClicks: int64Ptr(2)})

		for range 2 {
			ok, err := m.IncrementClicks(ctx, "q")
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := m.IncrementClicks(ctx, "q")
		require.NoError(t, err)
		assert.False(t, ok)

		got, _ := m.FindByID(ctx, "q")
		assert.Equal(t, int64(2), got.Clicks)
	})

	t.Run("blocked on disabled", func(t *testing.T) {
		seedLink(t, m, models.ShortLink{ID: "d", UserID: "u", Slug: "dis", Status: models.StatusDisabled})

		ok, err := m.IncrementClicks(ctx, "d")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("blocked on unknown id", func(t *testing.T) {
		ok, err := m.IncrementClicks(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unlimited without maxClicks", func(t *testing.T) {
		seedLink(t, m, models.ShortLink{ID: "inf", UserID: "u", Slug: "open", Status: models.StatusActive})

		for range 100 {
			ok, err := m.IncrementClicks(ctx, "inf")
			require.NoError(t, err)
			assert.True(t, ok)
		}
	})
}

func TestMemoryStorage_Update(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	seedLink(t, m, models.ShortLink{
		ID: "a", UserID: "u", Slug: "before", OriginalURL: "https://example.com",
		Description: "note", Status: models.StatusActive,
		ExpiresAt: &expiry, MaxClicks: int64Ptr(10),
	})

	got, err := m.Update(ctx, "a", models.LinkPatch{
		Slug:      models.Set("after"),
		ExpiresAt: models.Clear[time.Time](),
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "after", got.Slug)
	assert.Nil(t, got.ExpiresAt)
	// Untouched fields survive.
	assert.Equal(t, "note", got.Description)
	assert.Equal(t, int64(10), *got.MaxClicks)

	missing, err := m.Update(ctx, "ghost", models.LinkPatch{})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStorage_ListByUser(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	seedLink(t, m, models.ShortLink{ID: "a", UserID: "u", Slug: "promo-jan", Status: models.StatusActive, CreatedAt: base.Add(time.Hour)})
	seedLink(t, m, models.ShortLink{ID: "b", UserID: "u", Slug: "promo-feb", Status: models.StatusActive, CreatedAt: base.Add(2 * time.Hour)})
	seedLink(t, m, models.ShortLink{ID: "c", UserID: "u", Slug: "other", Status: models.StatusDisabled, CreatedAt: base.Add(3 * time.Hour)})
	seedLink(t, m, models.ShortLink{ID: "x", UserID: "someone", Slug: "foreign", Status: models.StatusActive, CreatedAt: base})

	t.Run("newest first, own links only", func(t *testing.T) {
		links, err := m.ListByUser(ctx, models.RepoListParams{UserID: "u", Limit: 10})
		require.NoError(t, err)

		require.Len(t, links, 3)
		assert.Equal(t, []string{"c", "b", "a"}, []string{links[0].ID, links[1].ID, links[2].ID})
	})

	t.Run("stored status filter", func(t *testing.T) {
		links, err := m.ListByUser(ctx, models.RepoListParams{UserID: "u", Limit: 10, Status: models.StatusDisabled})
		require.NoError(t, err)

		require.Len(t, links, 1)
		assert.Equal(t, "c", links[0].ID)
	})

	t.Run("case-insensitive slug search", func(t *testing.T) {
		links, err := m.ListByUser(ctx, models.RepoListParams{UserID: "u", Limit: 10, Search: "PROMO"})
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("offset and limit", func(t *testing.T) {
		links, err := m.ListByUser(ctx, models.RepoListParams{UserID: "u", Limit: 1, Offset: 1})
		require.NoError(t, err)

		require.Len(t, links, 1)
		assert.Equal(t, "b", links[0].ID)
	})

	t.Run("offset past the end", func(t *testing.T) {
		links, err := m.ListByUser(ctx, models.RepoListParams{UserID: "u", Limit: 10, Offset: 50})
		require.NoError(t, err)
		assert.Empty(t, links)
	})
}

func TestMemoryStorage_Aggregates(t *testing.T) {
	m, _ := CreateMemoryStorage()
	ctx := context.Background()

	now := time.Now()
	seedLink(t, m, models.ShortLink{ID: "a", UserID: "u", Slug: "a", Status: models.StatusActive, Clicks: 2, CreatedAt: now})
	seedLink(t, m, models.ShortLink{ID: "b", UserID: "u", Slug: "b", Status: models.StatusDisabled, Clicks: 3, CreatedAt: now})
	seedLink(t, m, models.ShortLink{ID: "c", UserID: "u", Slug: "c", Status: models.StatusActive, Clicks: 5, MaxClicks: int64Ptr(5), CreatedAt: now})

	total, err := m.CountByUser(ctx, "u", "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	active, err := m.CountByUser(ctx, "u", "", models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, 2, active)

	inactive, err := m.CountInactiveByUser(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, inactive) // disabled b + quota-spent c

	sum, err := m.SumClicks(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, int64(10), sum)
}

func TestMemoryStorage_PingUnsupported(t *testing.T) {
	m, _ := CreateMemoryStorage()

	err := m.PingContext(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

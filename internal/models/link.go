// Package models defines the short link entity and the value types shared
// between the service, storage and HTTP layers.
package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// StoredStatus is the persisted two-value flag a user or the system toggles
// directly. "expired" is never stored: it is derived at read time from the
// expiry date and the click quota.
type StoredStatus string

const (
	StatusActive   StoredStatus = "active"
	StatusDisabled StoredStatus = "disabled"
)

// ComputedStatus is the effective status of a link derived from the stored
// flag plus expiry/quota state at a given moment.
type ComputedStatus string

const (
	ComputedActive   ComputedStatus = "active"
	ComputedDisabled ComputedStatus = "disabled"
	ComputedExpired  ComputedStatus = "expired"
)

// ShortLink is the short link entity. Each link is owned by exactly one user.
type ShortLink struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Slug        string       `json:"slug"`
	OriginalURL string       `json:"originalUrl"`
	Description string       `json:"description,omitempty"`
	Status      StoredStatus `json:"status"`
	Clicks      int64        `json:"clicks"`
	MaxClicks   *int64       `json:"maxClicks,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"-"`
}

// CreateLinkInput carries the fields accepted when creating a link.
// An empty Slug requests a generated one.
type CreateLinkInput struct {
	Slug        string
	OriginalURL string
	Description string
	ExpiresAt   *time.Time
	MaxClicks   *int64
}

// Field is a three-state patch value for partial updates: absent (leave the
// column untouched), null (clear it) or set to Value. The zero Field is
// absent, so callers can build patches field by field.
type Field[T any] struct {
	Present bool
	Null    bool
	Value   T
}

// Set returns a Field carrying v.
func Set[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

// Clear returns a Field that resets the column to NULL.
func Clear[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// UnmarshalJSON keeps the absent/null/value distinction of the wire format:
// a key that is missing from the JSON object never reaches this method, so
// Present stays false for untouched fields.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Present = true
	if bytes.Equal(b, []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// LinkPatch is a partial update of a short link. Only fields with
// Present=true are applied; Null=true clears nullable columns.
type LinkPatch struct {
	Slug        Field[string]
	OriginalURL Field[string]
	Description Field[string]
	ExpiresAt   Field[time.Time]
	MaxClicks   Field[int64]
}

// ListParams are the caller-facing list parameters. Status filters on the
// *computed* status, which is why the filter cannot be pushed to storage.
type ListParams struct {
	UserID string
	Page   int
	Limit  int
	Search string
	Status ComputedStatus // empty = no filter
}

// RepoListParams are the storage-level list parameters. Status here is the
// stored flag only.
type RepoListParams struct {
	UserID string
	Limit  int
	Offset int
	Search string
	Status StoredStatus // empty = no filter
}

// DecoratedLink is a ShortLink paired with its effective status at read time.
type DecoratedLink struct {
	Link   ShortLink      `json:"link"`
	Status ComputedStatus `json:"status"`
}

// PageMeta describes a page of a filtered result set. Total counts items
// after status filtering, not stored rows.
type PageMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// LinkPage is one page of decorated links.
type LinkPage struct {
	Items []DecoratedLink `json:"items"`
	Meta  PageMeta        `json:"meta"`
}

// LinkSummary holds the dashboard counters. The numbers come from
// independent aggregate queries and are an eventually-consistent snapshot.
type LinkSummary struct {
	TotalLinks    int   `json:"totalLinks"`
	ActiveLinks   int   `json:"activeLinks"`
	DisabledLinks int   `json:"disabledLinks"`
	ExpiredLinks  int   `json:"expiredLinks"`
	TotalClicks   int64 `json:"totalClicks"`
}

// ClicksPoint is one day of the clicks chart. Date is formatted YYYY-MM-DD.
type ClicksPoint struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// Package models defines the request and response data structures used
// for communication between the client and the short link service.
package models

import "time"

// CreateLinkRequest represents a request to create a short link.
// Validation tags are the fast-path guard; the service re-validates.
type CreateLinkRequest struct {
	// Slug is the requested slug. Empty means "generate one for me".
	Slug string `json:"slug,omitempty" validate:"omitempty,min=3,max=64"`

	// OriginalURL is the absolute destination URL.
	OriginalURL string `json:"originalUrl" validate:"required,url"`

	// Description is an optional free-form note shown in the dashboard.
	Description string `json:"description,omitempty" validate:"max=500"`

	// ExpiresAt, when set, must be strictly in the future.
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`

	// MaxClicks is an optional positive click quota.
	MaxClicks *int64 `json:"maxClicks,omitempty" validate:"omitempty,gt=0"`
}

// UpdateLinkRequest represents a partial update. Absent keys leave fields
// untouched, explicit null clears nullable fields, a value sets them.
type UpdateLinkRequest struct {
	Slug        Field[string]    `json:"slug"`
	OriginalURL Field[string]    `json:"originalUrl"`
	Description Field[string]    `json:"description"`
	ExpiresAt   Field[time.Time] `json:"expiresAt"`
	MaxClicks   Field[int64]     `json:"maxClicks"`
}

// Patch converts the request body into the service-level patch type.
func (r UpdateLinkRequest) Patch() LinkPatch {
	return LinkPatch{
		Slug:        r.Slug,
		OriginalURL: r.OriginalURL,
		Description: r.Description,
		ExpiresAt:   r.ExpiresAt,
		MaxClicks:   r.MaxClicks,
	}
}

// LinkResponse is the wire representation of a link. Status carries the
// effective status computed at response time, never the raw stored flag.
type LinkResponse struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	OriginalURL string         `json:"originalUrl"`
	Description string         `json:"description,omitempty"`
	Status      ComputedStatus `json:"status"`
	Clicks      int64          `json:"clicks"`
	MaxClicks   *int64         `json:"maxClicks,omitempty"`
	ExpiresAt   *time.Time     `json:"expiresAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewLinkResponse maps a decorated link onto the wire format.
func NewLinkResponse(d DecoratedLink) LinkResponse {
	return LinkResponse{
		ID:          d.Link.ID,
		Slug:        d.Link.Slug,
		OriginalURL: d.Link.OriginalURL,
		Description: d.Link.Description,
		Status:      d.Status,
		Clicks:      d.Link.Clicks,
		MaxClicks:   d.Link.MaxClicks,
		ExpiresAt:   d.Link.ExpiresAt,
		CreatedAt:   d.Link.CreatedAt,
		UpdatedAt:   d.Link.UpdatedAt,
	}
}

// ListLinksResponse is one page of links plus pagination metadata.
type ListLinksResponse struct {
	Items []LinkResponse `json:"items"`
	Meta  PageMeta       `json:"meta"`
}

// SummaryResponse is the dashboard payload: counters plus the clicks chart.
type SummaryResponse struct {
	LinkSummary
	ClicksChart []ClicksPoint `json:"clicksChart"`
}

// ErrorResponse is the error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

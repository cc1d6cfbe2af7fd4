package service

import (
	"time"

	"github.com/mbocharov/go-shortlink/internal/models"
)

// ComputeStatus derives the effective status of a link at the given moment.
// The explicit disabled flag always wins; after that a passed expiry date or
// a met click quota makes the link expired. The result is never cached or
// written back: "expired" exists only as a read-time derivation.
func ComputeStatus(link *models.ShortLink, now time.Time) models.ComputedStatus {
	if link.Status == models.StatusDisabled {
		return models.ComputedDisabled
	}
	if expiredByDate(link, now) || expiredByQuota(link) {
		return models.ComputedExpired
	}
	return models.ComputedActive
}

// ExpiredIgnoringDisabled re-runs only the time/quota checks, skipping the
// stored flag. Enable uses it: a disabled link whose expiry has passed must
// not come back as active.
func ExpiredIgnoringDisabled(link *models.ShortLink, now time.Time) bool {
	return expiredByDate(link, now) || expiredByQuota(link)
}

func expiredByDate(link *models.ShortLink, now time.Time) bool {
	return link.ExpiresAt != nil && now.After(*link.ExpiresAt)
}

func expiredByQuota(link *models.ShortLink) bool {
	return link.MaxClicks != nil && link.Clicks >= *link.MaxClicks
}

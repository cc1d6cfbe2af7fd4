// Package service implements the short link domain: slug allocation, the
// status policy and the operations orchestrating them over a storage backend.
package service

import (
	"context"
	"crypto/rand"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/apperrors"
)

// slugPattern constrains user-requested slugs: 3-64 chars, URL-safe charset.
var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,64}$`)

// slugPathPattern is the loose syntax guard the redirect route applies
// before touching the service at all.
var slugPathPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// reservedSlugs are application routes a slug must not shadow. Matched
// case-insensitively.
var reservedSlugs = map[string]struct{}{
	"api":             {},
	"home":            {},
	"short-link":      {},
	"login":           {},
	"register":        {},
	"forgot-password": {},
	"reset-password":  {},
	"metrics":         {},
	"ping":            {},
	"public":          {},
	"static":          {},
}

const (
	// randomSlugLength is the length of generated slugs.
	randomSlugLength = 7

	// slugAlphabet has exactly 64 characters, so indexing random bytes
	// modulo its length introduces no bias.
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

// ValidSlugPath reports whether s is syntactically a possible slug. Handlers
// use it as a fast-path guard on the redirect route.
func ValidSlugPath(s string) bool {
	return slugPathPattern.MatchString(s)
}

// IsReservedSlug reports whether s collides with an application route.
func IsReservedSlug(s string) bool {
	_, ok := reservedSlugs[strings.ToLower(s)]
	return ok
}

// SlugAllocator validates requested slugs and generates random ones.
type SlugAllocator struct {
	storage Storage
	logger  *zap.Logger
}

// NewSlugAllocator creates an allocator over the given storage backend.
func NewSlugAllocator(storage Storage, logger *zap.Logger) *SlugAllocator {
	return &SlugAllocator{
		storage: storage,
		logger:  logger,
	}
}

// Allocate resolves the slug for a new link. A non-empty requested slug is
// trimmed and validated against syntax, the reserved set and existing rows.
// An empty request produces a random 7-char slug; with 64^7 possibilities a
// collision is treated as a system fault, not a user error.
func (a *SlugAllocator) Allocate(ctx context.Context, requested string) (string, error) {
	if requested = strings.TrimSpace(requested); requested != "" {
		if !slugPattern.MatchString(requested) {
			return "", apperrors.Validation("slug", "slug must be 3-64 characters of letters, numbers, _ and -")
		}
		if IsReservedSlug(requested) {
			return "", apperrors.ReservedSlug(requested)
		}
		exists, err := a.storage.SlugExists(ctx, requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", apperrors.SlugExists(requested)
		}
		return requested, nil
	}

	slug, err := randomSlug()
	if err != nil {
		return "", apperrors.Internal("cannot generate slug", err)
	}

	exists, err := a.storage.SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if exists {
		// Statistically negligible; do not overwrite, fail loudly.
		a.logger.Error("random slug collided with an existing link", zap.String("slug", slug))
		return "", apperrors.Internal("generated slug collided", nil)
	}

	return slug, nil
}

// randomSlug draws randomSlugLength characters from the 64-char alphabet
// using crypto/rand.
func randomSlug() (string, error) {
	buf := make([]byte, randomSlugLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	out := make([]byte, randomSlugLength)
	for i, b := range buf {
		out[i] = slugAlphabet[int(b)%len(slugAlphabet)]
	}

	return string(out), nil
}

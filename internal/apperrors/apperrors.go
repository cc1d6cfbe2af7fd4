// Package apperrors defines the typed error taxonomy of the short link
// domain. The service never swallows errors: every failure surfaces as a
// *LinkError carrying a machine-readable code plus the offending field or
// entity id, so the HTTP layer can map it without string matching.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the kind of a domain error.
type Code string

const (
	CodeValidation          Code = "VALIDATION"
	CodeNotFound            Code = "NOT_FOUND"
	CodeForbidden           Code = "FORBIDDEN"
	CodeSlugExists          Code = "SLUG_ALREADY_EXISTS"
	CodeReservedSlug        Code = "RESERVED_SLUG"
	CodeLinkDisabled        Code = "LINK_DISABLED"
	CodeLinkExpired         Code = "LINK_EXPIRED"
	CodeQuotaReached        Code = "MAX_CLICKS_REACHED"
	CodeQuotaBelowUsage     Code = "MAX_CLICKS_BELOW_USAGE"
	CodeCannotEnableExpired Code = "CANNOT_ENABLE_EXPIRED"
	CodeInternal            Code = "INTERNAL"
)

// httpStatus maps each code to the status the API layer responds with.
var httpStatus = map[Code]int{
	CodeValidation:          http.StatusBadRequest,
	CodeNotFound:            http.StatusNotFound,
	CodeForbidden:           http.StatusForbidden,
	CodeSlugExists:          http.StatusConflict,
	CodeReservedSlug:        http.StatusBadRequest,
	CodeLinkDisabled:        http.StatusForbidden,
	CodeLinkExpired:         http.StatusGone,
	CodeQuotaReached:        http.StatusGone,
	CodeQuotaBelowUsage:     http.StatusConflict,
	CodeCannotEnableExpired: http.StatusConflict,
	CodeInternal:            http.StatusInternalServerError,
}

// LinkError is the error type raised by the short link service.
type LinkError struct {
	Code     Code
	Message  string
	Field    string // offending input field, when relevant
	EntityID string // affected link id or slug, when known
	Cause    error
}

func (e *LinkError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.EntityID)
	}
	return e.Message
}

func (e *LinkError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code associated with the error.
func (e *LinkError) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err is a *LinkError with the given code.
func IsCode(err error, code Code) bool {
	var le *LinkError
	return errors.As(err, &le) && le.Code == code
}

// Validation reports malformed input on a single field.
func Validation(field, message string) *LinkError {
	return &LinkError{Code: CodeValidation, Message: message, Field: field}
}

// NotFound reports a missing or soft-deleted link.
func NotFound(id string) *LinkError {
	return &LinkError{Code: CodeNotFound, Message: "short link not found", EntityID: id}
}

// Forbidden reports an ownership mismatch.
func Forbidden() *LinkError {
	return &LinkError{Code: CodeForbidden, Message: "you do not have permission to access this link"}
}

// SlugExists reports a slug collision with an existing link.
func SlugExists(slug string) *LinkError {
	return &LinkError{Code: CodeSlugExists, Message: "this slug is already taken", Field: "slug", EntityID: slug}
}

// ReservedSlug reports a slug that collides with an application route.
func ReservedSlug(slug string) *LinkError {
	return &LinkError{Code: CodeReservedSlug, Message: "this slug is reserved and cannot be used", Field: "slug", EntityID: slug}
}

// Disabled reports a redirect attempt on an explicitly disabled link.
func Disabled(id string) *LinkError {
	return &LinkError{Code: CodeLinkDisabled, Message: "this link is disabled", EntityID: id}
}

// Expired reports a redirect attempt on a link past its expiry or quota.
func Expired(id string) *LinkError {
	return &LinkError{Code: CodeLinkExpired, Message: "this link has expired", EntityID: id}
}

// QuotaReached reports a click increment blocked by the quota.
func QuotaReached(id string) *LinkError {
	return &LinkError{Code: CodeQuotaReached, Message: "this link has reached its maximum clicks", EntityID: id}
}

// QuotaBelowUsage reports an update setting maxClicks under current clicks.
func QuotaBelowUsage(id string) *LinkError {
	return &LinkError{Code: CodeQuotaBelowUsage, Message: "maxClicks cannot be lower than the recorded clicks", Field: "maxClicks", EntityID: id}
}

// CannotEnableExpired reports an enable attempt on a link whose time or
// quota condition has already passed.
func CannotEnableExpired(id string) *LinkError {
	return &LinkError{Code: CodeCannotEnableExpired, Message: "cannot enable a link that has already expired", EntityID: id}
}

// Internal wraps an unexpected failure, keeping the cause for logs.
func Internal(message string, cause error) *LinkError {
	return &LinkError{Code: CodeInternal, Message: message, Cause: cause}
}

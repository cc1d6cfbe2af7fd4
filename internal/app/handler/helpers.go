// Package handler contains the HTTP handlers of the short link API: link
// CRUD, status toggles, the public redirect route and the dashboard summary.
// It decodes and validates request bodies and maps domain errors onto HTTP
// status codes.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mbocharov/go-shortlink/internal/apperrors"
	"github.com/mbocharov/go-shortlink/internal/middleware"
	"github.com/mbocharov/go-shortlink/internal/models"
)

// validate checks the request DTO tags before anything reaches the service.
var validate = validator.New()

// malformedRequest represents an error with a malformed HTTP request.
type malformedRequest struct {
	status int
	msg    string
}

// Error returns the error message for a malformed request.
func (mr *malformedRequest) Error() string {
	return mr.msg
}

// decodeJSONBody decodes a JSON request body into the given destination
// struct, rejecting unknown fields, trailing data and bodies over 1MB.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
		if mediaType != "application/json" {
			msg := "Content-Type header is not application/json"
			return &malformedRequest{status: http.StatusUnsupportedMediaType, msg: msg}
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError

		switch {
		case errors.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.Is(err, io.ErrUnexpectedEOF):
			msg := "Request body contains badly-formed JSON"
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.As(err, &unmarshalTypeError):
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case errors.Is(err, io.EOF):
			msg := "Request body must not be empty"
			return &malformedRequest{status: http.StatusBadRequest, msg: msg}

		case err.Error() == "http: request body too large":
			msg := "Request body must not be larger than 1MB"
			return &malformedRequest{status: http.StatusRequestEntityTooLarge, msg: msg}

		default:
			return err
		}
	}

	// Ensure the body only contains a single JSON object.
	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		msg := "Request body must only contain a single JSON object"
		return &malformedRequest{status: http.StatusBadRequest, msg: msg}
	}

	return nil
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but note it.
		return
	}
}

// writeError maps a domain error onto its HTTP status and error payload.
// Anything that is not a *apperrors.LinkError becomes an opaque 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var le *apperrors.LinkError
	if errors.As(err, &le) {
		if le.Code == apperrors.CodeInternal {
			logger.Error("internal error", zap.Error(err))
		}
		writeJSON(w, le.HTTPStatus(), models.ErrorResponse{
			Error: le.Message,
			Code:  string(le.Code),
			Field: le.Field,
		})
		return
	}

	var mr *malformedRequest
	if errors.As(err, &mr) {
		writeJSON(w, mr.status, models.ErrorResponse{Error: mr.msg})
		return
	}

	logger.Error("unhandled error", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Error: http.StatusText(http.StatusInternalServerError),
	})
}

// userIDFromContext extracts the authenticated user ID injected by the JWT
// middleware. ok is false when the request carries no identity.
func userIDFromContext(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	return userID, ok && userID != ""
}

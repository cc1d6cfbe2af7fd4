package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/mbocharov/go-shortlink/internal/app/service"
)

// ContextKey is a custom type used for keys in the context.
// It helps prevent collisions in context keys.
type ContextKey string

// UserIDKey is the key used to store and retrieve the user ID from the context.
const UserIDKey ContextKey = "userID"

// InjectUserID adds the user ID to the request context, making it accessible
// for downstream handlers.
func InjectUserID(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), UserIDKey, userID)
	return req.WithContext(ctx)
}

// WithJWT checks for a valid JWT in the request's cookies. If the token is
// missing or invalid, a new identity is minted and set on the response. The
// user ID from the claims ends up in the request context either way.
func WithJWT(auth service.AuthIface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""

			if cookie, err := r.Cookie("token"); err == nil {
				if claims, err := auth.ParseClaims(cookie); err == nil {
					userID = claims.UserID
				}
			}

			if userID == "" {
				tokenString, generatedID, err := auth.BuildJWTString()
				if err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     "token",
					Value:    tokenString,
					Expires:  time.Now().Add(service.TokenExp),
					HttpOnly: true,
					Path:     "/",
				})
				userID = generatedID
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Package api implements the Hangar REST API using chi.
package api

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/starford/hangar/internal/bookmarks"
)

// ProfileHeader carries the caller's profile id.
const ProfileHeader = "X-Profile"

var profileRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type profileKey struct{}

// AuthMiddleware returns middleware that validates a Bearer token.
// If enabled is false, all requests pass through (disabled mode).
// If enabled is true, requests must carry a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProfileMiddleware resolves the X-Profile header into the request context.
// A missing header selects the default profile; a malformed one is rejected.
func ProfileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimSpace(r.Header.Get(ProfileHeader))
		if p == "" {
			p = bookmarks.DefaultProfile
		}
		if !profileRe.MatchString(p) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid profile"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, p)))
	})
}

func profileFrom(ctx context.Context) string {
	if p, ok := ctx.Value(profileKey{}).(string); ok {
		return p
	}
	return bookmarks.DefaultProfile
}

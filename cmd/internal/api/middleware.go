package api

import (
	"context"
	"net/http"
	"time"
)

type identityKey struct{}

func withIdentity(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityKey{}, userID)
}

// IdentityFrom returns the authenticated user ID, if any.
func IdentityFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(identityKey{}).(string)
	return userID, ok && userID != ""
}

// identityFromRequest decodes the Authorization header into a user ID.
func (h *Handler) identityFromRequest(r *http.Request) (string, error) {
	return h.codec.Decode(r.Header.Get("Authorization"), time.Now().UTC())
}

// RequireAuth rejects requests without a valid token with 401 before the
// handler runs; on success the user ID is attached to the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.identityFromRequest(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), userID)))
	})
}

// MaybeAuth attaches the user ID when a valid token is present and otherwise
// lets the request through anonymously. It never rejects.
func (h *Handler) MaybeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := h.identityFromRequest(r); err == nil {
			r = r.WithContext(withIdentity(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

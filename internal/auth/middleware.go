package auth

import (
	"context"
	"net/http"
)

type contextKey int

const userIDKey contextKey = iota

// UserID returns the user id set by RequireSession. ok is false when the
// request carries no authenticated session.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// RequireSession guards a protected handler: requests without a valid
// session cookie are redirected to the login page, everything else runs the
// handler with the user id in the request context.
func RequireSession(sessions *Sessions, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		userID, err := sessions.Verify(cookie.Value)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"recipe-chat/internal/chat"
)

const SessionCookieName = "recipe_chat_session"

type contextKey int

const sessionKey contextKey = iota

// SessionFromContext returns the chat session attached by the session
// middlewares.
func SessionFromContext(ctx context.Context) *chat.Session {
	if s, ok := ctx.Value(sessionKey).(*chat.Session); ok {
		return s
	}
	return nil
}

func sessionCookieID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// isSecureRequest reports whether the client reached us over https, either
// directly or through a proxy that sets X-Forwarded-Proto.
func isSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	proto, _, _ := strings.Cut(r.Header.Get("X-Forwarded-Proto"), ",")
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

// sessionMiddleware binds each browser to its own session through a cookie.
// Unknown or malformed cookies get a fresh session. The cookie lives as long
// as an idle session is kept by the store.
func sessionMiddleware(store *chat.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := store.Resolve(sessionCookieID(r))
			age := store.TTL()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    session.ID(),
				Path:     "/",
				MaxAge:   int(age.Seconds()),
				Expires:  time.Now().Add(age),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   isSecureRequest(r),
			})
			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// existingSessionMiddleware attaches the cookie's session without creating
// one. Requests without a live session get 404.
func existingSessionMiddleware(store *chat.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := store.Lookup(sessionCookieID(r))
			if !ok {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package middleware

import (
	"net/http"

	"github.com/dstrobel/einkauf/internal/auth"
	"github.com/dstrobel/einkauf/internal/store"
)

const sessionCookieName = "einkauf_session"

// RequireAuth validates the session cookie and populates AuthContext.
// HTMX-aware: returns HX-Redirect header instead of 303 redirect for HTMX requests.
func RequireAuth(sessionStore *store.SessionStore, userStore *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				redirectToLogin(w, r)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				redirectToLogin(w, r)
				return
			}

			user, err := userStore.GetByID(sess.UserID)
			if err != nil || user == nil {
				redirectToLogin(w, r)
				return
			}

			ac := auth.AuthContext{
				UserID:    user.ID,
				Name:      auth.DisplayName(user.Name, user.Email),
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

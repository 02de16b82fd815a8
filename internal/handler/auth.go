package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dstrobel/einkauf/internal/store"
)

const (
	sessionCookieName = "einkauf_session"
	sessionMaxAge     = 30 * 24 * 60 * 60
)

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	templates    *template.Template
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/auth_*.html"))
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		templates:    tmpl,
		logger:       logger.With("component", "auth"),
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Email": email,
			"Error": "E-Mail und Passwort werden benötigt",
		})
		return
	}

	user, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// Same error for unknown email and wrong password
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		h.templates.ExecuteTemplate(w, "auth_login.html", map[string]any{
			"Email": email,
			"Error": "E-Mail oder Passwort ist falsch",
		})
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, r, sess.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{
			"Email": email,
			"Name":  name,
			"Error": "E-Mail und Passwort werden benötigt",
		})
		return
	}
	if len(password) < 8 {
		h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{
			"Email": email,
			"Name":  name,
			"Error": "Das Passwort muss mindestens 8 Zeichen haben",
		})
		return
	}

	existing, err := h.userStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		h.templates.ExecuteTemplate(w, "auth_register.html", map[string]any{
			"Email": email,
			"Name":  name,
			"Error": "Diese E-Mail-Adresse ist bereits registriert",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	user, err := h.userStore.Create(email, name, string(hash))
	if err != nil {
		h.logger.Error("create user", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	sess, err := h.sessionStore.Create(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.setSessionCookie(w, r, sess.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dstrobel/einkauf/internal/bus"
	"github.com/dstrobel/einkauf/internal/handler"
	"github.com/dstrobel/einkauf/internal/middleware"
	"github.com/dstrobel/einkauf/internal/store"
	ws "github.com/dstrobel/einkauf/internal/websocket"
)

type Server struct {
	db           *sql.DB
	bus          *bus.Bus
	itemH        *handler.ItemHandler
	templateH    *handler.TemplateHandler
	authH        *handler.AuthHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Server {
	b := bus.New()

	itemStore := store.NewItemStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	return &Server{
		db:           db,
		bus:          b,
		itemH:        handler.NewItemHandler(itemStore, b, logger),
		templateH:    handler.NewTemplateHandler(itemStore, b, logger),
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger),
		userStore:    userStore,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /login", s.authH.LoginPage)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /register", s.authH.RegisterPage)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// JSON API routes
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/amount", s.itemH.ChangeAmount)
	mux.HandleFunc("POST /api/items/{id}/list", s.itemH.AddToList)
	mux.HandleFunc("DELETE /api/items/{id}/list", s.itemH.RemoveFromList)
	mux.HandleFunc("GET /api/supermarkets", s.itemH.Supermarkets)

	// Page route — full layout
	mux.HandleFunc("GET /", s.templateH.Page)

	// Shopping list partials (HTMX)
	mux.HandleFunc("GET /partials/list", s.templateH.ShoppingList)
	mux.HandleFunc("GET /partials/items", s.templateH.Catalog)
	mux.HandleFunc("GET /partials/items/rows", s.templateH.CatalogRows)
	mux.HandleFunc("GET /partials/items/form", s.templateH.CreateForm)
	mux.HandleFunc("GET /partials/supermarkets", s.templateH.SupermarketOptions)
	mux.HandleFunc("POST /partials/items/check", s.templateH.CheckName)
	mux.HandleFunc("POST /partials/items", s.templateH.CreateCommit)
	mux.HandleFunc("GET /partials/items/{id}", s.templateH.Detail)
	mux.HandleFunc("GET /partials/items/{id}/edit", s.templateH.EditForm)
	mux.HandleFunc("PUT /partials/items/{id}", s.templateH.Save)
	mux.HandleFunc("POST /partials/items/{id}/amount", s.templateH.ChangeAmount)
	mux.HandleFunc("POST /partials/items/{id}/list", s.templateH.AddToList)
	mux.HandleFunc("DELETE /partials/items/{id}/list", s.templateH.RemoveFromList)
	mux.HandleFunc("DELETE /partials/items/{id}", s.templateH.Delete)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handle(s.bus, s.logger))
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/orilam/kniyot/internal/feed"
	"github.com/orilam/kniyot/internal/handler"
	"github.com/orilam/kniyot/internal/middleware"
	"github.com/orilam/kniyot/internal/store"
)

// Config carries the server-level knobs main reads from the environment.
type Config struct {
	// AdminTokenHash is the bcrypt hash of the admin bearer token. Empty
	// disables the admin API.
	AdminTokenHash string
}

type Server struct {
	db          *sql.DB
	hub         *feed.Hub
	catalogH    *handler.CatalogHandler
	listH       *handler.ListHandler
	itemH       *handler.ItemHandler
	adminH      *handler.AdminHandler
	rateLimiter *middleware.RateLimiter
	cfg         Config
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := feed.NewHub(logger.With("component", "feed"))

	catalogStore := store.NewCatalogStore(db)
	listStore := store.NewListStore(db)
	pendingStore := store.NewPendingStore(db)

	return &Server{
		db:          db,
		hub:         hub,
		catalogH:    handler.NewCatalogHandler(catalogStore),
		listH:       handler.NewListHandler(listStore, logger.With("component", "list")),
		itemH:       handler.NewItemHandler(listStore, pendingStore, hub, logger.With("component", "item")),
		adminH:      handler.NewAdminHandler(catalogStore, pendingStore, logger.With("component", "admin")),
		rateLimiter: middleware.NewRateLimiter(),
		cfg:         cfg,
		logger:      logger,
	}
}

// Hub returns the change-feed hub.
func (s *Server) Hub() *feed.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Reference data
	mux.HandleFunc("GET /api/categories", s.catalogH.ListCategories)
	mux.HandleFunc("GET /api/catalog", s.catalogH.ListCatalogItems)

	// Lists
	mux.HandleFunc("GET /api/lists/{slug}", s.listH.GetBySlug)
	mux.HandleFunc("POST /api/lists", s.listH.Create)

	// Active items
	mux.HandleFunc("GET /api/lists/{list_id}/items", s.itemH.ListItems)
	mux.HandleFunc("POST /api/lists/{list_id}/items", s.itemH.CreateItem)
	mux.HandleFunc("PUT /api/lists/{list_id}/items/{item_id}", s.itemH.UpdateItem)
	mux.HandleFunc("DELETE /api/lists/{list_id}/items/{item_id}", s.itemH.DeleteItem)

	// Pending suggestions (shopper side)
	mux.HandleFunc("POST /api/lists/{list_id}/pending", s.itemH.CreatePending)

	// Admin — token-guarded, rate-limited to slow token guessing
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /api/admin/pending", s.adminH.ListPending)
	adminMux.HandleFunc("POST /api/admin/pending/{id}/approve", s.adminH.ApprovePending)
	adminMux.HandleFunc("POST /api/admin/pending/{id}/reject", s.adminH.RejectPending)
	adminMux.HandleFunc("POST /api/admin/categories", s.adminH.CreateCategory)
	adminMux.HandleFunc("PUT /api/admin/categories/{id}", s.adminH.RenameCategory)
	adminMux.HandleFunc("POST /api/admin/categories/{id}/move", s.adminH.MoveCategory)

	adminLimit := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 30, time.Minute)
	adminGuard := middleware.RequireAdminToken(s.cfg.AdminTokenHash)
	mux.Handle("/api/admin/", adminLimit(adminGuard(adminMux)))

	// Change feed
	mux.HandleFunc("GET /ws", feed.HandleWebSocket(s.hub, s.logger.With("component", "feed")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/giddylist/internal/auth"
	"github.com/Kerhoff/giddylist/internal/metrics"
	"github.com/Kerhoff/giddylist/internal/service"
)

// Options configures the parts of the Server that are not the service. A nil
// Metrics shares the service's collectors.
type Options struct {
	Verifier    auth.Verifier
	Metrics     *metrics.Metrics
	ScrapeRPS   float64
	ScrapeBurst int
	// TelegramBot is the bot's username. When set, link codes come back
	// with a t.me deep link.
	TelegramBot string
}

// Server provides the JSON HTTP API.
type Server struct {
	svc      *service.Service
	verifier auth.Verifier
	metrics  *metrics.Metrics
	limiter  *ipLimiter
	botName  string
	logger   *logrus.Logger
	mux      *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, opts Options, logger *logrus.Logger) *Server {
	if opts.Metrics == nil {
		opts.Metrics = svc.Metrics()
	}
	if opts.ScrapeRPS <= 0 {
		opts.ScrapeRPS = 2
	}
	if opts.ScrapeBurst <= 0 {
		opts.ScrapeBurst = 5
	}
	s := &Server{
		svc:      svc,
		verifier: opts.Verifier,
		metrics:  opts.Metrics,
		limiter:  newIPLimiter(opts.ScrapeRPS, opts.ScrapeBurst),
		botName:  opts.TelegramBot,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// Catalogue
	s.mux.HandleFunc("GET /api/products", s.store(s.handleListProducts))
	s.mux.HandleFunc("POST /api/products", s.admin(s.handleCreateProduct))
	s.mux.HandleFunc("POST /api/products/scrape", s.limited(s.admin(s.handleScrapeBatch)))

	// Gift guides
	s.mux.HandleFunc("POST /api/guides/generate", s.admin(s.handleGenerateGuide))
	s.mux.HandleFunc("GET /api/guides/{slug}", s.store(s.optional(s.handleGetGuide)))
	s.mux.HandleFunc("PUT /api/guides/{slug}", s.admin(s.handleUpdateGuide))
	s.mux.HandleFunc("DELETE /api/guides/{slug}", s.admin(s.handleDeleteGuide))

	// Trending gifts
	s.mux.HandleFunc("GET /api/trending-gifts", s.handleTrendingGifts)
	s.mux.HandleFunc("POST /api/trending-gifts", s.admin(s.handleCreateTrendingGift))
	s.mux.HandleFunc("PUT /api/trending-gifts", s.admin(s.handleUpdateTrendingGift))

	// Registries
	s.mux.HandleFunc("GET /api/registry/{slug}", s.store(s.optional(s.handleGetRegistry)))
	s.mux.HandleFunc("POST /api/registry/{slug}/claim", s.store(s.handleClaim))
	s.mux.HandleFunc("POST /api/registries", s.store(s.user(s.handleCreateRegistry)))
	s.mux.HandleFunc("POST /api/registries/{id}/items", s.store(s.user(s.handleAddRegistryItem)))

	// Kids and wishlists
	s.mux.HandleFunc("GET /api/kids", s.store(s.user(s.handleListKids)))
	s.mux.HandleFunc("POST /api/kids", s.store(s.user(s.handleCreateKid)))
	s.mux.HandleFunc("PUT /api/kids/{id}", s.store(s.user(s.handleUpdateKid)))
	s.mux.HandleFunc("DELETE /api/kids/{id}", s.store(s.user(s.handleDeleteKid)))
	s.mux.HandleFunc("GET /api/kids/{id}/wishlist", s.store(s.user(s.handleKidWishlist)))
	s.mux.HandleFunc("POST /api/wishlist", s.store(s.user(s.handleAddWishlistItem)))
	s.mux.HandleFunc("POST /api/wishlist/{id}/refresh", s.store(s.user(s.handleRefreshWishlistItem)))
	s.mux.HandleFunc("DELETE /api/wishlist/{id}", s.store(s.user(s.handleDeleteWishlistItem)))

	// Profiles and collections
	s.mux.HandleFunc("GET /api/profiles/{username}", s.store(s.optional(s.handleGetProfile)))
	s.mux.HandleFunc("POST /api/profiles/{username}/follow", s.store(s.user(s.handleFollow)))
	s.mux.HandleFunc("DELETE /api/profiles/{username}/follow", s.store(s.user(s.handleUnfollow)))
	s.mux.HandleFunc("GET /api/collections/{id}", s.store(s.optional(s.handleGetCollection)))

	// Tools
	s.mux.HandleFunc("POST /api/scrape", s.limited(s.user(s.handleScrape)))
	s.mux.HandleFunc("POST /api/upload", s.user(s.handleUpload))
	s.mux.HandleFunc("POST /api/track/click", s.optional(s.handleTrackClick))

	// Earnings and Telegram
	s.mux.HandleFunc("GET /api/earnings/tiers", s.handleTiers)
	s.mux.HandleFunc("POST /api/earnings/commissions", s.admin(s.handleRecordCommission))
	s.mux.HandleFunc("POST /api/telegram/link", s.store(s.user(s.handleTelegramLink)))

	// Operations
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors onto status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrStoreUnavailable), errors.Is(err, service.ErrNotConfigured):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id in path")
	}
	return uuid.Parse(raw)
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func queryString(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"database": s.svc.HasStore(),
	})
}

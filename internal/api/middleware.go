package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Kerhoff/giddylist/internal/auth"
)

type userKey struct{}

// currentUser returns the authenticated caller, if any.
func currentUser(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(userKey{}).(uuid.UUID)
	return id, ok
}

// viewer is currentUser as an optional pointer.
func viewer(r *http.Request) *uuid.UUID {
	if id, ok := currentUser(r); ok {
		return &id
	}
	return nil
}

func withUser(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey{}, id))
}

// authenticate verifies the bearer token on r. It reports false with no
// error when the request carries no token.
func (s *Server) authenticate(r *http.Request) (uuid.UUID, bool, error) {
	token := auth.BearerToken(r)
	if token == "" {
		return uuid.Nil, false, nil
	}
	if s.verifier == nil {
		return uuid.Nil, false, errors.New("authentication not configured")
	}
	id, err := s.verifier.Verify(r.Context(), token)
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// optional attaches the caller when a valid token is present and treats
// everyone else as a guest.
func (s *Server) optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := s.authenticate(r)
		if err != nil {
			s.logger.WithError(err).Debug("ignoring invalid bearer token")
		}
		if ok {
			r = withUser(r, id)
		}
		next(w, r)
	}
}

// user rejects requests without a valid bearer token.
func (s *Server) user(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := s.authenticate(r)
		if err != nil || !ok {
			s.respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, withUser(r, id))
	}
}

// admin requires a signed-in caller whose profile carries the admin flag.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return s.store(s.user(func(w http.ResponseWriter, r *http.Request) {
		id, _ := currentUser(r)
		p, err := s.svc.Profile(r.Context(), id)
		if err != nil {
			s.respondServiceError(w, r, err)
			return
		}
		if p == nil || !p.IsAdmin {
			s.respondError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next(w, r)
	}))
}

// store answers 503 while no database is configured.
func (s *Server) store(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.svc.HasStore() {
			s.respondError(w, http.StatusServiceUnavailable, "database not configured")
			return
		}
		next(w, r)
	}
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

// ipLimiter hands out one token bucket per client IP. Buckets idle for longer
// than ipLimiterTTL are dropped on the next sweep.
type ipLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

const ipLimiterTTL = 10 * time.Minute

func newIPLimiter(rps float64, burst int) *ipLimiter {
	return &ipLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		clients:   make(map[string]*limiterEntry),
		lastSweep: time.Now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > ipLimiterTTL {
		for k, e := range l.clients {
			if now.Sub(e.seen) > ipLimiterTTL {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	e, ok := l.clients[ip]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = e
	}
	e.seen = now
	return e.lim.Allow()
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limited applies the per-IP scrape budget.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			s.respondError(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next(w, r)
	}
}

// ---------------------------------------------------------------------------
// Request logging
// ---------------------------------------------------------------------------

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request and records its latency by route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		took := time.Since(start)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(route, r.Method, strconv.Itoa(rec.status), took)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": took.String(),
		})
		switch {
		case rec.status >= 500:
			entry.Warn("request completed")
		case r.URL.Path == "/healthz" || r.URL.Path == "/metrics":
			entry.Debug("request completed")
		default:
			entry.Info("request completed")
		}
	})
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"scadenze/internal/cache"
	"scadenze/internal/core"
	applog "scadenze/internal/log"
	"scadenze/internal/services"
)

type Server struct {
	http.Server
	auth        *services.AuthService
	bills       *services.BillService
	rateLimiter *rateLimiter
	metrics     securityMetrics

	// Projection results are cached per user and day; any write through
	// the API drops the user's entries.
	projectionCache *cache.LRUCache[core.ProjectionResult]
	cacheManager    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, authSvc *services.AuthService, billSvc *services.BillService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:            authSvc,
		bills:           billSvc,
		rateLimiter:     newRateLimiter(),
		projectionCache: cache.NewLRUCache[core.ProjectionResult](200, 5*time.Minute),
		cacheManager:    cache.NewManager(),
	}

	s.cacheManager.Register(s.projectionCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/auth/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("/api/auth/login", s.withSecurityHeaders(s.handleLogin))
	mux.HandleFunc("/api/auth/logout", s.withSecurityHeaders(s.handleLogout))
	mux.HandleFunc("/api/auth/me", s.withSecurityHeaders(s.handleCurrentUser))
	mux.HandleFunc("/api/auth/money", s.withSecurityHeaders(s.handleUpdateMoney))

	mux.HandleFunc("/api/bills", s.withSecurityHeaders(s.handleBills))
	mux.HandleFunc("/api/bills/", s.withSecurityHeaders(s.handleBillByID))

	mux.HandleFunc("/api/cashflow", s.withSecurityHeaders(s.handleCashflow))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		startFields := applog.NewFields().
			WithComponent(applog.ComponentHTTP).
			WithRequestID(requestID).
			WithHTTPRequest(r.Method, r.URL.Path, r.Header.Get("User-Agent")).
			WithClientIP(clientIP)
		slog.InfoContext(ctx, "Request started", startFields.ToSlice()...)

		// Writes are rate limited per client
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		endFields := applog.NewFields().
			WithComponent(applog.ComponentHTTP).
			WithRequestID(requestID).
			WithHTTPRequest(r.Method, r.URL.Path, "").
			WithHTTPResponse(rw.statusCode, duration.Milliseconds(), rw.statusCode < 400).
			WithClientIP(clientIP)
		slog.InfoContext(ctx, "Request completed", endFields.ToSlice()...)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

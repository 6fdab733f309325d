package api

import (
	"bufio"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/trading-simulator/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeUnsupportedOperation, "response writer does not support hijacking")
	}

	r.status = http.StatusSwitchingProtocols

	return hijacker.Hijack()
}

func (r *statusRecorder) Flush() {
	if flusher, ok := r.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// instrument logs every routed request and records it in the metrics under its route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}

		duration := time.Since(started)
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveHTTPRequest(r.Method, route, recorder.status, duration)
		}

		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", duration),
			zap.String("remote", clientIP(r)),
		)
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("panic while serving request",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
				)
				writeError(w, errors.New(errors.ErrCodeUnknown, "internal server error"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// cors answers preflight requests and sets the allow headers for permitted origins.
// An empty origin list or "*" allows every origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && originAllowed(s.cfg.CORSOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 || origin == "" {
		return true
	}

	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}

	return false
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, errors.New(errors.ErrCodeRateLimited, "rate limit exceeded"))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps a token bucket per client IP refilled at perMinute tokens a minute.
type ipRateLimiter struct {
	perMinute int
	now       func() time.Time

	mu        sync.Mutex
	clients   map[string]*limiterEntry
	lastPrune time.Time
}

func newIPRateLimiter(perMinute int, now func() time.Time) *ipRateLimiter {
	return &ipRateLimiter{
		perMinute: perMinute,
		now:       now,
		clients:   make(map[string]*limiterEntry),
		lastPrune: now(),
	}
}

// Allow reports whether ip may make another request. A non-positive limit disables limiting.
func (l *ipRateLimiter) Allow(ip string) bool {
	if l == nil || l.perMinute <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterIdleTTL {
		for key, entry := range l.clients {
			if now.Sub(entry.lastSeen) > limiterIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastPrune = now
	}

	entry, ok := l.clients[ip]
	if !ok {
		every := rate.Every(time.Minute / time.Duration(l.perMinute))
		entry = &limiterEntry{limiter: rate.NewLimiter(every, l.perMinute)}
		l.clients[ip] = entry
	}

	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// Size returns the number of tracked clients.
func (l *ipRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.clients)
}

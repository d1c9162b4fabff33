package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ThinkGrid-Labs/altis-engine/internal/availability"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
)

// corsMiddleware is a permissive dev-mode CORS handler.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestIDMiddleware assigns a request id (or keeps one supplied by the
// caller) and binds it into the request context so every log line for this
// request carries it.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-Id", id)
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(withRequestID(ctx, id))
		c.Next()
	}
}

func loggingMiddleware(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func metricsMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Writer.Status()
		status := http.StatusText(code)
		m.observe(route, c.Request.Method, status, time.Since(start))
		if code >= http.StatusBadRequest {
			kind := "client_error"
			if code >= http.StatusInternalServerError {
				kind = "server_error"
			}
			m.ErrorsTotal.WithLabelValues(route, kind).Inc()
		}
	}
}

// ipLimiters is the fail-open local fallback: golang.org/x/time/rate
// limiters keyed by client IP, used only when the distributed Redis
// counter is unavailable, so a cache outage degrades to a per-process
// limit instead of admitting unlimited traffic.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPLimiters(rps float64, burst int) *ipLimiters {
	return &ipLimiters{limiters: make(map[string]*rate.Limiter), rps: rate.Limit(rps), burst: burst}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = lim
	}
	return lim.Allow()
}

// rateLimitConfig controls one endpoint class's rate limit policy: the
// request budget per window, and whether a limiter-unavailable condition
// fails open (read endpoints) or closed (state-mutating endpoints), per
// the error handling design's explicit fail-open/fail-closed switch.
type rateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	FailOpen          bool
}

var defaultReadLimit = rateLimitConfig{RequestsPerWindow: 120, Window: time.Minute, FailOpen: true}
var defaultWriteLimit = rateLimitConfig{RequestsPerWindow: 30, Window: time.Minute, FailOpen: false}

// rateLimitMiddleware enforces cfg's budget for one client IP via the
// distributed Redis counter. If Redis errors, cfg.FailOpen decides first:
// a fail-closed class rejects the request with 429, and a fail-open class
// falls back to an in-process golang.org/x/time/rate limiter.
func rateLimitMiddleware(avail *availability.Cache, fallback *ipLimiters, cfg rateLimitConfig, log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		count, err := avail.IncrementRateLimit(c.Request.Context(), ip, cfg.Window)
		if err != nil {
			log.Warn("rate limit counter unavailable", zap.Error(err))
			if !cfg.FailOpen {
				// State-mutating endpoints fail closed: an unreachable
				// counter means the request budget can't be verified, so
				// reject rather than admit unbounded traffic.
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
			// Read endpoints fail open, but still bounded by an
			// in-process limiter so a cache outage degrades to a
			// per-process cap instead of no limit at all.
			if !fallback.allow(ip) {
				c.AbortWithStatus(http.StatusTooManyRequests)
				return
			}
			c.Next()
			return
		}
		if int(count) > cfg.RequestsPerWindow {
			c.Header("Retry-After", cfg.Window.String())
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

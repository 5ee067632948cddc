package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/docchat-io/docchat-be/types"
)

// AuthRateLimiter throttles the auth endpoints per key: the request body's
// email when present, otherwise the client IP. Entries idle longer than
// twice the window are evicted on the fly.
type AuthRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewAuthRateLimiter allows maxRequests per window for each key.
func NewAuthRateLimiter(maxRequests int, window time.Duration) *AuthRateLimiter {
	return &AuthRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
		window:   window,
	}
}

func (l *AuthRateLimiter) Middleware(c *gin.Context) {
	key := c.ClientIP()
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindBodyWithJSON(&body); err == nil && body.Email != "" {
		key = body.Email
	}

	if !l.allow(key) {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, types.DataResponse{
			Status:  "error",
			Code:    types.ErrorCode(types.ErrRateLimited),
			Message: "Too many requests. Try again later.",
		})
		return
	}
	c.Next()
}

func (l *AuthRateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) > 2*l.window {
			delete(l.visitors, k)
		}
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

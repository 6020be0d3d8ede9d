package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"

	"mydiary/internal/app/server/api/http/middleware/auth"
)

const (
	idleAfter  = 10 * time.Minute
	pruneAbove = 1024
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles password attempts per user. Must run after auth.
type Limiter struct {
	mu       sync.Mutex
	visitors map[int]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
	log      *slog.Logger
}

// New allows perMinute attempts per user with a burst of the same size.
// perMinute <= 0 disables the limiter.
func New(perMinute int, log *slog.Logger) *Limiter {
	l := &Limiter{
		visitors: make(map[int]*visitor),
		limit:    rate.Inf,
		burst:    perMinute,
		now:      time.Now,
		log:      log.With("component", "rate_limiter"),
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
	}
	return l
}

func (l *Limiter) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		userID, ok := auth.GetUserID(ctx.Context())
		if !ok || l.limit == rate.Inf {
			next(ctx)
			return
		}

		r := l.get(userID).ReserveN(l.now(), 1)
		if delay := r.DelayFrom(l.now()); delay > 0 {
			r.CancelAt(l.now())

			l.log.Warn("too many password attempts", "user_id", userID, "retry_after", delay)

			ctx.SetHeader("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			ctx.SetHeader("Content-Type", "application/json")
			ctx.SetStatus(http.StatusTooManyRequests)
			_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
				"error": "Too many requests",
			})
			return
		}

		next(ctx)
	}
}

func (l *Limiter) get(userID int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.visitors) > pruneAbove {
		for id, v := range l.visitors {
			if now.Sub(v.lastSeen) > idleAfter {
				delete(l.visitors, id)
			}
		}
	}

	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[userID] = v
	}
	v.lastSeen = now
	return v.limiter
}

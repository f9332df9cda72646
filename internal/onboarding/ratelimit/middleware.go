package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"onboarding/pkg/platform/httputil"
	"onboarding/pkg/requestcontext"
)

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(r *http.Request) string

// ByClientIP counts requests per client address.
func ByClientIP(r *http.Request) string {
	return requestcontext.ClientIP(r.Context())
}

// BySession counts requests per authenticated session.
func BySession(r *http.Request) string {
	return requestcontext.SessionID(r.Context()).String()
}

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"error_description"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware rejects requests over their class limit with 429.
type Middleware struct {
	limiter *Limiter
	logger  *slog.Logger
}

func NewMiddleware(limiter *Limiter, logger *slog.Logger) *Middleware {
	return &Middleware{limiter: limiter, logger: logger}
}

// Limit applies class to requests keyed by key. A failing store lets the
// request through.
func (m *Middleware) Limit(class Class, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			res, err := m.limiter.Check(ctx, class, key(r))
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}
			if res.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			}
			if !res.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", string(class),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(res.RetryAfter))
				httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
					Error:      "rate_limit_exceeded",
					Message:    "Too many requests. Please try again later.",
					RetryAfter: res.RetryAfter,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

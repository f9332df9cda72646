package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/requestcontext"
)

type InMemoryStoreSuite struct {
	suite.Suite
	now   time.Time
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemoryStore(WithClock(func() time.Time { return s.now }))
}

func (s *InMemoryStoreSuite) TestSlidingWindow() {
	ctx := context.Background()
	for i := range 3 {
		res, err := s.store.Allow(ctx, "k", 3, time.Minute)
		s.Require().NoError(err)
		s.True(res.Allowed)
		s.Equal(2-i, res.Remaining)
		s.now = s.now.Add(10 * time.Second)
	}

	res, err := s.store.Allow(ctx, "k", 3, time.Minute)
	s.Require().NoError(err)
	s.False(res.Allowed)
	s.Equal(30, res.RetryAfter, "oldest request leaves the window 60s after it was made")

	s.now = s.now.Add(31 * time.Second)
	res, err = s.store.Allow(ctx, "k", 3, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed, "the first request has slid out")
}

func (s *InMemoryStoreSuite) TestKeysAreIndependent() {
	ctx := context.Background()
	_, err := s.store.Allow(ctx, "a", 1, time.Minute)
	s.Require().NoError(err)

	res, err := s.store.Allow(ctx, "b", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)

	s.Require().NoError(s.store.Reset(ctx, "a"))
	res, err = s.store.Allow(ctx, "a", 1, time.Minute)
	s.Require().NoError(err)
	s.True(res.Allowed)
}

type brokenStore struct{}

func (brokenStore) Allow(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("connection refused")
}

func TestLimiter_Check(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("classes without a rule are not limited", func(t *testing.T) {
		l := NewLimiter(NewInMemoryStore(), map[Class]Rule{}, logger)
		for range 100 {
			res, err := l.Check(ctx, ClassCodeResend, "s")
			require.NoError(t, err)
			assert.True(t, res.Allowed)
		}
	})

	t.Run("classes are counted separately", func(t *testing.T) {
		l := NewLimiter(NewInMemoryStore(), map[Class]Rule{
			ClassSessionStart: {Limit: 1, Window: time.Minute},
			ClassCodeResend:   {Limit: 1, Window: time.Minute},
		}, logger)
		res, err := l.Check(ctx, ClassSessionStart, "x")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		res, err = l.Check(ctx, ClassCodeResend, "x")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		res, err = l.Check(ctx, ClassCodeResend, "x")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	})

	t.Run("store failures are unavailable", func(t *testing.T) {
		l := NewLimiter(brokenStore{}, nil, logger)
		_, err := l.Check(ctx, ClassSessionStart, "x")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestMiddleware_Limit(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	do := func(h http.Handler, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/onboarding/sessions", nil)
		req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("rejects over the limit", func(t *testing.T) {
		l := NewLimiter(NewInMemoryStore(), map[Class]Rule{ClassSessionStart: {Limit: 2, Window: time.Minute}}, logger)
		h := NewMiddleware(l, logger).Limit(ClassSessionStart, ByClientIP)(ok)

		assert.Equal(t, http.StatusNoContent, do(h, "10.0.0.1").Code)
		rr := do(h, "10.0.0.1")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

		rr = do(h, "10.0.0.1")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.NotEmpty(t, rr.Header().Get("Retry-After"))
		assert.Contains(t, rr.Body.String(), "rate_limit_exceeded")

		assert.Equal(t, http.StatusNoContent, do(h, "10.0.0.2").Code, "other clients are unaffected")
	})

	t.Run("fails open when the store is down", func(t *testing.T) {
		l := NewLimiter(brokenStore{}, nil, logger)
		h := NewMiddleware(l, logger).Limit(ClassSessionStart, ByClientIP)(ok)
		assert.Equal(t, http.StatusNoContent, do(h, "10.0.0.1").Code)
	})
}

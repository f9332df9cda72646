package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"onboarding/internal/onboarding/navigation"
	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
	"onboarding/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "onboarding:session:"
	lockKeyPrefix    = "onboarding:lock:"

	defaultLockTTL   = 10 * time.Second
	lockRetryBackoff = 25 * time.Millisecond
)

// releaseLock deletes the lock only if this holder still owns it.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps snapshots as JSON strings. Keys expire after ttl of
// inactivity; a zero ttl keeps them forever.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithLockTTL bounds how long a crashed holder can block a session.
func WithLockTTL(d time.Duration) RedisStoreOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.lockTTL = d
		}
	}
}

func NewRedis(client *redis.Client, ttl time.Duration, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, ttl: ttl, lockTTL: defaultLockTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func sessionKey(sessionID id.SessionID) string { return sessionKeyPrefix + sessionID.String() }

func (s *RedisStore) Create(ctx context.Context, snap navigation.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, sessionKey(snap.SessionID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w: %w", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("session %s: %w", snap.SessionID, sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID id.SessionID) (navigation.Snapshot, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return navigation.Snapshot{}, fmt.Errorf("session %s: %w", sessionID, sentinel.ErrNotFound)
		}
		return navigation.Snapshot{}, fmt.Errorf("get session: %w: %w", sentinel.ErrUnavailable, err)
	}
	return decode(sessionID, data)
}

// Save overwrites an existing snapshot and refreshes its expiry.
func (s *RedisStore) Save(ctx context.Context, snap navigation.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	ok, err := s.client.SetXX(ctx, sessionKey(snap.SessionID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("save session: %w: %w", sentinel.ErrUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("session %s: %w", snap.SessionID, sentinel.ErrNotFound)
	}
	return nil
}

// RunInTx serializes fn against every other holder of the session's lock,
// across processes. The lock expires on its own if the holder dies.
func (s *RedisStore) RunInTx(ctx context.Context, sessionID id.SessionID, fn func(ctx context.Context) error) error {
	key := lockKeyPrefix + sessionID.String()
	token := uuid.NewString()
	for {
		ok, err := s.client.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquire session lock: %w: %w", sentinel.ErrUnavailable, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: session is busy")
		case <-time.After(lockRetryBackoff):
		}
	}
	defer func() {
		_ = releaseLock.Run(context.WithoutCancel(ctx), s.client, []string{key}, token).Err()
	}()
	return fn(ctx)
}

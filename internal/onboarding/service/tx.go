package service

import (
	"context"
	"sync"
	"time"

	id "onboarding/pkg/domain"
	dErrors "onboarding/pkg/domain-errors"
)

// Transaction serializes work on one session. Durable stores implement it
// with a database transaction or a distributed lock; ShardedTx covers the
// in-memory store.
type Transaction interface {
	RunInTx(ctx context.Context, sessionID id.SessionID, fn func(ctx context.Context) error) error
}

// numSessionShards spreads sessions over independent mutexes so unrelated
// sessions do not contend.
const numSessionShards = 128

// defaultTxTimeout is the maximum duration for a session transaction.
const defaultTxTimeout = 5 * time.Second

// ShardedTx locks a session by hashing its ID onto one of numSessionShards
// mutexes.
type ShardedTx struct {
	shards  [numSessionShards]sync.Mutex
	timeout time.Duration
}

func NewShardedTx(timeout time.Duration) *ShardedTx {
	return &ShardedTx{timeout: timeout}
}

func (t *ShardedTx) RunInTx(ctx context.Context, sessionID id.SessionID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashSessionID(sessionID.String()) % numSessionShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashSessionID is FNV-1a.
func hashSessionID(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

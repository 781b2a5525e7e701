package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is returned when the cache cannot be reached.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrSessionNotFound is returned by Get when no snapshot exists for the user.
// It is a normal outcome meaning the session was revoked or never established.
var ErrSessionNotFound = errors.New("session not found")

// Store is a Redis-backed session cache keyed by user id.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace. ttl bounds the key lifetime; zero keeps
// snapshots until they are deleted or overwritten.
func NewStore(redis redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "ch"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		redis:  redis,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source used for SavedAt.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) key(userID string) string {
	return s.prefix + ":u:" + userID
}

// Save writes snap, replacing any previous snapshot for the same user.
//
//	Performance: 1 Redis SET.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.New("nil snapshot")
	}
	if snap.SavedAt == 0 {
		snap.SavedAt = s.now().Unix()
	}

	data, err := Encode(snap)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(snap.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get returns the snapshot for userID, or [ErrSessionNotFound].
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, userID string) (*Snapshot, error) {
	if userID == "" {
		return nil, ErrSessionNotFound
	}

	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if snap.UserID != userID {
		return nil, fmt.Errorf("%w: key holds snapshot for another user", ErrSnapshotCorrupt)
	}
	return snap, nil
}

// Delete removes the snapshot for userID. Deleting an absent snapshot is not
// an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

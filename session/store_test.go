package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSessionStoreTest(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "ch", ttl)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func testSnapshot(userID, name string) *Snapshot {
	user, _ := json.Marshal(map[string]string{"id": userID, "name": name})
	return &Snapshot{UserID: userID, Role: "user", User: user}
}

func TestSaveGetRoundTrip(t *testing.T) {
	store, mr, done := newSessionStoreTest(t, 0)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot("u-1", "A")); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u-1" || got.Role != "user" || got.SavedAt == 0 {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if string(got.User) != `{"id":"u-1","name":"A"}` {
		t.Fatalf("unexpected user payload %s", got.User)
	}

	if ttl := mr.TTL("ch:u:u-1"); ttl != 0 {
		t.Fatalf("expected no key TTL, got %v", ttl)
	}
}

func TestSaveAppliesConfiguredTTL(t *testing.T) {
	store, mr, done := newSessionStoreTest(t, time.Hour)
	defer done()

	if err := store.Save(context.Background(), testSnapshot("u-1", "A")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("ch:u:u-1"); ttl != time.Hour {
		t.Fatalf("expected 1h TTL, got %v", ttl)
	}
}

func TestSaveLastWriterWins(t *testing.T) {
	store, _, done := newSessionStoreTest(t, 0)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot("u-1", "first")); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.Save(ctx, testSnapshot("u-1", "second")); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := store.Get(ctx, "u-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.User) != `{"id":"u-1","name":"second"}` {
		t.Fatalf("expected second write to win, got %s", got.User)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store, _, done := newSessionStoreTest(t, 0)
	defer done()

	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store, _, done := newSessionStoreTest(t, 0)
	defer done()
	ctx := context.Background()

	if err := store.Save(ctx, testSnapshot("u-1", "A")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "u-1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx, "u-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	if _, err := store.Get(ctx, "u-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected snapshot to be gone, got %v", err)
	}
}

func TestGetCorruptValue(t *testing.T) {
	store, mr, done := newSessionStoreTest(t, 0)
	defer done()

	if err := mr.Set("ch:u:u-1", "not-json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Get(context.Background(), "u-1"); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}
}

func TestRedisDownWrapsUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	store := NewStore(rdb, "ch", 0)
	mr.Close()

	if err := store.Save(context.Background(), testSnapshot("u-1", "A")); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable on save, got %v", err)
	}
	if _, err := store.Get(context.Background(), "u-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable on get, got %v", err)
	}
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable on ping, got %v", err)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	if _, err := Decode([]byte(`{"v":9,"uid":"u-1"}`)); !errors.Is(err, ErrSnapshotCorrupt) {
		t.Fatalf("expected ErrSnapshotCorrupt, got %v", err)
	}
}

func TestEncodeRejectsInvalidUserJSON(t *testing.T) {
	if _, err := Encode(&Snapshot{UserID: "u-1", User: []byte("{")}); err == nil {
		t.Fatal("expected invalid JSON to be rejected")
	}
}

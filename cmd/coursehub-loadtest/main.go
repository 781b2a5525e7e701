// Command coursehub-loadtest measures session cache latency for the two
// hot paths: the strict authentication lookup and the refresh re-save.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/coursehub"
	"github.com/MrEthical07/coursehub/session"
)

type op func(ctx context.Context, userID string) error

func main() {
	var (
		users       = flag.Int("users", 100000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ch-load", "session key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	client, cleanup, err := connect(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	store := session.NewStore(client, *prefix, 0)

	ids := make([]string, *users)
	fmt.Printf("seeding %d sessions...\n", *users)
	startSeed := time.Now()
	for i := range ids {
		snap, err := buildSnapshot(i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := store.Save(ctx, snap); err != nil {
			fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = snap.UserID
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authenticate := func(ctx context.Context, id string) error {
		_, err := store.Get(ctx, id)
		return err
	}
	refresh := func(ctx context.Context, id string) error {
		snap, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		snap.SavedAt = 0
		return store.Save(ctx, snap)
	}

	authStats := runPhase(ctx, ids, *ops, *concurrency, authenticate)
	refreshStats := runPhase(ctx, ids, *ops, *concurrency, refresh)

	fmt.Println("---- results ----")
	printStats("authenticate", authStats)
	printStats("refresh", refreshStats)
}

func connect(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func buildSnapshot(i int) (*session.Snapshot, error) {
	now := time.Now().UTC()
	u := coursehub.User{
		ID:        uuid.NewString(),
		Name:      fmt.Sprintf("load user %d", i),
		Email:     fmt.Sprintf("load-%d@coursehub.test", i),
		Role:      "user",
		CreatedAt: now,
		UpdatedAt: now,
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	return &session.Snapshot{UserID: u.ID, Role: u.Role, User: raw}, nil
}

func runPhase(ctx context.Context, ids []string, ops, concurrency int, fn op) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				id := ids[r.Intn(len(ids))]
				t0 := time.Now()
				err := fn(ctx, id)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

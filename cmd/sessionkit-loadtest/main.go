// Command sessionkit-loadtest hammers a Redis-backed token store with
// concurrent pair reads and writes and prints latency percentiles.
//
// Without -redis-addr (or REDIS_ADDR) it runs against an embedded
// miniredis, so it can be used as a quick regression check without
// external infrastructure.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/campushq/sessionkit/token"
)

func main() {
	var (
		sessions    = flag.Int("sessions", 50000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (read + rotate)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "sk", "token key prefix")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	access, err := mintAccess()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint access token: %v\n", err)
		os.Exit(1)
	}

	stores := make([]*token.RedisStore, *sessions)
	attrs := token.Attributes{TTL: 24 * time.Hour}

	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		store, err := token.NewRedisStore(client, *prefix, fmt.Sprintf("sid-%d", i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "build store: %v\n", err)
			os.Exit(1)
		}
		stores[i] = store
		pair := token.Pair{AccessToken: access, RefreshToken: fmt.Sprintf("refresh-%d", i)}
		if err := token.WritePair(ctx, store, pair, attrs); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	readStats := runPhase(*ops, *concurrency, func(r *rand.Rand, op int) error {
		store := stores[r.Intn(len(stores))]
		_, ok, err := token.ReadPair(ctx, store)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("pair missing")
		}
		return nil
	})

	rotateStats := runPhase(*ops, *concurrency, func(r *rand.Rand, op int) error {
		store := stores[r.Intn(len(stores))]
		pair := token.Pair{
			AccessToken:  access,
			RefreshToken: fmt.Sprintf("refresh-rotated-%d", op),
		}
		return token.WritePair(ctx, store, pair, attrs)
	})

	fmt.Println("---- results ----")
	printStats("read", readStats)
	printStats("rotate", rotateStats)
}

func runPhase(ops, concurrency int, do func(r *rand.Rand, op int) error) phaseStats {
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
				t0 := time.Now()
				err := do(r, i)
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
	total := time.Since(start)
	return computeStats(total, latencies, failures)
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
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
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

func mintAccess() (string, error) {
	payload := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"authorities": map[string]any{
			"campus-load": map[string]any{"roles": []any{"TEACHER"}},
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte("loadtest-secret"))
}

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
	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	scitokens "github.com/djw8605/xrootd-scitokens"
	tokenval "github.com/djw8605/xrootd-scitokens/jwt"
	"github.com/djw8605/xrootd-scitokens/metrics/export/internaldefs"
	"github.com/djw8605/xrootd-scitokens/privilege"
	"github.com/djw8605/xrootd-scitokens/revocation"
)

type tokenClaims struct {
	Scope string `json:"scope"`
	gjwt.RegisteredClaims
}

func main() {
	var (
		tokens      = flag.Int("tokens", 100000, "number of distinct tokens to mint")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations in the cached phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "loadtest", "revocation key prefix")
	)
	flag.Parse()

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	validator, err := tokenval.NewValidator(tokenval.Config{
		Revocations: revocation.New(client, *prefix),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "validator init failed: %v\n", err)
		os.Exit(1)
	}

	engine, err := scitokens.New().
		WithValidator(validator).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("minting %d tokens...\n", *tokens)
	startMint := time.Now()
	minted, err := mintTokens(*tokens)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("minted in %s\n", time.Since(startMint).Round(time.Millisecond))

	missStats := runMissPhase(engine, minted, *concurrency)
	hitStats := runHitPhase(engine, minted, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("first-use", missStats)
	printStats("cached", hitStats)

	fmt.Println("---- engine counters ----")
	snapshot := engine.MetricsSnapshot()
	for _, def := range internaldefs.CounterDefs {
		if v := snapshot.Counters[def.ID]; v != 0 {
			fmt.Printf("%s %d\n", def.Name, v)
		}
	}
}

// mintTokens signs distinct read tokens for /data. The structural validator
// ignores the signature, so a throwaway HMAC key suffices.
func mintTokens(n int) ([]string, error) {
	now := time.Now()
	key := []byte("loadtest-secret")
	out := make([]string, n)
	for i := 0; i < n; i++ {
		tok := gjwt.NewWithClaims(gjwt.SigningMethodHS256, tokenClaims{
			Scope: "read:/data",
			RegisteredClaims: gjwt.RegisteredClaims{
				Subject:   fmt.Sprintf("user-%d", i),
				ID:        uuid.NewString(),
				IssuedAt:  gjwt.NewNumericDate(now),
				ExpiresAt: gjwt.NewNumericDate(now.Add(24 * time.Hour)),
			},
		})
		signed, err := tok.SignedString(key)
		if err != nil {
			return nil, err
		}
		out[i] = signed
	}
	return out, nil
}

// runMissPhase touches every token exactly once, measuring the validate and
// cache-insert path.
func runMissPhase(engine *scitokens.Engine, tokens []string, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, len(tokens))
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= len(tokens) {
					return
				}
				d, ok := authorizeOnce(engine, tokens[i], i)
				if !ok {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

// runHitPhase issues ops decisions against random already-cached tokens.
func runHitPhase(engine *scitokens.Engine, tokens []string, ops, concurrency int) phaseStats {
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
				idx := r.Intn(len(tokens))
				d, ok := authorizeOnce(engine, tokens[idx], i)
				if !ok {
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

func authorizeOnce(engine *scitokens.Engine, token string, i int) (time.Duration, bool) {
	ctx := scitokens.WithToken(context.Background(), token)
	ent := scitokens.Entity{Host: "loadtest"}
	path := fmt.Sprintf("/data/file-%d", i%512)

	t0 := time.Now()
	mask := engine.Authorize(ctx, &ent, privilege.OpRead, path)
	return time.Since(t0), mask.Has(privilege.Read)
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

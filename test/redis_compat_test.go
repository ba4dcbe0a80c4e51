//go:build integration
// +build integration

package test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/djw8605/xrootd-scitokens/revocation"
)

// redisMode describes which Redis backend the compatibility suite is running against.
type redisMode struct {
	name  string
	setup func(t *testing.T) (redis.UniversalClient, func())
}

// redisModes returns the set of Redis backends to test.
// miniredis is always available.
// Real Redis standalone is used when REDIS_ADDR is set (e.g. "127.0.0.1:6379").
// Cluster and sentinel variants come from REDIS_CLUSTER_ADDRS and
// REDIS_SENTINEL_ADDRS / REDIS_SENTINEL_MASTER.
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{
		{
			name: "miniredis",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				mr, err := miniredis.Run()
				if err != nil {
					t.Fatalf("miniredis: %v", err)
				}
				rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				return rdb, func() { _ = rdb.Close(); mr.Close() }
			},
		},
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis at %s: %v", addr, err)
				}
				// Flush the test DB to avoid state leaking between runs.
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	// Cluster mode: when REDIS_CLUSTER_ADDRS is set (comma-separated).
	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis cluster: %v", err)
				}
				return rdb, func() { _ = rdb.Close() }
			},
		})
	}

	// Sentinel mode: when REDIS_SENTINEL_ADDRS and REDIS_SENTINEL_MASTER are set.
	if addrs := os.Getenv("REDIS_SENTINEL_ADDRS"); addrs != "" {
		master := os.Getenv("REDIS_SENTINEL_MASTER")
		if master == "" {
			master = "mymaster"
		}
		modes = append(modes, redisMode{
			name: "sentinel",
			setup: func(t *testing.T) (redis.UniversalClient, func()) {
				t.Helper()
				rdb := redis.NewFailoverClient(&redis.FailoverOptions{
					MasterName:    master,
					SentinelAddrs: splitAddrs(addrs),
				})
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rdb.Ping(ctx).Err(); err != nil {
					t.Skipf("cannot connect to Redis sentinel: %v", err)
				}
				rdb.FlushDB(context.Background())
				return rdb, func() { rdb.FlushDB(context.Background()); _ = rdb.Close() }
			},
		})
	}

	return modes
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// TestRedisCompat_RevocationRoundTrip validates revoke/lookup/lift semantics
// across backends.
func TestRedisCompat_RevocationRoundTrip(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			store := revocation.New(rdb, "compat")
			ctx := context.Background()

			if err := store.Revoke(ctx, "jti-roundtrip", time.Hour); err != nil {
				t.Fatalf("revoke: %v", err)
			}

			revoked, err := store.IsRevoked(ctx, "jti-roundtrip")
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if !revoked {
				t.Error("expected revoked ID to be reported revoked")
			}

			removed, err := store.Lift(ctx, "jti-roundtrip")
			if err != nil {
				t.Fatalf("lift: %v", err)
			}
			if !removed {
				t.Error("expected lift to report the removed entry")
			}

			revoked, err = store.IsRevoked(ctx, "jti-roundtrip")
			if err != nil {
				t.Fatalf("lookup after lift: %v", err)
			}
			if revoked {
				t.Error("expected lifted ID to be clear")
			}
		})
	}
}

// TestRedisCompat_LiftIdempotent validates that lifting an absent entry is a
// reported no-op, not an error, across backends.
func TestRedisCompat_LiftIdempotent(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			store := revocation.New(rdb, "compat")
			ctx := context.Background()

			removed, err := store.Lift(ctx, "jti-never-revoked")
			if err != nil {
				t.Fatalf("lift absent: %v", err)
			}
			if removed {
				t.Error("expected lift of an absent entry to report false")
			}
		})
	}
}

// TestRedisCompat_ZeroTTLPersists validates that a zero-TTL revocation stays
// until lifted, across backends.
func TestRedisCompat_ZeroTTLPersists(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			store := revocation.New(rdb, "compat")
			ctx := context.Background()

			if err := store.Revoke(ctx, "jti-permanent", 0); err != nil {
				t.Fatalf("revoke: %v", err)
			}

			revoked, err := store.IsRevoked(ctx, "jti-permanent")
			if err != nil {
				t.Fatalf("lookup: %v", err)
			}
			if !revoked {
				t.Error("expected zero-TTL revocation to persist")
			}

			if _, err := store.Lift(ctx, "jti-permanent"); err != nil {
				t.Fatalf("lift: %v", err)
			}
		})
	}
}

// TestRedisCompat_PrefixIsolation validates that stores with distinct prefixes
// sharing one backend never see each other's revocations.
func TestRedisCompat_PrefixIsolation(t *testing.T) {
	for _, mode := range redisModes(t) {
		t.Run(mode.name, func(t *testing.T) {
			rdb, cleanup := mode.setup(t)
			defer cleanup()

			siteA := revocation.New(rdb, "site-a")
			siteB := revocation.New(rdb, "site-b")
			ctx := context.Background()

			if err := siteA.Revoke(ctx, "jti-shared", time.Hour); err != nil {
				t.Fatalf("revoke on site-a: %v", err)
			}

			revoked, err := siteB.IsRevoked(ctx, "jti-shared")
			if err != nil {
				t.Fatalf("lookup on site-b: %v", err)
			}
			if revoked {
				t.Error("expected site-b to be isolated from site-a revocations")
			}

			revoked, err = siteA.IsRevoked(ctx, "jti-shared")
			if err != nil {
				t.Fatalf("lookup on site-a: %v", err)
			}
			if !revoked {
				t.Error("expected site-a to see its own revocation")
			}
		})
	}
}

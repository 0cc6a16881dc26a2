package store

import (
	"context"
	"os"
	"testing"

	"github.com/amishk599/jobfit/internal/model"
)

// Set JOBFIT_TEST_REDIS_ADDR (e.g. localhost:6379) to run against a live Redis.
// The suite uses DB 15 and deletes the document key before each case.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("JOBFIT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOBFIT_TEST_REDIS_ADDR not set")
	}

	runStoreSuite(t, func(t *testing.T) model.CacheStore {
		ctx := context.Background()
		s, err := NewRedisStore(ctx, RedisOptions{Addr: addr, DB: 15})
		if err != nil {
			t.Fatalf("NewRedisStore: %v", err)
		}
		if err := s.client.Del(ctx, s.key).Err(); err != nil {
			t.Fatalf("clearing key: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

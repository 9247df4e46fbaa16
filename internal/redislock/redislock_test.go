package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// клиент на заведомо закрытый порт: каждая команда сразу падает
func deadClient(t *testing.T) *redis.Client {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestLockFallsBackWhenRedisDown(t *testing.T) {
	l := New(deadClient(t), time.Second, zap.NewNop())

	unlock, err := l.Lock(context.Background(), "customer:1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// локальная блокировка всё равно держит ключ
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "customer:1"); err == nil {
		t.Fatal("second lock on the same key should block until ctx deadline")
	}

	unlock()

	unlock2, err := l.Lock(context.Background(), "customer:1")
	if err != nil {
		t.Fatalf("lock after unlock: %v", err)
	}
	unlock2()
}

func TestLockDifferentKeysIndependent(t *testing.T) {
	l := New(deadClient(t), time.Second, zap.NewNop())

	u1, err := l.Lock(context.Background(), "customer:1")
	if err != nil {
		t.Fatalf("lock 1: %v", err)
	}
	defer u1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u2, err := l.Lock(ctx, "customer:2")
	if err != nil {
		t.Fatalf("lock 2: %v", err)
	}
	u2()
}

func TestLockCancelledContext(t *testing.T) {
	l := New(deadClient(t), time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Lock(ctx, "customer:3"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewDefaults(t *testing.T) {
	l := New(deadClient(t), 0, nil)
	if l.ttl != 30*time.Second || l.logger == nil {
		t.Fatalf("defaults not applied: ttl=%v", l.ttl)
	}
}

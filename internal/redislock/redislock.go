// Package redislock: блокировка клиента через Redis, чтобы несколько реплик
// сервиса не обработали одну продажу дважды.
package redislock

import (
	"context"
	"sync"
	"time"

	"pooldesk/internal/config"
	"pooldesk/internal/lifecycle"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "pooldesk:lock:"

// снимаем блокировку, только если она всё ещё наша
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Locker struct {
	rdb    *redis.Client
	local  *lifecycle.KeyedMutex
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

func NewClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func New(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locker{
		rdb:    rdb,
		local:  lifecycle.NewKeyedMutex(),
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		logger: logger,
	}
}

// Lock сначала берёт локальный мьютекс, потом ключ в Redis.
// Если Redis недоступен, работаем на локальной блокировке и транзакции БД.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	unlockLocal, err := l.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}

	rkey := keyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, rkey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				unlockLocal()
				return nil, ctx.Err()
			}
			l.logger.Warn("redis lock failed, falling back to local lock",
				zap.String("key", key),
				zap.Error(err),
			)
			return unlockLocal, nil
		}
		if ok {
			return l.releaser(rkey, token, unlockLocal), nil
		}

		select {
		case <-ctx.Done():
			unlockLocal()
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) releaser(rkey, token string, unlockLocal func()) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{rkey}, token).Err(); err != nil {
				// ключ сам истечёт по ttl
				l.logger.Warn("failed to release redis lock", zap.String("key", rkey), zap.Error(err))
			}
			unlockLocal()
		})
	}
}

var _ lifecycle.Locker = (*Locker)(nil)

package cache

import (
	"context"
	"time"
)

// BytesCache is a best-effort cache: errors must not break the main path.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DelPrefix удаляет все ключи с префиксом и возвращает их число.
	DelPrefix(ctx context.Context, prefix string) (int, error)
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CacheEntry - значение с меткой записи и моментом истечения (unix ms).
// Expiry = Timestamp + ttl.
type CacheEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Expiry    int64           `json:"expiry"`
}

// Valid: запись действительна, пока now <= Expiry.
func (e CacheEntry) Valid(now time.Time) bool {
	return now.UnixMilli() <= e.Expiry
}

func (s *Store) SetCachedData(ctx context.Context, key string, data any, ttl time.Duration) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации кэша %s: %w", key, err)
	}
	now := s.clock.Now().UnixMilli()
	return s.Set(ctx, key, CacheEntry{
		Data:      encoded,
		Timestamp: now,
		Expiry:    now + ttl.Milliseconds(),
	})
}

// GetCachedData проверяет срок при каждом чтении. Просроченная запись
// удаляется и возвращается false; фоновой очистки нет.
func (s *Store) GetCachedData(ctx context.Context, key string, dest any) bool {
	var entry CacheEntry
	if !s.Get(ctx, key, &entry) {
		return false
	}
	if !entry.Valid(s.clock.Now()) {
		_ = s.Remove(ctx, key)
		return false
	}
	if err := json.Unmarshal(entry.Data, dest); err != nil {
		s.logger.Warn("Повреждённая запись кэша удалена", zap.String("key", key), zap.Error(err))
		_ = s.Remove(ctx, key)
		return false
	}
	return true
}

// Cached - типизированный вариант GetCachedData.
func Cached[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var v T
	ok := s.GetCachedData(ctx, key, &v)
	return v, ok
}

// ClearCache удаляет все записи кэша и ничего больше.
func (s *Store) ClearCache(ctx context.Context) (int, error) {
	return s.RemovePrefix(ctx, PrefixCache)
}

// InvalidateCache удаляет записи кэша одного адреса.
func (s *Store) InvalidateCache(ctx context.Context, endpoint string) (int, error) {
	return s.RemovePrefix(ctx, CacheEndpointPrefix(endpoint))
}

package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"helpdesk-core/pkg/config"
)

// Medium - постоянное строковое хранилище ключ-значение, поверх которого
// работает Store. Ключи передаются уже с префиксом пространства имён.
type Medium interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	// Keys возвращает все ключи, начинающиеся с prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// NewMedium выбирает реализацию по STORE_DRIVER. Возвращаемая функция
// освобождает соединения.
func NewMedium(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Medium, func(), error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return NewMemoryMedium(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", cfg.Redis.Address, err)
		}
		logger.Info("Хранилище: Redis", zap.String("address", cfg.Redis.Address))
		return NewRedisMedium(client), func() { _ = client.Close() }, nil

	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка создания пула соединений к БД: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("не удалось пинговать БД: %w", err)
		}
		if err := Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("Хранилище: PostgreSQL")
		return NewPostgresMedium(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("неизвестный драйвер хранилища: %q", cfg.Store.Driver)
}

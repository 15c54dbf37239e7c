package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/pkg/clock"
)

const (
	DefaultNamespace   = "helpdesk_"
	DefaultDraftMaxAge = 24 * time.Hour
)

type Options struct {
	// Namespace - префикс всех ключей. Пространства имён на одном носителе
	// не должны быть префиксами друг друга (см. CheckNamespaces): иначе
	// Clear и Keys короткого захватят ключи длинного.
	Namespace   string
	DraftMaxAge time.Duration
	Clock       clock.Clock
}

// Store - долговременное хранилище ключ-значение с пространством имён.
// Все ключи на Medium получают префикс Namespace; чужие данные на том же
// носителе не затрагиваются.
type Store struct {
	medium      Medium
	namespace   string
	draftMaxAge time.Duration
	clock       clock.Clock
	logger      *zap.Logger
}

func NewStore(medium Medium, opts Options, logger *zap.Logger) *Store {
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.DraftMaxAge <= 0 {
		opts.DraftMaxAge = DefaultDraftMaxAge
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	return &Store{
		medium:      medium,
		namespace:   opts.Namespace,
		draftMaxAge: opts.DraftMaxAge,
		clock:       opts.Clock,
		logger:      logger.Named("storage"),
	}
}

// CheckNamespaces проверяет, что пространства имён, делящие один носитель,
// различимы: ни одно не является префиксом другого.
func CheckNamespaces(namespaces ...string) error {
	for i, a := range namespaces {
		if a == "" {
			a = DefaultNamespace
		}
		for j, b := range namespaces {
			if b == "" {
				b = DefaultNamespace
			}
			if i != j && strings.HasPrefix(b, a) {
				return fmt.Errorf("пространство имён %q является префиксом %q", a, b)
			}
		}
	}
	return nil
}

func (s *Store) Now() time.Time { return s.clock.Now() }

func (s *Store) Clock() clock.Clock { return s.clock }

func (s *Store) fullKey(key string) string { return s.namespace + key }

// Set сериализует значение в JSON и сохраняет его под ключом.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Ошибка сериализации значения", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("ошибка сериализации %s: %w", key, err)
	}
	if err := s.medium.SetItem(ctx, s.fullKey(key), string(encoded)); err != nil {
		s.logger.Error("Ошибка записи в хранилище", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	return nil
}

// Get читает значение в dest. Отсутствие ключа, ошибка носителя и ошибка
// разбора дают false; dest при этом не меняется, что позволяет передать в
// нём значение по умолчанию.
func (s *Store) Get(ctx context.Context, key string, dest any) bool {
	raw, ok, err := s.medium.GetItem(ctx, s.fullKey(key))
	if err != nil {
		s.logger.Warn("Ошибка чтения из хранилища", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("Не удалось разобрать значение из хранилища", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.medium.RemoveItem(ctx, s.fullKey(key)); err != nil {
		s.logger.Error("Ошибка удаления из хранилища", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("ошибка удаления %s: %w", key, err)
	}
	return nil
}

// Keys возвращает ключи (без пространства имён), начинающиеся с prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	full, err := s.medium.Keys(ctx, s.fullKey(prefix))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения списка ключей: %w", err)
	}
	keys := make([]string, 0, len(full))
	for _, k := range full {
		keys = append(keys, strings.TrimPrefix(k, s.namespace))
	}
	return keys, nil
}

// RemovePrefix удаляет все ключи с указанным префиксом и возвращает их число.
func (s *Store) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, k := range keys {
		if err := s.Remove(ctx, k); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Clear удаляет только ключи своего пространства имён.
func (s *Store) Clear(ctx context.Context) error {
	n, err := s.RemovePrefix(ctx, "")
	if err != nil {
		return err
	}
	s.logger.Info("Хранилище очищено", zap.Int("removed", n))
	return nil
}

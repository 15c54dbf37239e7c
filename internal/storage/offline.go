package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// OfflineEntry - результат операции, ожидающий подтверждения сервером.
// Synced меняется только с false на true.
type OfflineEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Synced    bool            `json:"synced"`
	SyncedAt  int64           `json:"syncedAt,omitempty"`
}

// OfflineRecord - запись вместе с её ключом (без префикса offline_).
type OfflineRecord struct {
	Key   string
	Entry OfflineEntry
}

// SetOfflineData сохраняет новую запись под ключом. Запись с synced=true
// сразу получает SyncedAt.
func (s *Store) SetOfflineData(ctx context.Context, key string, data any, synced bool) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации офлайн-записи %s: %w", key, err)
	}
	now := s.clock.Now().UnixMilli()
	entry := OfflineEntry{Data: encoded, Timestamp: now, Synced: synced}
	if synced {
		entry.SyncedAt = now
	}
	return s.Set(ctx, OfflineKey(key), entry)
}

func (s *Store) GetOfflineData(ctx context.Context, key string) (OfflineEntry, bool) {
	var entry OfflineEntry
	ok := s.Get(ctx, OfflineKey(key), &entry)
	return entry, ok
}

// MarkOfflineSynced помечает запись синхронизированной. Уже
// синхронизированная запись не меняется.
func (s *Store) MarkOfflineSynced(ctx context.Context, key string) error {
	entry, ok := s.GetOfflineData(ctx, key)
	if !ok {
		return fmt.Errorf("офлайн-запись %s не найдена", key)
	}
	if entry.Synced {
		return nil
	}
	entry.Synced = true
	entry.SyncedAt = s.clock.Now().UnixMilli()
	return s.Set(ctx, OfflineKey(key), entry)
}

func (s *Store) RemoveOfflineData(ctx context.Context, key string) error {
	return s.Remove(ctx, OfflineKey(key))
}

// ListOfflineData возвращает записи от старых к новым (при равной метке -
// по ключу). Нечитаемые записи пропускаются.
func (s *Store) ListOfflineData(ctx context.Context, onlyUnsynced bool) ([]OfflineRecord, error) {
	keys, err := s.Keys(ctx, PrefixOffline)
	if err != nil {
		return nil, err
	}
	records := make([]OfflineRecord, 0, len(keys))
	for _, full := range keys {
		var entry OfflineEntry
		if !s.Get(ctx, full, &entry) {
			continue
		}
		if onlyUnsynced && entry.Synced {
			continue
		}
		records = append(records, OfflineRecord{Key: strings.TrimPrefix(full, PrefixOffline), Entry: entry})
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Entry.Timestamp != records[j].Entry.Timestamp {
			return records[i].Entry.Timestamp < records[j].Entry.Timestamp
		}
		return records[i].Key < records[j].Key
	})
	return records, nil
}

package gateway

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

const SyncEndpointPrefix = "/sync/"

// SyncReport - итог одного прохода синхронизации.
type SyncReport struct {
	Attempted  int      `json:"attempted"`
	Synced     int      `json:"synced"`
	Failed     int      `json:"failed"`
	Pruned     int      `json:"pruned"`
	FailedKeys []string `json:"failedKeys,omitempty"`
}

// Synchronizer переотправляет несинхронизированные офлайн-записи.
// Проходы не пересекаются; повторов внутри прохода нет.
type Synchronizer struct {
	mu        sync.Mutex
	gateway   *Gateway
	store     *storage.Store
	retention time.Duration
	logger    *zap.Logger
}

// NewSynchronizer: retention - срок хранения синхронизированных записей,
// 0 - хранить бессрочно.
func NewSynchronizer(gateway *Gateway, store *storage.Store, retention time.Duration, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		gateway:   gateway,
		store:     store,
		retention: retention,
		logger:    logger.Named("sync"),
	}
}

// SyncOfflineData отправляет каждую запись POST /sync/<key> от старых к
// новым. Удачные помечаются синхронизированными, неудачные остаются до
// следующего прохода.
func (s *Synchronizer) SyncOfflineData(ctx context.Context) types.Response[SyncReport] {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, err := s.store.ListOfflineData(ctx, true)
	if err != nil {
		s.logger.Error("Не удалось прочитать офлайн-очередь", zap.Error(err))
		return types.Failure[SyncReport](apperrors.CodeSync, "не удалось прочитать офлайн-очередь")
	}

	var report SyncReport
	for _, record := range pending {
		if ctx.Err() != nil {
			s.logger.Warn("Синхронизация прервана", zap.Error(ctx.Err()))
			break
		}
		report.Attempted++

		resp := s.gateway.Post(ctx, SyncEndpointPrefix+url.PathEscape(record.Key), record.Entry.Data)
		if !resp.Success {
			report.Failed++
			report.FailedKeys = append(report.FailedKeys, record.Key)
			s.logger.Warn("Запись не синхронизирована", zap.String("key", record.Key), zap.String("message", resp.Error.Message))
			continue
		}
		if err := s.store.MarkOfflineSynced(ctx, record.Key); err != nil {
			report.Failed++
			report.FailedKeys = append(report.FailedKeys, record.Key)
			s.logger.Error("Не удалось отметить запись синхронизированной", zap.String("key", record.Key), zap.Error(err))
			continue
		}
		report.Synced++
	}

	report.Pruned = s.prune(ctx)
	s.logger.Info("Проход синхронизации завершён",
		zap.Int("attempted", report.Attempted),
		zap.Int("synced", report.Synced),
		zap.Int("failed", report.Failed),
		zap.Int("pruned", report.Pruned),
	)
	return types.Success(report)
}

// prune удаляет синхронизированные записи старше срока хранения.
func (s *Synchronizer) prune(ctx context.Context) int {
	if s.retention <= 0 {
		return 0
	}
	records, err := s.store.ListOfflineData(ctx, false)
	if err != nil {
		s.logger.Warn("Не удалось прочитать офлайн-записи для очистки", zap.Error(err))
		return 0
	}
	cutoff := s.store.Now().Add(-s.retention).UnixMilli()
	pruned := 0
	for _, record := range records {
		if !record.Entry.Synced || record.Entry.SyncedAt >= cutoff {
			continue
		}
		if err := s.store.RemoveOfflineData(ctx, record.Key); err != nil {
			s.logger.Warn("Не удалось удалить офлайн-запись", zap.String("key", record.Key), zap.Error(err))
			continue
		}
		pruned++
	}
	return pruned
}

package services

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"go.uber.org/zap"

	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

const (
	MinColumnWidth = 50
	MaxColumnWidth = 1000

	guestUser = "guest"
)

// TableStateService - состояние таблиц консоли: ширины и видимость колонок,
// пресеты фильтров, черновики форм.
type TableStateService struct {
	store  *storage.Store
	logger *zap.Logger
}

func NewTableStateService(store *storage.Store, logger *zap.Logger) *TableStateService {
	return &TableStateService{store: store, logger: logger.Named("table_state")}
}

func clampWidth(width int) int {
	return min(max(width, MinColumnWidth), MaxColumnWidth)
}

func tableStateFailure[T any](s *TableStateService, action string, err error) types.Response[T] {
	s.logger.Error(action, zap.Error(err))
	return types.Failure[T](apperrors.CodeTableState, action)
}

func (s *TableStateService) ColumnWidths(ctx context.Context, table string) types.Response[storage.ColumnSettings] {
	settings, _ := s.store.GetColumnSettings(ctx, table)
	return types.Success(settings)
}

// SaveColumnWidths заменяет ширины колонок, каждое значение приводится к [50, 1000].
func (s *TableStateService) SaveColumnWidths(ctx context.Context, table string, widths map[string]int) types.Response[storage.ColumnSettings] {
	settings, _ := s.store.GetColumnSettings(ctx, table)
	settings.Widths = make(map[string]int, len(widths))
	for column, width := range widths {
		settings.Widths[column] = clampWidth(width)
	}
	if err := s.store.SaveColumnSettings(ctx, table, settings); err != nil {
		return tableStateFailure[storage.ColumnSettings](s, "Не удалось сохранить ширины колонок", err)
	}
	return types.Success(settings)
}

func (s *TableStateService) ResizeColumn(ctx context.Context, table, column string, width int) types.Response[storage.ColumnSettings] {
	if strings.TrimSpace(column) == "" {
		return types.Failure[storage.ColumnSettings](apperrors.CodeTableState, "Не указана колонка")
	}
	settings, _ := s.store.GetColumnSettings(ctx, table)
	settings.Widths[column] = clampWidth(width)
	if err := s.store.SaveColumnSettings(ctx, table, settings); err != nil {
		return tableStateFailure[storage.ColumnSettings](s, "Не удалось изменить ширину колонки", err)
	}
	return types.Success(settings)
}

func (s *TableStateService) SetHiddenColumns(ctx context.Context, table string, hidden []string) types.Response[storage.ColumnSettings] {
	settings, _ := s.store.GetColumnSettings(ctx, table)
	settings.Hidden = slices.Compact(slices.Sorted(slices.Values(hidden)))
	if err := s.store.SaveColumnSettings(ctx, table, settings); err != nil {
		return tableStateFailure[storage.ColumnSettings](s, "Не удалось сохранить видимость колонок", err)
	}
	return types.Success(settings)
}

func (s *TableStateService) ResetColumns(ctx context.Context, table string) types.Response[bool] {
	if err := s.store.Remove(ctx, storage.ColumnsKey(table)); err != nil {
		return tableStateFailure[bool](s, "Не удалось сбросить настройки колонок", err)
	}
	return types.Success(true)
}

func (s *TableStateService) presetOwner(ctx context.Context) string {
	if id := s.store.CurrentUserID(ctx); id != "" {
		return id
	}
	return guestUser
}

func (s *TableStateService) presets(ctx context.Context) map[string]json.RawMessage {
	presets := map[string]json.RawMessage{}
	s.store.GetFilters(ctx, s.presetOwner(ctx), &presets)
	return presets
}

// FilterPresets - сохранённые фильтры текущего пользователя по имени.
func (s *TableStateService) FilterPresets(ctx context.Context) types.Response[map[string]json.RawMessage] {
	return types.Success(s.presets(ctx))
}

func (s *TableStateService) SaveFilterPreset(ctx context.Context, name string, filter any) types.Response[map[string]json.RawMessage] {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Failure[map[string]json.RawMessage](apperrors.CodeTableState, "Не указано название фильтра")
	}
	encoded, err := json.Marshal(filter)
	if err != nil {
		return tableStateFailure[map[string]json.RawMessage](s, "Не удалось сохранить фильтр", err)
	}
	presets := s.presets(ctx)
	presets[name] = encoded
	if err := s.store.SaveFilters(ctx, s.presetOwner(ctx), presets); err != nil {
		return tableStateFailure[map[string]json.RawMessage](s, "Не удалось сохранить фильтр", err)
	}
	return types.Success(presets)
}

func (s *TableStateService) DeleteFilterPreset(ctx context.Context, name string) types.Response[map[string]json.RawMessage] {
	presets := s.presets(ctx)
	delete(presets, name)
	if err := s.store.SaveFilters(ctx, s.presetOwner(ctx), presets); err != nil {
		return tableStateFailure[map[string]json.RawMessage](s, "Не удалось удалить фильтр", err)
	}
	return types.Success(presets)
}

func (s *TableStateService) SaveDraft(ctx context.Context, form string, data any) types.Response[bool] {
	if err := s.store.SaveDraft(ctx, form, data); err != nil {
		return tableStateFailure[bool](s, "Не удалось сохранить черновик", err)
	}
	return types.Success(true)
}

// Draft возвращает черновик формы; устаревший или отсутствующий - null.
func (s *TableStateService) Draft(ctx context.Context, form string) types.Response[json.RawMessage] {
	var data json.RawMessage
	if !s.store.GetDraft(ctx, form, &data) {
		return types.Success(json.RawMessage("null"))
	}
	return types.Success(data)
}

func (s *TableStateService) DiscardDraft(ctx context.Context, form string) types.Response[bool] {
	if err := s.store.RemoveDraft(ctx, form); err != nil {
		return tableStateFailure[bool](s, "Не удалось удалить черновик", err)
	}
	return types.Success(true)
}

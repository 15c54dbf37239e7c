package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"helpdesk-core/internal/entities"
)

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyAuthToken, token)
}

func (s *Store) GetToken(ctx context.Context) string {
	var token string
	s.Get(ctx, KeyAuthToken, &token)
	return token
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.Remove(ctx, KeyAuthToken)
}

func (s *Store) SetCurrentUser(ctx context.Context, user entities.User) error {
	return s.Set(ctx, KeyCurrentUser, user)
}

func (s *Store) GetCurrentUser(ctx context.Context) (entities.User, bool) {
	var user entities.User
	ok := s.Get(ctx, KeyCurrentUser, &user)
	return user, ok && user.ID != ""
}

// tokenClaims разбирает сохранённый токен без проверки подписи: клиент не
// знает секрета, ему нужны только sub и exp.
func (s *Store) tokenClaims(ctx context.Context) (jwt.MapClaims, bool) {
	token := s.GetToken(ctx)
	if token == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// CurrentUserID - id сохранённого пользователя, а без него - sub из токена.
func (s *Store) CurrentUserID(ctx context.Context) string {
	if user, ok := s.GetCurrentUser(ctx); ok {
		return user.ID
	}
	claims, ok := s.tokenClaims(ctx)
	if !ok {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// TokenExpiry - момент истечения сохранённого токена, если он указан.
func (s *Store) TokenExpiry(ctx context.Context) (time.Time, bool) {
	claims, ok := s.tokenClaims(ctx)
	if !ok {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// SaveFilters сохраняет пресеты фильтров пользователя.
func (s *Store) SaveFilters(ctx context.Context, userID string, filters any) error {
	return s.Set(ctx, FiltersKey(userID), filters)
}

func (s *Store) GetFilters(ctx context.Context, userID string, dest any) bool {
	return s.Get(ctx, FiltersKey(userID), dest)
}

// ColumnSettings - ширины колонок (px) и скрытые колонки таблицы.
type ColumnSettings struct {
	Widths map[string]int `json:"widths"`
	Hidden []string       `json:"hidden,omitempty"`
}

func (s *Store) SaveColumnSettings(ctx context.Context, table string, settings ColumnSettings) error {
	return s.Set(ctx, ColumnsKey(table), settings)
}

func (s *Store) GetColumnSettings(ctx context.Context, table string) (ColumnSettings, bool) {
	var settings ColumnSettings
	ok := s.Get(ctx, ColumnsKey(table), &settings)
	if settings.Widths == nil {
		settings.Widths = map[string]int{}
	}
	return settings, ok
}

type draftEntry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func (s *Store) SaveDraft(ctx context.Context, form string, data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.Set(ctx, DraftKey(form), draftEntry{Data: encoded, Timestamp: s.clock.Now().UnixMilli()})
}

// GetDraft возвращает черновик формы. Черновик старше DraftMaxAge удаляется.
func (s *Store) GetDraft(ctx context.Context, form string, dest any) bool {
	var entry draftEntry
	if !s.Get(ctx, DraftKey(form), &entry) {
		return false
	}
	age := s.clock.Now().Sub(time.UnixMilli(entry.Timestamp))
	if age > s.draftMaxAge {
		_ = s.Remove(ctx, DraftKey(form))
		return false
	}
	return json.Unmarshal(entry.Data, dest) == nil
}

func (s *Store) RemoveDraft(ctx context.Context, form string) error {
	return s.Remove(ctx, DraftKey(form))
}

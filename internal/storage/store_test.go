package storage

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/pkg/clock"
)

var testStart = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *MemoryMedium, *clock.Fake) {
	t.Helper()
	medium := NewMemoryMedium()
	fake := clock.NewFake(testStart)
	s := NewStore(medium, Options{Namespace: "hd_", Clock: fake}, zap.NewNop())
	return s, medium, fake
}

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	s, medium, _ := newTestStore(t)

	require.NoError(t, s.Set(ctx, "answer", map[string]int{"v": 42}))
	raw, ok, _ := medium.GetItem(ctx, "hd_answer")
	require.True(t, ok, "ключ должен храниться с префиксом пространства имён")
	assert.JSONEq(t, `{"v":42}`, raw)

	var got map[string]int
	assert.True(t, s.Get(ctx, "answer", &got))
	assert.Equal(t, 42, got["v"])

	require.NoError(t, s.Remove(ctx, "answer"))
	assert.False(t, s.Get(ctx, "answer", &got))
}

func TestStore_GetDefaultOnMissAndParseFailure(t *testing.T) {
	ctx := context.Background()
	s, medium, _ := newTestStore(t)
	require.NoError(t, medium.SetItem(ctx, "hd_broken", "{not json"))

	value := "default"
	assert.False(t, s.Get(ctx, "missing", &value))
	assert.Equal(t, "default", value)

	assert.False(t, s.Get(ctx, "broken", &value), "ошибка разбора не должна паниковать")
	assert.Equal(t, "default", value)
}

func TestStore_ClearOnlyNamespace(t *testing.T) {
	ctx := context.Background()
	s, medium, _ := newTestStore(t)
	require.NoError(t, medium.SetItem(ctx, "other_app_key", "1"))
	require.NoError(t, s.Set(ctx, "a", 1))
	require.NoError(t, s.Set(ctx, "b", 2))

	require.NoError(t, s.Clear(ctx))

	keys, _ := medium.Keys(ctx, "")
	assert.Equal(t, []string{"other_app_key"}, keys)
}

func TestCheckNamespaces(t *testing.T) {
	assert.NoError(t, CheckNamespaces("helpdesk_", "console_helpdesk_"))
	assert.Error(t, CheckNamespaces("helpdesk_", "helpdesk_tenant2_"))
	assert.Error(t, CheckNamespaces("hd_", "hd_"))
	assert.Error(t, CheckNamespaces("", "helpdesk_archive_"), "пустое пространство имён - это helpdesk_")
}

func TestStore_CacheExpiry(t *testing.T) {
	ctx := context.Background()
	s, medium, fake := newTestStore(t)

	require.NoError(t, s.SetCachedData(ctx, "k", map[string]int{"v": 1}, time.Minute))

	var entry CacheEntry
	require.True(t, s.Get(ctx, "k", &entry))
	assert.Equal(t, entry.Timestamp+60000, entry.Expiry)

	fake.Advance(59 * time.Second)
	v, ok := Cached[map[string]int](ctx, s, "k")
	require.True(t, ok)
	assert.Equal(t, 1, v["v"])

	fake.Advance(2 * time.Second)
	_, ok = Cached[map[string]int](ctx, s, "k")
	assert.False(t, ok, "запись после истечения TTL не возвращается")

	_, exists, _ := medium.GetItem(ctx, "hd_k")
	assert.False(t, exists, "просроченная запись удаляется при чтении")
}

func TestStore_ClearCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	require.NoError(t, s.SetCachedData(ctx, CacheKey("/tickets", nil), []int{1}, time.Minute))
	require.NoError(t, s.SetCachedData(ctx, CacheKey("/tickets", map[string]any{"page": 2}), []int{2}, time.Minute))
	require.NoError(t, s.SetCachedData(ctx, CacheKey("/clients", nil), []int{3}, time.Minute))
	require.NoError(t, s.Set(ctx, "auth_token", "t"))

	n, err := s.InvalidateCache(ctx, "/tickets")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.ClearCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "t", s.GetToken(ctx), "очистка кэша не трогает остальные ключи")
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "cache_/tickets_{}", CacheKey("/tickets", nil))
	assert.Equal(t, `cache_/tickets_{"a":1,"b":"x"}`, CacheKey("/tickets", map[string]any{"b": "x", "a": 1}))
}

func TestStore_Drafts(t *testing.T) {
	ctx := context.Background()
	s, _, fake := newTestStore(t)

	require.NoError(t, s.SaveDraft(ctx, "ticket_form", map[string]string{"subject": "Принтер"}))

	fake.Advance(23 * time.Hour)
	var draft map[string]string
	require.True(t, s.GetDraft(ctx, "ticket_form", &draft))
	assert.Equal(t, "Принтер", draft["subject"])

	fake.Advance(2 * time.Hour)
	assert.False(t, s.GetDraft(ctx, "ticket_form", &draft))
	var raw draftEntry
	assert.False(t, s.Get(ctx, DraftKey("ticket_form"), &raw), "устаревший черновик удаляется")
}

func TestStore_OfflineEntries(t *testing.T) {
	ctx := context.Background()
	s, _, fake := newTestStore(t)

	require.NoError(t, s.SetOfflineData(ctx, "b", map[string]int{"n": 2}, false))
	fake.Advance(time.Second)
	require.NoError(t, s.SetOfflineData(ctx, "a", map[string]int{"n": 1}, false))
	require.NoError(t, s.SetOfflineData(ctx, "snapshot", []int{1}, true))

	pending, err := s.ListOfflineData(ctx, true)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].Key, "старые записи первыми")
	assert.Equal(t, "a", pending[1].Key)

	require.NoError(t, s.MarkOfflineSynced(ctx, "b"))
	entry, ok := s.GetOfflineData(ctx, "b")
	require.True(t, ok)
	assert.True(t, entry.Synced)
	assert.Equal(t, fake.Now().UnixMilli(), entry.SyncedAt)

	fake.Advance(time.Hour)
	require.NoError(t, s.MarkOfflineSynced(ctx, "b"))
	again, _ := s.GetOfflineData(ctx, "b")
	assert.Equal(t, entry.SyncedAt, again.SyncedAt, "повторная пометка ничего не меняет")

	assert.Error(t, s.MarkOfflineSynced(ctx, "missing"))
}

func TestStore_CurrentUserAndToken(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	assert.Equal(t, "", s.CurrentUserID(ctx))

	exp := testStart.Add(time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "12",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	require.NoError(t, s.SetToken(ctx, token))

	assert.Equal(t, "12", s.CurrentUserID(ctx), "без сохранённого пользователя берётся sub токена")
	gotExp, ok := s.TokenExpiry(ctx)
	require.True(t, ok)
	assert.Equal(t, exp.Unix(), gotExp.Unix())

	require.NoError(t, s.SetCurrentUser(ctx, entities.User{ID: "7", Name: "Оператор"}))
	assert.Equal(t, "7", s.CurrentUserID(ctx))

	require.NoError(t, s.ClearToken(ctx))
	assert.Equal(t, "", s.GetToken(ctx))
}

func TestStore_ColumnSettingsAndFilters(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t)

	settings, ok := s.GetColumnSettings(ctx, "tickets")
	assert.False(t, ok)
	assert.NotNil(t, settings.Widths)

	require.NoError(t, s.SaveColumnSettings(ctx, "tickets", ColumnSettings{Widths: map[string]int{"subject": 320}}))
	settings, ok = s.GetColumnSettings(ctx, "tickets")
	require.True(t, ok)
	assert.Equal(t, 320, settings.Widths["subject"])

	require.NoError(t, s.SaveFilters(ctx, "7", []string{"mine"}))
	var presets []string
	require.True(t, s.GetFilters(ctx, "7", &presets))
	assert.Equal(t, []string{"mine"}, presets)
}

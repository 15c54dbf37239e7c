package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/internal/storage"
	"helpdesk-core/pkg/types"
)

// RequestWithOfflineSupport выполняет запрос с опорой на офлайн-записи.
//
// Успешный ответ сохраняется под offlineKey как уже синхронизированный.
// Если сервер недоступен, тело записи (не GET, с телом) ставится в
// очередь как несинхронизированная запись и возвращается вместо ответа,
// а для чтения отдаются последние сохранённые данные. Ошибка, которую
// вернул сам сервер (4xx/5xx), отдаётся как есть. Без offlineKey или без
// сохранённых данных возвращается ошибка.
func (g *Gateway) RequestWithOfflineSupport(ctx context.Context, endpoint string, opts RequestOptions, offlineKey string) types.Response[json.RawMessage] {
	resp, _ := g.requestOffline(ctx, endpoint, opts, offlineKey)
	return resp
}

// requestOffline дополнительно сообщает, получен ли ответ от сервера.
func (g *Gateway) requestOffline(ctx context.Context, endpoint string, opts RequestOptions, offlineKey string) (types.Response[json.RawMessage], bool) {
	resp := g.Request(ctx, endpoint, opts)
	if offlineKey == "" {
		return resp, resp.Success
	}

	if resp.Success {
		if err := g.store.SetOfflineData(ctx, offlineKey, resp.Data, true); err != nil {
			g.logger.Warn("Не удалось сохранить офлайн-копию", zap.String("key", offlineKey), zap.Error(err))
		}
		return resp, true
	}
	if !Unreachable(resp) {
		return resp, true
	}

	if isWrite(opts.Method) && opts.Body != nil {
		body, err := encodeBody(opts.Body)
		if err != nil || !json.Valid(body) {
			return resp, false
		}
		if err := g.store.SetOfflineData(ctx, offlineKey, json.RawMessage(body), false); err != nil {
			g.logger.Error("Не удалось поставить запись в офлайн-очередь", zap.String("key", offlineKey), zap.Error(err))
			return resp, false
		}
		g.logger.Warn("Сервер недоступен, запись поставлена в офлайн-очередь",
			zap.String("endpoint", endpoint), zap.String("key", offlineKey))
		return types.Success(json.RawMessage(body)), false
	}

	entry, ok := g.store.GetOfflineData(ctx, offlineKey)
	if !ok {
		return resp, false
	}
	g.logger.Warn("Сервер недоступен, использованы офлайн-данные",
		zap.String("endpoint", endpoint), zap.String("key", offlineKey))
	return types.Success(entry.Data), false
}

// GetCachedWithOffline сочетает кэш и офлайн-запись: при промахе кэша
// выполняется GET с офлайн-поддержкой. Данные из офлайн-записи в кэш не
// попадают.
func (g *Gateway) GetCachedWithOffline(ctx context.Context, endpoint string, params map[string]any, ttl time.Duration, offlineKey string) types.Response[json.RawMessage] {
	key := storage.CacheKey(endpoint, params)
	if cached, ok := storage.Cached[json.RawMessage](ctx, g.store, key); ok {
		return types.Success(cached)
	}

	resp, fresh := g.requestOffline(ctx, endpoint, RequestOptions{Method: http.MethodGet, Query: params}, offlineKey)
	if resp.Success && fresh {
		g.remember(ctx, key, resp.Data, ttl)
	}
	return resp
}

func isWrite(method string) bool {
	switch method {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

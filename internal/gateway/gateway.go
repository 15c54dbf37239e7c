package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/utils"
)

const DefaultCacheTTL = 5 * time.Minute

// RequestOptions - параметры одного запроса. Body сериализуется в JSON;
// []byte и json.RawMessage передаются как есть.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    any
	Query   map[string]any
}

type Options struct {
	CacheTTL         time.Duration
	OfflineRetention time.Duration
}

// Gateway - единая точка обращения к серверу. Ни один публичный метод не
// возвращает ошибку наружу: любой сбой превращается в конверт с error.
type Gateway struct {
	transport Transport
	store     *storage.Store
	cacheTTL  time.Duration
	sync      *Synchronizer
	logger    *zap.Logger
}

func New(transport Transport, store *storage.Store, opts Options, logger *zap.Logger) *Gateway {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	g := &Gateway{
		transport: transport,
		store:     store,
		cacheTTL:  opts.CacheTTL,
		logger:    logger.Named("gateway"),
	}
	g.sync = NewSynchronizer(g, store, opts.OfflineRetention, logger)
	return g
}

func (g *Gateway) Store() *storage.Store { return g.store }

func (g *Gateway) Mode() string { return g.transport.Name() }

// Request выполняет запрос и возвращает конверт с сырыми данными ответа.
func (g *Gateway) Request(ctx context.Context, endpoint string, opts RequestOptions) types.Response[json.RawMessage] {
	call, err := g.buildCall(ctx, endpoint, opts)
	if err != nil {
		g.logger.Error("Не удалось подготовить запрос", zap.String("endpoint", endpoint), zap.Error(err))
		return types.Failure[json.RawMessage](apperrors.CodeAPI, err.Error())
	}
	return g.do(ctx, call, apperrors.CodeAPI)
}

func (g *Gateway) buildCall(ctx context.Context, endpoint string, opts RequestOptions) (*Call, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	path := endpoint
	if qs := utils.BuildQueryString(opts.Query); qs != "" {
		path += "?" + qs
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	g.authorize(ctx, header)
	for name, value := range opts.Headers {
		header.Set(name, value)
	}
	return &Call{Method: method, Path: path, Header: header, Body: body}, nil
}

func (g *Gateway) authorize(ctx context.Context, header http.Header) {
	if token := g.store.GetToken(ctx); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
		}
		return encoded, nil
	}
}

// do отправляет вызов и разбирает ответ. errCode - код для любых сбоев.
func (g *Gateway) do(ctx context.Context, call *Call, errCode string) types.Response[json.RawMessage] {
	reply, err := g.transport.RoundTrip(ctx, call)
	if err != nil {
		g.logger.Warn("Сбой запроса", zap.String("method", call.Method), zap.String("path", call.Path), zap.Error(err))
		return types.Failure[json.RawMessage](errCode, err.Error())
	}

	if reply.StatusCode < 200 || reply.StatusCode > 299 {
		body := errorBodyFrom(reply)
		body.Code = errCode
		g.logger.Warn("Сервер вернул ошибку",
			zap.String("method", call.Method),
			zap.String("path", call.Path),
			zap.Int("status", reply.StatusCode),
			zap.String("message", body.Message),
		)
		return types.Response[json.RawMessage]{Error: &body}
	}

	data := reply.Body
	if len(data) == 0 {
		data = []byte("null")
	}
	if !json.Valid(data) {
		g.logger.Warn("Ответ сервера не является JSON", zap.String("path", call.Path))
		resp := types.Failure[json.RawMessage](errCode, "не удалось разобрать ответ сервера")
		resp.Error.Status = reply.StatusCode
		return resp
	}
	return types.Success(json.RawMessage(data))
}

// errorBodyFrom читает {code, message} из тела ошибки, если оно есть.
func errorBodyFrom(reply *Reply) types.ErrorBody {
	var body types.ErrorBody
	_ = json.Unmarshal(reply.Body, &body)
	if body.Message == "" {
		body.Message = fmt.Sprintf("сервер вернул статус %d", reply.StatusCode)
	}
	body.Status = reply.StatusCode
	return body
}

func (g *Gateway) Get(ctx context.Context, endpoint string, params map[string]any) types.Response[json.RawMessage] {
	return g.Request(ctx, endpoint, RequestOptions{Method: http.MethodGet, Query: params})
}

func (g *Gateway) Post(ctx context.Context, endpoint string, body any) types.Response[json.RawMessage] {
	return g.Request(ctx, endpoint, RequestOptions{Method: http.MethodPost, Body: body})
}

func (g *Gateway) Put(ctx context.Context, endpoint string, body any) types.Response[json.RawMessage] {
	return g.Request(ctx, endpoint, RequestOptions{Method: http.MethodPut, Body: body})
}

func (g *Gateway) Patch(ctx context.Context, endpoint string, body any) types.Response[json.RawMessage] {
	return g.Request(ctx, endpoint, RequestOptions{Method: http.MethodPatch, Body: body})
}

func (g *Gateway) Delete(ctx context.Context, endpoint string) types.Response[json.RawMessage] {
	return g.Request(ctx, endpoint, RequestOptions{Method: http.MethodDelete})
}

// GetCached возвращает данные из кэша, а при промахе выполняет GET и кладёт
// в кэш только успешный ответ. ttl <= 0 означает TTL по умолчанию.
func (g *Gateway) GetCached(ctx context.Context, endpoint string, params map[string]any, ttl time.Duration) types.Response[json.RawMessage] {
	key := storage.CacheKey(endpoint, params)
	if cached, ok := storage.Cached[json.RawMessage](ctx, g.store, key); ok {
		return types.Success(cached)
	}

	resp := g.Get(ctx, endpoint, params)
	if resp.Success {
		g.remember(ctx, key, resp.Data, ttl)
	}
	return resp
}

func (g *Gateway) remember(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = g.cacheTTL
	}
	if err := g.store.SetCachedData(ctx, key, data, ttl); err != nil {
		g.logger.Warn("Не удалось сохранить ответ в кэш", zap.String("key", key), zap.Error(err))
	}
}

func (g *Gateway) ClearCache(ctx context.Context) error {
	n, err := g.store.ClearCache(ctx)
	if err != nil {
		return err
	}
	g.logger.Info("Кэш очищен", zap.Int("removed", n))
	return nil
}

// InvalidateCache сбрасывает кэш одного адреса, например после записи.
func (g *Gateway) InvalidateCache(ctx context.Context, endpoint string) {
	if _, err := g.store.InvalidateCache(ctx, endpoint); err != nil {
		g.logger.Warn("Не удалось сбросить кэш", zap.String("endpoint", endpoint), zap.Error(err))
	}
}

// SyncOfflineData - один проход синхронизации офлайн-записей.
func (g *Gateway) SyncOfflineData(ctx context.Context) types.Response[SyncReport] {
	return g.sync.SyncOfflineData(ctx)
}

// Decode переводит конверт с сырыми данными в типизированный.
func Decode[T any](resp types.Response[json.RawMessage]) types.Response[T] {
	if !resp.Success {
		return types.FailureFrom[T](resp)
	}
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		failed := types.Failure[T](apperrors.CodeAPI, "не удалось разобрать ответ сервера: "+err.Error())
		failed.Error.Status = http.StatusOK
		return failed
	}
	return types.Success(v)
}

// Unreachable сообщает, что запрос не дошёл до сервера: в ошибке нет
// HTTP-статуса. Ответы сервера с кодом 4xx/5xx сюда не относятся.
func Unreachable[T any](resp types.Response[T]) bool {
	return !resp.Success && resp.Error != nil && resp.Error.Status == 0
}

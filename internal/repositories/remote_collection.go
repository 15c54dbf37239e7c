package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/gateway"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

const (
	OfflineOpCreate = "create"
	OfflineOpUpdate = "update"
)

// OfflineCreateKey - ключ офлайн-записи для создания: <entity>_create_<uuid>.
func OfflineCreateKey(entity string) string {
	return entity + "_" + OfflineOpCreate + "_" + uuid.NewString()
}

// OfflineUpdateKey - ключ для изменения: <entity>_update_<id>_<uuid>.
func OfflineUpdateKey(entity, id string) string {
	return entity + "_" + OfflineOpUpdate + "_" + id + "_" + uuid.NewString()
}

// ParseOfflineKey разбирает ключи, созданные OfflineCreateKey и OfflineUpdateKey.
func ParseOfflineKey(key string) (entity, op, id string, ok bool) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	entity, op, rest := parts[0], parts[1], parts[2]
	switch op {
	case OfflineOpCreate:
		return entity, op, "", true
	case OfflineOpUpdate:
		i := strings.LastIndex(rest, "_")
		if i <= 0 {
			return "", "", "", false
		}
		return entity, op, rest[:i], true
	}
	return "", "", "", false
}

// RemoteCollection - рабочий набор на сервере: GET/POST/PUT/DELETE
// /<entity>[/<id>]. Список читается через кэш с офлайн-копией, после
// записи кэш коллекции сбрасывается.
type RemoteCollection[T entities.Record[T]] struct {
	gateway  *gateway.Gateway
	entity   string
	endpoint string
	cacheTTL time.Duration
	logger   *zap.Logger
}

func NewRemoteCollection[T entities.Record[T]](gw *gateway.Gateway, entity string, cacheTTL time.Duration, logger *zap.Logger) *RemoteCollection[T] {
	return &RemoteCollection[T]{
		gateway:  gw,
		entity:   entity,
		endpoint: "/" + entity,
		cacheTTL: cacheTTL,
		logger:   logger.Named("remote_collection").With(zap.String("entity", entity)),
	}
}

func (r *RemoteCollection[T]) itemPath(id string) string {
	return r.endpoint + "/" + url.PathEscape(id)
}

// responseError переводит конверт с ошибкой в error; 404 даёт ErrNotFound,
// ошибка без HTTP-статуса - ErrOffline.
func responseError(body *types.ErrorBody) error {
	if body == nil {
		return fmt.Errorf("неизвестная ошибка сервера")
	}
	if body.Status == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrOffline, body.Message)
	}
	if body.Status == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	if body.Status == http.StatusBadRequest || body.Status == http.StatusUnprocessableEntity {
		return apperrors.NewInvalidInputError("%s", body.Message)
	}
	return fmt.Errorf("%s", body.Message)
}

func decode[T any](resp types.Response[json.RawMessage]) (T, error) {
	typed := gateway.Decode[T](resp)
	if !typed.Success {
		var zero T
		return zero, responseError(typed.Error)
	}
	return typed.Data, nil
}

func (r *RemoteCollection[T]) All(ctx context.Context) ([]T, error) {
	items, err := decode[[]T](r.gateway.GetCachedWithOffline(ctx, r.endpoint, nil, r.cacheTTL, r.entity))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Find без связи ищет запись в кэше или офлайн-копии списка.
func (r *RemoteCollection[T]) Find(ctx context.Context, id string) (T, error) {
	item, err := decode[T](r.gateway.Get(ctx, r.itemPath(id), nil))
	if !errors.Is(err, apperrors.ErrOffline) {
		return item, err
	}
	items, listErr := r.All(ctx)
	if listErr != nil {
		return item, err
	}
	for _, it := range items {
		if it.GetID() == id {
			r.logger.Warn("Сервер недоступен, запись взята из офлайн-копии", zap.String("id", id))
			return it, nil
		}
	}
	return item, err
}

// Insert: id назначает сервер, поэтому nextID пустой. Если сервер
// недоступен, запись уходит в офлайн-очередь и возвращается без id.
func (r *RemoteCollection[T]) Insert(ctx context.Context, build BuildFunc[T]) (T, error) {
	var zero T
	existing, err := r.All(ctx)
	if errors.Is(err, apperrors.ErrOffline) {
		r.logger.Warn("Сервер недоступен и списка нет в офлайн-копии, проверки по набору пропущены", zap.Error(err))
		existing, err = []T{}, nil
	}
	if err != nil {
		return zero, err
	}
	record, err := build("", existing)
	if err != nil {
		return zero, err
	}

	resp := r.gateway.RequestWithOfflineSupport(ctx, r.endpoint,
		gateway.RequestOptions{Method: http.MethodPost, Body: record}, OfflineCreateKey(r.entity))
	created, err := decode[T](resp)
	if err != nil {
		return zero, err
	}
	r.gateway.InvalidateCache(ctx, r.endpoint)
	return created, nil
}

func (r *RemoteCollection[T]) Update(ctx context.Context, id string, mutate MutateFunc[T]) (T, error) {
	var zero T
	current, err := r.Find(ctx, id)
	if err != nil {
		return zero, err
	}
	updated, err := mutate(current)
	if err != nil {
		return zero, err
	}
	updated = updated.WithID(id)

	resp := r.gateway.RequestWithOfflineSupport(ctx, r.itemPath(id),
		gateway.RequestOptions{Method: http.MethodPut, Body: updated}, OfflineUpdateKey(r.entity, id))
	saved, err := decode[T](resp)
	if err != nil {
		return zero, err
	}
	r.gateway.InvalidateCache(ctx, r.endpoint)
	return saved, nil
}

func (r *RemoteCollection[T]) Delete(ctx context.Context, id string) (T, error) {
	removed, err := decode[T](r.gateway.Delete(ctx, r.itemPath(id)))
	if err != nil {
		return removed, err
	}
	r.gateway.InvalidateCache(ctx, r.endpoint)
	r.logger.Debug("Запись удалена на сервере", zap.String("id", id))
	return removed, nil
}

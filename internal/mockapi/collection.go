package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/repositories"
	apperrors "helpdesk-core/pkg/errors"
)

// replayer применяет офлайн-запись клиента к коллекции.
type replayer interface {
	replay(ctx context.Context, op, id string, data json.RawMessage) error
}

// Collection - сырые CRUD-маршруты /<entity>[/:id] над рабочим набором.
type Collection[T entities.Record[T]] struct {
	entity string
	set    *repositories.WorkingSet[T]
	logger *zap.Logger

	// outbound применяется к каждой записи перед отправкой клиенту.
	outbound func(T) T
	// merge собирает запись при полной замене из старой и присланной.
	merge func(current, incoming T) T
}

func NewCollection[T entities.Record[T]](entity string, set *repositories.WorkingSet[T], logger *zap.Logger) *Collection[T] {
	return &Collection[T]{
		entity:   entity,
		set:      set,
		logger:   logger.With(zap.String("entity", entity)),
		outbound: func(v T) T { return v },
		merge:    func(_, incoming T) T { return incoming },
	}
}

func (col *Collection[T]) Register(g *echo.Group) {
	g.GET("", col.list)
	g.POST("", col.create)
	g.GET("/:id", col.get)
	g.PUT("/:id", col.put)
	g.DELETE("/:id", col.remove)
}

func decodeRecord[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, apperrors.NewInvalidInputError("неверное тело запроса: %v", err)
	}
	return v, nil
}

func (col *Collection[T]) bind(c echo.Context) (T, error) {
	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeRecord[T](data)
}

func (col *Collection[T]) list(c echo.Context) error {
	items, err := col.set.All(c.Request().Context())
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = col.outbound(item)
	}
	return c.JSON(http.StatusOK, out)
}

func (col *Collection[T]) get(c echo.Context) error {
	item, err := col.set.Find(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	return c.JSON(http.StatusOK, col.outbound(item))
}

func (col *Collection[T]) insert(ctx context.Context, record T) (T, error) {
	return col.set.Insert(ctx, func(nextID string, _ []T) (T, error) {
		if record.GetID() == "" {
			return record.WithID(nextID), nil
		}
		return record, nil
	})
}

func (col *Collection[T]) replace(ctx context.Context, id string, record T) (T, error) {
	return col.set.Update(ctx, id, func(current T) (T, error) {
		return col.merge(current, record), nil
	})
}

// create: id назначается сервером, если клиент его не прислал.
func (col *Collection[T]) create(c echo.Context) error {
	record, err := col.bind(c)
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	created, err := col.insert(c.Request().Context(), record)
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	col.logger.Debug("Запись создана", zap.String("id", created.GetID()))
	return c.JSON(http.StatusCreated, col.outbound(created))
}

func (col *Collection[T]) put(c echo.Context) error {
	record, err := col.bind(c)
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	saved, err := col.replace(c.Request().Context(), c.Param("id"), record)
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	return c.JSON(http.StatusOK, col.outbound(saved))
}

func (col *Collection[T]) remove(c echo.Context) error {
	removed, err := col.set.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return repositoryError(c, col.entity, err)
	}
	return c.JSON(http.StatusOK, col.outbound(removed))
}

// replay: create с уже существующим id превращается в замену, чтобы
// повторная отправка той же записи не создавала дубликат.
func (col *Collection[T]) replay(ctx context.Context, op, id string, data json.RawMessage) error {
	record, err := decodeRecord[T](data)
	if err != nil {
		return err
	}
	switch op {
	case repositories.OfflineOpCreate:
		if existing := record.GetID(); existing != "" {
			if _, err := col.set.Find(ctx, existing); err == nil {
				_, err = col.replace(ctx, existing, record)
				return err
			} else if !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
		}
		_, err = col.insert(ctx, record)
		return err
	case repositories.OfflineOpUpdate:
		_, err = col.replace(ctx, id, record)
		return err
	}
	return fmt.Errorf("неизвестная операция %q", op)
}

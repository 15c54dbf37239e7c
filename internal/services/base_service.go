package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/validation"
)

// BaseService - общее для сервисов сущностей: код сущности для ошибок,
// хранилище (время, текущий пользователь), валидатор и логгер.
type BaseService struct {
	entity    string // TICKET, CLIENT, ...
	notFound  string
	store     *storage.Store
	validator *validation.Validator
	logger    *zap.Logger
}

func newBaseService(entity, notFound string, store *storage.Store, v *validation.Validator, logger *zap.Logger) BaseService {
	return BaseService{
		entity:    entity,
		notFound:  notFound,
		store:     store,
		validator: v,
		logger:    logger,
	}
}

func (s *BaseService) code(suffix string) string {
	return apperrors.EntityCode(s.entity, suffix)
}

func (s *BaseService) now() time.Time { return s.store.Now() }

func (s *BaseService) currentUserID(ctx context.Context) string {
	return s.store.CurrentUserID(ctx)
}

func (s *BaseService) validate(i interface{}) error {
	return s.validator.Struct(i)
}

// run выполняет операцию и переводит любой исход в конверт. Паника тоже
// становится ошибкой с кодом операции. action - сообщение для
// пользователя и лога ("Не удалось загрузить заявки").
func run[T any](s *BaseService, action, code string, fn func() (T, error)) (resp types.Response[T]) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Паника при выполнении операции",
				zap.String("action", action), zap.Any("panic", r), zap.Stack("stack"))
			resp = types.Failure[T](code, action+": внутренняя ошибка")
		}
	}()

	v, err := fn()
	if err != nil {
		return failure[T](s, action, code, err)
	}
	return types.Success(v)
}

func failure[T any](s *BaseService, action, code string, err error) types.Response[T] {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		s.logger.Warn(s.notFound, zap.String("action", action))
		return types.Failure[T](s.code(apperrors.SuffixNotFound), s.notFound)
	case errors.Is(err, apperrors.ErrInvalidInput):
		s.logger.Warn("Некорректные данные", zap.String("action", action), zap.Error(err))
		return types.FromError[T](s.code(apperrors.SuffixValidation), err)
	}
	if appErr, ok := apperrors.As(err); ok {
		s.logger.Error(action, zap.String("code", appErr.Code), zap.Error(err))
		return types.Failure[T](appErr.Code, appErr.Message)
	}
	s.logger.Error(action, zap.String("code", code), zap.Error(err))
	return types.Failure[T](code, fmt.Sprintf("%s: %v", action, err))
}

func countBy[T any](items []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, item := range items {
		out[key(item)]++
	}
	return out
}

func average[T any](items []T, value func(T) float64) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += value(item)
	}
	return sum / float64(len(items))
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

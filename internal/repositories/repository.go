package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/gateway"
	"helpdesk-core/internal/storage"
)

// Имена рабочих наборов; совпадают с адресами коллекций на сервере.
const (
	EntityTickets        = "tickets"
	EntityTicketMessages = "ticket-messages"
	EntityClients        = "clients"
	EntityEmployees      = "employees"
	EntityDepartments    = "departments"
)

// BuildFunc строит новую запись. nextID - следующий числовой id (пустой,
// если id назначает сервер), existing - текущий рабочий набор.
type BuildFunc[T any] func(nextID string, existing []T) (T, error)

// MutateFunc возвращает изменённую копию записи.
type MutateFunc[T any] func(current T) (T, error)

// Repository - рабочий набор одной сущности. Ненайденная запись
// возвращает apperrors.ErrNotFound.
type Repository[T entities.Record[T]] interface {
	All(ctx context.Context) ([]T, error)
	Find(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, build BuildFunc[T]) (T, error)
	Update(ctx context.Context, id string, mutate MutateFunc[T]) (T, error)
	Delete(ctx context.Context, id string) (T, error)
}

// Source описывает, откуда брать рабочие наборы.
type Source struct {
	Store    *storage.Store
	Gateway  *gateway.Gateway
	Remote   bool
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// Open возвращает удалённую коллекцию при Remote, иначе локальный набор в Store.
func Open[T entities.Record[T]](src Source, entity string) Repository[T] {
	if src.Remote && src.Gateway != nil {
		return NewRemoteCollection[T](src.Gateway, entity, src.CacheTTL, src.Logger)
	}
	return NewWorkingSet[T](src.Store, entity, src.Logger)
}

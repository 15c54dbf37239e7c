package repositories

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/storage"
	apperrors "helpdesk-core/pkg/errors"
)

// WorkingSet хранит массив записей под mock_<entity>. Чтение-изменение-
// запись выполняется под мьютексом, поэтому параллельные вызовы не теряют
// изменений. Числовые id выдаются из последовательности seq_<entity> и не
// повторяются после удаления.
type WorkingSet[T entities.Record[T]] struct {
	mu     sync.Mutex
	entity string
	store  *storage.Store
	logger *zap.Logger
}

func NewWorkingSet[T entities.Record[T]](store *storage.Store, entity string, logger *zap.Logger) *WorkingSet[T] {
	return &WorkingSet[T]{
		entity: entity,
		store:  store,
		logger: logger.Named("working_set").With(zap.String("entity", entity)),
	}
}

func (w *WorkingSet[T]) load(ctx context.Context) []T {
	var items []T
	if !w.store.Get(ctx, storage.WorkingSetKey(w.entity), &items) {
		return []T{}
	}
	return items
}

func (w *WorkingSet[T]) save(ctx context.Context, items []T) error {
	return w.store.Set(ctx, storage.WorkingSetKey(w.entity), items)
}

func (w *WorkingSet[T]) nextSeq(ctx context.Context, items []T) int64 {
	var seq int64
	w.store.Get(ctx, storage.SequenceKey(w.entity), &seq)
	for _, item := range items {
		if n, err := strconv.ParseInt(item.GetID(), 10, 64); err == nil && n > seq {
			seq = n
		}
	}
	return seq + 1
}

func indexOf[T entities.Record[T]](items []T, id string) int {
	return slices.IndexFunc(items, func(item T) bool { return item.GetID() == id })
}

func (w *WorkingSet[T]) All(ctx context.Context) ([]T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.load(ctx), nil
}

func (w *WorkingSet[T]) Find(ctx context.Context, id string) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	items := w.load(ctx)
	i := indexOf(items, id)
	if i < 0 {
		return zero, apperrors.ErrNotFound
	}
	return items[i], nil
}

func (w *WorkingSet[T]) Insert(ctx context.Context, build BuildFunc[T]) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	items := w.load(ctx)
	seq := w.nextSeq(ctx, items)
	record, err := build(strconv.FormatInt(seq, 10), slices.Clone(items))
	if err != nil {
		return zero, err
	}
	if record.GetID() == "" {
		record = record.WithID(strconv.FormatInt(seq, 10))
	}
	if indexOf(items, record.GetID()) >= 0 {
		return zero, apperrors.NewInvalidInputError("запись с id %s уже существует", record.GetID())
	}

	if err := w.save(ctx, append(items, record)); err != nil {
		return zero, fmt.Errorf("не удалось сохранить %s: %w", w.entity, err)
	}
	if record.GetID() == strconv.FormatInt(seq, 10) {
		if err := w.store.Set(ctx, storage.SequenceKey(w.entity), seq); err != nil {
			w.logger.Warn("Не удалось сохранить последовательность id", zap.Error(err))
		}
	}
	w.logger.Debug("Запись добавлена", zap.String("id", record.GetID()))
	return record, nil
}

func (w *WorkingSet[T]) Update(ctx context.Context, id string, mutate MutateFunc[T]) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	items := w.load(ctx)
	i := indexOf(items, id)
	if i < 0 {
		return zero, apperrors.ErrNotFound
	}
	updated, err := mutate(items[i])
	if err != nil {
		return zero, err
	}
	// id записи не меняется
	items[i] = updated.WithID(id)
	if err := w.save(ctx, items); err != nil {
		return zero, fmt.Errorf("не удалось сохранить %s: %w", w.entity, err)
	}
	return items[i], nil
}

func (w *WorkingSet[T]) Delete(ctx context.Context, id string) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	items := w.load(ctx)
	i := indexOf(items, id)
	if i < 0 {
		return zero, apperrors.ErrNotFound
	}
	removed := items[i]
	if err := w.save(ctx, slices.Delete(items, i, i+1)); err != nil {
		return zero, fmt.Errorf("не удалось сохранить %s: %w", w.entity, err)
	}
	return removed, nil
}

// Replace заменяет рабочий набор целиком (используется при начальном
// заполнении демо-данными).
func (w *WorkingSet[T]) Replace(ctx context.Context, items []T) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if items == nil {
		items = []T{}
	}
	if err := w.save(ctx, items); err != nil {
		return err
	}
	return w.store.Set(ctx, storage.SequenceKey(w.entity), w.nextSeq(ctx, items)-1)
}

// Empty сообщает, что набор ещё ни разу не сохранялся или пуст.
func (w *WorkingSet[T]) Empty(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.load(ctx)) == 0
}

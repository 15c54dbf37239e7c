package query

import "helpdesk-core/pkg/types"

// Spec - полный запрос к рабочему набору.
type Spec[T any] struct {
	Predicates []Predicate[T]
	Sort       types.Sort
	Sorters    Sorters[T]
	Page       types.PageRequest
}

// Run выполняет фильтрацию, сортировку и пагинацию. Рабочий набор не
// меняется, поэтому повторный запуск с тем же Spec даёт тот же результат.
func Run[T any](items []T, spec Spec[T]) types.Paginated[T] {
	filtered := Filter(items, spec.Predicates...)
	sorted := Sort(filtered, spec.Sort, spec.Sorters)
	return types.Paginate(sorted, spec.Page)
}

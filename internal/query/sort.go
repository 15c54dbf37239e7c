package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"helpdesk-core/pkg/types"
)

// Comparator возвращает <0, 0, >0, как cmp.Compare.
type Comparator[T any] func(a, b T) int

// Sorters - поддерживаемые поля сортировки сущности.
type Sorters[T any] map[string]Comparator[T]

// Sort возвращает отсортированную копию. Сортировка устойчивая: равные
// элементы сохраняют порядок в обоих направлениях. Неизвестное поле
// оставляет порядок как есть.
func Sort[T any](items []T, s types.Sort, sorters Sorters[T]) []T {
	out := slices.Clone(items)
	compare, ok := sorters[s.By]
	if s.By == "" || !ok {
		return out
	}
	if s.Order == types.SortDesc {
		slices.SortStableFunc(out, func(a, b T) int { return compare(b, a) })
		return out
	}
	slices.SortStableFunc(out, compare)
	return out
}

func ByString[T any](field func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

func ByInt[T any](field func(T) int) Comparator[T] {
	return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
}

func ByFloat[T any](field func(T) float64) Comparator[T] {
	return func(a, b T) int { return cmp.Compare(field(a), field(b)) }
}

func ByTime[T any](field func(T) time.Time) Comparator[T] {
	return func(a, b T) int { return field(a).Compare(field(b)) }
}

// ByOptionalTime: записи без даты идут после записей с датой.
func ByOptionalTime[T any](field func(T) *time.Time) Comparator[T] {
	return func(a, b T) int {
		ta, tb := field(a), field(b)
		switch {
		case ta == nil && tb == nil:
			return 0
		case ta == nil:
			return 1
		case tb == nil:
			return -1
		}
		return ta.Compare(*tb)
	}
}

// ByRank сравнивает по порядку значений, неизвестные значения - в начало.
func ByRank[T any](rank map[string]int, field func(T) string) Comparator[T] {
	return func(a, b T) int { return cmp.Compare(rank[field(a)], rank[field(b)]) }
}

// ByNumericID: числовые id идут первыми и сравниваются как числа,
// остальные следом в лексикографическом порядке.
func ByNumericID[T any](field func(T) string) Comparator[T] {
	return func(a, b T) int {
		ia, ib := field(a), field(b)
		da, db := isDigits(ia), isDigits(ib)
		switch {
		case da && !db:
			return -1
		case !da && db:
			return 1
		case da && len(ia) != len(ib):
			return cmp.Compare(len(ia), len(ib))
		}
		return strings.Compare(ia, ib)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

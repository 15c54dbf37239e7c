package query

import (
	"slices"
	"time"

	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/utils"
)

// Predicate - одно условие фильтра. nil означает "условие не задано".
type Predicate[T any] func(T) bool

// Filter применяет условия по очереди и возвращает новый срез; исходный
// не меняется.
func Filter[T any](items []T, predicates ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, item := range items {
		for _, p := range predicates {
			if p != nil && !p(item) {
				continue next
			}
		}
		out = append(out, item)
	}
	return out
}

// Search - регистронезависимый поиск подстроки хотя бы в одном из полей.
func Search[T any](term string, fields func(T) []string) Predicate[T] {
	if term == "" {
		return nil
	}
	return func(item T) bool {
		for _, f := range fields(item) {
			if utils.ContainsFold(f, term) {
				return true
			}
		}
		return false
	}
}

// InSet - значение поля входит в набор.
func InSet[T any](values []string, field func(T) string) Predicate[T] {
	if len(values) == 0 {
		return nil
	}
	return func(item T) bool {
		return slices.Contains(values, field(item))
	}
}

// Intersects - хотя бы одно значение поля-набора входит в набор.
func Intersects[T any](values []string, field func(T) []string) Predicate[T] {
	if len(values) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, v := range field(item) {
			if slices.Contains(values, v) {
				return true
			}
		}
		return false
	}
}

func Equals[T any](value string, field func(T) string) Predicate[T] {
	if value == "" {
		return nil
	}
	return func(item T) bool { return field(item) == value }
}

// Flag - совпадение логического поля, если флаг задан.
func Flag[T any](value *bool, field func(T) bool) Predicate[T] {
	if value == nil {
		return nil
	}
	want := *value
	return func(item T) bool { return field(item) == want }
}

// InRange - from <= t <= to, каждая граница необязательна.
func InRange[T any](r types.DateRange, field func(T) time.Time) Predicate[T] {
	if r.IsZero() {
		return nil
	}
	return func(item T) bool { return r.Contains(field(item)) }
}

// AssignedTo сравнивает исполнителей с фильтром. Фильтр "текущий
// пользователь" без известного id не пропускает ничего.
func AssignedTo[T any](filter types.AssignedTo, currentUserID string, field func(T) []string) Predicate[T] {
	if filter.IsZero() {
		return nil
	}
	ids, ok := filter.Resolve(currentUserID)
	if !ok {
		return func(T) bool { return false }
	}
	return Intersects(ids, field)
}

package types

import (
	"strings"
	"time"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder: всё, кроме "desc", считается "asc".
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Sort - поле и направление сортировки. Пустое поле - без сортировки.
type Sort struct {
	By    string    `json:"sortBy,omitempty"`
	Order SortOrder `json:"sortOrder,omitempty"`
}

// DateRange - включительный интервал, любая граница необязательна.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

func (r DateRange) IsZero() bool { return r.From == nil && r.To == nil }

// Contains проверяет From <= t <= To.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// CurrentUserSentinel - значение assignedTo в запросе, означающее текущего пользователя.
const CurrentUserSentinel = "current_user"

// AssignedTo - фильтр по исполнителям: либо набор id, либо текущий пользователь.
// Смешать оба варианта нельзя.
type AssignedTo struct {
	currentUser bool
	ids         []string
}

func AssignedToIDs(ids ...string) AssignedTo {
	return AssignedTo{ids: ids}
}

func AssignedToCurrentUser() AssignedTo {
	return AssignedTo{currentUser: true}
}

// ParseAssignedTo разбирает значения из запроса. Если среди них есть
// current_user, остальные id игнорируются.
func ParseAssignedTo(values []string) AssignedTo {
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if v == CurrentUserSentinel {
			return AssignedToCurrentUser()
		}
		if v != "" {
			ids = append(ids, v)
		}
	}
	return AssignedTo{ids: ids}
}

func (a AssignedTo) IsCurrentUser() bool { return a.currentUser }

func (a AssignedTo) IDs() []string { return a.ids }

func (a AssignedTo) IsZero() bool { return !a.currentUser && len(a.ids) == 0 }

// Resolve возвращает набор id для сравнения. Для текущего пользователя без
// сохранённого id возвращается ok == false: такой фильтр ничего не пропускает.
func (a AssignedTo) Resolve(currentUserID string) (ids []string, ok bool) {
	if a.currentUser {
		if currentUserID == "" {
			return nil, false
		}
		return []string{currentUserID}, true
	}
	return a.ids, true
}

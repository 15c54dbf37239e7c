package dto

import (
	"net/url"
	"strings"

	"github.com/aarondl/null/v8"

	"helpdesk-core/pkg/types"
)

type DepartmentFilter struct {
	Search string
	Status []string
	Sort   types.Sort
}

type CreateDepartmentDTO struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Email       string `json:"email" validate:"omitempty,custom_email"`
	ManagerID   string `json:"managerId"`
	Status      string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateDepartmentDTO не меняет id: slug остаётся прежним даже при смене названия.
type UpdateDepartmentDTO struct {
	Name        null.String `json:"name" validate:"omitempty,min=2,max=255"`
	Description null.String `json:"description" validate:"omitempty,max=2000"`
	Email       null.String `json:"email" validate:"omitempty,custom_email"`
	ManagerID   null.String `json:"managerId"`
	Status      null.String `json:"status" validate:"omitempty,oneof=active inactive"`
}

type DepartmentStatsDTO struct {
	Total          int            `json:"total"`
	ByStatus       map[string]int `json:"byStatus"`
	EmployeesCount int            `json:"employeesCount"`
	TicketsCount   int            `json:"ticketsCount"`
}

func ParseDepartmentFilter(q url.Values) (DepartmentFilter, types.PageRequest, error) {
	return DepartmentFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Status: listValues(q, "status"),
		Sort:   parseSort(q),
	}, ParsePage(q), nil
}

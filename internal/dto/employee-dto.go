package dto

import (
	"net/url"
	"strings"

	"github.com/aarondl/null/v8"

	"helpdesk-core/pkg/types"
)

type EmployeeFilter struct {
	Search      string
	Role        []string
	Status      []string
	Departments []string
	Online      *bool
	Sort        types.Sort
}

type CreateEmployeeDTO struct {
	Name        string   `json:"name" validate:"required,min=2,max=255"`
	Email       string   `json:"email" validate:"required,custom_email"`
	Phone       string   `json:"phone" validate:"omitempty,phone"`
	Role        string   `json:"role" validate:"required,oneof=admin supervisor agent"`
	Status      string   `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
	Departments []string `json:"departments"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
}

type UpdateEmployeeDTO struct {
	Name        null.String `json:"name" validate:"omitempty,min=2,max=255"`
	Email       null.String `json:"email" validate:"omitempty,custom_email"`
	Phone       null.String `json:"phone" validate:"omitempty,phone"`
	Role        null.String `json:"role" validate:"omitempty,oneof=admin supervisor agent"`
	Status      null.String `json:"status" validate:"omitempty,oneof=active inactive on_leave"`
	Password    null.String `json:"password" validate:"omitempty,min=8,max=72"`
	Departments *[]string   `json:"departments,omitempty"`
}

type EmployeeStatsDTO struct {
	Total           int            `json:"total"`
	Online          int            `json:"online"`
	ByRole          map[string]int `json:"byRole"`
	ByStatus        map[string]int `json:"byStatus"`
	TicketsResolved int            `json:"ticketsResolved"`
	AverageRating   float64        `json:"averageRating"`
}

func ParseEmployeeFilter(q url.Values) (EmployeeFilter, types.PageRequest, error) {
	online, err := parseBool(q, "online")
	if err != nil {
		return EmployeeFilter{}, types.PageRequest{}, err
	}
	return EmployeeFilter{
		Search:      strings.TrimSpace(q.Get("search")),
		Role:        listValues(q, "role"),
		Status:      listValues(q, "status"),
		Departments: listValues(q, "departments"),
		Online:      online,
		Sort:        parseSort(q),
	}, ParsePage(q), nil
}

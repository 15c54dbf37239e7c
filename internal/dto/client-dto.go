package dto

import (
	"net/url"
	"strings"

	"github.com/aarondl/null/v8"

	"helpdesk-core/pkg/types"
)

type ClientFilter struct {
	Search    string
	Status    []string
	Tags      []string
	DateRange types.DateRange
	Sort      types.Sort
}

type CreateClientDTO struct {
	Name    string   `json:"name" validate:"required,min=2,max=255"`
	Email   string   `json:"email" validate:"required,custom_email"`
	Phone   string   `json:"phone" validate:"omitempty,phone"`
	Company string   `json:"company" validate:"omitempty,max=255"`
	Status  string   `json:"status" validate:"omitempty,oneof=active inactive vip"`
	Tags    []string `json:"tags"`
}

type UpdateClientDTO struct {
	Name    null.String  `json:"name" validate:"omitempty,min=2,max=255"`
	Email   null.String  `json:"email" validate:"omitempty,custom_email"`
	Phone   null.String  `json:"phone" validate:"omitempty,phone"`
	Company null.String  `json:"company" validate:"omitempty,max=255"`
	Status  null.String  `json:"status" validate:"omitempty,oneof=active inactive vip"`
	Rating  null.Float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Tags    *[]string    `json:"tags,omitempty"`
}

type ClientStatsDTO struct {
	Total         int            `json:"total"`
	ByStatus      map[string]int `json:"byStatus"`
	TotalTickets  int            `json:"totalTickets"`
	AverageRating float64        `json:"averageRating"`
}

// ImportRowError - строка файла импорта, которую не удалось принять.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ClientImportResultDTO struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors"`
}

func ParseClientFilter(q url.Values) (ClientFilter, types.PageRequest, error) {
	dates, err := parseDateRange(q)
	if err != nil {
		return ClientFilter{}, types.PageRequest{}, err
	}
	return ClientFilter{
		Search:    strings.TrimSpace(q.Get("search")),
		Status:    listValues(q, "status"),
		Tags:      listValues(q, "tags"),
		DateRange: dates,
		Sort:      parseSort(q),
	}, ParsePage(q), nil
}

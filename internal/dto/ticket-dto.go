package dto

import (
	"net/url"
	"strings"
	"time"

	"github.com/aarondl/null/v8"

	"helpdesk-core/pkg/types"
)

type TicketFilter struct {
	Search      string
	Status      []string
	Priority    []string
	Source      []string
	SLAStatus   []string
	Departments []string
	Tags        []string
	AssignedTo  types.AssignedTo
	ClientID    string
	DateRange   types.DateRange
	Sort        types.Sort
}

type CreateTicketDTO struct {
	Subject     string     `json:"subject" validate:"required,min=3,max=255"`
	Description string     `json:"description" validate:"omitempty,max=10000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Source      string     `json:"source" validate:"omitempty,oneof=email phone chat portal"`
	ClientID    string     `json:"clientId"`
	AssignedTo  []string   `json:"assignedTo"`
	Departments []string   `json:"departments"`
	Tags        []string   `json:"tags"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
}

// UpdateTicketDTO - частичное обновление: применяются только заданные поля.
type UpdateTicketDTO struct {
	Subject     null.String `json:"subject" validate:"omitempty,min=3,max=255"`
	Description null.String `json:"description" validate:"omitempty,max=10000"`
	Status      null.String `json:"status" validate:"omitempty,oneof=new open in_progress pending resolved closed"`
	Priority    null.String `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Source      null.String `json:"source" validate:"omitempty,oneof=email phone chat portal"`
	SLAStatus   null.String `json:"slaStatus" validate:"omitempty,oneof=on_track at_risk breached"`
	ClientID    null.String `json:"clientId"`
	AssignedTo  *[]string   `json:"assignedTo,omitempty"`
	Departments *[]string   `json:"departments,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	DueAt       null.Time   `json:"dueAt"`
}

type BulkUpdateTicketsDTO struct {
	IDs   []string        `json:"ids" validate:"required,min=1"`
	Patch UpdateTicketDTO `json:"patch"`
}

type BulkResultDTO struct {
	Processed []string `json:"processed"`
	NotFound  []string `json:"notFound"`
}

type CreateMessageDTO struct {
	AuthorID   string `json:"authorId" validate:"required"`
	AuthorType string `json:"authorType" validate:"required,oneof=employee client"`
	Body       string `json:"body" validate:"required,min=1,max=10000"`
	Internal   bool   `json:"internal"`
}

type TicketStatsDTO struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"byStatus"`
	ByPriority  map[string]int `json:"byPriority"`
	BySLAStatus map[string]int `json:"bySlaStatus"`
	BySource    map[string]int `json:"bySource"`
	Unassigned  int            `json:"unassigned"`
}

// ParseTicketFilter разбирает параметры списка заявок.
func ParseTicketFilter(q url.Values) (TicketFilter, types.PageRequest, error) {
	dates, err := parseDateRange(q)
	if err != nil {
		return TicketFilter{}, types.PageRequest{}, err
	}
	return TicketFilter{
		Search:      strings.TrimSpace(q.Get("search")),
		Status:      listValues(q, "status"),
		Priority:    listValues(q, "priority"),
		Source:      listValues(q, "source"),
		SLAStatus:   listValues(q, "slaStatus"),
		Departments: listValues(q, "departments"),
		Tags:        listValues(q, "tags"),
		AssignedTo:  types.ParseAssignedTo(listValues(q, "assignedTo")),
		ClientID:    strings.TrimSpace(q.Get("clientId")),
		DateRange:   dates,
		Sort:        parseSort(q),
	}, ParsePage(q), nil
}

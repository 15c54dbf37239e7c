package entities

import "time"

const (
	TicketStatusNew        = "new"
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusPending    = "pending"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	SLAOnTrack  = "on_track"
	SLAAtRisk   = "at_risk"
	SLABreached = "breached"
)

const (
	SourceEmail  = "email"
	SourcePhone  = "phone"
	SourceChat   = "chat"
	SourcePortal = "portal"
)

// PriorityRank - порядок важности для сортировки по приоритету.
var PriorityRank = map[string]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

type Ticket struct {
	ID            string     `json:"id"`
	Subject       string     `json:"subject"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	Source        string     `json:"source"`
	SLAStatus     string     `json:"slaStatus"`
	ClientID      string     `json:"clientId"`
	AssignedTo    []string   `json:"assignedTo"`
	Departments   []string   `json:"departments"`
	Tags          []string   `json:"tags"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
	MessagesCount int        `json:"messagesCount"`

	Timestamps
}

func (t Ticket) GetID() string { return t.ID }

func (t Ticket) WithID(id string) Ticket {
	t.ID = id
	return t
}

// TicketMessage - сообщение в переписке по заявке.
type TicketMessage struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticketId"`
	AuthorID   string    `json:"authorId"`
	AuthorType string    `json:"authorType"` // employee | client
	Body       string    `json:"body"`
	Internal   bool      `json:"internal"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (m TicketMessage) GetID() string { return m.ID }

func (m TicketMessage) WithID(id string) TicketMessage {
	m.ID = id
	return m
}

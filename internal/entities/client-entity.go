package entities

import "time"

const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
	ClientStatusVIP      = "vip"
)

type Client struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	Company       string     `json:"company"`
	Status        string     `json:"status"`
	Tags          []string   `json:"tags"`
	TicketsCount  int        `json:"ticketsCount"`
	Rating        float64    `json:"rating"`
	LastContactAt *time.Time `json:"lastContactAt,omitempty"`

	Timestamps
}

func (c Client) GetID() string { return c.ID }

func (c Client) WithID(id string) Client {
	c.ID = id
	return c
}

package entities

import "time"

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleAgent      = "agent"
)

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
	EmployeeStatusOnLeave  = "on_leave"
)

type Employee struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	Departments     []string   `json:"departments"`
	IsOnline        bool       `json:"isOnline"`
	LastSeenAt      *time.Time `json:"lastSeenAt,omitempty"`
	TicketsResolved int        `json:"ticketsResolved"`
	Rating          float64    `json:"rating"`
	// PasswordHash хранится в рабочем наборе, но наружу не отдаётся.
	PasswordHash string `json:"passwordHash,omitempty"`

	Timestamps
}

func (e Employee) GetID() string { return e.ID }

func (e Employee) WithID(id string) Employee {
	e.ID = id
	return e
}

// Public возвращает копию без хеша пароля.
func (e Employee) Public() Employee {
	e.PasswordHash = ""
	return e
}

func (e Employee) InDepartment(departmentID string) bool {
	for _, d := range e.Departments {
		if d == departmentID {
			return true
		}
	}
	return false
}

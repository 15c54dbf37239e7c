package entities

const (
	DepartmentStatusActive   = "active"
	DepartmentStatusInactive = "inactive"
)

// Department идентифицируется slug-ом от названия.
type Department struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Email          string `json:"email"`
	ManagerID      string `json:"managerId"`
	Status         string `json:"status"`
	EmployeesCount int    `json:"employeesCount"`
	TicketsCount   int    `json:"ticketsCount"`

	Timestamps
}

func (d Department) GetID() string { return d.ID }

func (d Department) WithID(id string) Department {
	d.ID = id
	return d
}

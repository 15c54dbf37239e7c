package repositories

import "helpdesk-core/internal/entities"

// Repositories - по одному рабочему набору на сущность. Сервисы должны
// разделять эти экземпляры: блокировка WorkingSet действует только внутри
// одного экземпляра.
type Repositories struct {
	Tickets     Repository[entities.Ticket]
	Messages    Repository[entities.TicketMessage]
	Clients     Repository[entities.Client]
	Employees   Repository[entities.Employee]
	Departments Repository[entities.Department]
}

func NewRepositories(src Source) *Repositories {
	return &Repositories{
		Tickets:     Open[entities.Ticket](src, EntityTickets),
		Messages:    Open[entities.TicketMessage](src, EntityTicketMessages),
		Clients:     Open[entities.Client](src, EntityClients),
		Employees:   Open[entities.Employee](src, EntityEmployees),
		Departments: Open[entities.Department](src, EntityDepartments),
	}
}

// Local возвращает локальный набор, если репозиторий работает через Store.
func Local[T entities.Record[T]](repo Repository[T]) (*WorkingSet[T], bool) {
	ws, ok := repo.(*WorkingSet[T])
	return ws, ok
}

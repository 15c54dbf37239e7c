package seeders

import (
	"fmt"
	"strconv"
	"time"

	"helpdesk-core/internal/entities"
	"helpdesk-core/pkg/utils"
)

var departmentNames = []struct {
	Name        string
	Description string
	Email       string
}{
	{Name: "Техническая поддержка", Description: "Первая линия: входящие обращения", Email: "support@helpdesk.local"},
	{Name: "Биллинг", Description: "Счета, оплаты, возвраты", Email: "billing@helpdesk.local"},
	{Name: "Инфраструктура", Description: "Сети, серверы, доступы", Email: "infra@helpdesk.local"},
}

var employeesData = []struct {
	Name        string
	Email       string
	Role        string
	Departments []int
}{
	{Name: "Администратор", Email: "admin@helpdesk.local", Role: entities.RoleAdmin, Departments: []int{0, 1, 2}},
	{Name: "Мадина Каримова", Email: "madina@helpdesk.local", Role: entities.RoleSupervisor, Departments: []int{0}},
	{Name: "Рустам Назаров", Email: "rustam@helpdesk.local", Role: entities.RoleAgent, Departments: []int{0, 2}},
	{Name: "Зарина Алиева", Email: "zarina@helpdesk.local", Role: entities.RoleAgent, Departments: []int{1}},
}

var clientsData = []struct {
	Name    string
	Email   string
	Company string
	Status  string
	Tags    []string
}{
	{Name: "Acme", Email: "support@acme.com", Company: "Acme Inc", Status: entities.ClientStatusVIP, Tags: []string{"b2b", "vip"}},
	{Name: "Globex", Email: "it@globex.com", Company: "Globex", Status: entities.ClientStatusActive, Tags: []string{"b2b"}},
	{Name: "Initech", Email: "help@initech.io", Company: "Initech", Status: entities.ClientStatusActive},
	{Name: "Фарход Саидов", Email: "farhod@mail.tj", Status: entities.ClientStatusActive, Tags: []string{"b2c"}},
	{Name: "Umbrella", Email: "office@umbrella.co", Company: "Umbrella Corp", Status: entities.ClientStatusInactive},
}

var ticketSubjects = []string{
	"Не работает VPN", "Ошибка при оплате счёта", "Нет доступа к почте", "Медленно открывается портал",
	"Запрос на возврат средств", "Сбой печати", "Сброс пароля", "Не приходят уведомления",
	"Ошибка 500 в личном кабинете", "Подключение нового сотрудника", "Дубль списания", "Обновление договора",
}

var (
	ticketStatuses   = []string{entities.TicketStatusNew, entities.TicketStatusOpen, entities.TicketStatusInProgress, entities.TicketStatusPending, entities.TicketStatusResolved, entities.TicketStatusClosed}
	ticketPriorities = []string{entities.PriorityLow, entities.PriorityMedium, entities.PriorityHigh, entities.PriorityUrgent}
	ticketSources    = []string{entities.SourceEmail, entities.SourcePhone, entities.SourceChat, entities.SourcePortal}
	slaStatuses      = []string{entities.SLAOnTrack, entities.SLAOnTrack, entities.SLAAtRisk, entities.SLABreached}
)

// Dataset - демо-данные для всех рабочих наборов.
type Dataset struct {
	Departments []entities.Department
	Employees   []entities.Employee
	Clients     []entities.Client
	Tickets     []entities.Ticket
	Messages    []entities.TicketMessage
}

// BuildDataset собирает согласованный набор: счётчики клиентов и отделов
// совпадают с заявками. passwordHash применяется ко всем сотрудникам.
func BuildDataset(now time.Time, passwordHash string) Dataset {
	var ds Dataset
	ts := func(daysAgo int) entities.Timestamps {
		t := now.Add(-time.Duration(daysAgo) * 24 * time.Hour)
		return entities.Timestamps{CreatedAt: t, UpdatedAt: t}
	}

	for _, d := range departmentNames {
		ds.Departments = append(ds.Departments, entities.Department{
			ID:          utils.Slugify(d.Name),
			Name:        d.Name,
			Description: d.Description,
			Email:       d.Email,
			Status:      entities.DepartmentStatusActive,
			Timestamps:  ts(90),
		})
	}

	for i, e := range employeesData {
		depts := make([]string, 0, len(e.Departments))
		for _, idx := range e.Departments {
			depts = append(depts, ds.Departments[idx].ID)
			ds.Departments[idx].EmployeesCount++
		}
		ds.Employees = append(ds.Employees, entities.Employee{
			ID:           strconv.Itoa(i + 1),
			Name:         e.Name,
			Email:        e.Email,
			Role:         e.Role,
			Status:       entities.EmployeeStatusActive,
			Departments:  depts,
			Rating:       5.0,
			PasswordHash: passwordHash,
			Timestamps:   ts(60),
		})
	}
	ds.Departments[0].ManagerID = ds.Employees[1].ID

	for i, c := range clientsData {
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		ds.Clients = append(ds.Clients, entities.Client{
			ID:         strconv.Itoa(i + 1),
			Name:       c.Name,
			Email:      c.Email,
			Company:    c.Company,
			Status:     c.Status,
			Tags:       tags,
			Rating:     5.0,
			Timestamps: ts(30 + i),
		})
	}

	for i, subject := range ticketSubjects {
		client := &ds.Clients[i%len(ds.Clients)]
		dept := &ds.Departments[i%len(ds.Departments)]
		created := ts(len(ticketSubjects) - i)
		var assigned []string
		if i%3 != 0 {
			assigned = []string{ds.Employees[1+i%(len(ds.Employees)-1)].ID}
		} else {
			assigned = []string{}
		}
		t := entities.Ticket{
			ID:          strconv.Itoa(i + 1),
			Subject:     subject,
			Description: fmt.Sprintf("Обращение клиента %s: %s", client.Name, subject),
			Status:      ticketStatuses[i%len(ticketStatuses)],
			Priority:    ticketPriorities[i%len(ticketPriorities)],
			Source:      ticketSources[i%len(ticketSources)],
			SLAStatus:   slaStatuses[i%len(slaStatuses)],
			ClientID:    client.ID,
			AssignedTo:  assigned,
			Departments: []string{dept.ID},
			Tags:        []string{},
			Timestamps:  created,
		}
		if i%2 == 0 {
			due := created.CreatedAt.Add(72 * time.Hour)
			t.DueAt = &due
		}
		client.TicketsCount++
		contact := created.CreatedAt
		client.LastContactAt = &contact
		dept.TicketsCount++

		if i < 4 {
			ds.Messages = append(ds.Messages,
				entities.TicketMessage{
					ID: strconv.Itoa(len(ds.Messages) + 1), TicketID: t.ID, AuthorID: client.ID,
					AuthorType: "client", Body: t.Description, CreatedAt: created.CreatedAt,
				},
				entities.TicketMessage{
					ID: strconv.Itoa(len(ds.Messages) + 2), TicketID: t.ID, AuthorID: ds.Employees[1].ID,
					AuthorType: "employee", Body: "Заявка принята в работу", CreatedAt: created.CreatedAt.Add(time.Hour),
				},
			)
			t.MessagesCount = 2
		}
		ds.Tickets = append(ds.Tickets, t)
	}
	return ds
}

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"helpdesk-core/internal/dto"
	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/storage"
	"helpdesk-core/pkg/clock"
	"helpdesk-core/pkg/types"
	"helpdesk-core/pkg/validation"
)

type fixture struct {
	store       *storage.Store
	clock       *clock.Fake
	repos       *repositories.Repositories
	tickets     *TicketService
	clients     *ClientService
	employees   *EmployeeService
	departments *DepartmentService
	tables      *TableStateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := storage.NewStore(storage.NewMemoryMedium(), storage.Options{Clock: fake}, zap.NewNop())
	repos := repositories.NewRepositories(repositories.Source{Store: store, Logger: zap.NewNop()})
	v := validation.New()

	employees := NewEmployeeService(repos, store, v, zap.NewNop())
	employees.passwordCost = bcrypt.MinCost

	return &fixture{
		store:       store,
		clock:       fake,
		repos:       repos,
		tickets:     NewTicketService(repos, store, v, zap.NewNop()),
		clients:     NewClientService(repos, store, v, zap.NewNop()),
		employees:   employees,
		departments: NewDepartmentService(repos, store, v, zap.NewNop()),
		tables:      NewTableStateService(store, zap.NewNop()),
	}
}

func (f *fixture) ticket(t *testing.T, in dto.CreateTicketDTO) entities.Ticket {
	t.Helper()
	resp := f.tickets.Create(context.Background(), in)
	require.Nil(t, resp.Error, "создание заявки: %+v", resp.Error)
	f.clock.Advance(time.Minute)
	return resp.Data
}

func TestTicketList_PaginatesNewTickets(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 23; i++ {
		f.ticket(t, dto.CreateTicketDTO{Subject: fmt.Sprintf("Заявка %d", i)})
	}
	f.ticket(t, dto.CreateTicketDTO{Subject: "Другая"})
	_, err := f.repos.Tickets.Update(context.Background(), "24", func(tk entities.Ticket) (entities.Ticket, error) {
		tk.Status = entities.TicketStatusClosed
		return tk, nil
	})
	require.NoError(t, err)

	filter := dto.TicketFilter{Status: []string{entities.TicketStatusNew}}
	resp := f.tickets.List(context.Background(), filter, types.PageRequest{Page: 1, Limit: 10})

	require.Nil(t, resp.Error)
	assert.Len(t, resp.Data.Items, 10)
	assert.Equal(t, 23, resp.Data.Pagination.Total)
	assert.Equal(t, 3, resp.Data.Pagination.TotalPages)

	last := f.tickets.List(context.Background(), filter, types.PageRequest{Page: 3, Limit: 10})
	assert.Len(t, last.Data.Items, 3)

	again := f.tickets.List(context.Background(), filter, types.PageRequest{Page: 1, Limit: 10})
	assert.Equal(t, resp.Data, again.Data)
}

func TestTicketCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	tk := f.ticket(t, dto.CreateTicketDTO{Subject: "Не работает принтер"})

	assert.Equal(t, "1", tk.ID)
	assert.Equal(t, entities.TicketStatusNew, tk.Status)
	assert.Equal(t, entities.PriorityMedium, tk.Priority)
	assert.Equal(t, entities.SourcePortal, tk.Source)
	assert.Equal(t, entities.SLAOnTrack, tk.SLAStatus)
	assert.Zero(t, tk.MessagesCount)
	assert.NotNil(t, tk.Tags)
}

func TestTicketCreate_ValidationError(t *testing.T) {
	f := newFixture(t)
	resp := f.tickets.Create(context.Background(), dto.CreateTicketDTO{Subject: "x", Priority: "critical"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, "TICKET_VALIDATION_ERROR", resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Message)

	list := f.tickets.List(context.Background(), dto.TicketFilter{}, types.PageRequest{})
	assert.Zero(t, list.Data.Pagination.Total)
}

func TestTicketList_AssignedToCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.ticket(t, dto.CreateTicketDTO{Subject: "Моя", AssignedTo: []string{"7"}})
	f.ticket(t, dto.CreateTicketDTO{Subject: "Общая", AssignedTo: []string{"7", "9"}})
	f.ticket(t, dto.CreateTicketDTO{Subject: "Чужая", AssignedTo: []string{"9"}})
	f.ticket(t, dto.CreateTicketDTO{Subject: "Ничья"})

	filter := dto.TicketFilter{AssignedTo: types.AssignedToCurrentUser()}

	anonymous := f.tickets.List(ctx, filter, types.PageRequest{})
	require.Nil(t, anonymous.Error)
	assert.Empty(t, anonymous.Data.Items)

	require.NoError(t, f.store.SetCurrentUser(ctx, entities.User{ID: "7", Name: "Оператор"}))
	resp := f.tickets.List(ctx, filter, types.PageRequest{})
	require.Nil(t, resp.Error)
	require.Len(t, resp.Data.Items, 2)
	for _, tk := range resp.Data.Items {
		assert.Contains(t, tk.AssignedTo, "7")
	}
}

func TestTicketList_SearchAndSort(t *testing.T) {
	f := newFixture(t)
	f.ticket(t, dto.CreateTicketDTO{Subject: "VPN не подключается", Priority: entities.PriorityLow})
	f.ticket(t, dto.CreateTicketDTO{Subject: "Почта", Description: "ошибка vpn после обновления", Priority: entities.PriorityUrgent})
	f.ticket(t, dto.CreateTicketDTO{Subject: "Принтер", Priority: entities.PriorityHigh})

	resp := f.tickets.List(context.Background(), dto.TicketFilter{
		Search: "VPN",
		Sort:   types.Sort{By: "priority", Order: types.SortDesc},
	}, types.PageRequest{})

	require.Nil(t, resp.Error)
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, "2", resp.Data.Items[0].ID)
	assert.Equal(t, "1", resp.Data.Items[1].ID)
}

func TestTicketUpdate_MissingLeavesSetUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.ticket(t, dto.CreateTicketDTO{Subject: fmt.Sprintf("Заявка %d", i)})
	}
	before, err := f.repos.Tickets.All(ctx)
	require.NoError(t, err)

	resp := f.tickets.Update(ctx, "999", dto.UpdateTicketDTO{Status: null.StringFrom(entities.TicketStatusClosed)})

	require.NotNil(t, resp.Error)
	assert.Equal(t, "TICKET_NOT_FOUND", resp.Error.Code)
	after, err := f.repos.Tickets.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestTicketUpdate_Patch(t *testing.T) {
	f := newFixture(t)
	tk := f.ticket(t, dto.CreateTicketDTO{Subject: "Исходная тема", Tags: []string{"vpn"}})
	due := f.clock.Now().Add(48 * time.Hour)

	resp := f.tickets.Update(context.Background(), tk.ID, dto.UpdateTicketDTO{
		Status: null.StringFrom(entities.TicketStatusInProgress),
		DueAt:  null.TimeFrom(due),
	})

	require.Nil(t, resp.Error)
	assert.Equal(t, "Исходная тема", resp.Data.Subject)
	assert.Equal(t, entities.TicketStatusInProgress, resp.Data.Status)
	assert.Equal(t, []string{"vpn"}, resp.Data.Tags)
	require.NotNil(t, resp.Data.DueAt)
	assert.True(t, due.Equal(*resp.Data.DueAt))
	assert.True(t, resp.Data.UpdatedAt.After(tk.UpdatedAt))
}

func TestTicketMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tk := f.ticket(t, dto.CreateTicketDTO{Subject: "Вопрос по счёту"})

	first := f.tickets.AddMessage(ctx, tk.ID, dto.CreateMessageDTO{AuthorID: "3", AuthorType: "client", Body: "Здравствуйте"})
	require.Nil(t, first.Error)
	f.clock.Advance(time.Minute)
	second := f.tickets.AddMessage(ctx, tk.ID, dto.CreateMessageDTO{AuthorID: "7", AuthorType: "employee", Body: "Проверяем", Internal: true})
	require.Nil(t, second.Error)

	msgs := f.tickets.Messages(ctx, tk.ID)
	require.Nil(t, msgs.Error)
	require.Len(t, msgs.Data, 2)
	assert.Equal(t, "Здравствуйте", msgs.Data[0].Body)

	got := f.tickets.Get(ctx, tk.ID)
	assert.Equal(t, 2, got.Data.MessagesCount)

	missing := f.tickets.AddMessage(ctx, "404", dto.CreateMessageDTO{AuthorID: "7", AuthorType: "employee", Body: "?"})
	require.NotNil(t, missing.Error)
	assert.Equal(t, "TICKET_NOT_FOUND", missing.Error.Code)

	bad := f.tickets.AddMessage(ctx, tk.ID, dto.CreateMessageDTO{AuthorID: "7", AuthorType: "robot", Body: "?"})
	require.NotNil(t, bad.Error)
	assert.Equal(t, "TICKET_VALIDATION_ERROR", bad.Error.Code)

	deleted := f.tickets.Delete(ctx, tk.ID)
	require.Nil(t, deleted.Error)
	left, err := f.repos.Messages.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestTicketBulk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		f.ticket(t, dto.CreateTicketDTO{Subject: fmt.Sprintf("Заявка %d", i)})
	}

	resp := f.tickets.BulkUpdate(ctx, dto.BulkUpdateTicketsDTO{
		IDs:   []string{"2", "1", "2", "42"},
		Patch: dto.UpdateTicketDTO{Priority: null.StringFrom(entities.PriorityHigh)},
	})
	require.Nil(t, resp.Error)
	assert.Equal(t, []string{"1", "2"}, resp.Data.Processed)
	assert.Equal(t, []string{"42"}, resp.Data.NotFound)

	high := f.tickets.List(ctx, dto.TicketFilter{Priority: []string{entities.PriorityHigh}}, types.PageRequest{})
	assert.Equal(t, 2, high.Data.Pagination.Total)

	empty := f.tickets.BulkUpdate(ctx, dto.BulkUpdateTicketsDTO{})
	require.NotNil(t, empty.Error)
	assert.Equal(t, "TICKET_VALIDATION_ERROR", empty.Error.Code)

	removed := f.tickets.BulkDelete(ctx, []string{"3", "4"})
	require.Nil(t, removed.Error)
	assert.Len(t, removed.Data.Processed, 2)
	stats := f.tickets.Stats(ctx)
	assert.Equal(t, 2, stats.Data.Total)
	assert.Equal(t, 2, stats.Data.ByPriority[entities.PriorityHigh])
	assert.Equal(t, 2, stats.Data.Unassigned)
}

func TestClientCreate_Defaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.clients.Create(ctx, dto.CreateClientDTO{Name: "Acme", Email: "support@acme.com"})
	require.Nil(t, resp.Error)
	assert.Equal(t, "Acme", resp.Data.Name)
	assert.Zero(t, resp.Data.TicketsCount)
	assert.Equal(t, 5.0, resp.Data.Rating)
	assert.Equal(t, entities.ClientStatusActive, resp.Data.Status)

	dup := f.clients.Create(ctx, dto.CreateClientDTO{Name: "Acme 2", Email: "SUPPORT@acme.com"})
	require.NotNil(t, dup.Error)
	assert.Equal(t, "CLIENT_VALIDATION_ERROR", dup.Error.Code)

	invalid := f.clients.Create(ctx, dto.CreateClientDTO{Name: "Без почты", Email: "nope"})
	require.NotNil(t, invalid.Error)
	assert.Equal(t, "CLIENT_VALIDATION_ERROR", invalid.Error.Code)
}

func TestClientTicketsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.clients.Create(ctx, dto.CreateClientDTO{Name: "Acme", Email: "support@acme.com"}).Data

	first := f.ticket(t, dto.CreateTicketDTO{Subject: "Первая", ClientID: client.ID})
	f.ticket(t, dto.CreateTicketDTO{Subject: "Вторая", ClientID: client.ID})

	got := f.clients.Get(ctx, client.ID)
	assert.Equal(t, 2, got.Data.TicketsCount)
	assert.NotNil(t, got.Data.LastContactAt)

	own := f.clients.Tickets(ctx, client.ID, types.PageRequest{})
	require.Nil(t, own.Error)
	require.Len(t, own.Data.Items, 2)
	assert.Equal(t, "Вторая", own.Data.Items[0].Subject)

	require.Nil(t, f.tickets.Delete(ctx, first.ID).Error)
	assert.Equal(t, 1, f.clients.Get(ctx, client.ID).Data.TicketsCount)

	other := f.clients.Create(ctx, dto.CreateClientDTO{Name: "Globex", Email: "it@globex.com"}).Data
	second := own.Data.Items[0]
	moved := f.tickets.Update(ctx, second.ID, dto.UpdateTicketDTO{ClientID: null.StringFrom(other.ID)})
	require.Nil(t, moved.Error)
	assert.Equal(t, other.ID, moved.Data.ClientID)
	assert.Zero(t, f.clients.Get(ctx, client.ID).Data.TicketsCount, "заявка ушла от прежнего клиента")
	assert.Equal(t, 1, f.clients.Get(ctx, other.ID).Data.TicketsCount)

	bulk := f.tickets.BulkUpdate(ctx, dto.BulkUpdateTicketsDTO{IDs: []string{second.ID}, Patch: dto.UpdateTicketDTO{ClientID: null.StringFrom(client.ID)}})
	require.Nil(t, bulk.Error)
	assert.Equal(t, 1, f.clients.Get(ctx, client.ID).Data.TicketsCount)
	assert.Zero(t, f.clients.Get(ctx, other.ID).Data.TicketsCount)

	missing := f.clients.Tickets(ctx, "77", types.PageRequest{})
	require.NotNil(t, missing.Error)
	assert.Equal(t, "CLIENT_NOT_FOUND", missing.Error.Code)
}

func TestClientImportExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	book := excelize.NewFile()
	rows := [][]interface{}{
		{"Список клиентов"},
		{"Имя", "Email", "Телефон", "Компания", "Теги"},
		{"Acme", "support@acme.com", "+7 700 123 45 67", "Acme Inc", "vip, b2b"},
		{"Globex", "bad-email", "", "", ""},
		{"Acme Копия", "SUPPORT@acme.com", "", "", ""},
		{"Initech", "help@initech.io", "", "Initech", ""},
	}
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow("Sheet1", addr, &row))
	}
	var in bytes.Buffer
	require.NoError(t, book.Write(&in))

	imported := f.clients.Import(ctx, &in)
	require.Nil(t, imported.Error)
	assert.Equal(t, 2, imported.Data.Imported)
	assert.Equal(t, 2, imported.Data.Skipped)
	require.Len(t, imported.Data.Errors, 2)
	assert.Equal(t, 4, imported.Data.Errors[0].Row)
	assert.Equal(t, 5, imported.Data.Errors[1].Row)

	acme := f.clients.List(ctx, dto.ClientFilter{Search: "acme"}, types.PageRequest{})
	require.Len(t, acme.Data.Items, 1)
	assert.Equal(t, []string{"vip", "b2b"}, acme.Data.Items[0].Tags)

	var out bytes.Buffer
	exported := f.clients.Export(ctx, dto.ClientFilter{Sort: types.Sort{By: "name"}}, &out)
	require.Nil(t, exported.Error)
	assert.Equal(t, 2, exported.Data)

	sheet, err := excelize.OpenReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer sheet.Close()
	got, err := sheet.GetRows(clientSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Имя", got[0][1])
	assert.Equal(t, "Acme", got[1][1])
	assert.Equal(t, "Initech", got[2][1])

	// повторный импорт выгрузки ничего не добавляет
	again := f.clients.Import(ctx, bytes.NewReader(out.Bytes()))
	require.Nil(t, again.Error)
	assert.Zero(t, again.Data.Imported)
	assert.Equal(t, 2, again.Data.Skipped)
}

func TestClientImport_NotXLSX(t *testing.T) {
	f := newFixture(t)
	resp := f.clients.Import(context.Background(), strings.NewReader("name,email\n"))

	require.NotNil(t, resp.Error)
	assert.Equal(t, "CLIENT_IMPORT_ERROR", resp.Error.Code)
}

func TestEmployee_PasswordHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := f.employees.Create(ctx, dto.CreateEmployeeDTO{
		Name: "Айгерим", Email: "aigerim@helpdesk.kz", Role: entities.RoleAgent,
		Departments: []string{"support"}, Password: "s3cret-pass",
	})
	require.Nil(t, resp.Error)
	assert.Empty(t, resp.Data.PasswordHash)
	assert.False(t, resp.Data.IsOnline)
	assert.Equal(t, 5.0, resp.Data.Rating)

	stored, err := f.repos.Employees.Find(ctx, resp.Data.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret-pass")))

	updated := f.employees.Update(ctx, resp.Data.ID, dto.UpdateEmployeeDTO{Password: null.StringFrom("another-pass")})
	require.Nil(t, updated.Error)
	assert.Empty(t, updated.Data.PasswordHash)
	stored, _ = f.repos.Employees.Find(ctx, resp.Data.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("another-pass")))

	list := f.employees.List(ctx, dto.EmployeeFilter{}, types.PageRequest{})
	require.Len(t, list.Data.Items, 1)
	assert.Empty(t, list.Data.Items[0].PasswordHash)

	raw, err := json.Marshal(f.employees.Get(ctx, resp.Data.ID))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "passwordHash")
}

func TestEmployee_OnlineAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, role := range []string{entities.RoleAgent, entities.RoleAgent, entities.RoleSupervisor} {
		resp := f.employees.Create(ctx, dto.CreateEmployeeDTO{
			Name: fmt.Sprintf("Сотрудник %d", i), Email: fmt.Sprintf("e%d@helpdesk.kz", i),
			Role: role, Password: "password-123",
		})
		require.Nil(t, resp.Error)
	}

	online := f.employees.SetOnlineStatus(ctx, "2", true)
	require.Nil(t, online.Error)
	assert.True(t, online.Data.IsOnline)
	require.NotNil(t, online.Data.LastSeenAt)

	yes := true
	onlyOnline := f.employees.List(ctx, dto.EmployeeFilter{Online: &yes}, types.PageRequest{})
	require.Len(t, onlyOnline.Data.Items, 1)
	assert.Equal(t, "2", onlyOnline.Data.Items[0].ID)

	stats := f.employees.Stats(ctx)
	require.Nil(t, stats.Error)
	assert.Equal(t, 3, stats.Data.Total)
	assert.Equal(t, 1, stats.Data.Online)
	assert.Equal(t, 2, stats.Data.ByRole[entities.RoleAgent])

	missing := f.employees.SetOnlineStatus(ctx, "99", true)
	require.NotNil(t, missing.Error)
	assert.Equal(t, "EMPLOYEE_NOT_FOUND", missing.Error.Code)

	dup := f.employees.Create(ctx, dto.CreateEmployeeDTO{Name: "Копия", Email: "E0@helpdesk.kz", Role: entities.RoleAgent, Password: "password-123"})
	require.NotNil(t, dup.Error)
	assert.Equal(t, "EMPLOYEE_VALIDATION_ERROR", dup.Error.Code)
}

func TestDepartment_SlugAndRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.departments.Create(ctx, dto.CreateDepartmentDTO{Name: "Техническая поддержка"})
	require.Nil(t, first.Error)
	second := f.departments.Create(ctx, dto.CreateDepartmentDTO{Name: "Техническая поддержка"})
	require.Nil(t, second.Error)
	assert.NotEmpty(t, first.Data.ID)
	assert.Equal(t, first.Data.ID+"-2", second.Data.ID)
	assert.Zero(t, first.Data.EmployeesCount)
	assert.Zero(t, first.Data.TicketsCount)

	updated := f.departments.Update(ctx, first.Data.ID, dto.UpdateDepartmentDTO{Name: null.StringFrom("Поддержка")})
	require.Nil(t, updated.Error)
	assert.Equal(t, first.Data.ID, updated.Data.ID)
	assert.Equal(t, "Поддержка", updated.Data.Name)

	require.Nil(t, f.employees.Create(ctx, dto.CreateEmployeeDTO{
		Name: "Бекзат", Email: "bekzat@helpdesk.kz", Role: entities.RoleAgent,
		Departments: []string{first.Data.ID}, Password: "password-123",
	}).Error)
	require.Nil(t, f.employees.Create(ctx, dto.CreateEmployeeDTO{
		Name: "Анна", Email: "anna@helpdesk.kz", Role: entities.RoleAgent,
		Departments: []string{second.Data.ID}, Password: "password-123",
	}).Error)

	roster := f.departments.Employees(ctx, first.Data.ID, types.PageRequest{})
	require.Nil(t, roster.Error)
	require.Len(t, roster.Data.Items, 1)
	assert.Equal(t, "Бекзат", roster.Data.Items[0].Name)
	assert.Empty(t, roster.Data.Items[0].PasswordHash)

	stats := f.departments.Stats(ctx)
	assert.Equal(t, 2, stats.Data.Total)
	assert.Equal(t, 2, stats.Data.EmployeesCount)

	removed := f.departments.Delete(ctx, second.Data.ID)
	require.Nil(t, removed.Error)
	assert.Equal(t, second.Data.ID, removed.Data.ID)
	gone := f.departments.Get(ctx, second.Data.ID)
	require.NotNil(t, gone.Error)
	assert.Equal(t, "DEPARTMENT_NOT_FOUND", gone.Error.Code)
}

func TestUniqueSlug_Fallback(t *testing.T) {
	assert.Equal(t, "department", uniqueSlug("!!!", nil))
	assert.Equal(t, "department-3", uniqueSlug("", []entities.Department{{ID: "department"}, {ID: "department-2"}}))
}

func TestTableState_Columns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	saved := f.tables.SaveColumnWidths(ctx, "tickets", map[string]int{"subject": 20, "status": 5000, "id": 80})
	require.Nil(t, saved.Error)
	assert.Equal(t, map[string]int{"subject": 50, "status": 1000, "id": 80}, saved.Data.Widths)

	resized := f.tables.ResizeColumn(ctx, "tickets", "id", 120)
	require.Nil(t, resized.Error)
	assert.Equal(t, 120, resized.Data.Widths["id"])

	hidden := f.tables.SetHiddenColumns(ctx, "tickets", []string{"tags", "dueAt", "tags"})
	assert.Equal(t, []string{"dueAt", "tags"}, hidden.Data.Hidden)

	got := f.tables.ColumnWidths(ctx, "tickets")
	assert.Equal(t, 120, got.Data.Widths["id"])
	assert.Equal(t, []string{"dueAt", "tags"}, got.Data.Hidden)

	noColumn := f.tables.ResizeColumn(ctx, "tickets", " ", 100)
	require.NotNil(t, noColumn.Error)
	assert.Equal(t, "TABLE_STATE_ERROR", noColumn.Error.Code)

	require.Nil(t, f.tables.ResetColumns(ctx, "tickets").Error)
	assert.Empty(t, f.tables.ColumnWidths(ctx, "tickets").Data.Widths)
}

func TestTableState_FilterPresetsPerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	guest := f.tables.SaveFilterPreset(ctx, "Срочные", map[string]any{"priority": []string{"urgent"}})
	require.Nil(t, guest.Error)
	assert.Contains(t, guest.Data, "Срочные")

	require.NoError(t, f.store.SetCurrentUser(ctx, entities.User{ID: "7"}))
	assert.Empty(t, f.tables.FilterPresets(ctx).Data)

	mine := f.tables.SaveFilterPreset(ctx, "Мои", map[string]any{"assignedTo": "current_user"})
	require.Nil(t, mine.Error)
	assert.JSONEq(t, `{"assignedTo":"current_user"}`, string(mine.Data["Мои"]))

	left := f.tables.DeleteFilterPreset(ctx, "Мои")
	require.Nil(t, left.Error)
	assert.Empty(t, left.Data)

	unnamed := f.tables.SaveFilterPreset(ctx, "", nil)
	require.NotNil(t, unnamed.Error)
	assert.Equal(t, "TABLE_STATE_ERROR", unnamed.Error.Code)
}

func TestTableState_Drafts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.Nil(t, f.tables.SaveDraft(ctx, "ticket-create", map[string]string{"subject": "черновик"}).Error)
	draft := f.tables.Draft(ctx, "ticket-create")
	assert.JSONEq(t, `{"subject":"черновик"}`, string(draft.Data))

	f.clock.Advance(25 * time.Hour)
	assert.Equal(t, "null", string(f.tables.Draft(ctx, "ticket-create").Data))

	require.Nil(t, f.tables.SaveDraft(ctx, "client-create", "x").Error)
	require.Nil(t, f.tables.DiscardDraft(ctx, "client-create").Error)
	assert.Equal(t, "null", string(f.tables.Draft(ctx, "client-create").Data))
}

func TestRun_RecoversPanic(t *testing.T) {
	f := newFixture(t)
	resp := run(&f.tickets.BaseService, "Не удалось загрузить заявки", "TICKET_LOAD_ERROR", func() (int, error) {
		var m map[string]int
		m["boom"] = 1
		return 0, nil
	})

	require.NotNil(t, resp.Error)
	assert.Equal(t, "TICKET_LOAD_ERROR", resp.Error.Code)
	assert.Zero(t, resp.Data)
}

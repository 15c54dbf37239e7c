package mockapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"helpdesk-core/internal/entities"
	"helpdesk-core/internal/gateway"
	"helpdesk-core/internal/repositories"
	"helpdesk-core/internal/services"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/filestorage"
	"helpdesk-core/pkg/middleware"
)

// Deps - всё, что нужно симулятору бэкенда. Repos должны быть локальными
// (Source.Remote = false).
type Deps struct {
	Repos       *repositories.Repositories
	Tickets     *services.TicketService
	Clients     *services.ClientService
	Employees   *services.EmployeeService
	Departments *services.DepartmentService
	TableState  *services.TableStateService
	Files       filestorage.FileStorageInterface
	UploadDir   string
	Now         func() time.Time
	Logger      *zap.Logger
}

func local[T entities.Record[T]](repo repositories.Repository[T], entity string) (*repositories.WorkingSet[T], error) {
	ws, ok := repositories.Local(repo)
	if !ok {
		return nil, fmt.Errorf("коллекция %s не является локальным рабочим набором", entity)
	}
	return ws, nil
}

// NewRouter собирает echo-сервер симулятора.
func NewRouter(d Deps) (*echo.Echo, error) {
	logger := d.Logger.Named("mockapi")
	if d.Now == nil {
		d.Now = time.Now
	}

	tickets, err := local(d.Repos.Tickets, repositories.EntityTickets)
	if err != nil {
		return nil, err
	}
	messages, err := local(d.Repos.Messages, repositories.EntityTicketMessages)
	if err != nil {
		return nil, err
	}
	clients, err := local(d.Repos.Clients, repositories.EntityClients)
	if err != nil {
		return nil, err
	}
	employees, err := local(d.Repos.Employees, repositories.EntityEmployees)
	if err != nil {
		return nil, err
	}
	departments, err := local(d.Repos.Departments, repositories.EntityDepartments)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("Паника при обработке запроса",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				_ = errorResponse(c, http.StatusInternalServerError, apperrors.CodeAPI, "Внутренняя ошибка сервера")
			}
			return err
		},
	}))
	e.Use(middleware.InjectLogger(logger))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, gateway.HeaderCorrelationID},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		message := "Внутренняя ошибка сервера"
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = fmt.Sprint(he.Message)
		}
		_ = errorResponse(c, code, apperrors.CodeAPI, message)
	}
	if d.UploadDir != "" {
		e.Static("/uploads", d.UploadDir)
	}

	e.GET(gateway.HealthEndpoint, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"status": "ok", "time": d.Now()})
	})

	// --- ЗАЯВКИ ---
	th := &ticketHandler{service: d.Tickets}
	g := e.Group("/" + repositories.EntityTickets)
	g.GET("/search", th.search)
	g.GET("/stats", th.stats)
	g.GET("/:id/messages", th.messages)
	g.POST("/:id/messages", th.addMessage)
	ticketCol := NewCollection(repositories.EntityTickets, tickets, logger)
	ticketCol.Register(g)

	messageCol := NewCollection(repositories.EntityTicketMessages, messages, logger)
	messageCol.Register(e.Group("/" + repositories.EntityTicketMessages))

	// --- КЛИЕНТЫ ---
	ch := &clientHandler{service: d.Clients}
	g = e.Group("/" + repositories.EntityClients)
	g.GET("/search", ch.search)
	g.GET("/stats", ch.stats)
	g.GET("/export", ch.export)
	g.POST("/import", ch.importFile)
	g.GET("/:id/tickets", ch.tickets)
	clientCol := NewCollection(repositories.EntityClients, clients, logger)
	clientCol.Register(g)

	// --- СОТРУДНИКИ ---
	eh := &employeeHandler{service: d.Employees}
	g = e.Group("/" + repositories.EntityEmployees)
	g.GET("/search", eh.search)
	g.GET("/stats", eh.stats)
	g.PUT("/:id/online", eh.setOnline)
	employeeCol := NewCollection(repositories.EntityEmployees, employees, logger)
	// хеш пароля не уходит клиенту; замена без хеша сохраняет прежний
	employeeCol.outbound = entities.Employee.Public
	employeeCol.merge = func(current, incoming entities.Employee) entities.Employee {
		if incoming.PasswordHash == "" {
			incoming.PasswordHash = current.PasswordHash
		}
		return incoming
	}
	employeeCol.Register(g)

	// --- ОТДЕЛЫ ---
	dh := &departmentHandler{service: d.Departments}
	g = e.Group("/" + repositories.EntityDepartments)
	g.GET("/search", dh.search)
	g.GET("/stats", dh.stats)
	g.GET("/:id/employees", dh.employees)
	departmentCol := NewCollection(repositories.EntityDepartments, departments, logger)
	departmentCol.Register(g)

	// --- СИНХРОНИЗАЦИЯ ---
	sh := &syncHandler{
		collections: map[string]replayer{
			repositories.EntityTickets:        ticketCol,
			repositories.EntityTicketMessages: messageCol,
			repositories.EntityClients:        clientCol,
			repositories.EntityEmployees:      employeeCol,
			repositories.EntityDepartments:    departmentCol,
		},
		now:    d.Now,
		logger: logger.Named("sync"),
	}
	e.GET("/sync", sh.list)
	e.POST(gateway.SyncEndpointPrefix+":key", sh.receive)

	// --- НАСТРОЙКИ ТАБЛИЦ ---
	if d.TableState != nil {
		ph := &preferencesHandler{service: d.TableState}
		ph.register(e.Group("/preferences"))
	}

	// --- ЗАГРУЗКА ФАЙЛОВ ---
	if d.Files != nil {
		uh := &uploadHandler{files: d.Files, logger: logger.Named("upload")}
		e.POST("/upload", uh.upload)
	}

	logger.Info("Маршруты симулятора зарегистрированы", zap.Int("routes", len(e.Routes())))
	return e, nil
}

package mockapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk-core/internal/dto"
	"helpdesk-core/internal/services"
	apperrors "helpdesk-core/pkg/errors"
)

// Поиск и статистика идут через сервисы: те же фильтры, сортировка и
// пагинация, что и у консоли.

func badQuery(c echo.Context, entity string, err error) error {
	return errorResponse(c, http.StatusBadRequest, apperrors.EntityCode(entityCodes[entity], apperrors.SuffixValidation), err.Error())
}

type ticketHandler struct {
	service *services.TicketService
}

func (h *ticketHandler) search(c echo.Context) error {
	filter, page, err := dto.ParseTicketFilter(c.QueryParams())
	if err != nil {
		return badQuery(c, "tickets", err)
	}
	return respond(c, http.StatusOK, h.service.List(c.Request().Context(), filter, page))
}

func (h *ticketHandler) stats(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.Stats(c.Request().Context()))
}

func (h *ticketHandler) messages(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.Messages(c.Request().Context(), c.Param("id")))
}

func (h *ticketHandler) addMessage(c echo.Context) error {
	var in dto.CreateMessageDTO
	if err := c.Bind(&in); err != nil {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeTicketMessages, "Неверное тело запроса")
	}
	return respond(c, http.StatusCreated, h.service.AddMessage(c.Request().Context(), c.Param("id"), in))
}

type clientHandler struct {
	service *services.ClientService
}

func (h *clientHandler) search(c echo.Context) error {
	filter, page, err := dto.ParseClientFilter(c.QueryParams())
	if err != nil {
		return badQuery(c, "clients", err)
	}
	return respond(c, http.StatusOK, h.service.List(c.Request().Context(), filter, page))
}

func (h *clientHandler) stats(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.Stats(c.Request().Context()))
}

func (h *clientHandler) tickets(c echo.Context) error {
	page := dto.ParsePage(c.QueryParams())
	return respond(c, http.StatusOK, h.service.Tickets(c.Request().Context(), c.Param("id"), page))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *clientHandler) export(c echo.Context) error {
	filter, _, err := dto.ParseClientFilter(c.QueryParams())
	if err != nil {
		return badQuery(c, "clients", err)
	}
	var buf bytes.Buffer
	if resp := h.service.Export(c.Request().Context(), filter, &buf); !resp.Success {
		return respond(c, http.StatusOK, resp)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="clients.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *clientHandler) importFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeClientImport, "Файл не был передан")
	}
	src, err := fh.Open()
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, apperrors.CodeClientImport, "Ошибка обработки файла")
	}
	defer src.Close()

	resp := h.service.Import(c.Request().Context(), src)
	if !resp.Success && resp.Error.Code == apperrors.CodeClientImport {
		return errorResponse(c, http.StatusBadRequest, resp.Error.Code, resp.Error.Message)
	}
	return respond(c, http.StatusOK, resp)
}

type employeeHandler struct {
	service *services.EmployeeService
}

func (h *employeeHandler) search(c echo.Context) error {
	filter, page, err := dto.ParseEmployeeFilter(c.QueryParams())
	if err != nil {
		return badQuery(c, "employees", err)
	}
	return respond(c, http.StatusOK, h.service.List(c.Request().Context(), filter, page))
}

func (h *employeeHandler) stats(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.Stats(c.Request().Context()))
}

type onlineRequest struct {
	Online bool `json:"online"`
}

func (h *employeeHandler) setOnline(c echo.Context) error {
	var in onlineRequest
	if err := c.Bind(&in); err != nil {
		return badQuery(c, "employees", apperrors.ErrInvalidInput)
	}
	return respond(c, http.StatusOK, h.service.SetOnlineStatus(c.Request().Context(), c.Param("id"), in.Online))
}

type departmentHandler struct {
	service *services.DepartmentService
}

func (h *departmentHandler) search(c echo.Context) error {
	filter, page, err := dto.ParseDepartmentFilter(c.QueryParams())
	if err != nil {
		return badQuery(c, "departments", err)
	}
	return respond(c, http.StatusOK, h.service.List(c.Request().Context(), filter, page))
}

func (h *departmentHandler) stats(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.Stats(c.Request().Context()))
}

func (h *departmentHandler) employees(c echo.Context) error {
	page := dto.ParsePage(c.QueryParams())
	return respond(c, http.StatusOK, h.service.Employees(c.Request().Context(), c.Param("id"), page))
}

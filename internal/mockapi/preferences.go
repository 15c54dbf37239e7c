package mockapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk-core/internal/services"
	apperrors "helpdesk-core/pkg/errors"
)

// preferencesHandler отдаёт состояние таблиц: колонки, пресеты фильтров,
// черновики форм.
type preferencesHandler struct {
	service *services.TableStateService
}

func (h *preferencesHandler) register(g *echo.Group) {
	g.GET("/columns/:table", h.columns)
	g.PUT("/columns/:table", h.saveColumns)
	g.PUT("/columns/:table/widths/:column", h.resizeColumn)
	g.PUT("/columns/:table/hidden", h.hideColumns)
	g.DELETE("/columns/:table", h.resetColumns)

	g.GET("/filters", h.filters)
	g.PUT("/filters/:name", h.saveFilter)
	g.DELETE("/filters/:name", h.deleteFilter)

	g.GET("/drafts/:form", h.draft)
	g.PUT("/drafts/:form", h.saveDraft)
	g.DELETE("/drafts/:form", h.discardDraft)
}

func badPreferences(c echo.Context) error {
	return errorResponse(c, http.StatusBadRequest, apperrors.CodeTableState, "Неверное тело запроса")
}

// rawBody читает тело как JSON без разбора.
func rawBody(c echo.Context) (json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil || !json.Valid(body) {
		return nil, false
	}
	return body, true
}

func (h *preferencesHandler) columns(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.ColumnWidths(c.Request().Context(), c.Param("table")))
}

func (h *preferencesHandler) saveColumns(c echo.Context) error {
	var in struct {
		Widths map[string]int `json:"widths"`
	}
	if err := c.Bind(&in); err != nil {
		return badPreferences(c)
	}
	return respond(c, http.StatusOK, h.service.SaveColumnWidths(c.Request().Context(), c.Param("table"), in.Widths))
}

func (h *preferencesHandler) resizeColumn(c echo.Context) error {
	var in struct {
		Width int `json:"width"`
	}
	if err := c.Bind(&in); err != nil {
		return badPreferences(c)
	}
	return respond(c, http.StatusOK, h.service.ResizeColumn(c.Request().Context(), c.Param("table"), c.Param("column"), in.Width))
}

func (h *preferencesHandler) hideColumns(c echo.Context) error {
	var in struct {
		Hidden []string `json:"hidden"`
	}
	if err := c.Bind(&in); err != nil {
		return badPreferences(c)
	}
	return respond(c, http.StatusOK, h.service.SetHiddenColumns(c.Request().Context(), c.Param("table"), in.Hidden))
}

func (h *preferencesHandler) resetColumns(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.ResetColumns(c.Request().Context(), c.Param("table")))
}

func (h *preferencesHandler) filters(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.FilterPresets(c.Request().Context()))
}

func (h *preferencesHandler) saveFilter(c echo.Context) error {
	filter, ok := rawBody(c)
	if !ok {
		return badPreferences(c)
	}
	return respond(c, http.StatusOK, h.service.SaveFilterPreset(c.Request().Context(), c.Param("name"), filter))
}

func (h *preferencesHandler) deleteFilter(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.DeleteFilterPreset(c.Request().Context(), c.Param("name")))
}

func (h *preferencesHandler) draft(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.Draft(c.Request().Context(), c.Param("form")))
}

func (h *preferencesHandler) saveDraft(c echo.Context) error {
	data, ok := rawBody(c)
	if !ok {
		return badPreferences(c)
	}
	return respond(c, http.StatusOK, h.service.SaveDraft(c.Request().Context(), c.Param("form"), data))
}

func (h *preferencesHandler) discardDraft(c echo.Context) error {
	return respond(c, http.StatusOK, h.service.DiscardDraft(c.Request().Context(), c.Param("form")))
}

package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"helpdesk-core/pkg/middleware"
	apperrors "helpdesk-core/pkg/errors"
	"helpdesk-core/pkg/types"
)

// entityCodes - префиксы кодов ошибок для коллекций.
var entityCodes = map[string]string{
	"tickets":         "TICKET",
	"ticket-messages": "TICKET_MESSAGE",
	"clients":         "CLIENT",
	"employees":       "EMPLOYEE",
	"departments":     "DEPARTMENT",
}

func errorResponse(c echo.Context, status int, code, message string) error {
	return c.JSON(status, types.ErrorBody{Code: code, Message: message})
}

// statusFor выбирает HTTP-статус по коду ошибки сервиса.
func statusFor(code string) int {
	switch {
	case strings.HasSuffix(code, apperrors.SuffixNotFound):
		return http.StatusNotFound
	case strings.HasSuffix(code, apperrors.SuffixValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respond пишет конверт по контракту: при успехе тело - сами данные,
// при ошибке - {code, message}.
func respond[T any](c echo.Context, status int, resp types.Response[T]) error {
	if !resp.Success {
		if resp.Error == nil {
			return errorResponse(c, http.StatusInternalServerError, apperrors.CodeAPI, "неизвестная ошибка")
		}
		status := statusFor(resp.Error.Code)
		if status >= http.StatusInternalServerError {
			middleware.FromContext(c).Error("Ошибка сервиса",
				zap.String("code", resp.Error.Code), zap.String("message", resp.Error.Message))
		}
		return errorResponse(c, status, resp.Error.Code, resp.Error.Message)
	}
	return c.JSON(status, resp.Data)
}

func repositoryError(c echo.Context, entity string, err error) error {
	prefix := entityCodes[entity]
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, apperrors.EntityCode(prefix, apperrors.SuffixNotFound), "Запись не найдена")
	case errors.Is(err, apperrors.ErrInvalidInput):
		return errorResponse(c, http.StatusUnprocessableEntity, apperrors.EntityCode(prefix, apperrors.SuffixValidation), err.Error())
	}
	middleware.FromContext(c).Error("Ошибка рабочего набора", zap.String("entity", entity), zap.Error(err))
	return errorResponse(c, http.StatusInternalServerError, apperrors.CodeAPI, err.Error())
}

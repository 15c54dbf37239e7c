package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = fmt.Errorf("запись не найдена")
	ErrInvalidInput = fmt.Errorf("неверные входные данные")
	ErrOffline      = fmt.Errorf("нет соединения с сервером")
	ErrEmptyBody    = fmt.Errorf("пустой ответ сервера")
)

// Коды ошибок, которые видит вызывающая сторона в конверте ответа.
const (
	CodeAPI        = "API_ERROR"
	CodeUpload     = "UPLOAD_ERROR"
	CodeSync       = "SYNC_ERROR"
	CodeTableState = "TABLE_STATE_ERROR"

	CodeClientImport   = "CLIENT_IMPORT_ERROR"
	CodeClientExport   = "CLIENT_EXPORT_ERROR"
	CodeTicketMessages = "TICKET_MESSAGES_ERROR"
	CodeTicketBulk     = "TICKET_BULK_ERROR"
)

// Суффиксы для кодов вида <ENTITY>_<SUFFIX>.
const (
	SuffixLoad       = "LOAD_ERROR"
	SuffixCreate     = "CREATE_ERROR"
	SuffixUpdate     = "UPDATE_ERROR"
	SuffixDelete     = "DELETE_ERROR"
	SuffixNotFound   = "NOT_FOUND"
	SuffixValidation = "VALIDATION_ERROR"
	SuffixStats      = "STATS_ERROR"
)

// EntityCode собирает код вида TICKET_NOT_FOUND.
func EntityCode(entity, suffix string) string {
	return entity + "_" + suffix
}

// AppError - ошибка с машиночитаемым кодом и сообщением для пользователя.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func New(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidInputError - ошибка валидации с понятным сообщением.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func (e *InvalidInputError) Is(target error) bool { return target == ErrInvalidInput }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// As - сокращение для errors.As с AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

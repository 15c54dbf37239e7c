package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "helpdesk-core/pkg/errors"
)

// Validator - обёртка над validator/v10 с поддержкой null-типов.
type Validator struct {
	validator *validator.Validate
}

// New создает и настраивает валидатор. Паникует, если правило не регистрируется.
func New() *Validator {
	v := validator.New()
	registerNullTypes(v)
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}
	return &Validator{validator: v}
}

// Validate реализует интерфейс echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Struct проверяет структуру и переводит ошибки в InvalidInputError
// с перечислением полей, чтобы сообщение можно было показать пользователю.
func (cv *Validator) Struct(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewInvalidInputError("ошибка валидации: %v", err)
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, describe(fe))
	}
	return apperrors.NewInvalidInputError("%s", strings.Join(parts, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", field)
	case "email", "custom_email":
		return fmt.Sprintf("поле %s должно быть корректным email", field)
	case "phone":
		return fmt.Sprintf("поле %s должно быть номером телефона", field)
	case "oneof":
		return fmt.Sprintf("поле %s должно быть одним из: %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("поле %s: минимум %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("поле %s: максимум %s", field, fe.Param())
	default:
		return fmt.Sprintf("поле %s не прошло проверку %s", field, fe.Tag())
	}
}

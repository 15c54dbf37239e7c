package types

import (
	"encoding/json"
	"errors"

	apperrors "helpdesk-core/pkg/errors"
)

// ErrorBody - ветка ошибки конверта ответа.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Status - HTTP-статус, если ошибка пришла от сервера.
	Status int `json:"status,omitempty"`
}

// Response - единый конверт ответа. Заполнена ровно одна ветка:
// Data при Success == true, Error при Success == false.
type Response[T any] struct {
	Success bool
	Data    T
	Error   *ErrorBody
}

func Success[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func Failure[T any](code, message string) Response[T] {
	return Response[T]{Error: &ErrorBody{Code: code, Message: message}}
}

// FailureFrom переносит ветку ошибки из ответа другого типа.
func FailureFrom[T, U any](other Response[U]) Response[T] {
	if other.Error == nil {
		return Failure[T](apperrors.CodeAPI, "неизвестная ошибка")
	}
	body := *other.Error
	return Response[T]{Error: &body}
}

// FromError строит ветку ошибки. Код берётся из AppError, если он есть.
func FromError[T any](fallbackCode string, err error) Response[T] {
	if appErr, ok := apperrors.As(err); ok {
		return Failure[T](appErr.Code, appErr.Message)
	}
	var invalid *apperrors.InvalidInputError
	if errors.As(err, &invalid) {
		return Failure[T](fallbackCode, invalid.Message)
	}
	return Failure[T](fallbackCode, err.Error())
}

type wireResponse[T any] struct {
	Success bool       `json:"success"`
	Data    *T         `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func (r Response[T]) MarshalJSON() ([]byte, error) {
	w := wireResponse[T]{Success: r.Success}
	if r.Success {
		data := r.Data
		w.Data = &data
	} else {
		w.Error = r.Error
		if w.Error == nil {
			w.Error = &ErrorBody{Code: apperrors.CodeAPI, Message: "неизвестная ошибка"}
		}
	}
	return json.Marshal(w)
}

func (r *Response[T]) UnmarshalJSON(b []byte) error {
	var w wireResponse[T]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*r = Response[T]{Success: w.Success}
	if w.Success {
		if w.Data != nil {
			r.Data = *w.Data
		}
		return nil
	}
	r.Error = w.Error
	return nil
}

package domain

import (
	"errors"
	"fmt"
)

// Error ошибка бизнес-логики с машиночитаемым кодом.
// Message не содержит PII (координаты, пути к файлам) и сырых сообщений нативных библиотек.
type Error struct {
	Code      string
	Message   string
	Details   map[string]any
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError создаёт новую доменную ошибку с кодом
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithDetail добавляет пару ключ-значение в Details
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithRetryable помечает ошибку как временную
func (e *Error) WithRetryable() *Error {
	e.Retryable = true
	return e
}

// WithCause сохраняет исходную ошибку для errors.Is/As, но не для вывода наружу
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// AsError извлекает доменную ошибку из цепочки
func AsError(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// IsCode проверяет, несёт ли цепочка ошибок указанный код
func IsCode(err error, code string) bool {
	if domainErr, ok := AsError(err); ok {
		return domainErr.Code == code
	}
	return false
}

// IsRetryable проверяет, помечена ли ошибка как временная
func IsRetryable(err error) bool {
	if domainErr, ok := AsError(err); ok {
		return domainErr.Retryable
	}
	return false
}

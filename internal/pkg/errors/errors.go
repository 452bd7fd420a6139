package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда нет валидной сессии или админских прав.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда действие запрещено состоянием ресурса (например, игровой день закрыт).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных и бизнес-правил.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда токен (сессии или сброса пароля) истек.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния (дубликат, удаление дня с сабмитами).
	ErrConflict = errors.New("resource state conflict")
)

// Issue описывает одну проблему во входных данных.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error - ошибка с видом (одна из сентинел-ошибок выше), сообщением для клиента
// и дополнительными полями, которые попадают в тело ответа.
type Error struct {
	Kind    error
	Message string
	Issues  []Issue
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// WithIssues добавляет проблемы валидации.
func (e *Error) WithIssues(issues ...Issue) *Error {
	e.Issues = append(e.Issues, issues...)
	return e
}

// WithDetail добавляет поле в тело ответа (например, count или lockTime).
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(kind error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, format, args...)
}

func Validationf(format string, args ...interface{}) *Error {
	return newError(ErrValidation, format, args...)
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return newError(ErrForbidden, format, args...)
}

func Conflictf(format string, args ...interface{}) *Error {
	return newError(ErrConflict, format, args...)
}

func Unauthorizedf(format string, args ...interface{}) *Error {
	return newError(ErrUnauthorized, format, args...)
}

// AsError достает *Error из цепочки, если он там есть.
func AsError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

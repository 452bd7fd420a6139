package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// Значения error_type в теле ошибки
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeTokenExpired = "token_expired"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeConflict     = "conflict"
	ErrorTypeRateLimited  = "rate_limited"
	ErrorTypeInternal     = "internal_error"
)

// StatusFor сопоставляет вид ошибки с HTTP статусом и error_type
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, ErrorTypeValidation
	case errors.Is(err, apperrors.ErrExpiredToken):
		return http.StatusUnauthorized, ErrorTypeTokenExpired
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorTypeUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrorTypeForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorTypeNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, ErrorTypeConflict
	default:
		return http.StatusInternalServerError, ErrorTypeInternal
	}
}

// ErrorBody собирает тело ответа {message, error_type, issues?, ...details}
func ErrorBody(err error) (int, gin.H) {
	status, errorType := StatusFor(err)
	body := gin.H{"error_type": errorType}

	if status == http.StatusInternalServerError {
		body["message"] = "Internal server error"
		return status, body
	}

	if appErr, ok := apperrors.AsError(err); ok {
		for key, value := range appErr.Details {
			body[key] = value
		}
		body["message"] = appErr.Message
		if len(appErr.Issues) > 0 {
			body["issues"] = appErr.Issues
		}
		return status, body
	}

	body["message"] = err.Error()
	return status, body
}

// RespondError пишет ошибку в ответ и прерывает цепочку. 5xx логируются с деталями.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	status, body := ErrorBody(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("Внутренняя ошибка", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, body)
}

// BindError превращает ошибку биндинга gin в ошибку валидации
func BindError(err error) error {
	return apperrors.Validationf("invalid request body: %v", err)
}

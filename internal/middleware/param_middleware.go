package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/handler/helper"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
)

// ExtractUintParam создает middleware для извлечения и валидации числового параметра URL.
// paramName - имя параметра в URL (например, "id").
// contextKey - ключ, под которым значение будет сохранено в контексте Gin.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		idStr := c.Param(paramName)
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || id == 0 {
			helper.RespondError(c, nil, apperrors.Validationf("invalid %s", paramName).
				WithIssues(apperrors.Issue{Path: paramName, Message: fmt.Sprintf("%q is not a positive integer", idStr)}))
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/handler/dto"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	"github.com/yourusername/hottakes-api/internal/middleware"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// SubmissionHandler обрабатывает сабмиты игроков
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	log               *logger.Logger
}

// NewSubmissionHandler создает обработчик сабмитов
func NewSubmissionHandler(submissionService *service.SubmissionService, log *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService, log: log.Named("SubmissionHandler")}
}

// Submit сохраняет пики и решения текущего пользователя
// POST /api/submissions?gameDay=
func (h *SubmissionHandler) Submit(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helper.RespondError(c, h.log, apperrors.Unauthorizedf("authentication required"))
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}

	view, err := h.submissionService.Submit(c.Request.Context(), user.ID, c.Query("gameDay"), service.SubmitInput{
		Picks:          req.Picks,
		SwipeDecisions: req.Decisions(),
	})
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// List возвращает сабмиты по фильтрам
// GET /api/submissions?nickname=|userId=&gameDay=
func (h *SubmissionHandler) List(c *gin.Context) {
	filter := service.SubmissionListFilter{
		Nickname:   c.Query("nickname"),
		RawGameDay: c.Query("gameDay"),
	}
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			helper.RespondError(c, h.log, apperrors.Validationf("invalid userId").
				WithIssues(apperrors.Issue{Path: "userId", Message: "must be a positive integer"}))
			return
		}
		userID := uint(id)
		filter.UserID = &userID
	}

	views, err := h.submissionService.List(c.Request.Context(), filter)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Get возвращает сабмит игрока за день
// GET /api/submissions/:nickname?gameDay=
func (h *SubmissionHandler) Get(c *gin.Context) {
	view, err := h.submissionService.Get(c.Request.Context(), c.Param("nickname"), c.Query("gameDay"))
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

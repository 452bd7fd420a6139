package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/handler/dto"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/internal/service/scoring"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// GameDayHandler - админский жизненный цикл игровых дней
type GameDayHandler struct {
	gameDayService *service.GameDayService
	hottakesPerDay int
	log            *logger.Logger
}

// NewGameDayHandler создает обработчик игровых дней
func NewGameDayHandler(gameDayService *service.GameDayService, hottakesPerDay int, log *logger.Logger) *GameDayHandler {
	return &GameDayHandler{gameDayService: gameDayService, hottakesPerDay: hottakesPerDay, log: log.Named("GameDayHandler")}
}

// List возвращает все дни и номер текущего
// GET /api/game-days, GET /api/admin/game-days
func (h *GameDayHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	days, err := h.gameDayService.List(ctx)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	current, err := h.gameDayService.FindCurrentGameDayNumber(ctx)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.GameDayListResponse{
		GameDays:       days,
		CurrentGameDay: current,
		MaxScorePerDay: scoring.MaxScore(h.hottakesPerDay),
	})
}

// Create создает игровой день
// POST /api/admin/game-days
func (h *GameDayHandler) Create(c *gin.Context) {
	var req dto.CreateGameDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}
	day, err := h.gameDayService.Create(c.Request.Context(), service.CreateGameDayInput{
		GameDay:     req.GameDay,
		Description: req.Description,
		Status:      req.Status,
		StartTime:   req.StartTime,
		LockTime:    req.LockTime,
	})
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, day)
}

// Update частично обновляет день
// PATCH /api/admin/game-days/:id
func (h *GameDayHandler) Update(c *gin.Context) {
	id := c.MustGet("gameDayID").(uint)

	var req dto.UpdateGameDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}
	day, err := h.gameDayService.Update(c.Request.Context(), id, service.UpdateGameDayInput{
		Description:    req.Description,
		Status:         req.Status,
		StartTime:      req.StartTime,
		LockTime:       req.LockTime,
		ClearStartTime: req.ClearStartTime,
		ClearLockTime:  req.ClearLockTime,
	})
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// Finalize переводит день в FINALIZED
// POST /api/admin/game-days/:id/finalize
func (h *GameDayHandler) Finalize(c *gin.Context) {
	day, err := h.gameDayService.Finalize(c.Request.Context(), c.MustGet("gameDayID").(uint))
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// Delete удаляет день без сабмитов вместе с его хоттейками
// DELETE /api/admin/game-days/:id
func (h *GameDayHandler) Delete(c *gin.Context) {
	if err := h.gameDayService.Delete(c.Request.Context(), c.MustGet("gameDayID").(uint)); err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/hottakes-api/internal/handler/dto"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// HottakeHandler обрабатывает запросы к хоттейкам
type HottakeHandler struct {
	hottakeService *service.HottakeService
	log            *logger.Logger
}

// NewHottakeHandler создает обработчик хоттейков
func NewHottakeHandler(hottakeService *service.HottakeService, log *logger.Logger) *HottakeHandler {
	return &HottakeHandler{hottakeService: hottakeService, log: log.Named("HottakeHandler")}
}

// List возвращает хоттейки дня
// GET /api/hottakes?gameDay=
func (h *HottakeHandler) List(c *gin.Context) {
	hottakes, err := h.hottakeService.List(c.Request.Context(), c.Query("gameDay"))
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, hottakes)
}

// Create создает хоттейк (админ)
// POST /api/hottakes
func (h *HottakeHandler) Create(c *gin.Context) {
	var req dto.CreateHottakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}
	hottake, err := h.hottakeService.Create(c.Request.Context(), req.Text, req.GameDay)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, hottake)
}

// UpdateStatus меняет исход хоттейка и пересчитывает счета дня (админ)
// PATCH /api/hottakes/:id
func (h *HottakeHandler) UpdateStatus(c *gin.Context) {
	id := c.MustGet("hottakeID").(uint)

	var req dto.UpdateHottakeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helper.RespondError(c, h.log, helper.BindError(err))
		return
	}
	hottake, err := h.hottakeService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, hottake)
}

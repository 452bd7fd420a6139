package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/hottakes-api/internal/handler/dto"
	"github.com/yourusername/hottakes-api/internal/handler/helper"
	apperrors "github.com/yourusername/hottakes-api/internal/pkg/errors"
	"github.com/yourusername/hottakes-api/internal/service"
	"github.com/yourusername/hottakes-api/pkg/logger"
)

// LeaderboardHandler отдает таблицу лидеров и ее выгрузку
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	gameDayService     *service.GameDayService
	log                *logger.Logger
	now                func() time.Time
}

// NewLeaderboardHandler создает обработчик лидерборда
func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, gameDayService *service.GameDayService, log *logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		gameDayService:     gameDayService,
		log:                log.Named("LeaderboardHandler"),
		now:                time.Now,
	}
}

// resolveDay: пусто или "all" - общая таблица, иначе день по правилам резолвера
func (h *LeaderboardHandler) resolveDay(c *gin.Context) (*int, error) {
	raw := strings.TrimSpace(c.Query("gameDay"))
	if raw == "" || strings.EqualFold(raw, service.GameDayParamAll) {
		return nil, nil
	}
	day, err := h.gameDayService.ResolveGameDayParam(c.Request.Context(), raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// Get возвращает таблицу лидеров
// GET /api/leaderboard?gameDay=
func (h *LeaderboardHandler) Get(c *gin.Context) {
	gameDay, err := h.resolveDay(c)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	entries, err := h.leaderboardService.Build(c.Request.Context(), gameDay)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.LeaderboardResponse{GameDay: gameDay, Entries: entries})
}

// Export выгружает таблицу в CSV или Excel
// GET /api/admin/leaderboard/export?gameDay=&format=csv|xlsx
func (h *LeaderboardHandler) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		helper.RespondError(c, h.log, apperrors.Validationf("unsupported export format %q", format).
			WithIssues(apperrors.Issue{Path: "format", Message: "must be csv or xlsx"}))
		return
	}

	gameDay, err := h.resolveDay(c)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}
	entries, err := h.leaderboardService.Build(c.Request.Context(), gameDay)
	if err != nil {
		helper.RespondError(c, h.log, err)
		return
	}

	scope := "all"
	if gameDay != nil {
		scope = fmt.Sprintf("day_%d", *gameDay)
	}
	filename := fmt.Sprintf("leaderboard_%s_%s", scope, h.now().Format("2006-01-02"))
	rows := service.ExportRows(entries)

	if format == "xlsx" {
		h.exportXLSX(c, rows, filename)
		return
	}
	h.exportCSV(c, rows, filename)
}

// exportCSV пишет CSV с BOM для корректного UTF-8 в Excel
func (h *LeaderboardHandler) exportCSV(c *gin.Context, rows [][]interface{}, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = sanitizeForExcel(fmt.Sprint(v))
		}
		if err := writer.Write(record); err != nil {
			h.log.Error("Ошибка записи CSV", "error", err)
			return
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.log.Error("Ошибка записи CSV", "error", err)
	}
}

// exportXLSX пишет Excel через StreamWriter
func (h *LeaderboardHandler) exportXLSX(c *gin.Context, rows [][]interface{}, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leaderboard"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		helper.RespondError(c, h.log, fmt.Errorf("rename sheet: %w", err))
		return
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		helper.RespondError(c, h.log, fmt.Errorf("create stream writer: %w", err))
		return
	}

	for i, row := range rows {
		for j, v := range row {
			if s, ok := v.(string); ok {
				row[j] = sanitizeForExcel(s)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := sw.SetRow(cell, row); err != nil {
			helper.RespondError(c, h.log, fmt.Errorf("write row %d: %w", i+1, err))
			return
		}
	}
	if err := sw.Flush(); err != nil {
		helper.RespondError(c, h.log, fmt.Errorf("flush xlsx: %w", err))
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.log.Error("Ошибка записи Excel в ответ", "error", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

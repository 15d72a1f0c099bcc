package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizgame-api/internal/service"
)

// SessionHandler обрабатывает запросы панели администратора к сессиям
type SessionHandler struct {
	sessionService *service.SessionService
	resultService  *service.ResultService
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionService *service.SessionService, resultService *service.ResultService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		resultService:  resultService,
	}
}

// Status возвращает статус сессии: позицию, игроков, вопросы
func (h *SessionHandler) Status(c *gin.Context) {
	sessionID := contextUint(c, "session_id")
	status, err := h.sessionService.Status(c, contextEmail(c), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Results возвращает результаты завершенной сессии
func (h *SessionHandler) Results(c *gin.Context) {
	sessionID := contextUint(c, "session_id")
	results, err := h.resultService.SessionResults(c, contextEmail(c), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ExportResults экспортирует результаты сессии в файл.
// Формат задается параметром ?format=xlsx|csv, по умолчанию xlsx.
func (h *SessionHandler) ExportResults(c *gin.Context) {
	sessionID := contextUint(c, "session_id")
	results, err := h.resultService.SessionResults(c, contextEmail(c), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	ranked := rankResults(results.Results)
	filename := fmt.Sprintf("session_%d_results", sessionID)

	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		h.exportCSV(c, ranked, results.Summary.TotalQuestions, filename)
	default:
		h.exportXLSX(c, ranked, results.Summary.TotalQuestions, filename)
	}
}

// rankResults сортирует игроков по убыванию очков. Сортировка стабильная:
// при равенстве очков сохраняется порядок присоединения.
func rankResults(results []service.PlayerResult) []service.PlayerResult {
	ranked := make([]service.PlayerResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// exportCSV экспортирует результаты в CSV
func (h *SessionHandler) exportCSV(c *gin.Context, ranked []service.PlayerResult, totalQuestions int, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного открытия кириллицы в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Место", "Игрок", "Очки", "Правильных", "Всего вопросов"})
	for i, r := range ranked {
		writer.Write([]string{
			strconv.Itoa(i + 1),
			sanitizeForExcel(r.Name),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.CorrectCount),
			strconv.Itoa(totalQuestions),
		})
	}
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *SessionHandler) exportXLSX(c *gin.Context, ranked []service.PlayerResult, totalQuestions int, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Результаты"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[SessionHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Место", "Игрок", "Очки", "Правильных", "Всего вопросов"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[SessionHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range ranked {
		rowNum := i + 2 // Первая строка занята заголовками
		cell := fmt.Sprintf("A%d", rowNum)
		row := []interface{}{i + 1, sanitizeForExcel(r.Name), r.Score, r.CorrectCount, totalQuestions}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[SessionHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[SessionHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[SessionHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

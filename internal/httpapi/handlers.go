package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"

	"gitlab.com/yelinaung/daily-expense-tracker/internal/logger"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/models"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/report"
	"gitlab.com/yelinaung/daily-expense-tracker/internal/store"
)

// List groupings accepted by GET /expenses.
const (
	groupNone     = "none"
	groupTime     = "time"
	groupCategory = "category"
)

// Report kinds recorded in metrics.
const (
	reportKindJSON   = "json"
	reportKindChart  = "chart"
	reportKindShare  = "share"
	reportKindExport = "export"
)

// CreateExpenseRequest is the body of POST /expenses. Amount is in minor
// units (paise).
type CreateExpenseRequest struct {
	Title      string     `json:"title" binding:"required,max=80"`
	Amount     int64      `json:"amount" binding:"required,gt=0,lte=100000000000"`
	Category   string     `json:"category"`
	Notes      string     `json:"notes"`
	ReceiptURI string     `json:"receipt_uri"`
	Timestamp  *time.Time `json:"timestamp"`
}

// ExpenseList is the payload of GET /expenses.
type ExpenseList struct {
	Date     civil.Date            `json:"date"`
	Count    int                   `json:"count"`
	Total    int64                 `json:"total"`
	Expenses []models.Expense      `json:"expenses"`
	Groups   []store.CategoryGroup `json:"groups,omitempty"`
}

// TodaySummary is the payload of GET /summary/today.
type TodaySummary struct {
	Date  civil.Date `json:"date"`
	Total int64      `json:"total"`
	Count int        `json:"count"`
}

func (s *Server) healthz(c *gin.Context) {
	Success(c, gin.H{"status": "ok"})
}

func (s *Server) createExpense(c *gin.Context) {
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultCategory
	} else if canonical, ok := models.IsKnownCategory(category); ok {
		category = canonical
	}

	e := models.Expense{
		Title:      req.Title,
		Amount:     req.Amount,
		Category:   category,
		Notes:      models.TruncateNotes(strings.TrimSpace(req.Notes)),
		ReceiptURI: strings.TrimSpace(req.ReceiptURI),
	}
	if req.Timestamp != nil {
		e.Timestamp = *req.Timestamp
	}

	saved, err := s.store.Add(e)
	if err != nil {
		if errors.Is(err, store.ErrInvalidExpense) {
			BadRequest(c, err.Error())
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to add expense")
		InternalError(c, "failed to add expense")
		return
	}

	Created(c, saved)
}

func (s *Server) listExpenses(c *gin.Context) {
	date := s.store.Today()
	if raw := c.Query("date"); raw != "" {
		d, err := civil.ParseDate(raw)
		if err != nil {
			BadRequest(c, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw))
			return
		}
		date = d
	}

	entries := s.store.ListForDate(date)
	list := ExpenseList{
		Date:  date,
		Count: len(entries),
		Total: store.SumAmounts(entries),
	}

	switch group := strings.ToLower(c.DefaultQuery("group", groupNone)); group {
	case groupNone:
		list.Expenses = entries
	case groupTime:
		list.Expenses = store.SortByTimestampDescending(entries)
	case groupCategory:
		list.Expenses = entries
		list.Groups = store.GroupByCategory(entries)
	default:
		BadRequest(c, fmt.Sprintf("invalid group %q, want none, time or category", group))
		return
	}

	Success(c, list)
}

func (s *Server) todaySummary(c *gin.Context) {
	view := s.store.TodayView()
	Success(c, TodaySummary{
		Date:  view.Date,
		Total: view.Total,
		Count: len(view.Expenses),
	})
}

// reportFor builds the report for the days query parameter. It writes a 400
// and returns false when the parameter is invalid.
func (s *Server) reportFor(c *gin.Context) (store.Report, bool) {
	days := store.ReportDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > store.MaxReportDays {
			BadRequest(c, fmt.Sprintf("days must be between 1 and %d", store.MaxReportDays))
			return store.Report{}, false
		}
		days = n
	}
	return s.store.Report(days), true
}

func (s *Server) report(c *gin.Context) {
	r, ok := s.reportFor(c)
	if !ok {
		return
	}
	s.metrics.RecordReport(c.Request.Context(), reportKindJSON)
	Success(c, r)
}

func (s *Server) reportChart(c *gin.Context) {
	r, ok := s.reportFor(c)
	if !ok {
		return
	}
	if r.Total == 0 {
		NotFound(c, fmt.Sprintf("no expenses in the last %d days", len(r.Days)))
		return
	}

	png, err := report.BarChartPNG(r)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to render expense chart")
		InternalError(c, "failed to render chart")
		return
	}

	s.metrics.RecordReport(c.Request.Context(), reportKindChart)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", report.ChartFilename(r)))
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) reportShare(c *gin.Context) {
	r, ok := s.reportFor(c)
	if !ok {
		return
	}
	s.metrics.RecordReport(c.Request.Context(), reportKindShare)
	c.String(http.StatusOK, report.ShareText(r))
}

func (s *Server) reportExport(c *gin.Context) {
	r, ok := s.reportFor(c)
	if !ok {
		return
	}

	res, err := report.Export(c.Param("format"), r)
	if err != nil {
		if errors.Is(err, report.ErrUnsupportedFormat) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, "failed to export report")
		return
	}

	s.metrics.RecordReport(c.Request.Context(), reportKindExport)
	Success(c, res)
}

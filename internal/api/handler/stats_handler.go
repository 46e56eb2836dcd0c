package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

type StatsHandler struct {
	statsService ports.StatsService
	now          func() time.Time
}

func NewStatsHandler(statsService ports.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService, now: time.Now}
}

// Summary returns the dashboard header figures.
//
// @Summary      Summary statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  summaryResponse
// @Failure      401  {object}  map[string][]string
// @Router       /api/stats/summary [get]
func (h *StatsHandler) Summary(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	stats, err := h.statsService.Summary(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summaryResponse{
		MonthlyTotal:   stats.MonthlyTotal.InexactFloat64(),
		TotalExpenses:  stats.TotalExpenses,
		AverageExpense: stats.AverageExpense.InexactFloat64(),
		TopCategory:    stats.TopCategory,
		CurrentMonth:   stats.CurrentMonth,
	})
}

// Monthly returns per-category totals for one month, the current one by default.
//
// @Summary      Monthly summary
// @Tags         stats
// @Produce      json
// @Param        year   query     int  false  "Year (default current)"
// @Param        month  query     int  false  "Month 1-12 (default current)"
// @Success      200    {object}  monthlySummaryResponse
// @Failure      400    {object}  map[string][]string
// @Router       /api/stats/monthly [get]
func (h *StatsHandler) Monthly(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var q monthlyQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year and month must be integers")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	now := h.now()
	if q.Year == 0 {
		q.Year = now.Year()
	}
	if q.Month == 0 {
		q.Month = int(now.Month())
	}

	rows, err := h.statsService.Monthly(c.Request().Context(), user.ID, q.Year, time.Month(q.Month))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, monthlySummaryResponse{
		Year:       q.Year,
		Month:      q.Month,
		Categories: toCategorySummaries(rows),
	})
}

// Yearly returns per-month totals for one year, the current one by default.
//
// @Summary      Yearly summary
// @Tags         stats
// @Produce      json
// @Param        year  query     int  false  "Year (default current)"
// @Success      200   {object}  yearlySummaryResponse
// @Failure      400   {object}  map[string][]string
// @Router       /api/stats/yearly [get]
func (h *StatsHandler) Yearly(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var q yearlyQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	if q.Year == 0 {
		q.Year = h.now().Year()
	}

	rows, err := h.statsService.Yearly(c.Request().Context(), user.ID, q.Year)
	if err != nil {
		return err
	}

	months := make([]monthSummaryResponse, 0, len(rows))
	for _, r := range rows {
		months = append(months, monthSummaryResponse{Month: r.Month, Total: r.Total.InexactFloat64(), Count: r.Count})
	}
	return c.JSON(http.StatusOK, yearlySummaryResponse{Year: q.Year, Months: months})
}

func toCategorySummaries(rows []domain.CategorySummary) []categorySummaryResponse {
	out := make([]categorySummaryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, categorySummaryResponse{Category: r.Category, Total: r.Total.InexactFloat64(), Count: r.Count})
	}
	return out
}

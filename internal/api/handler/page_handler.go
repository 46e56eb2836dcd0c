package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/middleware"
	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

const (
	recentLimit        = 10
	topCategoriesLimit = 10
)

// pageData is the single view model handed to every HTML template. Pages
// only fill the fields they show.
type pageData struct {
	Title  string
	User   *domain.User
	Errors []string
	Form   map[string]string
	Next   string

	Summary       *domain.SummaryStats
	Recent        []domain.Expense
	Monthly       []domain.CategorySummary
	Yearly        []domain.MonthSummary
	TopCategories []domain.CategoryTotal
	Categories    []domain.Category
	Year          int
}

type PageHandler struct {
	expenses   ports.ExpenseService
	categories ports.CategoryService
	stats      ports.StatsService
	now        func() time.Time
}

func NewPageHandler(expenses ports.ExpenseService, categories ports.CategoryService, stats ports.StatsService) *PageHandler {
	return &PageHandler{expenses: expenses, categories: categories, stats: stats, now: time.Now}
}

func (h *PageHandler) Index(c echo.Context) error {
	if _, ok := middleware.CurrentUser(c); ok {
		return c.Redirect(http.StatusFound, dashboardPath)
	}
	return c.Render(http.StatusOK, "index", pageData{Title: "Expense Tracker"})
}

func (h *PageHandler) Dashboard(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	now := h.now()

	summary, err := h.stats.Summary(ctx, user.ID)
	if err != nil {
		return err
	}
	recent, err := h.expenses.Recent(ctx, user.ID, recentLimit)
	if err != nil {
		return err
	}
	monthly, err := h.stats.Monthly(ctx, user.ID, now.Year(), now.Month())
	if err != nil {
		return err
	}
	categories, err := h.categories.List(ctx)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "dashboard", pageData{
		Title:      "Dashboard",
		User:       user,
		Summary:    summary,
		Recent:     recent,
		Monthly:    monthly,
		Categories: categories,
	})
}

func (h *PageHandler) Expenses(c echo.Context) error {
	return h.withCategories(c, "expenses", "Expenses")
}

func (h *PageHandler) Analytics(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	year := h.now().Year()

	yearly, err := h.stats.Yearly(ctx, user.ID, year)
	if err != nil {
		return err
	}
	top, err := h.stats.TopCategories(ctx, user.ID, topCategoriesLimit)
	if err != nil {
		return err
	}

	return c.Render(http.StatusOK, "analytics", pageData{
		Title:         "Analytics",
		User:          user,
		Yearly:        yearly,
		TopCategories: top,
		Year:          year,
	})
}

func (h *PageHandler) Categories(c echo.Context) error {
	return h.withCategories(c, "categories", "Categories")
}

func (h *PageHandler) Export(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "export", pageData{Title: "Export", User: user})
}

func (h *PageHandler) withCategories(c echo.Context, tmpl, title string) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, tmpl, pageData{Title: title, User: user, Categories: categories})
}

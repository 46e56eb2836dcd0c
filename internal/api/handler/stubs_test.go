package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/middleware"
	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	if s.logoutFn == nil {
		return nil
	}
	return s.logoutFn(ctx, token)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.User, *domain.Session, error) {
	return nil, nil, domain.ErrUnauthenticated
}

type stubExpenseService struct {
	listFn   func(ctx context.Context, in ports.ListExpensesInput) (*ports.ExpensePage, error)
	createFn func(ctx context.Context, userID uint, in ports.ExpenseInput) (*domain.Expense, bool, error)
	updateFn func(ctx context.Context, userID, id uint, in ports.ExpenseInput) (*domain.Expense, error)
	deleteFn func(ctx context.Context, userID, id uint) error
	recentFn func(ctx context.Context, userID uint, limit int) ([]domain.Expense, error)
}

func (s *stubExpenseService) List(ctx context.Context, in ports.ListExpensesInput) (*ports.ExpensePage, error) {
	return s.listFn(ctx, in)
}

func (s *stubExpenseService) Create(ctx context.Context, userID uint, in ports.ExpenseInput) (*domain.Expense, bool, error) {
	return s.createFn(ctx, userID, in)
}

func (s *stubExpenseService) Update(ctx context.Context, userID, id uint, in ports.ExpenseInput) (*domain.Expense, error) {
	return s.updateFn(ctx, userID, id, in)
}

func (s *stubExpenseService) Delete(ctx context.Context, userID, id uint) error {
	return s.deleteFn(ctx, userID, id)
}

func (s *stubExpenseService) Recent(ctx context.Context, userID uint, limit int) ([]domain.Expense, error) {
	return s.recentFn(ctx, userID, limit)
}

type stubCategoryService struct {
	listFn   func(ctx context.Context) ([]domain.Category, error)
	createFn func(ctx context.Context, userID uint, in ports.CategoryInput) (*domain.Category, error)
}

func (s *stubCategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.listFn(ctx)
}

func (s *stubCategoryService) Create(ctx context.Context, userID uint, in ports.CategoryInput) (*domain.Category, error) {
	return s.createFn(ctx, userID, in)
}

func (s *stubCategoryService) SeedDefaults(context.Context) (int, error) { return 0, nil }

type stubStatsService struct {
	summaryFn func(ctx context.Context, userID uint) (*domain.SummaryStats, error)
	monthlyFn func(ctx context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error)
	yearlyFn  func(ctx context.Context, userID uint, year int) ([]domain.MonthSummary, error)
	topFn     func(ctx context.Context, userID uint, limit int) ([]domain.CategoryTotal, error)
}

func (s *stubStatsService) Summary(ctx context.Context, userID uint) (*domain.SummaryStats, error) {
	return s.summaryFn(ctx, userID)
}

func (s *stubStatsService) Monthly(ctx context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error) {
	return s.monthlyFn(ctx, userID, year, month)
}

func (s *stubStatsService) Yearly(ctx context.Context, userID uint, year int) ([]domain.MonthSummary, error) {
	return s.yearlyFn(ctx, userID, year)
}

func (s *stubStatsService) TopCategories(ctx context.Context, userID uint, limit int) ([]domain.CategoryTotal, error) {
	return s.topFn(ctx, userID, limit)
}

type stubExportService struct {
	csvFn func(ctx context.Context, userID uint) (*ports.CSVExport, error)
}

func (s *stubExportService) CSV(ctx context.Context, userID uint) (*ports.CSVExport, error) {
	return s.csvFn(ctx, userID)
}

// recordingRenderer remembers the last template and data it was asked to render.
type recordingRenderer struct {
	name string
	data any
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	r.name = name
	r.data = data
	_, err := io.WriteString(w, "<html>"+name+"</html>")
	return err
}

var testUser = &domain.User{
	ID:        7,
	Username:  "alice",
	Email:     "alice@example.com",
	FirstName: "Alice",
	LastName:  "Smith",
	IsActive:  true,
	CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

// newContext builds an echo context for one request. body is sent as JSON
// unless contentType says otherwise; user, when set, is marked authenticated.
func newContext(method, target, body, contentType string, user *domain.User) (echo.Context, *httptest.ResponseRecorder, *recordingRenderer) {
	e := echo.New()
	e.Validator = NewValidator()
	r := &recordingRenderer{}
	e.Renderer = r

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if contentType == "" {
		contentType = echo.MIMEApplicationJSON
	}
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		middleware.SetUser(c, user)
	}
	return c, rec, r
}

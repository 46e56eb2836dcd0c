package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

// ExpenseFilter narrows a user's expense listing. Zero values mean "no filter".
// DateFrom and DateTo are inclusive.
type ExpenseFilter struct {
	UserID     uint
	CategoryID uint
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PerPage    int
}

// ExpenseStats are the raw aggregates behind the summary endpoint.
type ExpenseStats struct {
	MonthlyTotal   decimal.Decimal
	TotalExpenses  int64
	AverageExpense decimal.Decimal
	TopCategory    string
}

// ExpenseRepository defines persistence for expenses. Every method is scoped
// to a single owner; an expense owned by someone else is reported as
// domain.ErrExpenseNotFound.
type ExpenseRepository interface {
	// Create returns domain.ErrCategoryNotFound for an unknown category and
	// domain.ErrDuplicateExpense when the idempotency key was already used.
	Create(ctx context.Context, expense *domain.Expense) error
	FindByID(ctx context.Context, userID, id uint) (*domain.Expense, error)
	FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*domain.Expense, error)
	// Update applies fn to the stored expense and persists the result atomically.
	Update(ctx context.Context, userID, id uint, fn func(*domain.Expense) error) (*domain.Expense, error)
	Delete(ctx context.Context, userID, id uint) error

	List(ctx context.Context, filter ExpenseFilter) ([]domain.Expense, int64, error)
	// ListAll returns every expense of the user, newest date first.
	ListAll(ctx context.Context, userID uint) ([]domain.Expense, error)
	Recent(ctx context.Context, userID uint, limit int) ([]domain.Expense, error)

	MonthlySummary(ctx context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error)
	YearlySummary(ctx context.Context, userID uint, year int) ([]domain.MonthSummary, error)
	TopCategories(ctx context.Context, userID uint, limit int) ([]domain.CategoryTotal, error)
	Stats(ctx context.Context, userID uint, year int, month time.Month) (*ExpenseStats, error)
}

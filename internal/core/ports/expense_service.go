package ports

import (
	"context"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

// ExpenseInput carries the raw, not yet validated, expense fields.
type ExpenseInput struct {
	Title          string
	Description    string
	Amount         string
	CategoryID     string
	Date           string
	IdempotencyKey string
}

type ListExpensesInput struct {
	UserID     uint
	Page       int
	PerPage    int
	CategoryID uint
	Search     string
	StartDate  string
	EndDate    string
}

// ExpensePage is one page of a listing plus the pagination envelope.
type ExpensePage struct {
	Items   []domain.Expense
	Page    int
	PerPage int
	Pages   int
	Total   int64
	HasNext bool
	HasPrev bool
}

type ExpenseService interface {
	List(ctx context.Context, in ListExpensesInput) (*ExpensePage, error)
	// Create reports replayed=true when the idempotency key matched an
	// existing expense, which is returned unchanged.
	Create(ctx context.Context, userID uint, in ExpenseInput) (expense *domain.Expense, replayed bool, err error)
	Update(ctx context.Context, userID, id uint, in ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, userID, id uint) error
	Recent(ctx context.Context, userID uint, limit int) ([]domain.Expense, error)
}

package ports

import (
	"context"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, userID uint, in CategoryInput) (*domain.Category, error)
	// SeedDefaults inserts the default catalogue into an empty table and
	// reports how many rows were written.
	SeedDefaults(ctx context.Context) (int, error)
}

package ports

import (
	"context"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

type CategoryRepository interface {
	// List returns every category ordered by name.
	List(ctx context.Context) ([]domain.Category, error)
	FindByID(ctx context.Context, id uint) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	// Create returns domain.ErrCategoryExists when the name is taken.
	Create(ctx context.Context, category *domain.Category) error
	Count(ctx context.Context) (int64, error)
}

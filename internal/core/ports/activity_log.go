package ports

import (
	"context"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

type ActivityLog interface {
	Record(ctx context.Context, event domain.ActivityEvent) error
}

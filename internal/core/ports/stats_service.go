package ports

import (
	"context"
	"time"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

type StatsService interface {
	Summary(ctx context.Context, userID uint) (*domain.SummaryStats, error)
	Monthly(ctx context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error)
	Yearly(ctx context.Context, userID uint, year int) ([]domain.MonthSummary, error)
	TopCategories(ctx context.Context, userID uint, limit int) ([]domain.CategoryTotal, error)
}

// CSVExport is a rendered CSV document and its suggested file name.
type CSVExport struct {
	Data     string
	Filename string
}

type ExportService interface {
	CSV(ctx context.Context, userID uint) (*CSVExport, error)
}

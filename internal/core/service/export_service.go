package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

var csvHeader = []string{"Date", "Title", "Description", "Amount", "Category"}

type ExportService struct {
	repo   ports.ExpenseRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewExportService(repo ports.ExpenseRepository, logger zerolog.Logger) *ExportService {
	return &ExportService{repo: repo, logger: logger, now: time.Now}
}

// CSV renders every expense of the user, newest date first.
func (s *ExportService) CSV(ctx context.Context, userID uint) (*ports.CSVExport, error) {
	expenses, err := s.repo.ListAll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for i := range expenses {
		e := &expenses[i]
		row := []string{
			e.Date.Format(domain.DateLayout),
			e.Title,
			e.Description,
			e.Amount.StringFixed(2),
			e.CategoryName(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info().Uint("user_id", userID).Int("rows", len(expenses)).Msg("csv exported")
	return &ports.CSVExport{
		Data:     buf.String(),
		Filename: "expenses_" + s.now().Format("20060102") + ".csv",
	}, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

type StatsService struct {
	repo   ports.ExpenseRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewStatsService(repo ports.ExpenseRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger, now: time.Now}
}

// Summary reports the current month's spend and lifetime totals.
func (s *StatsService) Summary(ctx context.Context, userID uint) (*domain.SummaryStats, error) {
	now := s.now()
	raw, err := s.repo.Stats(ctx, userID, now.Year(), now.Month())
	if err != nil {
		return nil, fmt.Errorf("summary stats: %w", err)
	}

	top := raw.TopCategory
	if top == "" {
		top = domain.NoTopCategory
	}
	return &domain.SummaryStats{
		MonthlyTotal:   raw.MonthlyTotal,
		TotalExpenses:  raw.TotalExpenses,
		AverageExpense: raw.AverageExpense,
		TopCategory:    top,
		CurrentMonth:   now.Format("January 2006"),
	}, nil
}

func (s *StatsService) Monthly(ctx context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error) {
	if month < time.January || month > time.December {
		return nil, domain.NewValidationError("Month must be between 1 and 12")
	}
	return s.repo.MonthlySummary(ctx, userID, year, month)
}

func (s *StatsService) Yearly(ctx context.Context, userID uint, year int) ([]domain.MonthSummary, error) {
	return s.repo.YearlySummary(ctx, userID, year)
}

func (s *StatsService) TopCategories(ctx context.Context, userID uint, limit int) ([]domain.CategoryTotal, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopCategories(ctx, userID, limit)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
	"github.com/spendwise/expense-tracker/internal/core/validation"
)

const (
	defaultPerPage = 10
	DefaultMaxPage = 100

	MsgStartDateInvalid = "Invalid start date format"
	MsgEndDateInvalid   = "Invalid end date format"
)

type ExpenseService struct {
	repo       ports.ExpenseRepository
	activity   *activityRecorder
	maxPerPage int
	logger     zerolog.Logger
	now        func() time.Time
}

// NewExpenseService builds the expense use cases. maxPerPage caps page size;
// zero selects DefaultMaxPage.
func NewExpenseService(repo ports.ExpenseRepository, activity ports.ActivityLog, maxPerPage int, logger zerolog.Logger) *ExpenseService {
	if maxPerPage <= 0 {
		maxPerPage = DefaultMaxPage
	}
	return &ExpenseService{
		repo:       repo,
		activity:   newActivityRecorder(activity, logger),
		maxPerPage: maxPerPage,
		logger:     logger,
		now:        time.Now,
	}
}

// List returns one page of the user's expenses. A page past the end yields
// an empty item list, not an error.
func (s *ExpenseService) List(ctx context.Context, in ports.ListExpensesInput) (*ports.ExpensePage, error) {
	filter := ports.ExpenseFilter{
		UserID:     in.UserID,
		CategoryID: in.CategoryID,
		Search:     strings.TrimSpace(in.Search),
		Page:       in.Page,
		PerPage:    in.PerPage,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > s.maxPerPage {
		filter.PerPage = s.maxPerPage
	}

	if raw := strings.TrimSpace(in.StartDate); raw != "" {
		d, err := validation.ParseDate(raw)
		if err != nil {
			return nil, domain.NewValidationError(MsgStartDateInvalid)
		}
		filter.DateFrom = &d
	}
	if raw := strings.TrimSpace(in.EndDate); raw != "" {
		d, err := validation.ParseDate(raw)
		if err != nil {
			return nil, domain.NewValidationError(MsgEndDateInvalid)
		}
		filter.DateTo = &d
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	pages := int(math.Ceil(float64(total) / float64(filter.PerPage)))
	return &ports.ExpensePage{
		Items:   items,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Pages:   pages,
		Total:   total,
		HasNext: filter.Page < pages,
		HasPrev: filter.Page > 1,
	}, nil
}

// Create validates and stores a new expense. With an idempotency key that was
// already used by this user the earlier expense is returned and replayed is true.
func (s *ExpenseService) Create(ctx context.Context, userID uint, in ports.ExpenseInput) (*domain.Expense, bool, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, userID, key)
		if err == nil {
			s.logger.Info().Str("idempotency_key", key).Uint("expense_id", existing.ID).Msg("idempotent replay")
			return existing, true, nil
		}
		if !errors.Is(err, domain.ErrExpenseNotFound) {
			return nil, false, fmt.Errorf("create expense: %w", err)
		}
	}

	fields, err := s.parse(in)
	if err != nil {
		return nil, false, err
	}

	expense := &domain.Expense{
		Title:          fields.title,
		Description:    fields.description,
		Amount:         fields.amount,
		Date:           fields.date,
		UserID:         userID,
		CategoryID:     fields.categoryID,
		IdempotencyKey: key,
	}
	if fields.date.IsZero() {
		expense.Date = today(s.now())
	}

	if err := s.repo.Create(ctx, expense); err != nil {
		if errors.Is(err, domain.ErrDuplicateExpense) && key != "" {
			existing, findErr := s.repo.FindByIdempotencyKey(ctx, userID, key)
			if findErr == nil {
				return existing, true, nil
			}
		}
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, false, err
		}
		s.logger.Error().Err(err).Uint("user_id", userID).Msg("failed to create expense")
		return nil, false, fmt.Errorf("create expense: %w", err)
	}

	s.activity.record(ctx, userID, domain.ActionExpenseCreated, expense.ID)
	s.logger.Info().Uint("expense_id", expense.ID).Uint("user_id", userID).Msg("expense created")
	return expense, false, nil
}

// Update overwrites title, description, amount and category. The date only
// changes when a new one is supplied.
func (s *ExpenseService) Update(ctx context.Context, userID, id uint, in ports.ExpenseInput) (*domain.Expense, error) {
	fields, err := s.parse(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, userID, id, func(e *domain.Expense) error {
		e.Title = fields.title
		e.Description = fields.description
		e.Amount = fields.amount
		e.CategoryID = fields.categoryID
		if !fields.date.IsZero() {
			e.Date = fields.date
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) || errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update expense: %w", err)
	}

	s.activity.record(ctx, userID, domain.ActionExpenseUpdated, id)
	s.logger.Info().Uint("expense_id", id).Uint("user_id", userID).Msg("expense updated")
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return err
		}
		return fmt.Errorf("delete expense: %w", err)
	}
	s.activity.record(ctx, userID, domain.ActionExpenseDeleted, id)
	s.logger.Info().Uint("expense_id", id).Uint("user_id", userID).Msg("expense deleted")
	return nil
}

func (s *ExpenseService) Recent(ctx context.Context, userID uint, limit int) ([]domain.Expense, error) {
	return s.repo.Recent(ctx, userID, limit)
}

type expenseFields struct {
	title       string
	description string
	amount      decimal.Decimal
	categoryID  uint
	date        time.Time
}

func (s *ExpenseService) parse(in ports.ExpenseInput) (*expenseFields, error) {
	if msgs := validation.ValidateExpense(in.Title, in.Amount, in.CategoryID, in.Date); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	amount, _ := validation.ParseAmount(in.Amount)
	categoryID, _ := strconv.ParseUint(strings.TrimSpace(in.CategoryID), 10, 64)
	f := &expenseFields{
		title:       strings.TrimSpace(in.Title),
		description: strings.TrimSpace(in.Description),
		amount:      amount,
		categoryID:  uint(categoryID),
	}
	if raw := strings.TrimSpace(in.Date); raw != "" {
		f.date, _ = validation.ParseDate(raw)
	}
	return f, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

// ExpenseRepository implements ports.ExpenseRepository. Every query is
// filtered on user_id; writes run in a transaction.
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ports.ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	row := newExpenseRow(e)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat, err := lockCategory(tx, row.CategoryID)
		if err != nil {
			return err
		}
		if row.IdempotencyKey != nil {
			var n int64
			err := r.owned(tx, row.UserID).Where("expenses.idempotency_key = ?", *row.IdempotencyKey).Count(&n).Error
			if err != nil {
				return err
			}
			if n > 0 {
				return domain.ErrDuplicateExpense
			}
		}
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateExpense
			}
			return err
		}
		row.Category = cat
		return nil
	})
	if err != nil {
		return expenseErr("create expense", err)
	}
	*e = row.toDomain()
	return nil
}

func (r *ExpenseRepository) FindByID(ctx context.Context, userID, id uint) (*domain.Expense, error) {
	var row expenseRow
	err := r.owned(r.db.WithContext(ctx), userID).
		Joins("Category").
		Where("expenses.id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, expenseErr("find expense", err)
	}
	e := row.toDomain()
	return &e, nil
}

func (r *ExpenseRepository) FindByIdempotencyKey(ctx context.Context, userID uint, key string) (*domain.Expense, error) {
	var row expenseRow
	err := r.owned(r.db.WithContext(ctx), userID).
		Joins("Category").
		Where("expenses.idempotency_key = ?", key).
		First(&row).Error
	if err != nil {
		return nil, expenseErr("find expense by idempotency key", err)
	}
	e := row.toDomain()
	return &e, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, userID, id uint, fn func(*domain.Expense) error) (*domain.Expense, error) {
	var out domain.Expense
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row expenseRow
		if err := r.owned(tx, userID).Where("expenses.id = ?", id).First(&row).Error; err != nil {
			return err
		}
		current := row.toDomain()
		if err := fn(&current); err != nil {
			return err
		}
		cat, err := lockCategory(tx, current.CategoryID)
		if err != nil {
			return err
		}

		next := newExpenseRow(&current)
		res := tx.Model(&expenseRow{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(map[string]any{
				"title":       next.Title,
				"description": next.Description,
				"amount":      next.Amount,
				"date":        next.Date,
				"category_id": next.CategoryID,
				"updated_at":  time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		row.Category = cat
		out = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, expenseErr("update expense", err)
	}
	return &out, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&expenseRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return expenseErr("delete expense", err)
	}
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context, f ports.ExpenseFilter) ([]domain.Expense, int64, error) {
	var total int64
	if err := r.filtered(r.db.WithContext(ctx), f).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}
	offset, ok := pageOffset(f.Page, f.PerPage)
	if !ok || int64(offset) >= total {
		return []domain.Expense{}, total, nil
	}

	var rows []expenseRow
	err := r.filtered(r.db.WithContext(ctx), f).
		Joins("Category").
		Order(newestFirst).
		Offset(offset).
		Limit(f.PerPage).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	return toDomainExpenses(rows), total, nil
}

// pageOffset reports false when the offset of a 1-based page does not fit in
// an int.
func pageOffset(page, perPage int) (int, bool) {
	if page < 1 || perPage < 1 {
		return 0, true
	}
	if page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}

func (r *ExpenseRepository) ListAll(ctx context.Context, userID uint) ([]domain.Expense, error) {
	var rows []expenseRow
	err := r.owned(r.db.WithContext(ctx), userID).
		Joins("Category").
		Order(newestFirst).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	return toDomainExpenses(rows), nil
}

func (r *ExpenseRepository) Recent(ctx context.Context, userID uint, limit int) ([]domain.Expense, error) {
	var rows []expenseRow
	err := r.owned(r.db.WithContext(ctx), userID).
		Joins("Category").
		Order("expenses.created_at DESC, expenses.id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent expenses: %w", err)
	}
	return toDomainExpenses(rows), nil
}

type categoryAggregate struct {
	Category string
	Color    string
	Total    decimal.Decimal
	Count    int64
}

func (r *ExpenseRepository) MonthlySummary(ctx context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error) {
	from, to := monthRange(year, month)
	var rows []categoryAggregate
	err := r.db.WithContext(ctx).
		Table("expenses").
		Select("categories.name AS category, COALESCE(SUM(expenses.amount), 0) AS total, COUNT(expenses.id) AS count").
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.date >= ? AND expenses.date < ?", userID, from, to).
		Group("categories.name").
		Order("categories.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("monthly summary: %w", err)
	}
	out := make([]domain.CategorySummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategorySummary{Category: row.Category, Total: row.Total.Round(2), Count: row.Count})
	}
	return out, nil
}

func (r *ExpenseRepository) YearlySummary(ctx context.Context, userID uint, year int) ([]domain.MonthSummary, error) {
	var rows []struct {
		Month string
		Total decimal.Decimal
		Count int64
	}
	err := r.db.WithContext(ctx).
		Table("expenses").
		Select("substr(date, 6, 2) AS month, COALESCE(SUM(amount), 0) AS total, COUNT(id) AS count").
		Where("user_id = ? AND date >= ? AND date < ?", userID, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-01-01", year+1)).
		Group("substr(date, 6, 2)").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("yearly summary: %w", err)
	}
	out := make([]domain.MonthSummary, 0, len(rows))
	for _, row := range rows {
		m, err := strconv.Atoi(row.Month)
		if err != nil {
			return nil, fmt.Errorf("yearly summary: bad month %q", row.Month)
		}
		out = append(out, domain.MonthSummary{Month: m, Total: row.Total.Round(2), Count: row.Count})
	}
	return out, nil
}

func (r *ExpenseRepository) TopCategories(ctx context.Context, userID uint, limit int) ([]domain.CategoryTotal, error) {
	var rows []categoryAggregate
	err := r.db.WithContext(ctx).
		Table("expenses").
		Select("categories.name AS category, categories.color AS color, COALESCE(SUM(expenses.amount), 0) AS total, COUNT(expenses.id) AS count").
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ?", userID).
		Group("categories.name, categories.color").
		Order("total DESC").
		Order("categories.name ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	out := make([]domain.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategoryTotal{Category: row.Category, Color: row.Color, Total: row.Total.Round(2), Count: row.Count})
	}
	return out, nil
}

func (r *ExpenseRepository) Stats(ctx context.Context, userID uint, year int, month time.Month) (*ports.ExpenseStats, error) {
	db := r.db.WithContext(ctx)
	from, to := monthRange(year, month)
	out := &ports.ExpenseStats{}

	var monthly struct{ Total decimal.Decimal }
	err := db.Table("expenses").
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Scan(&monthly).Error
	if err != nil {
		return nil, fmt.Errorf("stats monthly total: %w", err)
	}
	out.MonthlyTotal = monthly.Total.Round(2)

	var lifetime struct {
		Count   int64
		Average decimal.Decimal
	}
	err = db.Table("expenses").
		Select("COUNT(id) AS count, COALESCE(AVG(amount), 0) AS average").
		Where("user_id = ?", userID).
		Scan(&lifetime).Error
	if err != nil {
		return nil, fmt.Errorf("stats lifetime: %w", err)
	}
	out.TotalExpenses = lifetime.Count
	out.AverageExpense = lifetime.Average.Round(2)

	var top []categoryAggregate
	err = db.Table("expenses").
		Select("categories.name AS category, COALESCE(SUM(expenses.amount), 0) AS total").
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.date >= ? AND expenses.date < ?", userID, from, to).
		Group("categories.name").
		Order("total DESC").
		Order("categories.name ASC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("stats top category: %w", err)
	}
	if len(top) > 0 {
		out.TopCategory = top[0].Category
	}
	return out, nil
}

const newestFirst = "expenses.date DESC, expenses.created_at DESC, expenses.id DESC"

func (r *ExpenseRepository) owned(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&expenseRow{}).Where("expenses.user_id = ?", userID)
}

func (r *ExpenseRepository) filtered(db *gorm.DB, f ports.ExpenseFilter) *gorm.DB {
	q := r.owned(db, f.UserID)
	if f.CategoryID != 0 {
		q = q.Where("expenses.category_id = ?", f.CategoryID)
	}
	if f.Search != "" {
		q = q.Where(
			containsExpr(db, "expenses.title")+" OR "+containsExpr(db, "COALESCE(expenses.description, '')"),
			f.Search, f.Search,
		)
	}
	if f.DateFrom != nil {
		q = q.Where("expenses.date >= ?", f.DateFrom.Format(domain.DateLayout))
	}
	if f.DateTo != nil {
		q = q.Where("expenses.date <= ?", f.DateTo.Format(domain.DateLayout))
	}
	return q
}

// lockCategory loads the category inside tx, taking a row lock on Postgres.
func lockCategory(tx *gorm.DB, id uint) (*categoryRow, error) {
	q := tx
	if tx.Dialector.Name() == dialectPostgres {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	var cat categoryRow
	if err := q.First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func monthRange(year int, month time.Month) (string, string) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start.Format(domain.DateLayout), start.AddDate(0, 1, 0).Format(domain.DateLayout)
}

func toDomainExpenses(rows []expenseRow) []domain.Expense {
	out := make([]domain.Expense, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

func expenseErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrExpenseNotFound
	case errors.Is(err, domain.ErrCategoryNotFound), errors.Is(err, domain.ErrDuplicateExpense):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

package sqlstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

type userRow struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:80;not null;uniqueIndex"`
	Email        string    `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	FirstName    string    `gorm:"size:50;not null"`
	LastName     string    `gorm:"size:50;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	IsActive     bool      `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		CreatedAt:    r.CreatedAt,
		IsActive:     r.IsActive,
	}
}

type categoryRow struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:50;not null;uniqueIndex"`
	Description string    `gorm:"size:200"`
	Color       string    `gorm:"size:7;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (categoryRow) TableName() string { return "categories" }

func (r *categoryRow) toDomain() *domain.Category {
	return &domain.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		CreatedAt:   r.CreatedAt,
	}
}

// expenseRow stores Date as YYYY-MM-DD text so range filters and month
// grouping are plain string operations on every dialect.
type expenseRow struct {
	ID             uint            `gorm:"primaryKey"`
	Title          string          `gorm:"size:100;not null"`
	Description    string          `gorm:"type:text"`
	Amount         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Date           string          `gorm:"type:varchar(10);not null;index:idx_expenses_user_date,priority:2"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
	UserID         uint            `gorm:"not null;index:idx_expenses_user_date,priority:1;index:idx_expenses_user_category,priority:1;uniqueIndex:idx_expenses_user_idempotency,priority:1"`
	CategoryID     uint            `gorm:"not null;index:idx_expenses_user_category,priority:2"`
	IdempotencyKey *string         `gorm:"size:128;uniqueIndex:idx_expenses_user_idempotency,priority:2"`

	User     *userRow     `gorm:"constraint:OnDelete:CASCADE"`
	Category *categoryRow `gorm:"constraint:OnDelete:RESTRICT"`
}

func (expenseRow) TableName() string { return "expenses" }

func newExpenseRow(e *domain.Expense) *expenseRow {
	row := &expenseRow{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.Format(domain.DateLayout),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
	}
	if e.IdempotencyKey != "" {
		key := e.IdempotencyKey
		row.IdempotencyKey = &key
	}
	return row
}

func (r *expenseRow) toDomain() domain.Expense {
	date, _ := time.Parse(domain.DateLayout, r.Date)
	e := domain.Expense{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount.Round(2),
		Date:        date,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
	}
	if r.IdempotencyKey != nil {
		e.IdempotencyKey = *r.IdempotencyKey
	}
	if r.Category != nil && r.Category.ID != 0 {
		e.Category = r.Category.toDomain()
	}
	return e
}

type sessionRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"not null;index"`
	Remember  bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`

	User *userRow `gorm:"constraint:OnDelete:CASCADE"`
}

func (sessionRow) TableName() string { return "sessions" }

func (r *sessionRow) toDomain() *domain.Session {
	return &domain.Session{
		ID:        r.ID,
		UserID:    r.UserID,
		Remember:  r.Remember,
		CreatedAt: r.CreatedAt,
		ExpiresAt: r.ExpiresAt,
	}
}

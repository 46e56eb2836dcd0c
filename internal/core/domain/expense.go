package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// MaxAmount is the largest amount a decimal(10,2) column accepts.
var MaxAmount = decimal.RequireFromString("999999.99")

// Expense is a single spending record owned by a user.
type Expense struct {
	ID             uint
	Title          string
	Description    string
	Amount         decimal.Decimal
	Date           time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	UserID         uint
	CategoryID     uint
	IdempotencyKey string

	// Category is filled in by queries that join the category row.
	Category *Category
}

// CategoryName returns the joined category name, or "" when not loaded.
func (e *Expense) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return e.Category.Name
}

// CategorySummary is one row of a monthly breakdown.
type CategorySummary struct {
	Category string
	Total    decimal.Decimal
	Count    int64
}

// MonthSummary is one row of a yearly breakdown. Month is 1-12.
type MonthSummary struct {
	Month int
	Total decimal.Decimal
	Count int64
}

// CategoryTotal is lifetime spend for one category.
type CategoryTotal struct {
	Category string
	Color    string
	Total    decimal.Decimal
	Count    int64
}

const NoTopCategory = "None"

// SummaryStats backs the dashboard header and GET /api/stats/summary.
type SummaryStats struct {
	MonthlyTotal   decimal.Decimal
	TotalExpenses  int64
	AverageExpense decimal.Decimal
	TopCategory    string
	CurrentMonth   string
}

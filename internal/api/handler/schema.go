package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

// flexString accepts a JSON string, number, boolean or null and keeps its
// textual form, so validation can report on what the client actually sent.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*f = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
	case string(b) == "true" || string(b) == "false":
		*f = flexString(b)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*f = flexString(n.String())
	}
	return nil
}

func (f flexString) truthy() bool {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "", "false", "0", "off", "no":
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type registerRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	FirstName       string `json:"first_name" form:"first_name"`
	LastName        string `json:"last_name" form:"last_name"`
}

type loginRequest struct {
	Username string     `json:"username" form:"username"`
	Password string     `json:"password" form:"password"`
	Remember flexString `json:"remember" form:"remember"`
}

type expenseRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Amount      flexString `json:"amount"`
	CategoryID  flexString `json:"category_id"`
	Date        string     `json:"date"`
}

func (r expenseRequest) toInput(idempotencyKey string) ports.ExpenseInput {
	return ports.ExpenseInput{
		Title:          r.Title,
		Description:    r.Description,
		Amount:         string(r.Amount),
		CategoryID:     string(r.CategoryID),
		Date:           r.Date,
		IdempotencyKey: idempotencyKey,
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"max=50"`
	Description string `json:"description" validate:"max=200"`
	Color       string `json:"color" validate:"omitempty,hexcolor,max=7"`
}

type monthlyQuery struct {
	Year  int `query:"year" validate:"omitempty,gte=1900,lte=9999"`
	Month int `query:"month" validate:"omitempty,gte=1,lte=12"`
}

type yearlyQuery struct {
	Year int `query:"year" validate:"omitempty,gte=1900,lte=9999"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type userResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

type authResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	User    *userResponse `json:"user,omitempty"`
	Errors  []string      `json:"errors,omitempty"`
}

type categoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

type expenseResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Amount      float64           `json:"amount"`
	Date        string            `json:"date"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	UserID      uint              `json:"user_id"`
	CategoryID  uint              `json:"category_id"`
	Category    *categoryResponse `json:"category"`
}

type paginationResponse struct {
	Page    int   `json:"page"`
	Pages   int   `json:"pages"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
	HasPrev bool  `json:"has_prev"`
}

type expenseListResponse struct {
	Expenses   []expenseResponse  `json:"expenses"`
	Pagination paginationResponse `json:"pagination"`
}

type expenseEnvelope struct {
	Message string          `json:"message"`
	Expense expenseResponse `json:"expense"`
}

type categoryListResponse struct {
	Categories []categoryResponse `json:"categories"`
}

type categoryEnvelope struct {
	Message  string           `json:"message"`
	Category categoryResponse `json:"category"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type csvResponse struct {
	CSVData  string `json:"csv_data"`
	Filename string `json:"filename"`
}

type summaryResponse struct {
	MonthlyTotal   float64 `json:"monthly_total"`
	TotalExpenses  int64   `json:"total_expenses"`
	AverageExpense float64 `json:"average_expense"`
	TopCategory    string  `json:"top_category"`
	CurrentMonth   string  `json:"current_month"`
}

type categorySummaryResponse struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

type monthlySummaryResponse struct {
	Year       int                       `json:"year"`
	Month      int                       `json:"month"`
	Categories []categorySummaryResponse `json:"categories"`
}

type monthSummaryResponse struct {
	Month int     `json:"month"`
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

type yearlySummaryResponse struct {
	Year   int                    `json:"year"`
	Months []monthSummaryResponse `json:"months"`
}

// ---------------------------------------------------------------------------
// Mappers
// ---------------------------------------------------------------------------

func toUserResponse(u *domain.User) *userResponse {
	return &userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		CreatedAt:   c.CreatedAt,
	}
}

func toExpenseResponse(e *domain.Expense) expenseResponse {
	out := expenseResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		Date:        e.Date.Format(domain.DateLayout),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		UserID:      e.UserID,
		CategoryID:  e.CategoryID,
	}
	if e.Category != nil {
		cat := toCategoryResponse(e.Category)
		out.Category = &cat
	}
	return out
}

func toExpenseResponses(items []domain.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(items))
	for i := range items {
		out = append(out, toExpenseResponse(&items[i]))
	}
	return out
}

func toCategoryResponses(items []domain.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(items))
	for i := range items {
		out = append(out, toCategoryResponse(&items[i]))
	}
	return out
}

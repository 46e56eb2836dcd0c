package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/metrics"
	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry POST /api/expenses safely.
const HeaderIdempotencyKey = "Idempotency-Key"

type ExpenseHandler struct {
	expenseService ports.ExpenseService
}

func NewExpenseHandler(expenseService ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// List returns the caller's expenses, filtered and paginated.
//
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        per_page     query     int     false  "Page size (default 10, max 100)"
// @Param        category_id  query     int     false  "Category filter"
// @Param        search       query     string  false  "Substring of title or description"
// @Param        start_date   query     string  false  "Inclusive start date (YYYY-MM-DD)"
// @Param        end_date     query     string  false  "Inclusive end date (YYYY-MM-DD)"
// @Success      200          {object}  expenseListResponse
// @Failure      400          {object}  map[string]string
// @Failure      401          {object}  map[string][]string
// @Router       /api/expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	page, err := h.expenseService.List(c.Request().Context(), ports.ListExpensesInput{
		UserID:     user.ID,
		Page:       queryInt(c, "page"),
		PerPage:    queryInt(c, "per_page"),
		CategoryID: uint(max(queryInt(c, "category_id"), 0)),
		Search:     c.QueryParam("search"),
		StartDate:  c.QueryParam("start_date"),
		EndDate:    c.QueryParam("end_date"),
	})
	if err != nil {
		return singleError(c, err)
	}

	return c.JSON(http.StatusOK, expenseListResponse{
		Expenses: toExpenseResponses(page.Items),
		Pagination: paginationResponse{
			Page:    page.Page,
			Pages:   page.Pages,
			PerPage: page.PerPage,
			Total:   page.Total,
			HasNext: page.HasNext,
			HasPrev: page.HasPrev,
		},
	})
}

// Create records a new expense. A repeated Idempotency-Key returns the
// original expense with 200 instead of creating a second one.
//
// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string          false  "Client-generated key for safe retries"
// @Param        body             body      expenseRequest  true   "Expense fields"
// @Success      201              {object}  expenseEnvelope
// @Success      200              {object}  expenseEnvelope  "Idempotent replay"
// @Failure      400              {object}  map[string][]string
// @Failure      401              {object}  map[string][]string
// @Router       /api/expenses [post]
func (h *ExpenseHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	expense, replayed, err := h.expenseService.Create(c.Request().Context(), user.ID, req.toInput(key))
	if err != nil {
		return err
	}

	metrics.ExpensesCreatedTotal.WithLabelValues(strconv.FormatBool(replayed)).Inc()

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	return c.JSON(status, expenseEnvelope{
		Message: "Expense created successfully",
		Expense: toExpenseResponse(expense),
	})
}

// Update replaces the fields of one of the caller's expenses.
//
// @Summary      Update an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id    path      int             true  "Expense ID"
// @Param        body  body      expenseRequest  true  "Expense fields"
// @Success      200   {object}  expenseEnvelope
// @Failure      400   {object}  map[string][]string
// @Failure      404   {object}  map[string]string
// @Router       /api/expenses/{id} [put]
func (h *ExpenseHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := expenseID(c)
	if err != nil {
		return err
	}

	var req expenseRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	expense, err := h.expenseService.Update(c.Request().Context(), user.ID, id, req.toInput(""))
	if err != nil {
		return err
	}

	metrics.ExpensesUpdatedTotal.Inc()
	return c.JSON(http.StatusOK, expenseEnvelope{
		Message: "Expense updated successfully",
		Expense: toExpenseResponse(expense),
	})
}

// Delete removes one of the caller's expenses.
//
// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id   path      int  true  "Expense ID"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := expenseID(c)
	if err != nil {
		return err
	}

	if err := h.expenseService.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}

	metrics.ExpensesDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Expense deleted successfully"})
}

// queryInt reads an integer query parameter, treating absent or malformed
// values as 0 so the service applies its default.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// expenseID parses the :id path parameter. A value that cannot name any
// expense is reported the same way as one owned by someone else.
func expenseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.ErrExpenseNotFound
	}
	return uint(id), nil
}

// singleError renders a one-message validation failure as {"error": msg},
// the shape used by the filter and category endpoints. Anything else goes to
// the central error handler.
func singleError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Errors) == 1 && verr.Err == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Errors[0]})
	}
	return err
}

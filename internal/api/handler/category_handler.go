package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/spendwise/expense-tracker/internal/api/metrics"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

type CategoryHandler struct {
	categoryService ports.CategoryService
}

func NewCategoryHandler(categoryService ports.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns every category, ordered by name.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  categoryListResponse
// @Failure      401  {object}  map[string][]string
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categoryService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryListResponse{Categories: toCategoryResponses(categories)})
}

// Create adds a category shared by all users.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        body  body      categoryRequest  true  "Category fields"
// @Success      201   {object}  categoryEnvelope
// @Failure      400   {object}  map[string]string
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Color = strings.TrimSpace(req.Color)
	if err := c.Validate(&req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), user.ID, ports.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		return singleError(c, err)
	}

	metrics.CategoriesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, categoryEnvelope{
		Message:  "Category created successfully",
		Category: toCategoryResponse(category),
	})
}

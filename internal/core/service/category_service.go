package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

const MsgCategoryNameRequired = "Category name is required"

type CategoryService struct {
	repo     ports.CategoryRepository
	activity *activityRecorder
	logger   zerolog.Logger
}

func NewCategoryService(repo ports.CategoryRepository, activity ports.ActivityLog, logger zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, activity: newActivityRecorder(activity, logger), logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

// Create adds a global category. Names are unique across all users.
func (s *CategoryService) Create(ctx context.Context, userID uint, in ports.CategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError(MsgCategoryNameRequired)
	}

	if _, err := s.repo.FindByName(ctx, name); err == nil {
		return nil, domain.ErrCategoryExists
	} else if !errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, fmt.Errorf("create category: %w", err)
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = domain.DefaultCategoryColor
	}
	category := &domain.Category{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       color,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrCategoryExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.activity.record(ctx, userID, domain.ActionCategoryCreated, category.ID)
	s.logger.Info().Uint("category_id", category.ID).Str("name", name).Msg("category created")
	return category, nil
}

func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed categories: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("existing", n).Msg("categories already present, skipping seed")
		return 0, nil
	}

	now := time.Now().UTC()
	for _, c := range domain.DefaultCategories {
		c.CreatedAt = now
		if err := s.repo.Create(ctx, &c); err != nil {
			return 0, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
	}
	s.logger.Info().Int("count", len(domain.DefaultCategories)).Msg("default categories seeded")
	return len(domain.DefaultCategories), nil
}

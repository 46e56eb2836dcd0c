package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users     map[uint]*domain.User
	nextID    uint
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uint]*domain.User), nextID: 1}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	copy.ID = r.nextID
	r.nextID++
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == login || u.Email == login {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) EmailTaken(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

type stubSessionStore struct {
	sessions map[string]*domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session *domain.Session) error {
	copy := *session
	s.sessions[session.ID] = &copy
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		copy := *sess
		return &copy, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *stubSessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Activity
// ---------------------------------------------------------------------------

type stubActivity struct {
	mu     sync.Mutex
	events []domain.ActivityEvent
	err    error
}

func (a *stubActivity) Record(_ context.Context, ev domain.ActivityEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return a.err
}

func (a *stubActivity) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type stubCategoryRepo struct {
	categories map[uint]*domain.Category
	nextID     uint
}

func newStubCategoryRepo(names ...string) *stubCategoryRepo {
	r := &stubCategoryRepo{categories: make(map[uint]*domain.Category), nextID: 1}
	for _, n := range names {
		_ = r.Create(context.Background(), &domain.Category{Name: n, Color: domain.DefaultCategoryColor})
	}
	return r
}

func (r *stubCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uint) (*domain.Category, error) {
	if c, ok := r.categories[id]; ok {
		copy := *c
		return &copy, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			copy := *c
			return &copy, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return domain.ErrCategoryExists
		}
	}
	c.ID = r.nextID
	r.nextID++
	copy := *c
	r.categories[c.ID] = &copy
	return nil
}

func (r *stubCategoryRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.categories)), nil
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

type stubExpenseRepo struct {
	expenses   map[uint]*domain.Expense
	categories *stubCategoryRepo
	nextID     uint
	createErr  error

	lastFilter ports.ExpenseFilter
	stats      ports.ExpenseStats
}

func newStubExpenseRepo(categories *stubCategoryRepo) *stubExpenseRepo {
	return &stubExpenseRepo{expenses: make(map[uint]*domain.Expense), categories: categories, nextID: 1}
}

func (r *stubExpenseRepo) withCategory(e *domain.Expense) domain.Expense {
	out := *e
	if c, err := r.categories.FindByID(context.Background(), e.CategoryID); err == nil {
		out.Category = c
	}
	return out
}

func (r *stubExpenseRepo) Create(_ context.Context, e *domain.Expense) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, err := r.categories.FindByID(context.Background(), e.CategoryID); err != nil {
		return domain.ErrCategoryNotFound
	}
	if e.IdempotencyKey != "" {
		for _, existing := range r.expenses {
			if existing.UserID == e.UserID && existing.IdempotencyKey == e.IdempotencyKey {
				return domain.ErrDuplicateExpense
			}
		}
	}
	e.ID = r.nextID
	r.nextID++
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	copy := *e
	r.expenses[e.ID] = &copy
	*e = r.withCategory(e)
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, userID, id uint) (*domain.Expense, error) {
	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	out := r.withCategory(e)
	return &out, nil
}

func (r *stubExpenseRepo) FindByIdempotencyKey(_ context.Context, userID uint, key string) (*domain.Expense, error) {
	for _, e := range r.expenses {
		if e.UserID == userID && e.IdempotencyKey == key {
			out := r.withCategory(e)
			return &out, nil
		}
	}
	return nil, domain.ErrExpenseNotFound
}

func (r *stubExpenseRepo) Update(ctx context.Context, userID, id uint, fn func(*domain.Expense) error) (*domain.Expense, error) {
	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	work := *e
	if err := fn(&work); err != nil {
		return nil, err
	}
	if _, err := r.categories.FindByID(ctx, work.CategoryID); err != nil {
		return nil, domain.ErrCategoryNotFound
	}
	work.UpdatedAt = time.Now().UTC()
	r.expenses[id] = &work
	out := r.withCategory(&work)
	return &out, nil
}

func (r *stubExpenseRepo) Delete(_ context.Context, userID, id uint) error {
	e, ok := r.expenses[id]
	if !ok || e.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *stubExpenseRepo) owned(userID uint) []domain.Expense {
	var out []domain.Expense
	for _, e := range r.expenses {
		if e.UserID == userID {
			out = append(out, r.withCategory(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *stubExpenseRepo) List(_ context.Context, f ports.ExpenseFilter) ([]domain.Expense, int64, error) {
	r.lastFilter = f
	all := r.owned(f.UserID)
	total := int64(len(all))
	start := (f.Page - 1) * f.PerPage
	if start >= len(all) {
		return []domain.Expense{}, total, nil
	}
	end := start + f.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubExpenseRepo) ListAll(_ context.Context, userID uint) ([]domain.Expense, error) {
	return r.owned(userID), nil
}

func (r *stubExpenseRepo) Recent(_ context.Context, userID uint, limit int) ([]domain.Expense, error) {
	all := r.owned(userID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *stubExpenseRepo) MonthlySummary(_ context.Context, userID uint, year int, month time.Month) ([]domain.CategorySummary, error) {
	return nil, nil
}

func (r *stubExpenseRepo) YearlySummary(_ context.Context, userID uint, year int) ([]domain.MonthSummary, error) {
	return nil, nil
}

func (r *stubExpenseRepo) TopCategories(_ context.Context, userID uint, limit int) ([]domain.CategoryTotal, error) {
	return []domain.CategoryTotal{{Category: "Food", Total: decimal.NewFromInt(int64(limit))}}, nil
}

func (r *stubExpenseRepo) Stats(_ context.Context, userID uint, year int, month time.Month) (*ports.ExpenseStats, error) {
	out := r.stats
	return &out, nil
}

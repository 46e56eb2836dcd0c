package sqlstore

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
)

// StoreTestSuite runs every repository against a fresh in-memory database.
type StoreTestSuite struct {
	suite.Suite
	ctx        context.Context
	db         *gorm.DB
	users      ports.UserRepository
	categories ports.CategoryRepository
	expenses   ports.ExpenseRepository
	sessions   ports.SessionStore

	alice, bob *domain.User
	food, fun  *domain.Category
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	suite.ctx = context.Background()
	db, err := Open(suite.ctx, Config{URL: "sqlite://:memory:"})
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.users = NewUserRepository(db)
	suite.categories = NewCategoryRepository(db)
	suite.expenses = NewExpenseRepository(db)
	suite.sessions = NewSessionStore(db)

	suite.alice = suite.createUser("alice", "alice@example.com")
	suite.bob = suite.createUser("bob", "bob@example.com")
	suite.food = suite.createCategory("Food")
	suite.fun = suite.createCategory("Entertainment")
}

func (suite *StoreTestSuite) TearDownTest() {
	if suite.db != nil {
		_ = Close(suite.db)
	}
}

func (suite *StoreTestSuite) createUser(username, email string) *domain.User {
	u, err := suite.users.Create(suite.ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "First",
		LastName:     "Last",
		CreatedAt:    time.Now().UTC(),
		IsActive:     true,
	})
	require.NoError(suite.T(), err)
	return u
}

func (suite *StoreTestSuite) createCategory(name string) *domain.Category {
	c := &domain.Category{Name: name, Color: "#123456", CreatedAt: time.Now().UTC()}
	require.NoError(suite.T(), suite.categories.Create(suite.ctx, c))
	return c
}

func (suite *StoreTestSuite) addExpense(user *domain.User, cat *domain.Category, title, amount, date string) *domain.Expense {
	d, err := time.Parse(domain.DateLayout, date)
	require.NoError(suite.T(), err)
	e := &domain.Expense{
		Title:      title,
		Amount:     decimal.RequireFromString(amount),
		Date:       d,
		UserID:     user.ID,
		CategoryID: cat.ID,
	}
	require.NoError(suite.T(), suite.expenses.Create(suite.ctx, e))
	return e
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (suite *StoreTestSuite) TestUserLookup() {
	byName, err := suite.users.FindByLogin(suite.ctx, "alice")
	require.NoError(suite.T(), err)
	byEmail, err := suite.users.FindByLogin(suite.ctx, "alice@example.com")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), byName.ID, byEmail.ID)
	assert.True(suite.T(), byName.IsActive)

	_, err = suite.users.FindByLogin(suite.ctx, "nobody")
	assert.ErrorIs(suite.T(), err, domain.ErrUserNotFound)

	taken, err := suite.users.UsernameTaken(suite.ctx, "bob")
	require.NoError(suite.T(), err)
	assert.True(suite.T(), taken)
	taken, err = suite.users.EmailTaken(suite.ctx, "carol@example.com")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), taken)
}

func (suite *StoreTestSuite) TestUserDuplicate() {
	_, err := suite.users.Create(suite.ctx, &domain.User{
		Username: "alice", Email: "other@example.com", PasswordHash: "x",
		FirstName: "A", LastName: "B", CreatedAt: time.Now().UTC(), IsActive: true,
	})
	assert.ErrorIs(suite.T(), err, domain.ErrUserExists)
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

func (suite *StoreTestSuite) TestCategories() {
	list, err := suite.categories.List(suite.ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 2)
	assert.Equal(suite.T(), "Entertainment", list[0].Name, "categories are ordered by name")

	err = suite.categories.Create(suite.ctx, &domain.Category{Name: "Food", Color: "#000000", CreatedAt: time.Now()})
	assert.ErrorIs(suite.T(), err, domain.ErrCategoryExists)

	n, err := suite.categories.Count(suite.ctx)
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, n)

	_, err = suite.categories.FindByID(suite.ctx, 999)
	assert.ErrorIs(suite.T(), err, domain.ErrCategoryNotFound)
}

// ---------------------------------------------------------------------------
// Expenses
// ---------------------------------------------------------------------------

func (suite *StoreTestSuite) TestExpenseCreateLoadsCategory() {
	e := suite.addExpense(suite.alice, suite.food, "Lunch", "12.34", "2024-03-01")
	assert.NotZero(suite.T(), e.ID)
	require.NotNil(suite.T(), e.Category)
	assert.Equal(suite.T(), "Food", e.Category.Name)

	got, err := suite.expenses.FindByID(suite.ctx, suite.alice.ID, e.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "12.34", got.Amount.StringFixed(2))
	assert.Equal(suite.T(), "2024-03-01", got.Date.Format(domain.DateLayout))
	assert.Equal(suite.T(), "Food", got.CategoryName())
}

func (suite *StoreTestSuite) TestExpenseUnknownCategory() {
	err := suite.expenses.Create(suite.ctx, &domain.Expense{
		Title: "x", Amount: decimal.NewFromInt(1), Date: time.Now(), UserID: suite.alice.ID, CategoryID: 404,
	})
	assert.ErrorIs(suite.T(), err, domain.ErrCategoryNotFound)
}

func (suite *StoreTestSuite) TestExpenseOwnership() {
	e := suite.addExpense(suite.alice, suite.food, "Lunch", "10", "2024-03-01")

	_, err := suite.expenses.FindByID(suite.ctx, suite.bob.ID, e.ID)
	assert.ErrorIs(suite.T(), err, domain.ErrExpenseNotFound)

	_, err = suite.expenses.Update(suite.ctx, suite.bob.ID, e.ID, func(x *domain.Expense) error {
		x.Title = "stolen"
		return nil
	})
	assert.ErrorIs(suite.T(), err, domain.ErrExpenseNotFound)

	assert.ErrorIs(suite.T(), suite.expenses.Delete(suite.ctx, suite.bob.ID, e.ID), domain.ErrExpenseNotFound)

	got, err := suite.expenses.FindByID(suite.ctx, suite.alice.ID, e.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Lunch", got.Title)
}

func (suite *StoreTestSuite) TestExpenseUpdate() {
	e := suite.addExpense(suite.alice, suite.food, "Lunch", "10", "2024-03-01")

	updated, err := suite.expenses.Update(suite.ctx, suite.alice.ID, e.ID, func(x *domain.Expense) error {
		x.Title = "Cinema"
		x.Amount = decimal.RequireFromString("25.50")
		x.CategoryID = suite.fun.ID
		return nil
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Cinema", updated.Title)
	assert.Equal(suite.T(), "Entertainment", updated.CategoryName())
	assert.Equal(suite.T(), "25.50", updated.Amount.StringFixed(2))
	assert.Equal(suite.T(), "2024-03-01", updated.Date.Format(domain.DateLayout))

	_, err = suite.expenses.Update(suite.ctx, suite.alice.ID, e.ID, func(x *domain.Expense) error {
		x.CategoryID = 404
		return nil
	})
	assert.ErrorIs(suite.T(), err, domain.ErrCategoryNotFound)

	got, _ := suite.expenses.FindByID(suite.ctx, suite.alice.ID, e.ID)
	assert.Equal(suite.T(), suite.fun.ID, got.CategoryID, "failed update must roll back")
}

func (suite *StoreTestSuite) TestExpenseDelete() {
	e := suite.addExpense(suite.alice, suite.food, "Lunch", "10", "2024-03-01")
	require.NoError(suite.T(), suite.expenses.Delete(suite.ctx, suite.alice.ID, e.ID))
	_, err := suite.expenses.FindByID(suite.ctx, suite.alice.ID, e.ID)
	assert.ErrorIs(suite.T(), err, domain.ErrExpenseNotFound)
}

func (suite *StoreTestSuite) TestExpenseIdempotencyKey() {
	key := "abc"
	e := &domain.Expense{Title: "x", Amount: decimal.NewFromInt(1), Date: time.Now(), UserID: suite.alice.ID, CategoryID: suite.food.ID, IdempotencyKey: key}
	require.NoError(suite.T(), suite.expenses.Create(suite.ctx, e))

	dup := *e
	dup.ID = 0
	assert.ErrorIs(suite.T(), suite.expenses.Create(suite.ctx, &dup), domain.ErrDuplicateExpense)

	found, err := suite.expenses.FindByIdempotencyKey(suite.ctx, suite.alice.ID, key)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), e.ID, found.ID)

	_, err = suite.expenses.FindByIdempotencyKey(suite.ctx, suite.bob.ID, key)
	assert.ErrorIs(suite.T(), err, domain.ErrExpenseNotFound)

	other := *e
	other.ID = 0
	other.UserID = suite.bob.ID
	assert.NoError(suite.T(), suite.expenses.Create(suite.ctx, &other), "keys are scoped per user")
}

func (suite *StoreTestSuite) TestListFiltersAndOrdering() {
	suite.addExpense(suite.alice, suite.food, "Groceries", "30", "2024-01-10")
	suite.addExpense(suite.alice, suite.fun, "Movie night", "15", "2024-01-20")
	suite.addExpense(suite.alice, suite.food, "groceries again", "20", "2024-02-05")
	suite.addExpense(suite.bob, suite.food, "Groceries", "99", "2024-01-15")

	all, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, Page: 1, PerPage: 10})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 3, total)
	require.Len(suite.T(), all, 3)
	assert.Equal(suite.T(), "groceries again", all[0].Title, "newest date first")
	assert.Equal(suite.T(), "Groceries", all[2].Title)

	byCat, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, CategoryID: suite.fun.ID, Page: 1, PerPage: 10})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)
	assert.Equal(suite.T(), "Movie night", byCat[0].Title)

	search, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, Search: "Groceries", Page: 1, PerPage: 10})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total, "search is case-sensitive")
	assert.Equal(suite.T(), "Groceries", search[0].Title)

	from := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	ranged, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, DateFrom: &from, DateTo: &to, Page: 1, PerPage: 10})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 2, total, "date bounds are inclusive")
	assert.Len(suite.T(), ranged, 2)

	page2, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, Page: 2, PerPage: 2})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 3, total)
	require.Len(suite.T(), page2, 1)
	assert.Equal(suite.T(), "Groceries", page2[0].Title)

	beyond, _, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, Page: 5, PerPage: 2})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), beyond)

	huge, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, Page: math.MaxInt, PerPage: 10})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 3, total)
	assert.Empty(suite.T(), huge)
}

func TestPageOffset(t *testing.T) {
	cases := []struct {
		page, perPage int
		want          int
		ok            bool
	}{
		{1, 10, 0, true},
		{3, 20, 40, true},
		{0, 10, 0, true},
		{math.MaxInt, 10, 0, false},
		{math.MaxInt/10 + 2, 10, 0, false},
	}
	for _, tc := range cases {
		got, ok := pageOffset(tc.page, tc.perPage)
		assert.Equal(t, tc.ok, ok, "page=%d per_page=%d", tc.page, tc.perPage)
		assert.Equal(t, tc.want, got, "page=%d per_page=%d", tc.page, tc.perPage)
	}
}

func (suite *StoreTestSuite) TestSearchMatchesDescription() {
	d, _ := time.Parse(domain.DateLayout, "2024-01-01")
	require.NoError(suite.T(), suite.expenses.Create(suite.ctx, &domain.Expense{
		Title: "Dinner", Description: "sushi with friends", Amount: decimal.NewFromInt(40),
		Date: d, UserID: suite.alice.ID, CategoryID: suite.food.ID,
	}))
	suite.addExpense(suite.alice, suite.food, "Lunch", "10", "2024-01-02")

	found, total, err := suite.expenses.List(suite.ctx, ports.ExpenseFilter{UserID: suite.alice.ID, Search: "sushi", Page: 1, PerPage: 10})
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, total)
	assert.Equal(suite.T(), "Dinner", found[0].Title)
}

func (suite *StoreTestSuite) TestSummaries() {
	suite.addExpense(suite.alice, suite.food, "a", "10.10", "2024-03-01")
	suite.addExpense(suite.alice, suite.food, "b", "5.20", "2024-03-31")
	suite.addExpense(suite.alice, suite.fun, "c", "7", "2024-03-15")
	suite.addExpense(suite.alice, suite.fun, "d", "100.30", "2024-04-01")
	suite.addExpense(suite.bob, suite.food, "e", "999", "2024-03-10")

	monthly, err := suite.expenses.MonthlySummary(suite.ctx, suite.alice.ID, 2024, time.March)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), monthly, 2)
	assert.Equal(suite.T(), "Entertainment", monthly[0].Category)
	assert.Equal(suite.T(), "7.00", monthly[0].Total.StringFixed(2))
	assert.Equal(suite.T(), "Food", monthly[1].Category)
	assert.Equal(suite.T(), "15.30", monthly[1].Total.StringFixed(2))
	assert.EqualValues(suite.T(), 2, monthly[1].Count)

	yearly, err := suite.expenses.YearlySummary(suite.ctx, suite.alice.ID, 2024)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), yearly, 2)
	assert.Equal(suite.T(), 3, yearly[0].Month)
	assert.Equal(suite.T(), "22.30", yearly[0].Total.StringFixed(2))
	assert.Equal(suite.T(), 4, yearly[1].Month)

	top, err := suite.expenses.TopCategories(suite.ctx, suite.alice.ID, 10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), top, 2)
	assert.Equal(suite.T(), "Entertainment", top[0].Category)
	assert.Equal(suite.T(), "#123456", top[0].Color)

	stats, err := suite.expenses.Stats(suite.ctx, suite.alice.ID, 2024, time.March)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "22.30", stats.MonthlyTotal.StringFixed(2))
	assert.EqualValues(suite.T(), 4, stats.TotalExpenses)
	assert.Equal(suite.T(), "30.65", stats.AverageExpense.StringFixed(2))
	assert.Equal(suite.T(), "Food", stats.TopCategory)
}

func (suite *StoreTestSuite) TestStatsTieBreakAndEmpty() {
	suite.addExpense(suite.alice, suite.food, "a", "10", "2024-03-01")
	suite.addExpense(suite.alice, suite.fun, "b", "10", "2024-03-02")

	stats, err := suite.expenses.Stats(suite.ctx, suite.alice.ID, 2024, time.March)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Entertainment", stats.TopCategory, "ties go to the smallest name")

	empty, err := suite.expenses.Stats(suite.ctx, suite.bob.ID, 2024, time.March)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), empty.MonthlyTotal.IsZero())
	assert.EqualValues(suite.T(), 0, empty.TotalExpenses)
	assert.Equal(suite.T(), "", empty.TopCategory)
}

func (suite *StoreTestSuite) TestListAllAndRecent() {
	suite.addExpense(suite.alice, suite.food, "old", "1", "2023-12-31")
	suite.addExpense(suite.alice, suite.food, "new", "2", "2024-01-01")

	all, err := suite.expenses.ListAll(suite.ctx, suite.alice.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), all, 2)
	assert.Equal(suite.T(), "new", all[0].Title)

	recent, err := suite.expenses.Recent(suite.ctx, suite.alice.ID, 1)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), recent, 1)
	assert.Equal(suite.T(), "new", recent[0].Title, "last created first")
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func (suite *StoreTestSuite) TestSessions() {
	now := time.Now().UTC()
	live := &domain.Session{ID: "live", UserID: suite.alice.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	dead := &domain.Session{ID: "dead", UserID: suite.alice.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(suite.T(), suite.sessions.Create(suite.ctx, live))
	require.NoError(suite.T(), suite.sessions.Create(suite.ctx, dead))

	got, err := suite.sessions.Get(suite.ctx, "live")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.alice.ID, got.UserID)

	_, err = suite.sessions.Get(suite.ctx, "dead")
	assert.ErrorIs(suite.T(), err, domain.ErrSessionNotFound)

	n, err := suite.sessions.DeleteExpired(suite.ctx, now)
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, n)

	require.NoError(suite.T(), suite.sessions.Delete(suite.ctx, "live"))
	_, err = suite.sessions.Get(suite.ctx, "live")
	assert.ErrorIs(suite.T(), err, domain.ErrSessionNotFound)
}

func TestDialectorFor(t *testing.T) {
	_, isSQLite, err := dialectorFor("")
	require.NoError(t, err)
	assert.True(t, isSQLite)

	_, isSQLite, err = dialectorFor("postgres://u:p@localhost:5432/db")
	require.NoError(t, err)
	assert.False(t, isSQLite)

	_, _, err = dialectorFor("mysql://nope")
	assert.Error(t, err)
}

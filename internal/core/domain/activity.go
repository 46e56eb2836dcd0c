package domain

import "time"

const (
	ActionUserRegistered  = "user.registered"
	ActionUserLogin       = "user.login"
	ActionExpenseCreated  = "expense.created"
	ActionExpenseUpdated  = "expense.updated"
	ActionExpenseDeleted  = "expense.deleted"
	ActionCategoryCreated = "category.created"
)

// ActivityEvent is an audit record of a state-changing action.
type ActivityEvent struct {
	UserID    uint
	Action    string
	EntityID  uint
	Timestamp time.Time
}

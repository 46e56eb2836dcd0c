package domain

import (
	"strings"
	"time"
)

// User is an account holder. Expenses and sessions belong to exactly one user.
type User struct {
	ID           uint
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	IsActive     bool
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

package ports

import (
	"context"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

type LoginInput struct {
	Login    string
	Password string
	Remember bool
}

// AuthResult is returned by a successful register or login. Token is the
// signed value the client presents as cookie or bearer token.
type AuthResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a token into its live session and active user.
	Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/spendwise/expense-tracker/internal/core/domain"
	"github.com/spendwise/expense-tracker/internal/core/ports"
	"github.com/spendwise/expense-tracker/internal/core/validation"
)

const (
	defaultSessionTTL  = 24 * time.Hour
	defaultRememberTTL = 30 * 24 * time.Hour
)

// AuthConfig holds the token signing key and session lifetimes.
type AuthConfig struct {
	Secret      string
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

// AuthService implements registration, login and session resolution.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	activity *activityRecorder
	cfg      AuthConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	activity ports.ActivityLog,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = defaultRememberTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		activity: newActivityRecorder(activity, log),
		cfg:      cfg,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	reg := validation.RegistrationInput{
		Username:        strings.TrimSpace(in.Username),
		Email:           strings.TrimSpace(in.Email),
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
	}
	msgs, err := validation.ValidateRegistration(ctx, s.users, reg)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if len(msgs) > 0 {
		verr := domain.NewValidationError(msgs...)
		for _, m := range msgs {
			if m == validation.MsgUsernameTaken || m == validation.MsgEmailTaken {
				verr.Err = domain.ErrUserExists
			}
		}
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		CreatedAt:    s.now(),
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, &domain.ValidationError{Errors: []string{"Username or email already exists"}, Err: err}
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	result, err := s.openSession(ctx, user, false)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, user.ID, domain.ActionUserRegistered, user.ID)
	s.log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return result, nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	login := strings.TrimSpace(in.Login)
	if msgs := validation.ValidateLogin(login, in.Password); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.log.Warn().Uint("user_id", user.ID).Msg("login attempt for inactive user")
		return nil, domain.ErrInactiveUser
	}

	result, err := s.openSession(ctx, user, in.Remember)
	if err != nil {
		return nil, err
	}

	s.activity.record(ctx, user.ID, domain.ActionUserLogin, user.ID)
	s.log.Info().Uint("user_id", user.ID).Bool("remember", in.Remember).Msg("user logged in")
	return result, nil
}

// Logout revokes the session behind token. Unknown or malformed tokens are
// ignored so logging out is always safe to repeat.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if session.Expired(s.now()) || strconv.FormatUint(uint64(session.UserID), 10) != claims.Subject {
		return nil, nil, domain.ErrUnauthenticated
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrUnauthenticated
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if !user.IsActive {
		return nil, nil, domain.ErrUnauthenticated
	}
	return user, session, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, remember bool) (*ports.AuthResult, error) {
	now := s.now()
	ttl := s.cfg.SessionTTL
	if remember {
		ttl = s.cfg.RememberTTL
	}
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Remember:  remember,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{User: user, Session: session, Token: token}, nil
}

func (s *AuthService) signToken(session *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatUint(uint64(session.UserID), 10),
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.Secret))
}

func (s *AuthService) parseToken(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil || !tkn.Valid || claims.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

// Package validation holds the input rules shared by the JSON API and the
// HTML forms. Every Validate* function reports all problems in one pass.
package validation

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/spendwise/expense-tracker/internal/core/domain"
)

const (
	MsgLoginRequired      = "Username or email is required"
	MsgPasswordRequired   = "Password is required"
	MsgInvalidCredentials = "Invalid username/email or password"
	MsgLoginRequiredPage  = "Please log in to access this page."

	MsgUsernameRequired = "Username is required"
	MsgUsernameInvalid  = "Username must be 3-20 characters, start with a letter, and contain only letters, numbers, and underscores"
	MsgUsernameTaken    = "Username already exists"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgEmailTaken       = "Email already registered"
	MsgPasswordWeak     = "Password must be at least 8 characters with uppercase, lowercase, and number"
	MsgPasswordMismatch = "Passwords do not match"
	MsgFirstNameMissing = "First name is required"
	MsgFirstNameLong    = "First name must be less than 50 characters"
	MsgLastNameMissing  = "Last name is required"
	MsgLastNameLong     = "Last name must be less than 50 characters"

	MsgTitleRequired    = "Title is required"
	MsgTitleLong        = "Title must be less than 100 characters"
	MsgAmountRequired   = "Amount is required"
	MsgAmountPositive   = "Amount must be greater than 0"
	MsgAmountTooLarge   = "Amount must be less than $1,000,000"
	MsgAmountInvalid    = "Amount must be a valid number"
	MsgCategoryRequired = "Category is required"
	MsgCategoryInvalid  = "Invalid category selected"
	MsgDateInvalid      = "Invalid date format"
)

const (
	maxNameLen  = 50
	maxTitleLen = 100
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{2,19}$`)
)

// UserLookup answers the uniqueness questions asked during registration.
type UserLookup interface {
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// RegistrationInput is the raw registration payload.
type RegistrationInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword requires 8+ characters with at least one ASCII upper case
// letter, one ASCII lower case letter and one digit.
func ValidatePassword(password string) bool {
	if utf8.RuneCountInString(password) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func ValidateUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func ValidateLogin(login, password string) []string {
	var errs []string
	if strings.TrimSpace(login) == "" {
		errs = append(errs, MsgLoginRequired)
	}
	if password == "" {
		errs = append(errs, MsgPasswordRequired)
	}
	return errs
}

// ValidateRegistration checks shape, uniqueness and confirmation of a new
// account. The returned error is only set when lookup itself failed.
func ValidateRegistration(ctx context.Context, lookup UserLookup, in RegistrationInput) ([]string, error) {
	var errs []string

	username := strings.TrimSpace(in.Username)
	switch {
	case username == "":
		errs = append(errs, MsgUsernameRequired)
	case !ValidateUsername(username):
		errs = append(errs, MsgUsernameInvalid)
	default:
		taken, err := lookup.UsernameTaken(ctx, username)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, MsgUsernameTaken)
		}
	}

	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		errs = append(errs, MsgEmailRequired)
	case !ValidateEmail(email):
		errs = append(errs, MsgEmailInvalid)
	default:
		taken, err := lookup.EmailTaken(ctx, email)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = append(errs, MsgEmailTaken)
		}
	}

	switch {
	case in.Password == "":
		errs = append(errs, MsgPasswordRequired)
	case !ValidatePassword(in.Password):
		errs = append(errs, MsgPasswordWeak)
	}
	if in.Password != in.ConfirmPassword {
		errs = append(errs, MsgPasswordMismatch)
	}

	errs = append(errs, checkName(in.FirstName, MsgFirstNameMissing, MsgFirstNameLong)...)
	errs = append(errs, checkName(in.LastName, MsgLastNameMissing, MsgLastNameLong)...)

	return errs, nil
}

func checkName(name, missing, tooLong string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{missing}
	}
	if len([]rune(name)) > maxNameLen {
		return []string{tooLong}
	}
	return nil
}

// ValidateExpense checks the raw fields of an expense create or update.
// An empty date is allowed and means "today" for creates.
func ValidateExpense(title, amount, categoryID, date string) []string {
	var errs []string

	title = strings.TrimSpace(title)
	if title == "" {
		errs = append(errs, MsgTitleRequired)
	} else if len([]rune(title)) > maxTitleLen {
		errs = append(errs, MsgTitleLong)
	}

	if _, msg := ParseAmount(amount); msg != "" {
		errs = append(errs, msg)
	}

	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		errs = append(errs, MsgCategoryRequired)
	} else if _, err := strconv.ParseUint(categoryID, 10, 64); err != nil {
		errs = append(errs, MsgCategoryInvalid)
	}

	if date = strings.TrimSpace(date); date != "" {
		if _, err := ParseDate(date); err != nil {
			errs = append(errs, MsgDateInvalid)
		}
	}

	return errs
}

// ParseAmount parses and range-checks an amount, rounding it to cents.
// On failure the second result is the user-facing message.
func ParseAmount(raw string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, MsgAmountRequired
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, MsgAmountInvalid
	}
	if d.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, MsgAmountTooLarge
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, MsgAmountPositive
	}
	return d, ""
}

// ParseDate parses a strict YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(domain.DateLayout, strings.TrimSpace(raw))
}

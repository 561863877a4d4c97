package agents

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	apperrors "github.com/jrsteele09/lead-dashboard/internal/errors"
)

// Identity is the authenticated agent as returned by the backend on login.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Complete reports whether all three identity fields are present.
func (i Identity) Complete() bool {
	return i.ID != "" && i.Name != "" && i.Email != ""
}

// Empty reports whether the identity carries no fields at all.
func (i Identity) Empty() bool {
	return i.ID == "" && i.Name == "" && i.Email == ""
}

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return fmt.Errorf("%w: email and password are required", apperrors.ErrInvalidRequest)
	}
	return ValidateEmail(c.Email)
}

// Registration is submitted by the signup form.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrInvalidRequest)
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePasswordStrength(r.Password); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrInvalidRequest, err.Error())
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return fmt.Errorf("%w: invalid email address", apperrors.ErrInvalidRequest)
	}
	return nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

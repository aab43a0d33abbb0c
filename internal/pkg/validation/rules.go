package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/yigit/admission/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Mobile numbers: optional leading +, 10 to 15 digits
	MobilePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100
)

// Rules holds the registration rules that depend on configuration
type Rules struct {
	email *regexp.Regexp
}

// NewRules compiles the institutional email pattern
func NewRules(emailPattern string) (*Rules, error) {
	re, err := regexp.Compile(emailPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid email pattern: %w", err)
	}
	return &Rules{email: re}, nil
}

// Email checks that the address belongs to the accepted domain
func (r *Rules) Email(email string) error {
	if !r.email.MatchString(strings.ToLower(strings.TrimSpace(email))) {
		return apperrors.NewValidationError("email is not an accepted institutional address", "email")
	}
	return nil
}

// Password requires a minimum length with at least one letter and one digit
func (r *Rules) Password(password string) error {
	if len(password) < PasswordMinLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", PasswordMinLength), "password")
	}
	var letter, digit bool
	for _, c := range password {
		switch {
		case unicode.IsLetter(c):
			letter = true
		case unicode.IsDigit(c):
			digit = true
		}
	}
	if !letter || !digit {
		return apperrors.NewValidationError("password must contain letters and digits", "password")
	}
	return nil
}

// SingleLine rejects values carrying control characters such as line breaks
func SingleLine(field, value string) error {
	if strings.IndexFunc(value, unicode.IsControl) >= 0 {
		return apperrors.NewValidationError(field+" must not contain control characters", field)
	}
	return nil
}

// Name checks the display name length
func (r *Rules) Name(name string) error {
	if err := SingleLine("name", name); err != nil {
		return err
	}
	n := len(strings.TrimSpace(name))
	if n < NameMinLength || n > NameMaxLength {
		return apperrors.NewValidationError(fmt.Sprintf("name must be between %d and %d characters", NameMinLength, NameMaxLength), "name")
	}
	return nil
}

// Mobile checks the phone number format
func (r *Rules) Mobile(mobile string) error {
	if !MobilePattern.MatchString(strings.TrimSpace(mobile)) {
		return apperrors.NewValidationError("mobile must be 10 to 15 digits", "mobile")
	}
	return nil
}

// MissingFields returns the keys whose trimmed value is empty, in the order given
func MissingFields(fields [][2]string) []string {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}

package models

import (
	"strings"
	"time"

	"github.com/yigit/admission/internal/pkg/apperrors"
)

// Gender values accepted on a student profile
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User defines the user model based on the 'users' table.
// A student always carries a Profile; an admin never does.
type User struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Email     string          `json:"email" db:"email"`
	Password  string          `json:"-" db:"password"`
	Role      RoleType        `json:"role" db:"role"`
	Profile   *StudentProfile `json:"profile,omitempty"`
	GoogleID  *string         `json:"-" db:"google_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// StudentProfile holds the fields required only for the student role
type StudentProfile struct {
	Mobile  string    `json:"mobile" db:"mobile"`
	Address string    `json:"address" db:"address"`
	Gender  string    `json:"gender" db:"gender"`
	DOB     time.Time `json:"dob" db:"dob"`
}

// Validate checks that every student field is present.
func (p StudentProfile) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Mobile) == "" {
		missing = append(missing, "mobile")
	}
	if strings.TrimSpace(p.Address) == "" {
		missing = append(missing, "address")
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		missing = append(missing, "gender")
	}
	if p.DOB.IsZero() {
		missing = append(missing, "dob")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("student profile is incomplete", missing...)
	}
	return nil
}

// NewStudent builds a student user; the profile must be complete.
func NewStudent(name, email, passwordHash string, profile StudentProfile) (*User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || passwordHash == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", "name", "email", "password")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: passwordHash,
		Role:     RoleStudent,
		Profile:  &profile,
	}, nil
}

// NewAdmin builds an administrator user without a student profile.
func NewAdmin(name, email, passwordHash string) (*User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || passwordHash == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", "name", "email", "password")
	}
	return &User{
		Name:     strings.TrimSpace(name),
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: passwordHash,
		Role:     RoleAdmin,
	}, nil
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

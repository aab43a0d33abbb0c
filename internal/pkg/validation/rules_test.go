package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/pkg/apperrors"
)

func TestRules_Email(t *testing.T) {
	rules, err := NewRules(`^[a-z0-9._%+\-]+@college\.edu$`)
	require.NoError(t, err)

	assert.NoError(t, rules.Email("Asha@College.edu"))
	err = rules.Email("asha@gmail.com")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = NewRules("(")
	assert.Error(t, err)
}

func TestRules_Password(t *testing.T) {
	rules, err := NewRules(".*")
	require.NoError(t, err)

	assert.NoError(t, rules.Password("abcd1234"))
	assert.Error(t, rules.Password("short1"))
	assert.Error(t, rules.Password("lettersonly"))
	assert.Error(t, rules.Password("1234567890"))
}

func TestRules_MobileAndName(t *testing.T) {
	rules, err := NewRules(".*")
	require.NoError(t, err)

	assert.NoError(t, rules.Mobile("+919876543210"))
	assert.Error(t, rules.Mobile("98765"))
	assert.NoError(t, rules.Name("Asha"))
	assert.Error(t, rules.Name("A"))
}

func TestMissingFields(t *testing.T) {
	missing := MissingFields([][2]string{
		{"name", "Asha"},
		{"email", "  "},
		{"mobile", ""},
		{"address", "12 MG Road"},
	})
	assert.Equal(t, []string{"email", "mobile"}, missing)
	assert.Empty(t, MissingFields([][2]string{{"name", "x"}}))
}

func TestSingleLine(t *testing.T) {
	assert.NoError(t, SingleLine("name", "Āsha Rāo"))
	assert.ErrorIs(t, SingleLine("name", "Asha\r\nBcc: attacker@evil.com"), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, SingleLine("email", "asha@college.edu\n"), apperrors.ErrValidationFailed)

	rules, err := NewRules(`.*`)
	require.NoError(t, err)
	assert.ErrorIs(t, rules.Name("Asha\nRao"), apperrors.ErrValidationFailed)
}

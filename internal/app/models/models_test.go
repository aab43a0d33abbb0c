package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/pkg/apperrors"
)

func TestProgress_Step_AllCombinations(t *testing.T) {
	tests := []struct {
		course, personal, academic bool
		want                       int
	}{
		{false, false, false, 1},
		{false, false, true, 1},
		{false, true, false, 1},
		{false, true, true, 1},
		{true, false, false, 2},
		{true, false, true, 2},
		{true, true, false, 3},
		{true, true, true, 4},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("course=%t personal=%t academic=%t", tt.course, tt.personal, tt.academic)
		t.Run(name, func(t *testing.T) {
			p := Progress{Course: tt.course, Personal: tt.personal, Academic: tt.academic}
			assert.Equal(t, tt.want, p.Step())
		})
	}
}

func TestParseApplicationStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		st, ok := ParseApplicationStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, ApplicationStatus(s), st)
	}

	for _, s := range []string{"", "APPROVED", "accepted", " pending"} {
		_, ok := ParseApplicationStatus(s)
		assert.False(t, ok, s)
	}
}

func TestApplicationStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
}

func TestIsAcademicDocumentType(t *testing.T) {
	assert.Len(t, AcademicDocumentTypes, 10)
	assert.True(t, IsAcademicDocumentType("tenthMarksheet"))
	assert.True(t, IsAcademicDocumentType("signature"))
	assert.False(t, IsAcademicDocumentType("counselingLetter"))
}

func TestNewStudent(t *testing.T) {
	profile := StudentProfile{
		Mobile:  "9876543210",
		Address: "12 MG Road",
		Gender:  GenderFemale,
		DOB:     time.Date(2005, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("complete profile", func(t *testing.T) {
		u, err := NewStudent(" Asha ", "Asha@College.edu", "hash", profile)
		require.NoError(t, err)
		assert.Equal(t, RoleStudent, u.Role)
		assert.Equal(t, "Asha", u.Name)
		assert.Equal(t, "asha@college.edu", u.Email)
		assert.NotNil(t, u.Profile)
		assert.False(t, u.IsAdmin())
	})

	t.Run("missing profile fields", func(t *testing.T) {
		_, err := NewStudent("Asha", "asha@college.edu", "hash", StudentProfile{Mobile: "1"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))

		var ce *apperrors.CustomError
		require.True(t, errors.As(err, &ce))
		assert.ElementsMatch(t, []string{"address", "gender", "dob"}, ce.Details["fields"])
	})
}

func TestNewAdmin(t *testing.T) {
	u, err := NewAdmin("Registrar", "registrar@college.edu", "hash")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Nil(t, u.Profile)

	_, err = NewAdmin("", "registrar@college.edu", "hash")
	assert.Error(t, err)
}

func TestApplication_HasDocument(t *testing.T) {
	app := &Application{
		CounselingLetter: "https://bucket.s3.amazonaws.com/letters/a.pdf",
		AcademicDocuments: []AcademicDocument{
			{Path: "https://bucket.s3.amazonaws.com/academic/b.pdf", Name: "b.pdf", Type: "signature"},
		},
	}

	assert.True(t, app.HasDocument("https://bucket.s3.amazonaws.com/letters/a.pdf"))
	assert.True(t, app.HasDocument("https://bucket.s3.amazonaws.com/academic/b.pdf"))
	assert.False(t, app.HasDocument("https://bucket.s3.amazonaws.com/academic/c.pdf"))
	assert.Len(t, app.DocumentURLs(), 2)
}

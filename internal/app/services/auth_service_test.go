package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
	"github.com/yigit/admission/internal/pkg/validation"
)

const testEmailPattern = `^[a-z0-9._%+\-]+@college\.edu$`

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "admission-test"})
}

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo, *fakeThrottle) {
	t.Helper()
	rules, err := validation.NewRules(testEmailPattern)
	require.NoError(t, err)
	users := newFakeUserRepo()
	throttle := newFakeThrottle(3)
	return NewAuthService(users, newTestJWT(), rules, throttle, zerolog.Nop()), users, throttle
}

func validRegistration() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Name:     "Asha Rao",
		Email:    "asha@college.edu",
		Password: "secret123",
		Mobile:   "9876543210",
		Address:  "12 MG Road, Pune",
		Gender:   "female",
		Dob:      "2004-05-17",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, "student", resp.User.Role)
	assert.Equal(t, "9876543210", resp.User.Mobile)

	stored, err := users.GetByEmail(ctx, "asha@college.edu")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)

	claims, err := newTestJWT().ValidateAndExtractClaims(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "Asha@College.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, login.User.ID)
}

func TestAuthService_Register_Rejections(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	cases := map[string]func(*dto.RegisterRequest){
		"foreign domain": func(r *dto.RegisterRequest) { r.Email = "asha@gmail.com" },
		"weak password":  func(r *dto.RegisterRequest) { r.Password = "onlyletters" },
		"bad mobile":     func(r *dto.RegisterRequest) { r.Mobile = "12" },
		"bad dob":        func(r *dto.RegisterRequest) { r.Dob = "17/05/2004" },
		"bad gender":     func(r *dto.RegisterRequest) { r.Gender = "x" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRegistration()
			req.Email = "other@college.edu"
			mutate(req)
			_, err := svc.Register(ctx, req)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}

func TestAuthService_Login_InvalidCredentialsAndThrottle(t *testing.T) {
	svc, _, throttle := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@college.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	for i := 0; i < 3; i++ {
		_, err = svc.Login(ctx, &dto.LoginRequest{Email: "asha@college.edu", Password: "wrong1234"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
	assert.Equal(t, 3, throttle.failures["asha@college.edu"])

	// even the right password is refused while throttled
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "asha@college.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrTooManyAttempts)

	throttle.failures["asha@college.edu"] = 1
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "asha@college.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Zero(t, throttle.failures["asha@college.edu"])
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, reg.User.ID, &dto.UpdateProfileRequest{
		Name: "Asha R", Mobile: "9123456780", Address: "Mumbai", Gender: "female", Dob: "2004-05-18",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha R", updated.Name)
	assert.Equal(t, "Mumbai", updated.Profile.Address)

	hash, _ := auth.HashPassword("admin1234")
	admin, err := models.NewAdmin("Admin", "admin@college.edu", hash)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, admin))

	_, err = svc.UpdateProfile(ctx, admin.ID, &dto.UpdateProfileRequest{
		Name: "Admin", Mobile: "9123456780", Address: "x", Gender: "male", Dob: "1990-01-01",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAuthService_SignInWithExternalIdentity(t *testing.T) {
	svc, _, _ := newAuthService(t)
	ctx := context.Background()
	reg, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	_, err = svc.SignInWithExternalIdentity(ctx, ExternalIdentity{Provider: "github", Subject: "1", Email: "asha@college.edu"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.SignInWithExternalIdentity(ctx, ExternalIdentity{Provider: ProviderGoogle, Subject: "g-9", Email: "new@college.edu"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	// first use links by email, later uses find the link
	resp, err := svc.SignInWithExternalIdentity(ctx, ExternalIdentity{Provider: ProviderGoogle, Subject: "g-1", Email: "asha@college.edu"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	resp, err = svc.SignInWithExternalIdentity(ctx, ExternalIdentity{Provider: ProviderGoogle, Subject: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	_, err = svc.SignInWithExternalIdentity(ctx, ExternalIdentity{Provider: ProviderGoogle, Subject: "g-2", Email: "asha@college.edu"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

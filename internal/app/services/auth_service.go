package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
	"github.com/yigit/admission/internal/pkg/validation"
)

// dateLayout is the wire format of dates of birth
const dateLayout = "2006-01-02"

// ProviderGoogle is the only external identity provider with a linkage column
const ProviderGoogle = "google"

// ExternalIdentity is an identity already verified by a third-party provider
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   UserRepository
	jwtService *auth.JWTService
	rules      *validation.Rules
	throttle   LoginThrottle
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo UserRepository,
	jwtService *auth.JWTService,
	rules *validation.Rules,
	throttle LoginThrottle,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		rules:      rules,
		throttle:   throttle,
		logger:     logger,
	}
}

func parseProfile(mobile, address, gender, dob string) (models.StudentProfile, error) {
	born, err := time.Parse(dateLayout, strings.TrimSpace(dob))
	if err != nil {
		return models.StudentProfile{}, apperrors.NewValidationError("dob must use the YYYY-MM-DD format", "dob")
	}
	return models.StudentProfile{
		Mobile:  strings.TrimSpace(mobile),
		Address: strings.TrimSpace(address),
		Gender:  strings.ToLower(strings.TrimSpace(gender)),
		DOB:     born,
	}, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}

// Register creates a student account and signs it in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := s.rules.Name(req.Name); err != nil {
		return nil, err
	}
	if err := s.rules.Email(req.Email); err != nil {
		return nil, err
	}
	if err := s.rules.Password(req.Password); err != nil {
		return nil, err
	}
	if err := s.rules.Mobile(req.Mobile); err != nil {
		return nil, err
	}

	profile, err := parseProfile(req.Mobile, req.Address, req.Gender, req.Dob)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := models.NewStudent(req.Name, req.Email, hash, profile)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			s.logger.Info().Str("email", user.Email).Msg("Registration with an existing email")
		}
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Student registered")
	return s.issue(user)
}

// Login verifies credentials and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.throttle.Allow(ctx, email); err != nil {
		s.logger.Warn().Str("email", email).Msg("Login throttled")
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.throttle.Fail(ctx, email)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.throttle.Fail(ctx, email)
		return nil, apperrors.ErrInvalidCredentials
	}

	s.throttle.Reset(ctx, email)
	return s.issue(user)
}

// GetProfile returns the user behind a session
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile replaces the caller's name and student profile
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	current, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.Role != models.RoleStudent {
		return nil, apperrors.NewForbiddenError("only students have an editable profile")
	}

	if err := s.rules.Name(req.Name); err != nil {
		return nil, err
	}
	if err := s.rules.Mobile(req.Mobile); err != nil {
		return nil, err
	}
	profile, err := parseProfile(req.Mobile, req.Address, req.Gender, req.Dob)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return s.userRepo.UpdateProfile(ctx, userID, strings.TrimSpace(req.Name), profile)
}

// SignInWithExternalIdentity issues a session for an identity verified elsewhere.
// The identity is linked to the account with the same email on first use;
// it never creates an account, since a student needs a complete profile.
func (s *AuthService) SignInWithExternalIdentity(ctx context.Context, id ExternalIdentity) (*dto.AuthResponse, error) {
	if id.Provider != ProviderGoogle {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unsupported identity provider %q", id.Provider))
	}
	if strings.TrimSpace(id.Subject) == "" {
		return nil, apperrors.NewValidationError("identity subject is required", "subject")
	}

	user, err := s.userRepo.GetByGoogleID(ctx, id.Subject)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	if err := s.rules.Email(id.Email); err != nil {
		return nil, err
	}
	user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(id.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError("no account is registered for this identity; register first")
		}
		return nil, err
	}
	if user.GoogleID != nil && *user.GoogleID != id.Subject {
		return nil, apperrors.NewConflictError("account is linked to a different identity")
	}

	if err := s.userRepo.LinkGoogleID(ctx, user.ID, id.Subject); err != nil {
		return nil, err
	}
	subject := id.Subject
	user.GoogleID = &subject

	s.logger.Info().Int64("userID", user.ID).Str("provider", id.Provider).Msg("External identity linked")
	return s.issue(user)
}

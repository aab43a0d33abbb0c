package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/admission/internal/app/models"
	appRepos "github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/db"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/auth"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

// CreateDefaultAdmin creates the administrator account if no user has its email.
// Running it again is a no-op.
func CreateDefaultAdmin(ctx context.Context, pool db.Pool, account AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" || account.Password == "" {
		return fmt.Errorf("admin email and password are required")
	}

	lgr.Info().Str("email", email).Msg("Checking/Creating default admin account...")

	created := false
	err := db.WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		userRepo := appRepos.NewUserRepository(tx)

		existing, err := userRepo.GetByEmail(ctx, email)
		if err == nil {
			if existing.Role != appModels.RoleAdmin {
				lgr.Warn().Str("email", email).Str("role", string(existing.Role)).Msg("Seed admin email belongs to a non-admin user")
			}
			return nil
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}

		hash, err := auth.HashPassword(account.Password)
		if err != nil {
			return err
		}
		admin, err := appModels.NewAdmin(account.Name, email, hash)
		if err != nil {
			return err
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return err
		}
		created = true
		return nil
	})
	// A concurrent start may have created it first
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		return nil
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin account")
		return err
	}

	if created {
		lgr.Info().Str("email", email).Msg("Default admin account created")
	}
	return nil
}

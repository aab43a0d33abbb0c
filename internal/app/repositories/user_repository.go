package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/db"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/dberrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

const (
	constraintUsersEmail    = "users_email_key"
	constraintUsersGoogleID = "users_google_id_key"
)

var userColumns = []string{
	"id", "name", "email", "password", "role",
	"mobile", "address", "gender", "dob", "google_id",
	"created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db db.Querier
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(q db.Querier) *UserRepository {
	return &UserRepository{db: q}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u                                pgUser
		mobile, address, gender, google pgtype.Text
		dob                              pgtype.Date
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role,
		&mobile, &address, &gender, &dob, &google,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user := models.User(u)
	if google.Valid {
		user.GoogleID = &google.String
	}
	if user.Role == models.RoleStudent {
		user.Profile = &models.StudentProfile{
			Mobile:  mobile.String,
			Address: address.String,
			Gender:  gender.String,
			DOB:     dob.Time,
		}
	}
	return &user, nil
}

// pgUser lets scanUser fill the plain columns without touching the variant fields
type pgUser models.User

func profileArgs(u *models.User) (mobile, address, gender, dob interface{}) {
	if u.Profile == nil {
		return nil, nil, nil, nil
	}
	return u.Profile.Mobile, u.Profile.Address, u.Profile.Gender, u.Profile.DOB
}

// Create inserts the user and fills its ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	mobile, address, gender, dob := profileArgs(user)

	sql, args, err := psql.Insert("users").
		Columns("name", "email", "password", "role", "mobile", "address", "gender", "dob", "google_id").
		Values(user.Name, user.Email, user.Password, user.Role, mobile, address, gender, dob, user.GoogleID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintUsersEmail) {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, constraintUsersGoogleID) {
			return apperrors.NewConflictError("external identity is already linked to another user")
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error creating user")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email})
}

// GetByGoogleID retrieves a user by linked external identity
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"google_id": googleID})
}

// LinkGoogleID attaches an external identity to an existing user
func (r *UserRepository) LinkGoogleID(ctx context.Context, userID int64, googleID string) error {
	sql, args, err := psql.Update("users").
		Set("google_id", googleID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build link identity query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintUsersGoogleID) {
			return apperrors.NewConflictError("external identity is already linked to another user")
		}
		return fmt.Errorf("error linking identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateProfile replaces the user's name and student profile
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, name string, profile models.StudentProfile) (*models.User, error) {
	sql, args, err := psql.Update("users").
		Set("name", name).
		Set("mobile", profile.Mobile).
		Set("address", profile.Address).
		Set("gender", profile.Gender).
		Set("dob", profile.DOB).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": userID}).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update profile query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error updating profile")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}
	return user, nil
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/db"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/dberrors"
	"github.com/yigit/admission/internal/pkg/logger"
)

var applicationColumns = []string{
	"id", "user_id", "course", "name", "email", "mobile", "address",
	"counseling_letter", "academic_documents", "status",
	"progress_course", "progress_personal", "progress_academic",
	"payment_status", "transaction_id", "amount", "payment_date", "is_payment_approved",
	"created_at", "updated_at",
}

// upsertReturning adds the inserted flag: xmax is zero only for a freshly inserted row
var upsertReturning = "RETURNING " + joinColumns(applicationColumns) + ", (xmax = 0) AS inserted"

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

func qualify(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// PersonalDetails are the fields written by the personal-details step
type PersonalDetails struct {
	Name             string
	Email            string
	Mobile           string
	Address          string
	CounselingLetter string
}

// ApplicationListParams filters and pages the admin list
type ApplicationListParams struct {
	Status *models.ApplicationStatus
	Limit  uint64
	Offset uint64
}

// ApplicationRepository handles application database operations.
// Every workflow write is a single statement keyed on the unique user_id.
type ApplicationRepository struct {
	db db.Querier
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(q db.Querier) *ApplicationRepository {
	return &ApplicationRepository{db: q}
}

func applicationDest(app *models.Application, docs *[]byte, paymentDate *pgtype.Timestamptz) []interface{} {
	return []interface{}{
		&app.ID, &app.UserID, &app.Course, &app.Name, &app.Email, &app.Mobile, &app.Address,
		&app.CounselingLetter, docs, &app.Status,
		&app.Progress.Course, &app.Progress.Personal, &app.Progress.Academic,
		&app.Payment.Status, &app.Payment.TransactionID, &app.Payment.Amount, paymentDate, &app.Payment.IsApproved,
		&app.CreatedAt, &app.UpdatedAt,
	}
}

func finishApplication(app *models.Application, docs []byte, paymentDate pgtype.Timestamptz) error {
	app.AcademicDocuments = []models.AcademicDocument{}
	if len(docs) > 0 {
		if err := json.Unmarshal(docs, &app.AcademicDocuments); err != nil {
			return fmt.Errorf("failed to decode academic documents: %w", err)
		}
	}
	if paymentDate.Valid {
		t := paymentDate.Time
		app.Payment.Date = &t
	}
	return nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app         models.Application
		docs        []byte
		paymentDate pgtype.Timestamptz
	)
	if err := row.Scan(applicationDest(&app, &docs, &paymentDate)...); err != nil {
		return nil, err
	}
	if err := finishApplication(&app, docs, paymentDate); err != nil {
		return nil, err
	}
	return &app, nil
}

func scanUpsertedApplication(row pgx.Row) (*models.Application, bool, error) {
	var (
		app         models.Application
		docs        []byte
		paymentDate pgtype.Timestamptz
		inserted    bool
	)
	dest := append(applicationDest(&app, &docs, &paymentDate), &inserted)
	if err := row.Scan(dest...); err != nil {
		return nil, false, err
	}
	if err := finishApplication(&app, docs, paymentDate); err != nil {
		return nil, false, err
	}
	return &app, inserted, nil
}

func (r *ApplicationRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Application, error) {
	sql, args, err := psql.Select(applicationColumns...).From("applications").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application: %w", err)
	}
	return app, nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUserID retrieves the application owned by userID
func (r *ApplicationRepository) GetByUserID(ctx context.Context, userID int64) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

// UpsertCourse creates the user's application or updates its course.
// Only progress_course is touched among the progress flags.
func (r *ApplicationRepository) UpsertCourse(ctx context.Context, userID int64, course string) (*models.Application, bool, error) {
	sql, args, err := psql.Insert("applications").
		Columns("user_id", "course", "progress_course").
		Values(userID, course, true).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			course = EXCLUDED.course,
			progress_course = TRUE,
			updated_at = NOW() ` + upsertReturning).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build upsert course query: %w", err)
	}

	app, created, err := scanUpsertedApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return nil, false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error upserting course")
		return nil, false, fmt.Errorf("error saving course: %w", err)
	}
	return app, created, nil
}

// UpsertPersonalDetails creates the application or updates a pending one in place.
// An existing decided application is left untouched and ErrApplicationLocked is returned.
func (r *ApplicationRepository) UpsertPersonalDetails(ctx context.Context, userID int64, d PersonalDetails) (*models.Application, bool, error) {
	sql, args, err := psql.Insert("applications").
		Columns("user_id", "name", "email", "mobile", "address", "counseling_letter", "progress_personal").
		Values(userID, d.Name, d.Email, d.Mobile, d.Address, d.CounselingLetter, true).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			mobile = EXCLUDED.mobile,
			address = EXCLUDED.address,
			counseling_letter = EXCLUDED.counseling_letter,
			progress_personal = TRUE,
			updated_at = NOW()
			WHERE applications.status = 'pending' ` + upsertReturning).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build upsert personal details query: %w", err)
	}

	app, created, err := scanUpsertedApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.ErrApplicationLocked
		}
		if dberrors.IsForeignKeyViolation(err, "") {
			return nil, false, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error upserting personal details")
		return nil, false, fmt.Errorf("error saving personal details: %w", err)
	}
	return app, created, nil
}

// AppendAcademicDocuments appends docs to a pending application and marks the academic step done
func (r *ApplicationRepository) AppendAcademicDocuments(ctx context.Context, userID int64, docs []models.AcademicDocument) (*models.Application, error) {
	raw, err := json.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode academic documents: %w", err)
	}

	sql, args, err := psql.Update("applications").
		Set("academic_documents", squirrel.Expr("academic_documents || ?::jsonb", string(raw))).
		Set("progress_academic", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID, "status": models.StatusPending}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build append documents query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationLocked
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error appending academic documents")
		return nil, fmt.Errorf("error saving academic documents: %w", err)
	}
	return app, nil
}

// UpdateStatus assigns status to the application with the given id
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.Application, error) {
	sql, args, err := psql.Update("applications").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update status query: %w", err)
	}

	return r.updateOne(ctx, sql, args, "id", id)
}

// RecordPayment stores a payment claim and always clears the approval flag
func (r *ApplicationRepository) RecordPayment(ctx context.Context, userID int64, status, transactionID string, amount float64, at time.Time) (*models.Application, error) {
	sql, args, err := psql.Update("applications").
		Set("payment_status", status).
		Set("transaction_id", transactionID).
		Set("amount", amount).
		Set("payment_date", at).
		Set("is_payment_approved", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build record payment query: %w", err)
	}

	return r.updateOne(ctx, sql, args, "userID", userID)
}

// SetPaymentApproval sets the admin approval flag on the user's application
func (r *ApplicationRepository) SetPaymentApproval(ctx context.Context, userID int64, approved bool) (*models.Application, error) {
	sql, args, err := psql.Update("applications").
		Set("is_payment_approved", approved).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build payment approval query: %w", err)
	}

	return r.updateOne(ctx, sql, args, "userID", userID)
}

func (r *ApplicationRepository) updateOne(ctx context.Context, sql string, args []interface{}, idField string, id int64) (*models.Application, error) {
	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64(idField, id).Msg("Error updating application")
		return nil, fmt.Errorf("error updating application: %w", err)
	}
	return app, nil
}

// List returns a page of applications, newest first, with the total count
func (r *ApplicationRepository) List(ctx context.Context, params ApplicationListParams) ([]*models.Application, int64, error) {
	countBuilder := psql.Select("COUNT(*)").From("applications")
	listBuilder := psql.Select(applicationColumns...).From("applications").
		OrderBy("created_at DESC", "id DESC").
		Limit(params.Limit).
		Offset(params.Offset)

	if params.Status != nil {
		countBuilder = countBuilder.Where(squirrel.Eq{"status": *params.Status})
		listBuilder = listBuilder.Where(squirrel.Eq{"status": *params.Status})
	}

	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return nil, 0, fmt.Errorf("error counting applications: %w", err)
	}

	listSQL, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}
	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing applications")
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, total, nil
}

// ListPayments pages payment records joined with their owners.
// Missing owner fields default to 'Unknown' and an unset payment status to 'pending'.
func (r *ApplicationRepository) ListPayments(ctx context.Context, limit, offset uint64) ([]*models.PaymentRecord, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM applications").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting payments: %w", err)
	}

	sql, args, err := psql.Select(
		"a.id", "a.user_id",
		"COALESCE(u.name, 'Unknown')", "COALESCE(u.email, 'Unknown')", "a.course",
		"COALESCE(NULLIF(a.payment_status, ''), 'pending')", "a.transaction_id",
		"COALESCE(a.amount, 0)", "a.payment_date", "a.is_payment_approved",
	).
		From("applications a").
		LeftJoin("users u ON u.id = a.user_id").
		OrderBy("a.payment_date DESC NULLS LAST", "a.id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list payments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing payments")
		return nil, 0, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	records := []*models.PaymentRecord{}
	for rows.Next() {
		var (
			rec  models.PaymentRecord
			date pgtype.Timestamptz
		)
		if err := rows.Scan(
			&rec.ApplicationID, &rec.UserID, &rec.UserName, &rec.UserEmail, &rec.Course,
			&rec.Payment.Status, &rec.Payment.TransactionID, &rec.Payment.Amount, &date, &rec.Payment.IsApproved,
		); err != nil {
			return nil, 0, fmt.Errorf("error scanning payment: %w", err)
		}
		if date.Valid {
			t := date.Time
			rec.Payment.Date = &t
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payments: %w", err)
	}

	return records, total, nil
}

package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

var testNow = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

type appRowOpts struct {
	id, userID                   int64
	course, name, letter         string
	docs                         string
	status                       models.ApplicationStatus
	pCourse, pPersonal, pAcademic bool
	approved                     bool
}

func applicationRows(opts appRowOpts) *pgxmock.Rows {
	if opts.docs == "" {
		opts.docs = "[]"
	}
	if opts.status == "" {
		opts.status = models.StatusPending
	}
	return pgxmock.NewRows(applicationColumns).AddRow(
		opts.id, opts.userID, opts.course, opts.name, "", "", "",
		opts.letter, []byte(opts.docs), opts.status,
		opts.pCourse, opts.pPersonal, opts.pAcademic,
		"", "", float64(0), nil, opts.approved,
		testNow, testNow,
	)
}

func withInserted(opts appRowOpts, inserted bool) *pgxmock.Rows {
	if opts.docs == "" {
		opts.docs = "[]"
	}
	if opts.status == "" {
		opts.status = models.StatusPending
	}
	cols := append(append([]string{}, applicationColumns...), "inserted")
	return pgxmock.NewRows(cols).AddRow(
		opts.id, opts.userID, opts.course, opts.name, "", "", "",
		opts.letter, []byte(opts.docs), opts.status,
		opts.pCourse, opts.pPersonal, opts.pAcademic,
		"", "", float64(0), nil, opts.approved,
		testNow, testNow, inserted,
	)
}

func TestApplicationRepository_GetByUserID(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM applications WHERE user_id = \\$1").
		WithArgs(int64(7)).
		WillReturnRows(applicationRows(appRowOpts{
			id: 1, userID: 7, course: "CSE",
			docs:    `[{"path":"http://x/a.pdf","name":"a.pdf","type":"tenthMarksheet"}]`,
			pCourse: true,
		}))

	app, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), app.ID)
	assert.Equal(t, "CSE", app.Course)
	assert.Equal(t, models.StatusPending, app.Status)
	assert.True(t, app.Progress.Course)
	require.Len(t, app.AcademicDocuments, 1)
	assert.Equal(t, "tenthMarksheet", app.AcademicDocuments[0].Type)
	assert.Nil(t, app.Payment.Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("SELECT (.+) FROM applications WHERE id = \\$1").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(applicationColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpsertCourse(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("INSERT INTO applications (.+) ON CONFLICT \\(user_id\\) DO UPDATE SET").
		WithArgs(int64(7), "CSE", true).
		WillReturnRows(withInserted(appRowOpts{id: 1, userID: 7, course: "CSE", pCourse: true}, true))
	mock.ExpectQuery("INSERT INTO applications (.+) ON CONFLICT \\(user_id\\) DO UPDATE SET").
		WithArgs(int64(7), "ECE", true).
		WillReturnRows(withInserted(appRowOpts{id: 1, userID: 7, course: "ECE", pCourse: true, pPersonal: true}, false))

	app, created, err := repo.UpsertCourse(context.Background(), 7, "CSE")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "CSE", app.Course)

	app, created, err = repo.UpsertCourse(context.Background(), 7, "ECE")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), app.ID)
	assert.True(t, app.Progress.Personal)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpsertPersonalDetails_Locked(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	d := PersonalDetails{Name: "Asha", Email: "asha@college.edu", Mobile: "9876543210", Address: "Pune", CounselingLetter: "http://x/l.pdf"}

	// the conflict branch's WHERE filters out a decided application, so nothing is returned
	mock.ExpectQuery("WHERE applications.status = 'pending'").
		WithArgs(int64(7), d.Name, d.Email, d.Mobile, d.Address, d.CounselingLetter, true).
		WillReturnError(pgx.ErrNoRows)

	_, _, err := repo.UpsertPersonalDetails(context.Background(), 7, d)
	assert.ErrorIs(t, err, apperrors.ErrApplicationLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpsertPersonalDetails_Created(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	d := PersonalDetails{Name: "Asha", Email: "asha@college.edu", Mobile: "9876543210", Address: "Pune", CounselingLetter: "http://x/l.pdf"}
	mock.ExpectQuery("INSERT INTO applications").
		WillReturnRows(withInserted(appRowOpts{id: 3, userID: 7, name: "Asha", letter: d.CounselingLetter, pPersonal: true}, true))

	app, created, err := repo.UpsertPersonalDetails(context.Background(), 7, d)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "http://x/l.pdf", app.CounselingLetter)
	assert.Equal(t, models.Progress{Personal: true}, app.Progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_AppendAcademicDocuments(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	docs := []models.AcademicDocument{{Path: "http://x/t.pdf", Name: "tenth.pdf", Type: "tenthMarksheet"}}
	mock.ExpectQuery("UPDATE applications SET academic_documents = academic_documents \\|\\| \\$1::jsonb").
		WithArgs(`[{"path":"http://x/t.pdf","name":"tenth.pdf","type":"tenthMarksheet"}]`, true, models.StatusPending, int64(7)).
		WillReturnRows(applicationRows(appRowOpts{
			id: 1, userID: 7,
			docs:      `[{"path":"http://x/t.pdf","name":"tenth.pdf","type":"tenthMarksheet"}]`,
			pAcademic: true,
		}))

	app, err := repo.AppendAcademicDocuments(context.Background(), 7, docs)
	require.NoError(t, err)
	assert.Equal(t, docs, app.AcademicDocuments)
	assert.True(t, app.Progress.Academic)

	mock.ExpectQuery("UPDATE applications SET academic_documents").WillReturnError(pgx.ErrNoRows)
	_, err = repo.AppendAcademicDocuments(context.Background(), 7, docs)
	assert.ErrorIs(t, err, apperrors.ErrApplicationLocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpdateStatus(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("UPDATE applications SET status = \\$1").
		WithArgs(models.StatusApproved, int64(1)).
		WillReturnRows(applicationRows(appRowOpts{id: 1, userID: 7, status: models.StatusApproved}))

	app, err := repo.UpdateStatus(context.Background(), 1, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, app.Status)

	mock.ExpectQuery("UPDATE applications SET status = \\$1").
		WithArgs(models.StatusRejected, int64(404)).
		WillReturnRows(pgxmock.NewRows(applicationColumns))
	_, err = repo.UpdateStatus(context.Background(), 404, models.StatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_RecordPayment_ResetsApproval(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("UPDATE applications SET payment_status = \\$1, transaction_id = \\$2, amount = \\$3, payment_date = \\$4, is_payment_approved = \\$5").
		WithArgs("success", "TXN1", 500.0, testNow, false, int64(7)).
		WillReturnRows(pgxmock.NewRows(applicationColumns).AddRow(
			int64(1), int64(7), "CSE", "", "", "", "",
			"", []byte("[]"), models.StatusPending,
			true, false, false,
			"success", "TXN1", 500.0, testNow, false,
			testNow, testNow,
		))

	app, err := repo.RecordPayment(context.Background(), 7, "success", "TXN1", 500, testNow)
	require.NoError(t, err)
	assert.Equal(t, "TXN1", app.Payment.TransactionID)
	assert.False(t, app.Payment.IsApproved)
	require.NotNil(t, app.Payment.Date)
	assert.True(t, testNow.Equal(*app.Payment.Date))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_SetPaymentApproval_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("UPDATE applications SET is_payment_approved = \\$1").
		WithArgs(true, int64(8)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.SetPaymentApproval(context.Background(), 8, true)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	status := models.StatusPending
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM applications WHERE status = \\$1").
		WithArgs(models.StatusPending).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery("SELECT (.+) FROM applications WHERE status = \\$1 ORDER BY created_at DESC, id DESC LIMIT 10 OFFSET 10").
		WithArgs(models.StatusPending).
		WillReturnRows(applicationRows(appRowOpts{id: 2, userID: 5}).AddRow(
			int64(1), int64(4), "", "", "", "", "",
			"", []byte("[]"), models.StatusPending,
			false, false, false,
			"", "", float64(0), nil, false,
			testNow, testNow,
		))

	apps, total, err := repo.List(context.Background(), ApplicationListParams{Status: &status, Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, apps, 2)
	assert.Equal(t, int64(2), apps[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_ListPayments(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM applications").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery("LEFT JOIN users u ON u.id = a.user_id").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "email", "course", "payment_status", "transaction_id", "amount", "payment_date", "is_payment_approved"}).
			AddRow(int64(1), int64(7), "Asha", "asha@college.edu", "CSE", "success", "TXN1", 500.0, testNow, true).
			AddRow(int64(2), int64(8), "Unknown", "Unknown", "", "pending", "", float64(0), nil, false))

	records, total, err := repo.ListPayments(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, records, 2)
	assert.Equal(t, "Asha", records[0].UserName)
	assert.NotNil(t, records[0].Payment.Date)
	assert.Equal(t, "pending", records[1].Payment.Status)
	assert.Nil(t, records[1].Payment.Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_QueryFailure(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery("INSERT INTO applications").WillReturnError(errors.New("connection reset"))
	_, _, err := repo.UpsertCourse(context.Background(), 7, "CSE")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrApplicationNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestApplicationRepository_UpsertForUnknownUser(t *testing.T) {
	mock := newMock(t)
	repo := NewApplicationRepository(mock)
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "applications_user_id_fkey"}

	mock.ExpectQuery("INSERT INTO applications").WillReturnError(fk)
	_, _, err := repo.UpsertCourse(context.Background(), 99, "CSE")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	mock.ExpectQuery("INSERT INTO applications").WillReturnError(fk)
	_, _, err = repo.UpsertPersonalDetails(context.Background(), 99, PersonalDetails{Name: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

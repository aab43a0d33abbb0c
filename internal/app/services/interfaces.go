package services

import (
	"context"
	"net/http"
	"time"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/email"
)

// UserRepository is the user persistence used by the services
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogleID(ctx context.Context, userID int64, googleID string) error
	UpdateProfile(ctx context.Context, userID int64, name string, profile models.StudentProfile) (*models.User, error)
}

// ApplicationRepository is the application persistence used by the services.
// Writes are keyed on the owning user so that each user has one application.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Application, error)
	UpsertCourse(ctx context.Context, userID int64, course string) (*models.Application, bool, error)
	UpsertPersonalDetails(ctx context.Context, userID int64, d repositories.PersonalDetails) (*models.Application, bool, error)
	AppendAcademicDocuments(ctx context.Context, userID int64, docs []models.AcademicDocument) (*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) (*models.Application, error)
	RecordPayment(ctx context.Context, userID int64, status, transactionID string, amount float64, at time.Time) (*models.Application, error)
	SetPaymentApproval(ctx context.Context, userID int64, approved bool) (*models.Application, error)
	List(ctx context.Context, params repositories.ApplicationListParams) ([]*models.Application, int64, error)
	ListPayments(ctx context.Context, limit, offset uint64) ([]*models.PaymentRecord, int64, error)
}

// StatsRepository serves the dashboard aggregations
type StatsRepository interface {
	CountByStatus(ctx context.Context) ([]models.GroupCount, error)
	CountByCourse(ctx context.Context) ([]models.GroupCount, error)
	Count(ctx context.Context, status *models.ApplicationStatus) (int64, error)
	DailyCounts(ctx context.Context, since time.Time) ([]models.DayCount, error)
	Recent(ctx context.Context, limit uint64) ([]models.ApplicationSummary, error)
}

// StatsInvalidator drops cached aggregations after a write that changes them
type StatsInvalidator interface {
	Invalidate(ctx context.Context)
}

// LoginThrottle limits failed logins per email
type LoginThrottle interface {
	Allow(ctx context.Context, email string) error
	Fail(ctx context.Context, email string)
	Reset(ctx context.Context, email string)
}

// StatusNotifier sends the applicant the email for a new status
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, toEmail, toName, course, status string) (email.Message, error)
}

// HTTPDoer performs outbound requests for the document proxy
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context) {}

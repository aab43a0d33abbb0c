package controllers

import (
	"context"
	"mime/multipart"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/services"
)

// AuthService is the account behaviour the auth endpoints need
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error)
}

// AdmissionService is the applicant form workflow
type AdmissionService interface {
	SubmitCourse(ctx context.Context, userID int64, course string) (*models.Application, bool, error)
	SubmitPersonalDetails(ctx context.Context, userID int64, form dto.PersonalDetailsForm, letter *multipart.FileHeader) (*dto.PersonalDetailsResponse, error)
	SubmitAcademicDetails(ctx context.Context, userID int64, files map[string]*multipart.FileHeader) (*dto.AcademicDetailsResponse, error)
	GetFormProgress(ctx context.Context, userID int64) (*dto.FormProgressResponse, error)
	GetMyApplication(ctx context.Context, userID int64) (*models.Application, error)
}

// AdminService is the administrator read side
type AdminService interface {
	ListApplications(ctx context.Context, filter dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error)
	GetApplication(ctx context.Context, id int64) (*models.Application, error)
	CountByStatus(ctx context.Context) ([]dto.CountResult, error)
	CountByCourse(ctx context.Context) ([]dto.CountResult, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
}

// StatusService changes an application's review status
type StatusService interface {
	ChangeStatus(ctx context.Context, applicationID int64, rawStatus string) (*dto.StatusChangeResponse, error)
}

// DocumentService opens stored documents for the viewer proxy
type DocumentService interface {
	Open(ctx context.Context, applicationID int64, rawURL string) (*services.DocumentStream, error)
}

// PaymentService records and approves payments
type PaymentService interface {
	RecordPayment(ctx context.Context, userID int64, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	ApprovePayment(ctx context.Context, adminID, userID int64, approved bool) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, userID int64) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, page, size int) (*dto.PaymentListResponse, error)
}

package controllers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/services"
	"github.com/yigit/admission/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for JWTAuth in handler tests
func asUser(id int64, role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextRole, string(role))
		c.Next()
	}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, filename := range files {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, userID, req)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockAdmissionService struct{ mock.Mock }

func (m *mockAdmissionService) SubmitCourse(ctx context.Context, userID int64, course string) (*models.Application, bool, error) {
	args := m.Called(ctx, userID, course)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Bool(1), args.Error(2)
}

func (m *mockAdmissionService) SubmitPersonalDetails(ctx context.Context, userID int64, form dto.PersonalDetailsForm, letter *multipart.FileHeader) (*dto.PersonalDetailsResponse, error) {
	args := m.Called(ctx, userID, form, letter)
	resp, _ := args.Get(0).(*dto.PersonalDetailsResponse)
	return resp, args.Error(1)
}

func (m *mockAdmissionService) SubmitAcademicDetails(ctx context.Context, userID int64, files map[string]*multipart.FileHeader) (*dto.AcademicDetailsResponse, error) {
	args := m.Called(ctx, userID, files)
	resp, _ := args.Get(0).(*dto.AcademicDetailsResponse)
	return resp, args.Error(1)
}

func (m *mockAdmissionService) GetFormProgress(ctx context.Context, userID int64) (*dto.FormProgressResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.FormProgressResponse)
	return resp, args.Error(1)
}

func (m *mockAdmissionService) GetMyApplication(ctx context.Context, userID int64) (*models.Application, error) {
	args := m.Called(ctx, userID)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) ListApplications(ctx context.Context, filter dto.ApplicationFilterRequest) (*dto.ApplicationListResponse, error) {
	args := m.Called(ctx, filter)
	resp, _ := args.Get(0).(*dto.ApplicationListResponse)
	return resp, args.Error(1)
}

func (m *mockAdminService) GetApplication(ctx context.Context, id int64) (*models.Application, error) {
	args := m.Called(ctx, id)
	app, _ := args.Get(0).(*models.Application)
	return app, args.Error(1)
}

func (m *mockAdminService) CountByStatus(ctx context.Context) ([]dto.CountResult, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]dto.CountResult)
	return out, args.Error(1)
}

func (m *mockAdminService) CountByCourse(ctx context.Context) ([]dto.CountResult, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]dto.CountResult)
	return out, args.Error(1)
}

func (m *mockAdminService) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(*dto.DashboardStats)
	return out, args.Error(1)
}

type mockStatusService struct{ mock.Mock }

func (m *mockStatusService) ChangeStatus(ctx context.Context, applicationID int64, rawStatus string) (*dto.StatusChangeResponse, error) {
	args := m.Called(ctx, applicationID, rawStatus)
	resp, _ := args.Get(0).(*dto.StatusChangeResponse)
	return resp, args.Error(1)
}

type mockDocumentService struct{ mock.Mock }

func (m *mockDocumentService) Open(ctx context.Context, applicationID int64, rawURL string) (*services.DocumentStream, error) {
	args := m.Called(ctx, applicationID, rawURL)
	s, _ := args.Get(0).(*services.DocumentStream)
	return s, args.Error(1)
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) RecordPayment(ctx context.Context, userID int64, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*dto.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentService) ApprovePayment(ctx context.Context, adminID, userID int64, approved bool) (*dto.PaymentResponse, error) {
	args := m.Called(ctx, adminID, userID, approved)
	resp, _ := args.Get(0).(*dto.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentService) GetPayment(ctx context.Context, userID int64) (*dto.PaymentResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*dto.PaymentResponse)
	return resp, args.Error(1)
}

func (m *mockPaymentService) ListPayments(ctx context.Context, page, size int) (*dto.PaymentListResponse, error) {
	args := m.Called(ctx, page, size)
	resp, _ := args.Get(0).(*dto.PaymentListResponse)
	return resp, args.Error(1)
}

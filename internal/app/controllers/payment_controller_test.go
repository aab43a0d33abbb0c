package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
)

func newPaymentRouter(svc *mockPaymentService) *gin.Engine {
	c := NewPaymentController(svc, zerolog.Nop())
	r := gin.New()
	student := r.Group("/payment", asUser(5, models.RoleStudent))
	student.GET("/me", c.GetMyPayment)
	student.POST("/student/payment", c.RecordPayment)
	admin := r.Group("/payment/admin", asUser(1, models.RoleAdmin))
	admin.POST("/payment/approve/:userId", c.ApprovePayment)
	admin.GET("/payment/:userId", c.GetUserPayment)
	admin.GET("/payments", c.ListPayments)
	return r
}

func TestPaymentController_RecordPayment(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("RecordPayment", mock.Anything, int64(5), &dto.RecordPaymentRequest{TransactionID: "TX-1", Amount: 1500, Status: "success"}).
		Return(&dto.PaymentResponse{PaymentStatus: "success", TransactionID: "TX-1", Amount: 1500}, nil)
	r := newPaymentRouter(svc)

	w := serve(r, jsonRequest(http.MethodPost, "/payment/student/payment", `{"transactionId":"TX-1","amount":1500,"status":"success"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isPaymentApproved":false`)

	w = serve(r, jsonRequest(http.MethodPost, "/payment/student/payment", `{"transactionId":"TX-1","status":"success"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "RecordPayment", 1)
}

func TestPaymentController_ApprovePayment(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("ApprovePayment", mock.Anything, int64(1), int64(5), false).Return(&dto.PaymentResponse{}, nil)
	r := newPaymentRouter(svc)

	w := serve(r, jsonRequest(http.MethodPost, "/payment/admin/payment/approve/5", `{"approved":false}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, jsonRequest(http.MethodPost, "/payment/admin/payment/approve/5", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, jsonRequest(http.MethodPost, "/payment/admin/payment/approve/x", `{"approved":true}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "ApprovePayment", 1)
}

func TestPaymentController_Reads(t *testing.T) {
	svc := &mockPaymentService{}
	svc.On("GetPayment", mock.Anything, int64(5)).Return(&dto.PaymentResponse{PaymentStatus: "pending"}, nil)
	svc.On("GetPayment", mock.Anything, int64(9)).Return(nil, errors.New("db down"))
	svc.On("ListPayments", mock.Anything, 2, 20).Return(&dto.PaymentListResponse{Payments: []dto.PaymentListItem{}}, nil)
	r := newPaymentRouter(svc)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/payment/me", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/payment/admin/payment/5", nil)).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, httptest.NewRequest(http.MethodGet, "/payment/admin/payment/9", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/payment/admin/payments?page=2&pageSize=20", nil)).Code)
}

package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/middleware"
	"github.com/yigit/admission/internal/pkg/helpers"
)

// PaymentController handles payment claims and their approval
type PaymentController struct {
	paymentService PaymentService
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService PaymentService, logger zerolog.Logger) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         logger,
	}
}

// GetMyPayment returns the caller's payment fields
// @Summary My payment
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PaymentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /payment/me [get]
func (c *PaymentController) GetMyPayment(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	payment, err := c.paymentService.GetPayment(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payment, ""))
}

// RecordPayment stores the caller's payment claim
// @Summary Record payment
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordPaymentRequest true "Payment claim"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /payment/student/payment [post]
func (c *PaymentController) RecordPayment(ctx *gin.Context) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}

	var req dto.RecordPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	payment, err := c.paymentService.RecordPayment(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payment, "Payment recorded"))
}

// ApprovePayment sets the approval flag on a student's payment
// @Summary Approve payment
// @Tags payment
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Student user ID"
// @Param request body dto.ApprovePaymentRequest true "Approval"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /payment/admin/payment/approve/{userId} [post]
func (c *PaymentController) ApprovePayment(ctx *gin.Context) {
	adminID, ok := userIDFromContext(ctx)
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	var req dto.ApprovePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	payment, err := c.paymentService.ApprovePayment(ctx.Request.Context(), adminID, userID, *req.Approved)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payment, "Payment approval updated"))
}

// GetUserPayment returns a student's payment fields
// @Summary Student payment
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Student user ID"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /payment/admin/payment/{userId} [get]
func (c *PaymentController) GetUserPayment(ctx *gin.Context) {
	userID, ok := parseIDParam(ctx, "userId")
	if !ok {
		return
	}

	payment, err := c.paymentService.GetPayment(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(payment, ""))
}

// ListPayments pages every application's payment with its owner
// @Summary List payments
// @Tags payment
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentListResponse}
// @Router /payment/admin/payments [get]
func (c *PaymentController) ListPayments(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	resp, err := c.paymentService.ListPayments(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/helpers"
	"github.com/yigit/admission/internal/pkg/validation"
)

// PaymentSuccess is the payment status an approval is expected to follow
const PaymentSuccess = "success"

// PaymentService records client-asserted payments and the admin approval bit.
// No gateway is consulted.
type PaymentService struct {
	appRepo ApplicationRepository
	now     func() time.Time
	logger  zerolog.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(appRepo ApplicationRepository, logger zerolog.Logger) *PaymentService {
	return &PaymentService{
		appRepo: appRepo,
		now:     time.Now,
		logger:  logger,
	}
}

func toPaymentResponse(p models.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		PaymentStatus:     p.Status,
		TransactionID:     p.TransactionID,
		Amount:            p.Amount,
		PaymentDate:       p.Date,
		IsPaymentApproved: p.IsApproved,
	}
}

// RecordPayment stores the caller's payment claim. Any earlier approval is cleared.
func (s *PaymentService) RecordPayment(ctx context.Context, userID int64, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	missing := validation.MissingFields([][2]string{
		{"transactionId", req.TransactionID},
		{"status", req.Status},
	})
	if req.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("transactionId, amount and status are required", missing...)
	}

	app, err := s.appRepo.RecordPayment(ctx, userID,
		strings.ToLower(strings.TrimSpace(req.Status)),
		strings.TrimSpace(req.TransactionID),
		req.Amount,
		s.now().UTC(),
	)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Str("transactionID", app.Payment.TransactionID).Str("status", app.Payment.Status).Msg("Payment recorded")
	return toPaymentResponse(app.Payment), nil
}

// ApprovePayment sets the approval flag on the user's application.
// Approving a payment that is not marked successful is allowed but logged.
func (s *PaymentService) ApprovePayment(ctx context.Context, adminID, userID int64, approved bool) (*dto.PaymentResponse, error) {
	app, err := s.appRepo.SetPaymentApproval(ctx, userID, approved)
	if err != nil {
		return nil, err
	}

	if approved && app.Payment.Status != PaymentSuccess {
		s.logger.Warn().
			Int64("adminID", adminID).
			Int64("userID", userID).
			Str("paymentStatus", app.Payment.Status).
			Msg("Payment approved without a successful payment on record")
	}

	s.logger.Info().Int64("adminID", adminID).Int64("userID", userID).Bool("approved", approved).Msg("Payment approval changed")
	return toPaymentResponse(app.Payment), nil
}

// GetPayment returns the payment fields of the user's application
func (s *PaymentService) GetPayment(ctx context.Context, userID int64) (*dto.PaymentResponse, error) {
	app, err := s.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPaymentResponse(app.Payment), nil
}

// ListPayments pages every application's payment fields with the owner's name and email
func (s *PaymentService) ListPayments(ctx context.Context, page, size int) (*dto.PaymentListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	records, total, err := s.appRepo.ListPayments(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PaymentListItem, 0, len(records))
	for _, r := range records {
		items = append(items, dto.PaymentListItem{
			ApplicationID:     r.ApplicationID,
			UserID:            r.UserID,
			Name:              r.UserName,
			Email:             r.UserEmail,
			Course:            r.Course,
			PaymentStatus:     r.Payment.Status,
			TransactionID:     r.Payment.TransactionID,
			Amount:            r.Payment.Amount,
			PaymentDate:       r.Payment.Date,
			IsPaymentApproved: r.Payment.IsApproved,
		})
	}

	return &dto.PaymentListResponse{
		Payments:   items,
		Pagination: helpers.NewPaginationInfo(total, page, int(limit)),
	}, nil
}

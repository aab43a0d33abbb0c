package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

// StatusService assigns review statuses and notifies applicants.
// The status write is the durable effect; the email is best-effort.
type StatusService struct {
	appRepo  ApplicationRepository
	userRepo UserRepository
	notifier StatusNotifier
	stats    StatsInvalidator
	logger   zerolog.Logger
}

// NewStatusService creates a new StatusService
func NewStatusService(
	appRepo ApplicationRepository,
	userRepo UserRepository,
	notifier StatusNotifier,
	stats StatsInvalidator,
	logger zerolog.Logger,
) *StatusService {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &StatusService{
		appRepo:  appRepo,
		userRepo: userRepo,
		notifier: notifier,
		stats:    stats,
		logger:   logger,
	}
}

// ChangeStatus sets the application's status and sends the matching email.
// An unknown status is rejected before anything is written.
func (s *StatusService) ChangeStatus(ctx context.Context, applicationID int64, rawStatus string) (*dto.StatusChangeResponse, error) {
	status, ok := models.ParseApplicationStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatus,
			fmt.Sprintf("invalid status %q: must be one of pending, approved, rejected", rawStatus)).
			WithDetails(map[string]interface{}{"fields": []string{"status"}})
	}

	app, err := s.appRepo.UpdateStatus(ctx, applicationID, status)
	if err != nil {
		return nil, err
	}
	s.stats.Invalidate(ctx)

	s.logger.Info().Int64("applicationID", app.ID).Str("status", string(status)).Msg("Application status changed")

	return &dto.StatusChangeResponse{
		Application: app,
		Email:       s.notify(ctx, app),
	}, nil
}

// notify never fails the request; the outcome is reported instead
func (s *StatusService) notify(ctx context.Context, app *models.Application) dto.EmailStatus {
	toEmail, toName := app.Email, app.Name
	if toEmail == "" || toName == "" {
		if owner, err := s.userRepo.GetByID(ctx, app.UserID); err == nil {
			if toEmail == "" {
				toEmail = owner.Email
			}
			if toName == "" {
				toName = owner.Name
			}
		} else {
			s.logger.Warn().Err(err).Int64("userID", app.UserID).Msg("Could not load application owner for notification")
		}
	}

	msg, err := s.notifier.NotifyStatus(ctx, toEmail, toName, app.Course, string(app.Status))
	if err != nil {
		reason := err.Error()
		s.logger.Warn().Err(err).Int64("applicationID", app.ID).Str("subject", msg.Subject).Msg("Status email not sent")
		return dto.EmailStatus{Sent: false, Error: &reason}
	}

	s.logger.Info().Int64("applicationID", app.ID).Str("subject", msg.Subject).Msg("Status email sent")
	return dto.EmailStatus{Sent: true}
}

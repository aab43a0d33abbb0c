package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/app/models"
	"github.com/yigit/admission/internal/app/models/dto"
	"github.com/yigit/admission/internal/app/repositories"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/filestorage"
	"github.com/yigit/admission/internal/pkg/validation"
)

// Storage folders for applicant documents
const (
	FolderCounselingLetters = "counseling-letters"
	FolderAcademicDocuments = "academic-documents"
)

// FieldCounselingLetter is the multipart field of the personal-details letter
const FieldCounselingLetter = "counselingLetter"

// AdmissionOptions toggles workflow rules
type AdmissionOptions struct {
	// RequirePersonalBeforeAcademic rejects academic uploads until personal details exist
	RequirePersonalBeforeAcademic bool
}

// AdmissionService drives the multi-step application form
type AdmissionService struct {
	appRepo ApplicationRepository
	store   filestorage.DocumentStore
	policy  filestorage.UploadPolicy
	stats   StatsInvalidator
	opts    AdmissionOptions
	logger  zerolog.Logger
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(
	appRepo ApplicationRepository,
	store filestorage.DocumentStore,
	policy filestorage.UploadPolicy,
	stats StatsInvalidator,
	opts AdmissionOptions,
	logger zerolog.Logger,
) *AdmissionService {
	if stats == nil {
		stats = noopInvalidator{}
	}
	return &AdmissionService{
		appRepo: appRepo,
		store:   store,
		policy:  policy,
		stats:   stats,
		opts:    opts,
		logger:  logger,
	}
}

func uploadError(field string, err error) error {
	return apperrors.NewCustomError(apperrors.ErrUploadFailed, "failed to upload "+field).
		WithDetails(map[string]interface{}{"field": field, "cause": err.Error()})
}

// ensurePending rejects writes to a decided application; a missing application is fine
func (s *AdmissionService) ensurePending(ctx context.Context, userID int64) error {
	app, err := s.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrApplicationNotFound) {
			return nil
		}
		return err
	}
	if app.Status.IsTerminal() {
		return apperrors.ErrApplicationLocked
	}
	return nil
}

// discard removes uploads that never made it into the database
func (s *AdmissionService) discard(ctx context.Context, urls ...string) {
	for _, u := range urls {
		if err := s.store.Delete(context.WithoutCancel(ctx), u); err != nil {
			s.logger.Warn().Err(err).Str("url", u).Msg("Failed to remove orphaned upload")
		}
	}
}

// SubmitCourse records the course choice, creating the application if needed.
// It reports whether the application was created.
func (s *AdmissionService) SubmitCourse(ctx context.Context, userID int64, course string) (*models.Application, bool, error) {
	course = strings.TrimSpace(course)
	if course == "" {
		return nil, false, apperrors.NewValidationError("course is required", "course")
	}

	app, created, err := s.appRepo.UpsertCourse(ctx, userID, course)
	if err != nil {
		return nil, false, err
	}
	s.stats.Invalidate(ctx)

	s.logger.Info().Int64("userID", userID).Int64("applicationID", app.ID).Bool("created", created).Msg("Course submitted")
	return app, created, nil
}

// SubmitPersonalDetails uploads the counseling letter and then stores the personal fields.
// Nothing is written when the upload fails.
func (s *AdmissionService) SubmitPersonalDetails(ctx context.Context, userID int64, form dto.PersonalDetailsForm, letter *multipart.FileHeader) (*dto.PersonalDetailsResponse, error) {
	missing := validation.MissingFields([][2]string{
		{"name", form.Name},
		{"email", form.Email},
		{"mobile", form.Mobile},
		{"address", form.Address},
	})
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields: "+strings.Join(missing, ", "), missing...)
	}
	// name and email end up in mail headers
	for _, f := range [][2]string{{"name", form.Name}, {"email", form.Email}, {"mobile", form.Mobile}} {
		if err := validation.SingleLine(f[0], f[1]); err != nil {
			return nil, err
		}
	}
	if letter == nil {
		return nil, apperrors.NewValidationError("counseling letter file is required", FieldCounselingLetter)
	}
	if _, err := s.policy.Check(letter, FieldCounselingLetter); err != nil {
		return nil, err
	}
	if err := s.ensurePending(ctx, userID); err != nil {
		return nil, err
	}

	info, err := s.store.Save(ctx, letter, FolderCounselingLetters)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", userID).Msg("Counseling letter upload failed")
		return nil, uploadError(FieldCounselingLetter, err)
	}

	app, created, err := s.appRepo.UpsertPersonalDetails(ctx, userID, repositories.PersonalDetails{
		Name:             strings.TrimSpace(form.Name),
		Email:            strings.ToLower(strings.TrimSpace(form.Email)),
		Mobile:           strings.TrimSpace(form.Mobile),
		Address:          strings.TrimSpace(form.Address),
		CounselingLetter: info.URL,
	})
	if err != nil {
		s.discard(ctx, info.URL)
		return nil, err
	}
	// recent applications show name and email, so updates invalidate too
	s.stats.Invalidate(ctx)

	s.logger.Info().Int64("userID", userID).Int64("applicationID", app.ID).Bool("created", created).Msg("Personal details submitted")
	return &dto.PersonalDetailsResponse{
		ApplicationID:    app.ID,
		IsUpdate:         !created,
		CounselingLetter: app.CounselingLetter,
	}, nil
}

// SubmitAcademicDetails uploads every recognised document and appends them to the application.
// Unrecognised fields are ignored.
func (s *AdmissionService) SubmitAcademicDetails(ctx context.Context, userID int64, files map[string]*multipart.FileHeader) (*dto.AcademicDetailsResponse, error) {
	app, err := s.appRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if app.Status.IsTerminal() {
		return nil, apperrors.ErrApplicationLocked
	}
	if s.opts.RequirePersonalBeforeAcademic && !app.Progress.Personal {
		return nil, apperrors.NewBadRequestError("personal details must be submitted before academic documents")
	}

	type pending struct {
		docType string
		file    *multipart.FileHeader
	}
	var uploads []pending
	for _, t := range models.AcademicDocumentTypes {
		if fh, ok := files[string(t)]; ok && fh != nil {
			uploads = append(uploads, pending{docType: string(t), file: fh})
		}
	}
	if len(uploads) == 0 {
		return nil, apperrors.NewValidationError("at least one academic document is required")
	}
	for _, u := range uploads {
		if _, err := s.policy.Check(u.file, u.docType); err != nil {
			return nil, err
		}
	}

	docs := make([]models.AcademicDocument, 0, len(uploads))
	stored := make([]string, 0, len(uploads))
	for _, u := range uploads {
		info, err := s.store.Save(ctx, u.file, FolderAcademicDocuments)
		if err != nil {
			s.logger.Error().Err(err).Int64("userID", userID).Str("type", u.docType).Msg("Academic document upload failed")
			s.discard(ctx, stored...)
			return nil, uploadError(u.docType, err)
		}
		stored = append(stored, info.URL)
		docs = append(docs, models.AcademicDocument{Path: info.URL, Name: u.file.Filename, Type: u.docType})
	}

	if _, err := s.appRepo.AppendAcademicDocuments(ctx, userID, docs); err != nil {
		s.discard(ctx, stored...)
		return nil, err
	}

	resp := &dto.AcademicDetailsResponse{Documents: make(map[string]string, len(docs))}
	for _, d := range docs {
		resp.Documents[d.Type] = d.Path
	}

	s.logger.Info().Int64("userID", userID).Int("documents", len(docs)).Msg("Academic documents submitted")
	return resp, nil
}

// GetFormProgress maps the application's progress flags to the next step.
// A user without an application is on step 1.
func (s *AdmissionService) GetFormProgress(ctx context.Context, userID int64) (*dto.FormProgressResponse, error) {
	app, err := s.appRepo.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrApplicationNotFound) {
		return &dto.FormProgressResponse{Step: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.FormProgressResponse{Step: app.Progress.Step(), Progress: app.Progress}, nil
}

// GetMyApplication returns the caller's own application
func (s *AdmissionService) GetMyApplication(ctx context.Context, userID int64) (*models.Application, error) {
	return s.appRepo.GetByUserID(ctx, userID)
}

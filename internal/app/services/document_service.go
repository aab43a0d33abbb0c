package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/admission/internal/pkg/apperrors"
	"github.com/yigit/admission/internal/pkg/filestorage"
)

// DefaultDocumentContentType is used when the store does not report one
const DefaultDocumentContentType = "application/pdf"

// DocumentStream is an upstream document body to be copied to the client.
// The caller must close Body.
type DocumentStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// DocumentService proxies stored applicant documents to administrators
type DocumentService struct {
	appRepo ApplicationRepository
	store   filestorage.DocumentStore
	client  HTTPDoer
	logger  zerolog.Logger
}

// NewDocumentService creates a new DocumentService; client should carry a timeout
func NewDocumentService(appRepo ApplicationRepository, store filestorage.DocumentStore, client HTTPDoer, logger zerolog.Logger) *DocumentService {
	return &DocumentService{
		appRepo: appRepo,
		store:   store,
		client:  client,
		logger:  logger,
	}
}

// checkTrusted accepts only absolute http(s) urls on the document store's host
func (s *DocumentService) checkTrusted(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return apperrors.NewValidationError("url query parameter is required", "url")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return apperrors.NewValidationError("url is not a valid absolute url", "url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return apperrors.NewValidationError("url must use http or https", "url")
	}
	if u.User != nil || !strings.EqualFold(u.Host, s.store.TrustedHost()) {
		return apperrors.NewCustomError(apperrors.ErrUntrustedDocument, "document url is not hosted on the trusted store").
			WithDetails(map[string]interface{}{"host": u.Host})
	}
	return nil
}

// Open validates rawURL against the application and streams the document from the store.
// Untrusted urls are rejected before any outbound request.
func (s *DocumentService) Open(ctx context.Context, applicationID int64, rawURL string) (*DocumentStream, error) {
	if err := s.checkTrusted(rawURL); err != nil {
		s.logger.Warn().Str("url", rawURL).Int64("applicationID", applicationID).Msg("Rejected document proxy url")
		return nil, err
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !app.HasDocument(rawURL) {
		return nil, apperrors.NewResourceNotFoundError("document does not belong to this application")
	}

	signed, err := s.store.SignedURL(ctx, rawURL)
	if err != nil {
		return nil, apperrors.NewUpstreamError("failed to sign document url", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build document request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Document fetch failed")
		return nil, apperrors.NewUpstreamError("failed to fetch document", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		s.logger.Error().Int("status", resp.StatusCode).Int64("applicationID", applicationID).Msg("Document store returned an error")
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("document store responded with status %d", resp.StatusCode), nil)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		contentType = DefaultDocumentContentType
	}

	return &DocumentStream{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
	}, nil
}

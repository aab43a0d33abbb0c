package filestorage

import (
	"fmt"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yigit/admission/internal/pkg/apperrors"
)

// UploadPolicy limits the size and content type of uploaded documents
type UploadPolicy struct {
	MaxSize      int64
	AllowedTypes []string
}

// Check sniffs the file content and returns its MIME type when the file is acceptable.
// field names the form field in the validation error.
func (p UploadPolicy) Check(fileHeader *multipart.FileHeader, field string) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewValidationError(field+" file is required", field)
	}
	if p.MaxSize > 0 && fileHeader.Size > p.MaxSize {
		return "", apperrors.NewValidationError(fmt.Sprintf("%s exceeds the %d byte limit", field, p.MaxSize), field)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	if len(p.AllowedTypes) == 0 {
		return mtype.String(), nil
	}
	for _, allowed := range p.AllowedTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("%s has unsupported type %s", field, mtype.String()), field)
}

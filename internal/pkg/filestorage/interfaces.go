package filestorage

import (
	"context"
	"mime/multipart"
)

// FileInfo represents information about a stored file
type FileInfo struct {
	URL      string // Public or store-relative URL persisted on the application
	Key      string // Object key inside the store
	Filename string // Original filename
	FileSize int64  // Size in bytes
	MimeType string // Detected MIME type
}

// DocumentStore is the object-store adapter used for applicant documents.
// Implementations are stateless and do not retry.
type DocumentStore interface {
	// Save stores the uploaded file under folder and returns where it lives
	Save(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*FileInfo, error)

	// Delete removes a stored document by its URL
	Delete(ctx context.Context, fileURL string) error

	// SignedURL resolves a stored document URL to one that can be fetched directly
	SignedURL(ctx context.Context, fileURL string) (string, error)

	// TrustedHost is the only host whose URLs may be resolved by SignedURL
	TrustedHost() string
}

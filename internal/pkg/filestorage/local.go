package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/admission/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
// Files are served back by the HTTP server under baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
	host     string
}

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the directory on the server; baseURL is where the router exposes it.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid local storage base url %q", baseURL)
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		host:     u.Host,
	}, nil
}

// BasePath is the directory holding the stored files
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// Save copies the upload into folder under a collision-free name
func (ls *LocalStorage) Save(ctx context.Context, fileHeader *multipart.FileHeader, folder string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, fmt.Errorf("no file provided")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	dir := filepath.Join(ls.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	key := path.Join(folder, uuid.New().String()+strings.ToLower(filepath.Ext(fileHeader.Filename)))
	dstPath := filepath.Join(ls.basePath, filepath.FromSlash(key))

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	info := &FileInfo{
		URL:      ls.baseURL + "/" + key,
		Key:      key,
		Filename: fileHeader.Filename,
		FileSize: written,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}
	logger.Info().Str("filename", fileHeader.Filename).Str("key", key).Msg("File saved successfully")
	return info, nil
}

// Delete removes a stored file. Missing files are not an error.
func (ls *LocalStorage) Delete(_ context.Context, fileURL string) error {
	key, err := ls.keyFromURL(fileURL)
	if err != nil {
		return err
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SignedURL returns the url unchanged; local files need no signature
func (ls *LocalStorage) SignedURL(_ context.Context, fileURL string) (string, error) {
	if _, err := ls.keyFromURL(fileURL); err != nil {
		return "", err
	}
	return fileURL, nil
}

// TrustedHost is the host of the local base URL
func (ls *LocalStorage) TrustedHost() string {
	return ls.host
}

func (ls *LocalStorage) keyFromURL(fileURL string) (string, error) {
	if !strings.HasPrefix(fileURL, ls.baseURL+"/") {
		return "", fmt.Errorf("file url %q is outside local storage", fileURL)
	}
	key := path.Clean(strings.TrimPrefix(fileURL, ls.baseURL+"/"))
	if key == "." || strings.HasPrefix(key, "..") {
		return "", fmt.Errorf("invalid file path: %s", fileURL)
	}
	return key, nil
}

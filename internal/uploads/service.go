package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
)

// EvidenceService coordinates evidence file uploads and manages metadata.
// Keys are prefixed by tenant so one tenant can never address another's
// files.
type EvidenceService struct {
	Driver StorageDriver
}

func NewEvidenceService(driver StorageDriver) *EvidenceService {
	return &EvidenceService{Driver: driver}
}

// Upload handles the incoming file, saves it via the driver, and returns
// metadata for the form's file field value.
func (s *EvidenceService) Upload(ctx context.Context, tenantID, filename string, reader io.Reader, size int64, mime string) (*Attachment, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID cannot be empty")
	}
	if mime == "" {
		mime = "application/octet-stream"
	}
	id := uuid.New()
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", tenantID, id.String(), ext)

	err := s.Driver.Save(ctx, key, reader, mime)
	if err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.Driver.GenerateURL(ctx, key, 0)
	if err != nil {
		if delErr := s.Driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned evidence file", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	attachment := &Attachment{
		ID:       id,
		TenantID: tenantID,
		Name:     filename,
		Key:      key,
		URL:      url,
		Size:     size,
		MimeType: mime,
	}

	slog.InfoContext(ctx, "evidence file uploaded", "id", id, "key", key)
	return attachment, nil
}

// Download retrieves a tenant's file content and its MIME type. Keys outside
// the tenant's prefix are rejected.
func (s *EvidenceService) Download(ctx context.Context, tenantID, key string) (io.ReadCloser, string, error) {
	prefix := tenantID + "/"
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return nil, "", fmt.Errorf("key %q does not belong to tenant", key)
	}
	return s.Driver.Get(ctx, key)
}

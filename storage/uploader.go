package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

const BackupContentType = "application/json"

type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	ETag     string `json:"etag,omitempty"`
}

// FileUploader stores backup documents under a key. Keys use forward slashes.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// List returns the keys that start with prefix in ascending order.
	List(ctx context.Context, prefix string) ([]string, error)

	GetPublicURL(key string) string
}

// BackupPrefix is the key prefix of every backup object of the tenant.
func BackupPrefix(tenantID int) string {
	return fmt.Sprintf("backups/tenant-%d/", tenantID)
}

// BackupKey names a tenant backup object: backups/tenant-<id>/<utc stamp>-<uuid>.json.
// Keys of one tenant sort by creation time.
func BackupKey(tenantID int, at time.Time, id uuid.UUID) string {
	return BackupPrefix(tenantID) + at.UTC().Format("20060102T150405Z") + "-" + id.String() + ".json"
}

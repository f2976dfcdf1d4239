package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the object-storage surface the engine uses: Upload for
// archiving leaderboard snapshots before a recompute overwrites them,
// GetPublicURL for decorating participant logos in the rankings
// projection.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}

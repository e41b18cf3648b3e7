package core

import (
	"context"
	"io"

	"github.com/tochi-dev/medisync/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
// Lookups return (nil, nil) when nothing matched; services map that to
// a NotFoundError.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) (err error)
	GetUserByEmail(ctx context.Context, email string) (user *models.User, err error)

	CreateResource(ctx context.Context, rec *models.ResourceRecord) error
	CompleteResource(ctx context.Context, id string, data *models.ResourceData, rawText, storageURL string, pageCount int, modelID string) error
	FailResource(ctx context.Context, id string, message string) error
	GetResourceByID(ctx context.Context, ownerID, id string) (*models.ResourceRecord, error)
	ListResourcesByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.ResourceRecord, int, error)
	ListCompletedResources(ctx context.Context, ownerID string) ([]models.ResourceRecord, error)
	LatestResourceByOwner(ctx context.Context, ownerID string) (*models.ResourceRecord, error)
	DeleteResource(ctx context.Context, ownerID, id string) (*models.ResourceRecord, error)

	CreateAllocation(ctx context.Context, alloc *models.AllocationRecord) error
	GetAllocationByID(ctx context.Context, ownerID, id string) (*models.AllocationRecord, error)
	ListAllocationsByOwner(ctx context.Context, ownerID string) ([]models.AllocationRecord, error)
	UpdateAllocationStatus(ctx context.Context, ownerID, id, status, notes string) (*models.AllocationRecord, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It’s abstract so you can replace AWS with MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}

// TextExtractor turns an uploaded document into plain text plus a page
// count (0 when the format has no page notion).
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, contentType string) (text string, pages int, err error)
}

// ResourceExtractor is the generative-AI boundary: document text in,
// loosely-structured object out. The returned shape is untrusted; only
// the normalization layer may interpret it.
type ResourceExtractor interface {
	ExtractResources(ctx context.Context, text string) (raw map[string]any, modelID string, err error)
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tochi-dev/medisync/internal/apperrors"
	"github.com/tochi-dev/medisync/internal/core"
	"github.com/tochi-dev/medisync/internal/core/aggregate"
	"github.com/tochi-dev/medisync/internal/core/normalize"
	"github.com/tochi-dev/medisync/internal/models"
)

// ResourceService owns the upload-and-process pipeline and the read
// views over resource records.
type ResourceService struct {
	db      core.DbClient
	storage core.ObjectClient
	texts   core.TextExtractor
	ai      core.ResourceExtractor
	bucket  string
}

func NewResourceService(db core.DbClient, storage core.ObjectClient, texts core.TextExtractor, ai core.ResourceExtractor, bucket string) *ResourceService {
	return &ResourceService{db: db, storage: storage, texts: texts, ai: ai, bucket: bucket}
}

// Upload runs the whole pipeline synchronously within the request:
// create the record (status=processing), store the file and extract in
// parallel, normalize the AI output, then commit the terminal status.
// On any failure the record is marked failed with a readable message and
// the stored file is removed; the record stays listable.
func (s *ResourceService) Upload(ctx context.Context, ownerID, ownerEmail, fileName, contentType string, data []byte) (*models.ResourceRecord, error) {
	rec := &models.ResourceRecord{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		OwnerEmail: ownerEmail,
		FileName:   fileName,
		FileSize:   int64(len(data)),
		Status:     models.StatusProcessing,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.db.CreateResource(ctx, rec); err != nil {
		return nil, fmt.Errorf("create resource record: %w", err)
	}

	key := s.objectKey(ownerID, rec.ID, fileName)

	var (
		url      string
		rawText  string
		pages    int
		rawShape map[string]any
		modelID  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.storage.UploadFile(gctx, s.bucket, key, bytes.NewReader(data), contentType)
		if err != nil {
			return fmt.Errorf("store file: %w", err)
		}
		url = u
		return nil
	})
	g.Go(func() error {
		text, p, err := s.texts.ExtractText(gctx, data, contentType)
		if err != nil {
			return fmt.Errorf("extract text: %w", err)
		}
		rawText, pages = text, p

		raw, model, err := s.ai.ExtractResources(gctx, text)
		modelID = model
		if err != nil {
			return fmt.Errorf("ai extraction: %w", err)
		}
		rawShape = raw
		return nil
	})

	var resourceData *models.ResourceData
	err := g.Wait()
	if err == nil {
		resourceData, err = normalize.Normalize(rawShape)
	}

	if err != nil {
		s.failRecord(ctx, rec.ID, key, err)
		return nil, err
	}

	if err := s.db.CompleteResource(ctx, rec.ID, resourceData, rawText, url, pages, modelID); err != nil {
		s.failRecord(ctx, rec.ID, key, err)
		return nil, fmt.Errorf("persist extraction result: %w", err)
	}

	now := time.Now()
	rec.Status = models.StatusCompleted
	rec.Data = resourceData
	rec.RawText = rawText
	rec.StorageURL = url
	rec.PageCount = pages
	rec.ModelID = modelID
	rec.ProcessedAt = &now

	log.Info().Str("resource_id", rec.ID).Str("owner_id", ownerID).Int("pages", pages).Msg("resource processed")
	return rec, nil
}

// failRecord marks the record failed and best-effort removes the stored
// file. Uses a fresh context so cleanup survives a cancelled request.
func (s *ResourceService) failRecord(ctx context.Context, id, key string, cause error) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Minute)
	defer cancel()

	if err := s.db.FailResource(cleanupCtx, id, cause.Error()); err != nil {
		log.Error().Err(err).Str("resource_id", id).Msg("could not mark resource failed")
	}
	if err := s.storage.DeleteFile(cleanupCtx, s.bucket, key); err != nil {
		log.Warn().Err(err).Str("resource_id", id).Msg("could not remove stored file after failure")
	}
	log.Warn().Err(cause).Str("resource_id", id).Msg("resource processing failed")
}

func (s *ResourceService) Get(ctx context.Context, ownerID, id string) (*models.ResourceRecord, error) {
	rec, err := s.db.GetResourceByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NewNotFoundError("resource", id)
	}
	return rec, nil
}

func (s *ResourceService) List(ctx context.Context, ownerID string, page, limit int) ([]models.ResourceRecord, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if page <= 0 {
		page = 1
	}
	return s.db.ListResourcesByOwner(ctx, ownerID, limit, (page-1)*limit)
}

func (s *ResourceService) Latest(ctx context.Context, ownerID string) (*models.ResourceRecord, error) {
	rec, err := s.db.LatestResourceByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NewNotFoundError("resource", "")
	}
	return rec, nil
}

// Aggregated recomputes the consolidated snapshot from every completed
// record of the owner. Zero completed records yield an empty snapshot.
func (s *ResourceService) Aggregated(ctx context.Context, ownerID string) (*models.AggregatedSnapshot, error) {
	records, err := s.db.ListCompletedResources(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return aggregate.Build(records), nil
}

// Delete removes the record and its backing file.
func (s *ResourceService) Delete(ctx context.Context, ownerID, id string) error {
	rec, err := s.db.DeleteResource(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return apperrors.NewNotFoundError("resource", id)
	}

	key := s.objectKey(ownerID, rec.ID, rec.FileName)
	if err := s.storage.DeleteFile(ctx, s.bucket, key); err != nil {
		// The row is already gone; an orphaned object is not worth a 500.
		log.Warn().Err(err).Str("resource_id", id).Msg("could not remove stored file")
	}
	return nil
}

// objectKey creates a consistent S3 key layout. Deterministic per record
// so deletion can rebuild it without storing the key.
func (s *ResourceService) objectKey(ownerID, recID, fileName string) string {
	fileName = filepath.Base(strings.TrimSpace(fileName))
	fileName = strings.ReplaceAll(fileName, " ", "_")
	return path.Join("reports", ownerID, recID, fileName)
}

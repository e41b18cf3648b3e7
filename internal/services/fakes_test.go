package services_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/tochi-dev/medisync/internal/models"
)

// fakeDB is an in-memory DbClient good enough for service tests.
type fakeDB struct {
	mu          sync.Mutex
	users       map[string]*models.User
	resources   map[string]*models.ResourceRecord
	allocations map[string]*models.AllocationRecord

	failCreateAllocation bool
	failListCompleted    bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:       map[string]*models.User{},
		resources:   map[string]*models.ResourceRecord{},
		allocations: map[string]*models.AllocationRecord{},
	}
}

func (f *fakeDB) CreateUser(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Email] = u
	return nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[email], nil
}

func (f *fakeDB) CreateResource(_ context.Context, rec *models.ResourceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.resources[rec.ID] = &cp
	return nil
}

func (f *fakeDB) CompleteResource(_ context.Context, id string, data *models.ResourceData, rawText, storageURL string, pageCount int, modelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.resources[id]
	if !ok || rec.Status != models.StatusProcessing {
		return errors.New("resource not in processing state")
	}
	rec.Status = models.StatusCompleted
	rec.Data = data
	rec.RawText = rawText
	rec.StorageURL = storageURL
	rec.PageCount = pageCount
	rec.ModelID = modelID
	return nil
}

func (f *fakeDB) FailResource(_ context.Context, id, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.resources[id]
	if !ok || rec.Status != models.StatusProcessing {
		return errors.New("resource not in processing state")
	}
	rec.Status = models.StatusFailed
	rec.ErrorMessage = message
	return nil
}

func (f *fakeDB) GetResourceByID(_ context.Context, ownerID, id string) (*models.ResourceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.resources[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeDB) ListResourcesByOwner(_ context.Context, ownerID string, limit, offset int) ([]models.ResourceRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ResourceRecord{}
	for _, rec := range f.resources {
		if rec.OwnerID == ownerID {
			out = append(out, *rec)
		}
	}
	return out, len(out), nil
}

func (f *fakeDB) ListCompletedResources(_ context.Context, ownerID string) ([]models.ResourceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failListCompleted {
		return nil, errors.New("db unavailable")
	}
	out := []models.ResourceRecord{}
	for _, rec := range f.resources {
		if rec.OwnerID == ownerID && rec.Status == models.StatusCompleted {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeDB) LatestResourceByOwner(_ context.Context, ownerID string) (*models.ResourceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.ResourceRecord
	for _, rec := range f.resources {
		if rec.OwnerID != ownerID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeDB) DeleteResource(_ context.Context, ownerID, id string) (*models.ResourceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.resources[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, nil
	}
	delete(f.resources, id)
	return rec, nil
}

func (f *fakeDB) CreateAllocation(_ context.Context, alloc *models.AllocationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateAllocation {
		return errors.New("db unavailable")
	}
	cp := *alloc
	f.allocations[alloc.ID] = &cp
	return nil
}

func (f *fakeDB) GetAllocationByID(_ context.Context, ownerID, id string) (*models.AllocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocations[id]
	if !ok || a.OwnerID != ownerID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeDB) ListAllocationsByOwner(_ context.Context, ownerID string) ([]models.AllocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AllocationRecord{}
	for _, a := range f.allocations {
		if a.OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateAllocationStatus(_ context.Context, ownerID, id, status, notes string) (*models.AllocationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocations[id]
	if !ok || a.OwnerID != ownerID {
		return nil, nil
	}
	a.Status = status
	if notes != "" {
		a.Notes = notes
	}
	cp := *a
	return &cp, nil
}

func (f *fakeDB) Close() error { return nil }

// fakeStorage records uploads and deletions.
type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string]bool
	uploads  int
	deletes  []string
	failNext bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string]bool{}}
}

func (f *fakeStorage) UploadFile(_ context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return "", errors.New("s3 unavailable")
	}
	_, _ = io.ReadAll(data)
	f.objects[key] = true
	f.uploads++
	return "https://" + bucket + ".s3.test.amazonaws.com/" + key, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, bucket, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deletes = append(f.deletes, key)
	return nil
}

// fakeTextExtractor returns a canned text.
type fakeTextExtractor struct {
	text  string
	pages int
	err   error
}

func (f *fakeTextExtractor) ExtractText(_ context.Context, _ []byte, _ string) (string, int, error) {
	return f.text, f.pages, f.err
}

// fakeAI returns a canned untrusted payload.
type fakeAI struct {
	raw map[string]any
	err error
}

func (f *fakeAI) ExtractResources(_ context.Context, _ string) (map[string]any, string, error) {
	return f.raw, "gemini-test", f.err
}

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tochi-dev/medisync/internal/config"
	"github.com/tochi-dev/medisync/internal/core"
	"github.com/tochi-dev/medisync/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Implementing the db interface for user

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, now()), COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Implementing the db interface for resource records

func (c *DatabaseClient) CreateResource(ctx context.Context, rec *models.ResourceRecord) error {
	if rec == nil {
		return errors.New("nil resource record")
	}
	const q = `
		INSERT INTO resources
			(id, owner_id, owner_email, file_name, file_size, storage_url, status, page_count, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		rec.ID, rec.OwnerID, rec.OwnerEmail, rec.FileName, rec.FileSize,
		rec.StorageURL, rec.Status, rec.PageCount, rec.CreatedAt, rec.UpdatedAt)
	return err
}

// CompleteResource moves a processing record to its completed terminal
// state in one statement; the record is never touched again afterwards.
func (c *DatabaseClient) CompleteResource(ctx context.Context, id string, data *models.ResourceData, rawText, storageURL string, pageCount int, modelID string) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal resource data: %w", err)
	}
	const q = `
		UPDATE resources
		SET status = 'completed', resource_data = $2, raw_text = $3, storage_url = $4,
		    page_count = $5, model_id = $6, processed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'processing'
	`
	res, err := c.db.ExecContext(ctx, q, id, payload, rawText, storageURL, pageCount, modelID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("resource not in processing state: %s", id)
	}
	return nil
}

func (c *DatabaseClient) FailResource(ctx context.Context, id string, message string) error {
	const q = `
		UPDATE resources
		SET status = 'failed', error_message = $2, processed_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'processing'
	`
	res, err := c.db.ExecContext(ctx, q, id, message)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("resource not in processing state: %s", id)
	}
	return nil
}

const resourceColumns = `
	id, owner_id, owner_email, file_name, file_size, storage_url, status,
	COALESCE(raw_text, ''), resource_data, page_count, COALESCE(model_id, ''),
	processed_at, COALESCE(error_message, ''), created_at, updated_at
`

func scanResource(row interface{ Scan(...any) error }) (*models.ResourceRecord, error) {
	var (
		rec     models.ResourceRecord
		payload []byte
	)
	err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.OwnerEmail, &rec.FileName, &rec.FileSize,
		&rec.StorageURL, &rec.Status, &rec.RawText, &payload, &rec.PageCount,
		&rec.ModelID, &rec.ProcessedAt, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		var data models.ResourceData
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, fmt.Errorf("unmarshal resource data for %s: %w", rec.ID, err)
		}
		rec.Data = &data
	}
	return &rec, nil
}

func (c *DatabaseClient) GetResourceByID(ctx context.Context, ownerID, id string) (*models.ResourceRecord, error) {
	q := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1 AND owner_id = $2`
	rec, err := scanResource(c.db.QueryRowContext(ctx, q, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (c *DatabaseClient) ListResourcesByOwner(ctx context.Context, ownerID string, limit, offset int) ([]models.ResourceRecord, int, error) {
	var total int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE owner_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + resourceColumns + `
		FROM resources
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := c.db.QueryContext(ctx, q, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.ResourceRecord{}
	for rows.Next() {
		rec, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *rec)
	}
	return out, total, rows.Err()
}

// ListCompletedResources returns only the records that may contribute to
// aggregation, newest first.
func (c *DatabaseClient) ListCompletedResources(ctx context.Context, ownerID string) ([]models.ResourceRecord, error) {
	q := `SELECT ` + resourceColumns + `
		FROM resources
		WHERE owner_id = $1 AND status = 'completed'
		ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ResourceRecord{}
	for rows.Next() {
		rec, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) LatestResourceByOwner(ctx context.Context, ownerID string) (*models.ResourceRecord, error) {
	q := `SELECT ` + resourceColumns + `
		FROM resources
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT 1`
	rec, err := scanResource(c.db.QueryRowContext(ctx, q, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteResource removes the row and returns what was deleted so the
// caller can clean up the backing file.
func (c *DatabaseClient) DeleteResource(ctx context.Context, ownerID, id string) (*models.ResourceRecord, error) {
	q := `DELETE FROM resources WHERE id = $1 AND owner_id = $2 RETURNING ` + resourceColumns
	rec, err := scanResource(c.db.QueryRowContext(ctx, q, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Implementing the db interface for allocations

func (c *DatabaseClient) CreateAllocation(ctx context.Context, alloc *models.AllocationRecord) error {
	if alloc == nil {
		return errors.New("nil allocation")
	}
	patient, err := json.Marshal(alloc.Patient)
	if err != nil {
		return err
	}
	prescription, err := json.Marshal(alloc.Prescription)
	if err != nil {
		return err
	}
	resources, err := json.Marshal(alloc.Resources)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO allocations
			(id, owner_id, document_id, patient_info, prescription, resources, status, notes, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
	`
	_, err = c.db.ExecContext(ctx, q,
		alloc.ID, alloc.OwnerID, alloc.DocumentID, patient, prescription,
		resources, alloc.Status, alloc.Notes, alloc.CreatedAt, alloc.UpdatedAt)
	return err
}

const allocationColumns = `
	id, owner_id, document_id, patient_info, prescription, resources,
	status, COALESCE(notes, ''), created_at, updated_at
`

func scanAllocation(row interface{ Scan(...any) error }) (*models.AllocationRecord, error) {
	var (
		a                               models.AllocationRecord
		patient, prescription, resource []byte
	)
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.DocumentID, &patient, &prescription, &resource,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patient, &a.Patient); err != nil {
		return nil, fmt.Errorf("unmarshal patient_info for %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(prescription, &a.Prescription); err != nil {
		return nil, fmt.Errorf("unmarshal prescription for %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(resource, &a.Resources); err != nil {
		return nil, fmt.Errorf("unmarshal resources for %s: %w", a.ID, err)
	}
	return &a, nil
}

func (c *DatabaseClient) GetAllocationByID(ctx context.Context, ownerID, id string) (*models.AllocationRecord, error) {
	q := `SELECT ` + allocationColumns + ` FROM allocations WHERE id = $1 AND owner_id = $2`
	a, err := scanAllocation(c.db.QueryRowContext(ctx, q, id, ownerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (c *DatabaseClient) ListAllocationsByOwner(ctx context.Context, ownerID string) ([]models.AllocationRecord, error) {
	q := `SELECT ` + allocationColumns + `
		FROM allocations
		WHERE owner_id = $1
		ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.AllocationRecord{}
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateAllocationStatus(ctx context.Context, ownerID, id, status, notes string) (*models.AllocationRecord, error) {
	q := `
		UPDATE allocations
		SET status = $3,
		    notes = CASE WHEN $4 <> '' THEN $4 ELSE notes END,
		    updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + allocationColumns
	a, err := scanAllocation(c.db.QueryRowContext(ctx, q, id, ownerID, status, notes))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

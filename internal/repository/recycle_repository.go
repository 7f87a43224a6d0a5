package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nurse-assist/nai-admin-api/internal/models"
)

const recycleColumns = `id, original_table, original_id, record_data, deleted_at, deleted_by, restored_at, permanently_deleted_at`

// RecycleBinRepository persists holding-area records for soft deletes.
type RecycleBinRepository struct {
	db *sqlx.DB
}

// NewRecycleBinRepository constructs the repository.
func NewRecycleBinRepository(db *sqlx.DB) *RecycleBinRepository {
	return &RecycleBinRepository{db: db}
}

// Insert stores a new holding record. Both terminal timestamps start null.
func (r *RecycleBinRepository) Insert(ctx context.Context, record *models.RecycleBinRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.DeletedAt.IsZero() {
		record.DeletedAt = time.Now().UTC()
	}
	const query = `INSERT INTO recycle_bin (id, original_table, original_id, record_data, deleted_at, deleted_by, restored_at, permanently_deleted_at)
        VALUES (:id, :original_table, :original_id, :record_data, :deleted_at, :deleted_by, :restored_at, :permanently_deleted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert recycle bin record: %w", err)
	}
	return nil
}

// FindByID retrieves one holding record.
func (r *RecycleBinRepository) FindByID(ctx context.Context, id string) (*models.RecycleBinRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM recycle_bin WHERE id = $1", recycleColumns)
	var record models.RecycleBinRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListActive returns restorable records, most recently deleted first.
// Records with either terminal timestamp set are excluded by the query.
func (r *RecycleBinRepository) ListActive(ctx context.Context, limit int) ([]models.RecycleBinRecord, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM recycle_bin
        WHERE restored_at IS NULL AND permanently_deleted_at IS NULL
        ORDER BY deleted_at DESC LIMIT %d`, recycleColumns, limit)
	var records []models.RecycleBinRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list active recycle bin records: %w", err)
	}
	return records, nil
}

// MarkRestored sets restored_at on an active record. Returns sql.ErrNoRows
// when the record is missing or already terminal, so a restore can never
// overwrite an earlier outcome.
func (r *RecycleBinRepository) MarkRestored(ctx context.Context, id string, restoredAt time.Time) error {
	const query = `UPDATE recycle_bin SET restored_at = $2
        WHERE id = $1 AND restored_at IS NULL AND permanently_deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, restoredAt)
	if err != nil {
		return fmt.Errorf("mark recycle bin record restored: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check restored rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkPurged sets permanently_deleted_at on an active record. The snapshot
// payload is retained; purging only ends restorability. Same terminal-state
// guard as MarkRestored.
func (r *RecycleBinRepository) MarkPurged(ctx context.Context, id string, purgedAt time.Time) error {
	const query = `UPDATE recycle_bin SET permanently_deleted_at = $2
        WHERE id = $1 AND restored_at IS NULL AND permanently_deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, purgedAt)
	if err != nil {
		return fmt.Errorf("mark recycle bin record purged: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check purged rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

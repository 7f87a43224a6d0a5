package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nurse-assist/nai-admin-api/internal/models"
)

const leadColumns = `id, lead_number, full_name, email, phone, source, status, assigned_to, notes, created_at, updated_at`

// LeadRepository manages persistence for marketing leads.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository constructs a LeadRepository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// List returns leads matching the provided filters, most recent first.
func (r *LeadRepository) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error) {
	base := "FROM leads WHERE 1=1"
	var args []interface{}
	var conditions []string

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(lead_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)+1))
		args = append(args, filter.Source)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", leadColumns, base, size, offset)

	var leads []models.Lead
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}
	return leads, total, nil
}

// FindByID fetches a lead by ID.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	query := fmt.Sprintf("SELECT %s FROM leads WHERE id = $1", leadColumns)
	var lead models.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Create inserts a new lead record, assigning identity and timestamps.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	return r.Insert(ctx, lead)
}

// Insert writes the lead row exactly as given; used by restores.
func (r *LeadRepository) Insert(ctx context.Context, lead *models.Lead) error {
	const query = `INSERT INTO leads (id, lead_number, full_name, email, phone, source, status, assigned_to, notes, created_at, updated_at)
        VALUES (:id, :lead_number, :full_name, :email, :phone, :source, :status, :assigned_to, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// Update modifies an existing lead.
func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	lead.UpdatedAt = time.Now().UTC()
	const query = `UPDATE leads SET full_name = :full_name, email = :email, phone = :phone, source = :source, status = :status, assigned_to = :assigned_to, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, lead); err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	return nil
}

// Delete physically removes a lead row.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM leads WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

// Count returns the total number of leads.
func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM leads"); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return total, nil
}

// CountByStatus groups leads by funnel status.
func (r *LeadRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM leads GROUP BY status ORDER BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	return counts, nil
}

// CountBySource groups leads by marketing source.
func (r *LeadRepository) CountBySource(ctx context.Context) ([]models.SourceCount, error) {
	const query = `SELECT source, COUNT(*) AS count FROM leads GROUP BY source ORDER BY source`
	var counts []models.SourceCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count leads by source: %w", err)
	}
	return counts, nil
}

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

const referralColumns = `id, partner_name, contact_name, email, phone, commission_rate, active, notes, created_at, updated_at`

// ReferralRepository manages persistence for referral partners.
type ReferralRepository struct {
	db *sqlx.DB
}

// NewReferralRepository constructs a ReferralRepository.
func NewReferralRepository(db *sqlx.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// List returns referral partners matching the provided filters, most recent first.
func (r *ReferralRepository) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, int, error) {
	base := "FROM referrals WHERE 1=1"
	var args []interface{}
	var conditions []string

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(partner_name) LIKE $%d OR LOWER(contact_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", referralColumns, base, size, offset)

	var referrals []models.Referral
	if err := r.db.SelectContext(ctx, &referrals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list referrals: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count referrals: %w", err)
	}
	return referrals, total, nil
}

// FindByID fetches a referral partner by ID.
func (r *ReferralRepository) FindByID(ctx context.Context, id string) (*models.Referral, error) {
	query := fmt.Sprintf("SELECT %s FROM referrals WHERE id = $1", referralColumns)
	var referral models.Referral
	if err := r.db.GetContext(ctx, &referral, query, id); err != nil {
		return nil, err
	}
	return &referral, nil
}

// Create inserts a new referral partner, assigning identity and timestamps.
func (r *ReferralRepository) Create(ctx context.Context, referral *models.Referral) error {
	if referral.ID == "" {
		referral.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if referral.CreatedAt.IsZero() {
		referral.CreatedAt = now
	}
	referral.UpdatedAt = now
	return r.Insert(ctx, referral)
}

// Insert writes the referral row exactly as given; used by restores.
func (r *ReferralRepository) Insert(ctx context.Context, referral *models.Referral) error {
	const query = `INSERT INTO referrals (id, partner_name, contact_name, email, phone, commission_rate, active, notes, created_at, updated_at)
        VALUES (:id, :partner_name, :contact_name, :email, :phone, :commission_rate, :active, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("insert referral: %w", err)
	}
	return nil
}

// Update modifies an existing referral partner.
func (r *ReferralRepository) Update(ctx context.Context, referral *models.Referral) error {
	referral.UpdatedAt = time.Now().UTC()
	const query = `UPDATE referrals SET partner_name = :partner_name, contact_name = :contact_name, email = :email, phone = :phone, commission_rate = :commission_rate, active = :active, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, referral); err != nil {
		return fmt.Errorf("update referral: %w", err)
	}
	return nil
}

// Delete physically removes a referral row.
func (r *ReferralRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM referrals WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete referral: %w", err)
	}
	return nil
}

// Count returns the total number of referral partners.
func (r *ReferralRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM referrals"); err != nil {
		return 0, fmt.Errorf("count referrals: %w", err)
	}
	return total, nil
}

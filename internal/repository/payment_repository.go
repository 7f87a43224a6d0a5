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

const paymentColumns = `id, student_id, amount_cents, currency, method, status, reference, paid_at, notes, created_at, updated_at`

// PaymentRepository manages persistence for tuition payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments matching the provided filters, most recent first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base := "FROM payments WHERE 1=1"
	var args []interface{}
	var conditions []string

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", paymentColumns, base, size, offset)

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID fetches a payment by ID.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a new payment, assigning identity and timestamps.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	return r.Insert(ctx, payment)
}

// Insert writes the payment row exactly as given; used by restores.
func (r *PaymentRepository) Insert(ctx context.Context, payment *models.Payment) error {
	const query = `INSERT INTO payments (id, student_id, amount_cents, currency, method, status, reference, paid_at, notes, created_at, updated_at)
        VALUES (:id, :student_id, :amount_cents, :currency, :method, :status, :reference, :paid_at, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// Update modifies an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET student_id = :student_id, amount_cents = :amount_cents, currency = :currency, method = :method, status = :status, reference = :reference, paid_at = :paid_at, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// Delete physically removes a payment row.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM payments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// Count returns the total number of payments.
func (r *PaymentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM payments"); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return total, nil
}

// TotalsByStatus aggregates payment counts and amounts per status.
func (r *PaymentRepository) TotalsByStatus(ctx context.Context) ([]models.PaymentStatusTotal, error) {
	const query = `SELECT status, COUNT(*) AS count, COALESCE(SUM(amount_cents), 0) AS total_cents FROM payments GROUP BY status ORDER BY status`
	var totals []models.PaymentStatusTotal
	if err := r.db.SelectContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("payment totals by status: %w", err)
	}
	return totals, nil
}

// MonthlyTotals aggregates paid amounts per calendar month, oldest first.
func (r *PaymentRepository) MonthlyTotals(ctx context.Context, months int) ([]models.PaymentMonthlyTotal, error) {
	if months <= 0 {
		months = 12
	}
	const query = `SELECT TO_CHAR(paid_at, 'YYYY-MM') AS month, COALESCE(SUM(amount_cents), 0) AS total_cents
        FROM payments WHERE status = $1 AND paid_at IS NOT NULL
        GROUP BY TO_CHAR(paid_at, 'YYYY-MM') ORDER BY month DESC LIMIT $2`
	var totals []models.PaymentMonthlyTotal
	if err := r.db.SelectContext(ctx, &totals, query, models.PaymentStatusPaid, months); err != nil {
		return nil, fmt.Errorf("payment monthly totals: %w", err)
	}
	return totals, nil
}

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

const auditColumns = `id, user_id, user_email, action, table_name, record_id, old_values, new_values, ip_address, user_agent, severity, created_at`

// AuditLogRepository persists the append-only audit trail.
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository constructs the repository.
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Insert appends an audit entry.
func (r *AuditLogRepository) Insert(ctx context.Context, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Severity == "" {
		entry.Severity = models.AuditSeverityInfo
	}
	const query = `INSERT INTO audit_logs (id, user_id, user_email, action, table_name, record_id, old_values, new_values, ip_address, user_agent, severity, created_at)
        VALUES (:id, :user_id, :user_email, :action, :table_name, :record_id, :old_values, :new_values, :ip_address, :user_agent, :severity, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns audit entries newest first applying the optional filters.
func (r *AuditLogRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	base := "FROM audit_logs WHERE 1=1"
	var args []interface{}
	var conditions []string

	if filter.TableName != "" {
		conditions = append(conditions, fmt.Sprintf("table_name = $%d", len(args)+1))
		args = append(args, filter.TableName)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}
	if filter.Severity != "" {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", len(args)+1))
		args = append(args, filter.Severity)
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
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", auditColumns, base, size, offset)

	var entries []models.AuditLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	return entries, total, nil
}

// ScrubUser detaches a user from their audit entries: the id becomes null
// and the email a sentinel, so the trail stays readable after the account
// is deleted. Everything else on the entries is left untouched.
func (r *AuditLogRepository) ScrubUser(ctx context.Context, userID string) error {
	const query = `UPDATE audit_logs SET user_id = NULL, user_email = $2 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, models.ScrubbedUserEmail); err != nil {
		return fmt.Errorf("scrub audit logs for user: %w", err)
	}
	return nil
}

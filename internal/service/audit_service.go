package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type auditLogRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
	ScrubUser(ctx context.Context, userID string) error
}

// Actor identifies who performed a mutation, for audit attribution.
// ID is nil in unauthenticated contexts.
type Actor struct {
	ID        *string
	Email     string
	IP        string
	UserAgent string
}

// AuditLogService maintains the append-only audit trail.
type AuditLogService struct {
	repo   auditLogRepository
	logger *zap.Logger
}

// NewAuditLogService constructs the service.
func NewAuditLogService(repo auditLogRepository, logger *zap.Logger) *AuditLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLogService{repo: repo, logger: logger}
}

// Record appends one entry. Entries are never updated or removed afterwards,
// with the single exception of the user scrub below.
func (s *AuditLogService) Record(ctx context.Context, entry *models.AuditLog) error {
	if err := s.repo.Insert(ctx, entry); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record audit entry")
	}
	return nil
}

// List returns audit entries newest first with pagination metadata.
func (s *AuditLogService) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 100
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return entries, pagination, nil
}

// ScrubUser detaches the given user from every audit entry they produced.
// Called synchronously before the account itself is deleted.
func (s *AuditLogService) ScrubUser(ctx context.Context, userID string) error {
	if err := s.repo.ScrubUser(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to scrub audit entries")
	}
	return nil
}

// recordAudit appends a trail entry and logs instead of failing when the
// sink is unavailable. Audit writes never veto the mutation they describe.
func recordAudit(ctx context.Context, sink auditRecorder, logger *zap.Logger, actor Actor, action, table, recordID string, oldValues, newValues []byte, severity string) {
	if sink == nil {
		return
	}
	entry := &models.AuditLog{
		UserID:    actor.ID,
		UserEmail: actor.Email,
		Action:    action,
		TableName: table,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
		OldValues: oldValues,
		NewValues: newValues,
		Severity:  severity,
	}
	if recordID != "" {
		entry.RecordID = &recordID
	}
	if err := sink.Record(ctx, entry); err != nil {
		logger.Warn("failed to record audit entry",
			zap.String("action", action),
			zap.String("table", table),
			zap.Error(err))
	}
}

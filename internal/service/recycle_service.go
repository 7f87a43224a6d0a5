package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type recycleBinRepository interface {
	Insert(ctx context.Context, record *models.RecycleBinRecord) error
	FindByID(ctx context.Context, id string) (*models.RecycleBinRecord, error)
	ListActive(ctx context.Context, limit int) ([]models.RecycleBinRecord, error)
	MarkRestored(ctx context.Context, id string, restoredAt time.Time) error
	MarkPurged(ctx context.Context, id string, purgedAt time.Time) error
}

type auditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

type studentInserter interface {
	Insert(ctx context.Context, student *models.Student) error
}

type courseInserter interface {
	Insert(ctx context.Context, course *models.Course) error
}

type leadInserter interface {
	Insert(ctx context.Context, lead *models.Lead) error
}

type referralInserter interface {
	Insert(ctx context.Context, referral *models.Referral) error
}

type paymentInserter interface {
	Insert(ctx context.Context, payment *models.Payment) error
}

// RestoreTargets groups the typed insert paths a restore may dispatch to.
// The set is closed: exactly the five soft-deletable collections.
type RestoreTargets struct {
	Students  studentInserter
	Courses   courseInserter
	Leads     leadInserter
	Referrals referralInserter
	Payments  paymentInserter
}

type restoreFunc func(ctx context.Context, snapshot *models.RecordSnapshot) error

// RecycleBinService is the holding area between "deleted" and "gone forever".
// Deleted rows are captured as snapshots; each snapshot can later be restored
// into its original collection or purged, and either outcome is terminal.
type RecycleBinService struct {
	repo      recycleBinRepository
	restorers map[string]restoreFunc
	audit     auditRecorder
	dashboard summaryInvalidator
	logger    *zap.Logger
	listLimit int
	now       func() time.Time
}

// NewRecycleBinService constructs the service with its restore registry.
func NewRecycleBinService(repo recycleBinRepository, targets RestoreTargets, audit auditRecorder, dashboard summaryInvalidator, listLimit int, logger *zap.Logger) *RecycleBinService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if listLimit <= 0 || listLimit > 50 {
		listLimit = 50
	}
	restorers := map[string]restoreFunc{
		models.TableStudents: func(ctx context.Context, s *models.RecordSnapshot) error {
			return targets.Students.Insert(ctx, s.Student)
		},
		models.TableCourses: func(ctx context.Context, s *models.RecordSnapshot) error {
			return targets.Courses.Insert(ctx, s.Course)
		},
		models.TableLeads: func(ctx context.Context, s *models.RecordSnapshot) error {
			return targets.Leads.Insert(ctx, s.Lead)
		},
		models.TableReferrals: func(ctx context.Context, s *models.RecordSnapshot) error {
			return targets.Referrals.Insert(ctx, s.Referral)
		},
		models.TablePayments: func(ctx context.Context, s *models.RecordSnapshot) error {
			return targets.Payments.Insert(ctx, s.Payment)
		},
	}
	return &RecycleBinService{
		repo:      repo,
		restorers: restorers,
		audit:     audit,
		dashboard: dashboard,
		logger:    logger,
		listLimit: listLimit,
		now:       time.Now,
	}
}

// MoveToHoldingArea captures a full row snapshot before its physical delete.
// Not idempotent: a second call for the same row creates a second holding
// entry, so callers invoke it exactly once per logical deletion. A failure
// here must abort the delete that triggered it.
func (s *RecycleBinService) MoveToHoldingArea(ctx context.Context, snapshot *models.RecordSnapshot, actor Actor) (*models.RecycleBinRecord, error) {
	if _, ok := s.restorers[snapshot.Table]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedCollection, "collection "+snapshot.Table+" is not soft-deletable")
	}
	raw, err := snapshot.Encode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode snapshot")
	}

	record := &models.RecycleBinRecord{
		OriginalTable: snapshot.Table,
		OriginalID:    snapshot.EntityID(),
		RecordData:    raw,
		DeletedAt:     s.now().UTC(),
		DeletedBy:     actor.ID,
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to write holding record")
	}
	return record, nil
}

// ListActive returns restorable holding records, most recently deleted
// first, each annotated with a display name pulled from its snapshot.
func (s *RecycleBinService) ListActive(ctx context.Context, limit int) ([]models.RecycleBinListItem, error) {
	if limit <= 0 || limit > s.listLimit {
		limit = s.listLimit
	}
	records, err := s.repo.ListActive(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recycle bin")
	}

	items := make([]models.RecycleBinListItem, 0, len(records))
	for _, record := range records {
		item := models.RecycleBinListItem{RecycleBinRecord: record}
		snapshot, err := models.DecodeSnapshot(record.OriginalTable, record.RecordData)
		if err != nil {
			s.logger.Warn("undecodable snapshot in recycle bin",
				zap.String("record_id", record.ID),
				zap.String("original_table", record.OriginalTable),
				zap.Error(err))
		} else {
			item.DisplayName = snapshot.DisplayName()
		}
		items = append(items, item)
	}
	return items, nil
}

// Restore re-inserts a snapshot into its original collection, identifier
// included, then marks the holding record consumed. The two steps are
// separate statements: a crash between them leaves the row materialised and
// the holding record still active, which a retry then reports as a conflict.
func (s *RecycleBinService) Restore(ctx context.Context, id string, actor Actor) error {
	record, err := s.findActive(ctx, id)
	if err != nil {
		return err
	}

	restore, ok := s.restorers[record.OriginalTable]
	if !ok {
		return appErrors.Clone(appErrors.ErrUnsupportedCollection, "cannot restore into "+record.OriginalTable)
	}

	snapshot, err := models.DecodeSnapshot(record.OriginalTable, record.RecordData)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode snapshot")
	}

	if err := restore(ctx, snapshot); err != nil {
		if isUniqueViolation(err) {
			// The original id lives again, recreated independently. The
			// holding record stays active so the operator can retry after
			// resolving the clash.
			return appErrors.Clone(appErrors.ErrRestoreConflict, "an entity with this id already exists in "+record.OriginalTable)
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to re-insert snapshot")
	}

	if err := s.repo.MarkRestored(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "record reached a terminal state concurrently")
		}
		// Row is restored but the holding record was not marked: the entity
		// now exists in both places until an operator intervenes.
		s.logger.Error("restored row but failed to mark holding record",
			zap.String("record_id", id),
			zap.String("original_table", record.OriginalTable),
			zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "restored row but failed to mark holding record")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionRestore, record.OriginalTable, record.OriginalID, record.RecordData, nil, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return nil
}

// Purge permanently retires a holding record. The snapshot payload is kept
// for forensics; only restorability ends.
func (s *RecycleBinService) Purge(ctx context.Context, id string, actor Actor) error {
	record, err := s.findActive(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.MarkPurged(ctx, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrConflict, "record reached a terminal state concurrently")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to purge holding record")
	}

	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionPurge, record.OriginalTable, record.OriginalID, record.RecordData, nil, models.AuditSeverityWarning)
	return nil
}

func (s *RecycleBinService) findActive(ctx context.Context, id string) (*models.RecycleBinRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recycle bin record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recycle bin record")
	}
	if record.RestoredAt != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "record has already been restored")
	}
	if record.PermanentlyDeletedAt != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "record has already been permanently deleted")
	}
	return record, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

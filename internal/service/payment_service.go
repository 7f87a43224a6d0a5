package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type paymentStudentResolver interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreatePaymentRequest holds payload for recording payments.
type CreatePaymentRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Method      string `json:"method"`
	Status      string `json:"status" validate:"omitempty,oneof=pending paid refunded"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

// UpdatePaymentRequest holds payload for updating payments.
type UpdatePaymentRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"omitempty,len=3"`
	Method      string `json:"method"`
	Status      string `json:"status" validate:"required,oneof=pending paid refunded"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
}

// PaymentService handles tuition payment use-cases.
type PaymentService struct {
	repo      paymentRepository
	students  paymentStudentResolver
	recycle   holdingArea
	audit     auditRecorder
	dashboard summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, students paymentStudentResolver, recycle holdingArea, audit auditRecorder, dashboard summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:      repo,
		students:  students,
		recycle:   recycle,
		audit:     audit,
		dashboard: dashboard,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns payments and pagination metadata.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return payments, pagination, nil
}

// Get returns a single payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create records a tuition payment against a known student.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest, actor Actor) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate student")
	}
	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}
	currency := req.Currency
	if currency == "" {
		currency = "AUD"
	}
	payment := &models.Payment{
		StudentID:   req.StudentID,
		AmountCents: req.AmountCents,
		Currency:    currency,
		Method:      req.Method,
		Status:      status,
		Reference:   req.Reference,
		Notes:       req.Notes,
	}
	if status == models.PaymentStatusPaid {
		paidAt := s.now().UTC()
		payment.PaidAt = &paidAt
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	newValues, _ := models.SnapshotOfPayment(payment).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCreate, models.TablePayments, payment.ID, nil, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return payment, nil
}

// Update modifies an existing payment. PaidAt is stamped on the transition
// into paid and cleared when the payment leaves that status.
func (s *PaymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest, actor Actor) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	payment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldValues, _ := models.SnapshotOfPayment(payment).Encode()

	payment.AmountCents = req.AmountCents
	if req.Currency != "" {
		payment.Currency = req.Currency
	}
	payment.Method = req.Method
	payment.Reference = req.Reference
	payment.Notes = req.Notes
	if req.Status != payment.Status {
		if req.Status == models.PaymentStatusPaid {
			paidAt := s.now().UTC()
			payment.PaidAt = &paidAt
		} else {
			payment.PaidAt = nil
		}
	}
	payment.Status = req.Status
	if err := s.repo.Update(ctx, payment); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	newValues, _ := models.SnapshotOfPayment(payment).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUpdate, models.TablePayments, payment.ID, oldValues, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return payment, nil
}

// Delete moves the payment into the recycle bin, then removes the row.
func (s *PaymentService) Delete(ctx context.Context, id string, actor Actor) error {
	payment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record, err := s.recycle.MoveToHoldingArea(ctx, models.SnapshotOfPayment(payment), actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.TablePayments, id, record.RecordData, nil, models.AuditSeverityWarning)
	dropSummary(ctx, s.dashboard)
	return nil
}

package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type referralRepository interface {
	List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, int, error)
	FindByID(ctx context.Context, id string) (*models.Referral, error)
	Create(ctx context.Context, referral *models.Referral) error
	Update(ctx context.Context, referral *models.Referral) error
	Delete(ctx context.Context, id string) error
}

// CreateReferralRequest holds payload for registering referral partners.
type CreateReferralRequest struct {
	PartnerName    string  `json:"partner_name" validate:"required"`
	ContactName    string  `json:"contact_name"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone"`
	CommissionRate float64 `json:"commission_rate" validate:"gte=0,lte=100"`
	Notes          string  `json:"notes"`
}

// UpdateReferralRequest holds payload for updating referral partners.
type UpdateReferralRequest struct {
	PartnerName    string  `json:"partner_name" validate:"required"`
	ContactName    string  `json:"contact_name"`
	Email          string  `json:"email" validate:"omitempty,email"`
	Phone          string  `json:"phone"`
	CommissionRate float64 `json:"commission_rate" validate:"gte=0,lte=100"`
	Active         bool    `json:"active"`
	Notes          string  `json:"notes"`
}

// ReferralService handles referral partner use-cases.
type ReferralService struct {
	repo      referralRepository
	recycle   holdingArea
	audit     auditRecorder
	dashboard summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReferralService constructs the referral service.
func NewReferralService(repo referralRepository, recycle holdingArea, audit auditRecorder, dashboard summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *ReferralService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferralService{repo: repo, recycle: recycle, audit: audit, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns referral partners and pagination metadata.
func (s *ReferralService) List(ctx context.Context, filter models.ReferralFilter) ([]models.Referral, *models.Pagination, error) {
	referrals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list referrals")
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
	return referrals, pagination, nil
}

// Get returns a single referral partner.
func (s *ReferralService) Get(ctx context.Context, id string) (*models.Referral, error) {
	referral, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "referral not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load referral")
	}
	return referral, nil
}

// Create registers a new referral partner.
func (s *ReferralService) Create(ctx context.Context, req CreateReferralRequest, actor Actor) (*models.Referral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid referral payload")
	}
	referral := &models.Referral{
		PartnerName:    req.PartnerName,
		ContactName:    req.ContactName,
		Email:          req.Email,
		Phone:          req.Phone,
		CommissionRate: req.CommissionRate,
		Active:         true,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, referral); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create referral")
	}
	newValues, _ := models.SnapshotOfReferral(referral).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCreate, models.TableReferrals, referral.ID, nil, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return referral, nil
}

// Update modifies an existing referral partner.
func (s *ReferralService) Update(ctx context.Context, id string, req UpdateReferralRequest, actor Actor) (*models.Referral, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid referral payload")
	}
	referral, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldValues, _ := models.SnapshotOfReferral(referral).Encode()

	referral.PartnerName = req.PartnerName
	referral.ContactName = req.ContactName
	referral.Email = req.Email
	referral.Phone = req.Phone
	referral.CommissionRate = req.CommissionRate
	referral.Active = req.Active
	referral.Notes = req.Notes
	if err := s.repo.Update(ctx, referral); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "referral not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update referral")
	}
	newValues, _ := models.SnapshotOfReferral(referral).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUpdate, models.TableReferrals, referral.ID, oldValues, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return referral, nil
}

// Delete moves the referral partner into the recycle bin, then removes the row.
func (s *ReferralService) Delete(ctx context.Context, id string, actor Actor) error {
	referral, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record, err := s.recycle.MoveToHoldingArea(ctx, models.SnapshotOfReferral(referral), actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "referral not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete referral")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.TableReferrals, id, record.RecordData, nil, models.AuditSeverityWarning)
	dropSummary(ctx, s.dashboard)
	return nil
}

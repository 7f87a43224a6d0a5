package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type leadRepository interface {
	List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, int, error)
	FindByID(ctx context.Context, id string) (*models.Lead, error)
	Create(ctx context.Context, lead *models.Lead) error
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// CreateLeadRequest holds payload for registering leads.
type CreateLeadRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
	Source   string `json:"source"`
	Notes    string `json:"notes"`
}

// UpdateLeadRequest holds payload for updating leads.
type UpdateLeadRequest struct {
	FullName   string  `json:"full_name" validate:"required"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone"`
	Source     string  `json:"source"`
	Status     string  `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
	AssignedTo *string `json:"assigned_to"`
	Notes      string  `json:"notes"`
}

// LeadService handles marketing lead use-cases.
type LeadService struct {
	repo      leadRepository
	recycle   holdingArea
	audit     auditRecorder
	dashboard summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLeadService constructs the lead service.
func NewLeadService(repo leadRepository, recycle holdingArea, audit auditRecorder, dashboard summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *LeadService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadService{repo: repo, recycle: recycle, audit: audit, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns leads and pagination metadata.
func (s *LeadService) List(ctx context.Context, filter models.LeadFilter) ([]models.Lead, *models.Pagination, error) {
	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list leads")
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
	return leads, pagination, nil
}

// Get returns a single lead.
func (s *LeadService) Get(ctx context.Context, id string) (*models.Lead, error) {
	lead, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lead")
	}
	return lead, nil
}

// Create registers a new lead with a sequential display number.
// The number comes from a table count, not a database sequence, so two
// concurrent creates can mint the same number. The column carries no
// uniqueness constraint and only serves display.
func (s *LeadService) Create(ctx context.Context, req CreateLeadRequest, actor Actor) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lead payload")
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to number lead")
	}
	lead := &models.Lead{
		LeadNumber: fmt.Sprintf(models.LeadNumberFormat, count+1),
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Source:     req.Source,
		Status:     models.LeadStatusNew,
		Notes:      req.Notes,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lead")
	}
	newValues, _ := models.SnapshotOfLead(lead).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCreate, models.TableLeads, lead.ID, nil, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return lead, nil
}

// Update modifies an existing lead. The lead number is immutable.
func (s *LeadService) Update(ctx context.Context, id string, req UpdateLeadRequest, actor Actor) (*models.Lead, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lead payload")
	}
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldValues, _ := models.SnapshotOfLead(lead).Encode()

	lead.FullName = req.FullName
	lead.Email = req.Email
	lead.Phone = req.Phone
	lead.Source = req.Source
	lead.Status = req.Status
	lead.AssignedTo = req.AssignedTo
	lead.Notes = req.Notes
	if err := s.repo.Update(ctx, lead); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lead")
	}
	newValues, _ := models.SnapshotOfLead(lead).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUpdate, models.TableLeads, lead.ID, oldValues, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return lead, nil
}

// Delete moves the lead into the recycle bin, then removes the row.
func (s *LeadService) Delete(ctx context.Context, id string, actor Actor) error {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record, err := s.recycle.MoveToHoldingArea(ctx, models.SnapshotOfLead(lead), actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "lead not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lead")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.TableLeads, id, record.RecordData, nil, models.AuditSeverityWarning)
	dropSummary(ctx, s.dashboard)
	return nil
}

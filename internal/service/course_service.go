package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest holds payload for creating courses.
type CreateCourseRequest struct {
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required"`
	Description   string `json:"description"`
	DurationWeeks int    `json:"duration_weeks" validate:"gte=0"`
	PriceCents    int64  `json:"price_cents" validate:"gte=0"`
	Active        *bool  `json:"active"`
}

// UpdateCourseRequest holds payload for updating courses.
type UpdateCourseRequest struct {
	Name          string `json:"name" validate:"required"`
	Code          string `json:"code" validate:"required"`
	Description   string `json:"description"`
	DurationWeeks int    `json:"duration_weeks" validate:"gte=0"`
	PriceCents    int64  `json:"price_cents" validate:"gte=0"`
	Active        bool   `json:"active"`
}

// CourseService handles course catalogue use-cases.
type CourseService struct {
	repo      courseRepository
	recycle   holdingArea
	audit     auditRecorder
	dashboard summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(repo courseRepository, recycle holdingArea, audit auditRecorder, dashboard summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, recycle: recycle, audit: audit, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
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
	return courses, pagination, nil
}

// Get returns a single course.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a course to the catalogue. Codes are unique.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest, actor Actor) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already used")
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	course := &models.Course{
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		DurationWeeks: req.DurationWeeks,
		PriceCents:    req.PriceCents,
		Active:        active,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	newValues, _ := models.SnapshotOfCourse(course).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCreate, models.TableCourses, course.ID, nil, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest, actor Actor) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already used")
	}
	oldValues, _ := models.SnapshotOfCourse(course).Encode()

	course.Name = req.Name
	course.Code = req.Code
	course.Description = req.Description
	course.DurationWeeks = req.DurationWeeks
	course.PriceCents = req.PriceCents
	course.Active = req.Active
	if err := s.repo.Update(ctx, course); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	newValues, _ := models.SnapshotOfCourse(course).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUpdate, models.TableCourses, course.ID, oldValues, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return course, nil
}

// Delete moves the course into the recycle bin, then removes the row.
func (s *CourseService) Delete(ctx context.Context, id string, actor Actor) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record, err := s.recycle.MoveToHoldingArea(ctx, models.SnapshotOfCourse(course), actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.TableCourses, id, record.RecordData, nil, models.AuditSeverityWarning)
	dropSummary(ctx, s.dashboard)
	return nil
}

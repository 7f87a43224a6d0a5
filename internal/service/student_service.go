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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type holdingArea interface {
	MoveToHoldingArea(ctx context.Context, snapshot *models.RecordSnapshot, actor Actor) (*models.RecycleBinRecord, error)
}

// CreateStudentRequest holds payload for registering students.
type CreateStudentRequest struct {
	FullName       string     `json:"full_name" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	Phone          string     `json:"phone"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Address        string     `json:"address"`
	CourseID       *string    `json:"course_id"`
	Status         string     `json:"status" validate:"omitempty,oneof=enrolled completed withdrawn"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
	Notes          string     `json:"notes"`
}

// UpdateStudentRequest holds payload for updating students.
type UpdateStudentRequest struct {
	FullName       string     `json:"full_name" validate:"required"`
	Email          string     `json:"email" validate:"required,email"`
	Phone          string     `json:"phone"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Address        string     `json:"address"`
	CourseID       *string    `json:"course_id"`
	Status         string     `json:"status" validate:"required,oneof=enrolled completed withdrawn"`
	EnrollmentDate *time.Time `json:"enrollment_date"`
	Notes          string     `json:"notes"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	recycle   holdingArea
	audit     auditRecorder
	dashboard summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, recycle holdingArea, audit auditRecorder, dashboard summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, recycle: recycle, audit: audit, dashboard: dashboard, validator: validate, logger: logger}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest, actor Actor) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	status := req.Status
	if status == "" {
		status = models.StudentStatusEnrolled
	}
	student := &models.Student{
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
		CourseID:       req.CourseID,
		Status:         status,
		EnrollmentDate: req.EnrollmentDate,
		Notes:          req.Notes,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	newValues, _ := models.SnapshotOfStudent(student).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionCreate, models.TableStudents, student.ID, nil, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest, actor Actor) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldValues, _ := models.SnapshotOfStudent(student).Encode()

	student.FullName = req.FullName
	student.Email = req.Email
	student.Phone = req.Phone
	student.DateOfBirth = req.DateOfBirth
	student.Address = req.Address
	student.CourseID = req.CourseID
	student.Status = req.Status
	student.EnrollmentDate = req.EnrollmentDate
	student.Notes = req.Notes
	if err := s.repo.Update(ctx, student); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	newValues, _ := models.SnapshotOfStudent(student).Encode()
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionUpdate, models.TableStudents, student.ID, oldValues, newValues, models.AuditSeverityInfo)
	dropSummary(ctx, s.dashboard)
	return student, nil
}

// Delete moves the student into the recycle bin, then removes the row.
// The snapshot write happens first: if it fails, the row stays untouched.
func (s *StudentService) Delete(ctx context.Context, id string, actor Actor) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	record, err := s.recycle.MoveToHoldingArea(ctx, models.SnapshotOfStudent(student), actor)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	recordAudit(ctx, s.audit, s.logger, actor, models.AuditActionDelete, models.TableStudents, id, record.RecordData, nil, models.AuditSeverityWarning)
	dropSummary(ctx, s.dashboard)
	return nil
}

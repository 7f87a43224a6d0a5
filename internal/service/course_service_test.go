package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	appErrors "github.com/nurse-assist/nai-admin-api/pkg/errors"
)

type mockCourseRepo struct {
	courses      map[string]models.Course
	existsByCode map[string]string
	deleted      []string
}

func (m *mockCourseRepo) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	if id, ok := m.existsByCode[code]; ok {
		if excludeID == "" || id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if m.courses == nil {
		m.courses = make(map[string]models.Course)
	}
	if course.ID == "" {
		course.ID = "generated"
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return sql.ErrNoRows
	}
	m.courses[course.ID] = *course
	return nil
}

func (m *mockCourseRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCourseServiceCreate(t *testing.T) {
	repo := &mockCourseRepo{existsByCode: make(map[string]string)}
	svc := NewCourseService(repo, &mockHoldingArea{}, &mockAudit{}, nil, validator.New(), zap.NewNop())

	course, err := svc.Create(context.Background(), CreateCourseRequest{
		Name:          "Certificate III in Individual Support",
		Code:          "CHC33021",
		DurationWeeks: 52,
		PriceCents:    450000,
	}, testActor())
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.True(t, course.Active)
}

func TestCourseServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockCourseRepo{existsByCode: map[string]string{"CHC33021": "other"}}
	svc := NewCourseService(repo, &mockHoldingArea{}, &mockAudit{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateCourseRequest{Name: "Cert III", Code: "CHC33021"}, testActor())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdateAllowsOwnCode(t *testing.T) {
	repo := &mockCourseRepo{
		courses:      map[string]models.Course{"c1": {ID: "c1", Name: "Cert III", Code: "CHC33021", Active: true}},
		existsByCode: map[string]string{"CHC33021": "c1"},
	}
	svc := NewCourseService(repo, &mockHoldingArea{}, &mockAudit{}, nil, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "c1", UpdateCourseRequest{
		Name:   "Certificate III in Individual Support",
		Code:   "CHC33021",
		Active: true,
	}, testActor())
	require.NoError(t, err)
	assert.Equal(t, "Certificate III in Individual Support", updated.Name)
}

func TestCourseServiceDeleteSnapshotsFirst(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]models.Course{"c1": {ID: "c1", Name: "Cert III", Code: "CHC33021"}}}
	bin := &mockHoldingArea{}
	svc := NewCourseService(repo, bin, &mockAudit{}, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "c1", testActor()))
	require.Len(t, bin.moved, 1)
	assert.Equal(t, models.TableCourses, bin.moved[0].Table)
	assert.Equal(t, []string{"c1"}, repo.deleted)
}

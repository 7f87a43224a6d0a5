package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	internalmiddleware "github.com/nurse-assist/nai-admin-api/internal/middleware"
	"github.com/nurse-assist/nai-admin-api/internal/models"
	"github.com/nurse-assist/nai-admin-api/internal/service"
)

func TestAdminRoutesIntegration(t *testing.T) {
	fixture := newRouterFixture()
	router := fixture.router

	t.Run("students list unauthorized", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/students", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("students list success", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/students", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStaff))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"full_name":"Ana Reyes"`)
	})

	t.Run("students create success", func(t *testing.T) {
		body := `{"full_name":"Ben Cruz","email":"ben@example.com"}`
		req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleStaff))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"enrolled"`)
	})

	t.Run("students delete forbidden for staff", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/students/student-1", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStaff))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("students delete moves to recycle bin", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/students/student-1", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNoContent, resp.Code)
		require.Len(t, fixture.recycleRepo.records, 1)
		require.NotContains(t, fixture.studentRepo.students, "student-1")
	})

	t.Run("recycle bin list forbidden for staff", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/recycle-bin", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStaff))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("recycle bin restore round trip", func(t *testing.T) {
		var binID string
		for id := range fixture.recycleRepo.records {
			binID = id
		}
		require.NotEmpty(t, binID)

		req, _ := http.NewRequest(http.MethodPost, "/recycle-bin/"+binID+"/restore", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"restored":true`)
		require.Contains(t, fixture.studentRepo.students, "student-1")
	})

	t.Run("recycle bin second restore conflicts", func(t *testing.T) {
		var binID string
		for id := range fixture.recycleRepo.records {
			binID = id
		}
		req, _ := http.NewRequest(http.MethodPost, "/recycle-bin/"+binID+"/restore", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("dashboard summary", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("X-Test-Role", string(models.RoleStaff))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"total_students":7`)
	})
}

type routerFixture struct {
	router      *gin.Engine
	studentRepo *routeStudentRepo
	recycleRepo *routeRecycleRepo
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID: "test-user",
				Email:  "tester@nurseassist.test",
				Role:   models.UserRole(role),
			})
		}
		c.Next()
	})

	studentRepo := newRouteStudentRepo()
	recycleRepo := newRouteRecycleRepo()
	audit := &routeAuditSink{}

	recycleSvc := service.NewRecycleBinService(recycleRepo, service.RestoreTargets{
		Students: studentRepo,
	}, audit, nil, 0, zap.NewNop())
	studentSvc := service.NewStudentService(studentRepo, recycleSvc, audit, nil, nil, zap.NewNop())

	counters := &routeCounters{students: 7}
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Students:  counters,
		Courses:   counters,
		Leads:     counters,
		Referrals: counters,
		Payments:  counters,
	})

	studentHandler := NewStudentHandler(studentSvc)
	recycleHandler := NewRecycleBinHandler(recycleSvc)
	dashboardHandler := NewDashboardHandler(dashboardSvc)

	anyStaff := internalmiddleware.RequireRoles(models.RoleOwner, models.RoleAdmin, models.RoleStaff)
	adminOnly := internalmiddleware.RequireRoles(models.RoleOwner, models.RoleAdmin)

	router.GET("/students", anyStaff, studentHandler.List)
	router.POST("/students", anyStaff, studentHandler.Create)
	router.DELETE("/students/:id", adminOnly, studentHandler.Delete)
	router.GET("/recycle-bin", adminOnly, recycleHandler.List)
	router.POST("/recycle-bin/:id/restore", adminOnly, recycleHandler.Restore)
	router.DELETE("/recycle-bin/:id", adminOnly, recycleHandler.Purge)
	router.GET("/dashboard", anyStaff, dashboardHandler.Summary)

	return &routerFixture{router: router, studentRepo: studentRepo, recycleRepo: recycleRepo}
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type routeStudentRepo struct {
	students map[string]*models.Student
}

func newRouteStudentRepo() *routeStudentRepo {
	return &routeStudentRepo{students: map[string]*models.Student{
		"student-1": {
			ID:       "student-1",
			FullName: "Ana Reyes",
			Email:    "ana@example.com",
			Status:   models.StudentStatusEnrolled,
		},
	}}
}

func (r *routeStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *routeStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (r *routeStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "generated"
	}
	r.students[student.ID] = student
	return nil
}

func (r *routeStudentRepo) Update(ctx context.Context, student *models.Student) error {
	r.students[student.ID] = student
	return nil
}

func (r *routeStudentRepo) Delete(ctx context.Context, id string) error {
	delete(r.students, id)
	return nil
}

func (r *routeStudentRepo) Insert(ctx context.Context, student *models.Student) error {
	r.students[student.ID] = student
	return nil
}

type routeRecycleRepo struct {
	records map[string]*models.RecycleBinRecord
}

func newRouteRecycleRepo() *routeRecycleRepo {
	return &routeRecycleRepo{records: map[string]*models.RecycleBinRecord{}}
}

func (r *routeRecycleRepo) Insert(ctx context.Context, record *models.RecycleBinRecord) error {
	if record.ID == "" {
		record.ID = "bin-1"
	}
	copied := *record
	r.records[record.ID] = &copied
	return nil
}

func (r *routeRecycleRepo) FindByID(ctx context.Context, id string) (*models.RecycleBinRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *record
	return &copied, nil
}

func (r *routeRecycleRepo) ListActive(ctx context.Context, limit int) ([]models.RecycleBinRecord, error) {
	var out []models.RecycleBinRecord
	for _, record := range r.records {
		if record.Active() {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *routeRecycleRepo) MarkRestored(ctx context.Context, id string, restoredAt time.Time) error {
	record, ok := r.records[id]
	if !ok || !record.Active() {
		return sql.ErrNoRows
	}
	record.RestoredAt = &restoredAt
	return nil
}

func (r *routeRecycleRepo) MarkPurged(ctx context.Context, id string, purgedAt time.Time) error {
	record, ok := r.records[id]
	if !ok || !record.Active() {
		return sql.ErrNoRows
	}
	record.PermanentlyDeletedAt = &purgedAt
	return nil
}

type routeAuditSink struct {
	entries []*models.AuditLog
}

func (r *routeAuditSink) Record(ctx context.Context, entry *models.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

type routeCounters struct {
	students int
}

func (r *routeCounters) Count(ctx context.Context) (int, error) { return r.students, nil }

func (r *routeCounters) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return []models.StatusCount{{Status: "enrolled", Count: r.students}}, nil
}

func (r *routeCounters) CountBySource(ctx context.Context) ([]models.SourceCount, error) {
	return nil, nil
}

func (r *routeCounters) TotalsByStatus(ctx context.Context) ([]models.PaymentStatusTotal, error) {
	return nil, nil
}

func (r *routeCounters) MonthlyTotals(ctx context.Context, months int) ([]models.PaymentMonthlyTotal, error) {
	return nil, nil
}

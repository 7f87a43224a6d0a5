package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurse-assist/nai-admin-api/internal/models"
)

type recordingSink struct {
	entries []*models.AuditLog
}

func (s *recordingSink) Record(ctx context.Context, entry *models.AuditLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func auditRouter(sink *recordingSink, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "user-1", Email: "admin@nurseassist.test"})
	})
	group := router.Group("/students", Audit(sink, models.TableStudents))
	group.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.POST("", func(c *gin.Context) { c.Status(status) })
	group.DELETE("/:id", func(c *gin.Context) { c.Status(status) })
	return router
}

func TestAuditMiddlewareRecordsMutatingRequests(t *testing.T) {
	sink := &recordingSink{}
	router := auditRouter(sink, http.StatusCreated)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/students", nil))

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, models.AuditActionCreate, entry.Action)
	assert.Equal(t, models.TableStudents, entry.TableName)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "user-1", *entry.UserID)
	assert.Equal(t, "admin@nurseassist.test", entry.UserEmail)
	assert.Contains(t, string(entry.NewValues), `"status":201`)
}

func TestAuditMiddlewareCapturesRecordID(t *testing.T) {
	sink := &recordingSink{}
	router := auditRouter(sink, http.StatusNoContent)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/students/stu-9", nil))

	require.Len(t, sink.entries, 1)
	entry := sink.entries[0]
	assert.Equal(t, models.AuditActionDelete, entry.Action)
	require.NotNil(t, entry.RecordID)
	assert.Equal(t, "stu-9", *entry.RecordID)
}

func TestAuditMiddlewareSkipsReadsAndFailures(t *testing.T) {
	sink := &recordingSink{}
	router := auditRouter(sink, http.StatusUnprocessableEntity)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/students", nil))
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/students", nil))

	assert.Empty(t, sink.entries)
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurse-assist/nai-admin-api/internal/models"
)

type auditSink interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// Audit records a request-level trail row after each successful mutating
// request on the wrapped routes. Services write their own entries carrying
// record snapshots; these rows capture the HTTP surface of the same change.
func Audit(sink auditSink, table string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		action, mutating := auditActionForMethod(c.Request.Method)
		if !mutating || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			TableName: table,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			Severity:  models.AuditSeverityInfo,
		}
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			entry.UserID = &user.UserID
			entry.UserEmail = user.Email
		}
		if id := c.Param("id"); id != "" {
			entry.RecordID = &id
		}
		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = sink.Record(c.Request.Context(), entry)
	}
}

func auditActionForMethod(method string) (string, bool) {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate, true
	case http.MethodDelete:
		return models.AuditActionDelete, true
	default:
		return "", false
	}
}

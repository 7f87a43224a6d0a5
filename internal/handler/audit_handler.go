package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurse-assist/nai-admin-api/internal/models"
	"github.com/nurse-assist/nai-admin-api/internal/service"
	"github.com/nurse-assist/nai-admin-api/pkg/response"
)

// AuditLogHandler exposes the audit trail, read only.
type AuditLogHandler struct {
	audit    *service.AuditLogService
	pageSize int
}

// NewAuditLogHandler constructs AuditLogHandler.
func NewAuditLogHandler(audit *service.AuditLogService, pageSize int) *AuditLogHandler {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	return &AuditLogHandler{audit: audit, pageSize: pageSize}
}

// List godoc
// @Summary List audit log entries
// @Tags Audit
// @Produce json
// @Param table query string false "Filter by table name"
// @Param action query string false "Filter by action"
// @Param severity query string false "Filter by severity"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditLogHandler) List(c *gin.Context) {
	var filter models.AuditLogFilter
	filter.TableName = c.Query("table")
	filter.Action = c.Query("action")
	filter.Severity = c.Query("severity")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.pageSize))); err == nil {
		filter.PageSize = size
	}

	entries, pagination, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

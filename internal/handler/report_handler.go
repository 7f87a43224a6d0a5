package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurse-assist/nai-admin-api/internal/service"
	"github.com/nurse-assist/nai-admin-api/pkg/response"
)

// ReportHandler exposes printable report downloads.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Generate godoc
// @Summary Generate report
// @Description Generate a printable report and return it as a file download
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "Report kind" Enums(students, leads, payments)
// @Param format query string false "Output format" Enums(csv, pdf) default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /reports/{kind} [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	kind := c.Param("kind")
	format := c.DefaultQuery("format", service.ReportFormatCSV)

	file, err := h.service.Generate(c.Request.Context(), kind, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurse-assist/nai-admin-api/internal/service"
	"github.com/nurse-assist/nai-admin-api/pkg/response"
)

// RecycleBinHandler exposes the soft-delete holding area.
type RecycleBinHandler struct {
	recycle *service.RecycleBinService
}

// NewRecycleBinHandler constructs RecycleBinHandler.
func NewRecycleBinHandler(recycle *service.RecycleBinService) *RecycleBinHandler {
	return &RecycleBinHandler{recycle: recycle}
}

// List godoc
// @Summary List restorable records
// @Tags RecycleBin
// @Produce json
// @Param limit query int false "Maximum records returned"
// @Success 200 {object} response.Envelope
// @Router /recycle-bin [get]
func (h *RecycleBinHandler) List(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}
	items, err := h.recycle.ListActive(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Restore godoc
// @Summary Restore a record into its original collection
// @Tags RecycleBin
// @Produce json
// @Param id path string true "Recycle bin record ID"
// @Success 200 {object} response.Envelope
// @Router /recycle-bin/{id}/restore [post]
func (h *RecycleBinHandler) Restore(c *gin.Context) {
	if err := h.recycle.Restore(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"restored": true}, nil)
}

// Purge godoc
// @Summary Permanently delete a record from the recycle bin
// @Tags RecycleBin
// @Produce json
// @Param id path string true "Recycle bin record ID"
// @Success 204
// @Router /recycle-bin/{id} [delete]
func (h *RecycleBinHandler) Purge(c *gin.Context) {
	if err := h.recycle.Purge(c.Request.Context(), c.Param("id"), actorFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

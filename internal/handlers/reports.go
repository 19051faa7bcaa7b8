package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/pkg/response"
)

type ReportsHandler struct {
	reportsService *services.ReportsService
}

func NewReportsHandler(reportsService *services.ReportsService) *ReportsHandler {
	return &ReportsHandler{reportsService: reportsService}
}

// List returns the paged report history
// GET /api/reports?page=1&pageSize=20
func (h *ReportsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.reportsService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// Get returns one report with metrics, items and notes
// GET /api/reports/:id
func (h *ReportsHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.reportsService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// Delete soft-deletes a report
// DELETE /api/reports/:id
func (h *ReportsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.reportsService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

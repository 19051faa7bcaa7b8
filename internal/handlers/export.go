package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export downloads a report as an xlsx workbook
// GET /api/export/:reportId
func (h *ExportHandler) Export(c *gin.Context) {
	reportID, ok := pathID(c, "reportId")
	if !ok {
		return
	}

	data, filename, err := h.exportService.Export(c.Request.Context(), reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, data)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/pkg/response"
)

type NotesHandler struct {
	notesService *services.NotesService
}

func NewNotesHandler(notesService *services.NotesService) *NotesHandler {
	return &NotesHandler{notesService: notesService}
}

type updateNotesRequest struct {
	Content string `json:"content"`
}

// Upsert replaces a report's notes
// PUT /api/notes/:reportId
func (h *NotesHandler) Upsert(c *gin.Context) {
	reportID, ok := pathID(c, "reportId")
	if !ok {
		return
	}

	var req updateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.notesService.Upsert(c.Request.Context(), reportID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/pkg/response"
)

type GenerateHandler struct {
	generateService *services.GenerateService
}

func NewGenerateHandler(generateService *services.GenerateService) *GenerateHandler {
	return &GenerateHandler{generateService: generateService}
}

// Generate builds the weekly report
// POST /api/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	// An empty body means "generate the current week".
	var req services.GenerateInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	result, err := h.generateService.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Health reports source and database reachability
// GET /api/generate/health
func (h *GenerateHandler) Health(c *gin.Context) {
	response.Success(c, h.generateService.Health(c.Request.Context()))
}

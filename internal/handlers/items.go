package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/pkg/response"
)

type ItemsHandler struct {
	itemsService *services.ItemsService
}

func NewItemsHandler(itemsService *services.ItemsService) *ItemsHandler {
	return &ItemsHandler{itemsService: itemsService}
}

type updateItemRequest struct {
	ContentJSON json.RawMessage `json:"contentJson" binding:"required"`
}

type createItemRequest struct {
	ReportID    string          `json:"reportId" binding:"required"`
	TabType     string          `json:"tabType" binding:"required"`
	ParentID    string          `json:"parentId"`
	ContentJSON json.RawMessage `json:"contentJson" binding:"required"`
	SortOrder   int             `json:"sortOrder"`
}

// Update replaces an item's content payload
// PUT /api/items/:id
func (h *ItemsHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.itemsService.Update(c.Request.Context(), id, string(req.ContentJSON))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// Create adds one manual SELF line
// POST /api/items
func (h *ItemsHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	reportID, err := strconv.ParseInt(req.ReportID, 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid reportId: "+req.ReportID)
		return
	}

	in := services.CreateItemInput{
		ReportID:    reportID,
		TabType:     req.TabType,
		ContentJSON: string(req.ContentJSON),
		SortOrder:   req.SortOrder,
	}
	if req.ParentID != "" {
		parentID, err := strconv.ParseInt(req.ParentID, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid parentId: "+req.ParentID)
			return
		}
		in.ParentID = &parentID
	}

	result, err := h.itemsService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, result)
}

// Delete soft-deletes an item and its children
// DELETE /api/items/:id
func (h *ItemsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.itemsService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Tree returns one tab of a report as a two-level tree
// GET /api/reports/:id/items?tab=SELF
func (h *ItemsHandler) Tree(c *gin.Context) {
	reportID, ok := pathID(c, "id")
	if !ok {
		return
	}
	tab := c.DefaultQuery("tab", "SELF")

	result, err := h.itemsService.Tree(c.Request.Context(), reportID, tab)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

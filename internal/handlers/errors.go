package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lunadata/weekreport/internal/services"
	"github.com/lunadata/weekreport/pkg/response"
)

// respondError maps service error types onto the API envelope.
func respondError(c *gin.Context, err error) {
	var conflict *services.ConflictError
	var notFound *services.NotFoundError
	var invalid *services.ValidationError
	var source *services.SourceError

	switch {
	case errors.As(err, &conflict):
		response.Error(c, response.NewConflict(err.Error()))
	case errors.As(err, &notFound):
		response.Error(c, response.NewNotFound(err.Error()))
	case errors.As(err, &invalid):
		response.Error(c, response.NewBadRequest(err.Error()))
	case errors.As(err, &source):
		response.Error(c, &response.AppError{HTTPStatus: http.StatusBadGateway, Code: 502, Message: err.Error()})
	default:
		response.Error(c, err)
	}
}

// pathID parses a decimal snowflake ID path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid id: "+c.Param(name))
		return 0, false
	}
	return id, true
}

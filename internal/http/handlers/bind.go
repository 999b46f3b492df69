package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/http/response"
)

// bind decodes the JSON body into req and answers 400 when it does not
// match the request schema.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeValidation, err)
		return false
	}
	return true
}

// Package response writes the JSON envelopes shared by every handler.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/session"
	"github.com/abhisek/algotutor/internal/store"
)

// Error codes carried in ErrorEnvelope.
const (
	CodeValidation        = "validation_error"
	CodeRateLimited       = "rate_limited"
	CodeMalformedOutput   = "malformed_model_output"
	CodeModelUnavailable  = "model_unavailable"
	CodePersistenceFailed = "persistence_unavailable"
	CodeInternal          = "internal_error"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps an error returned by the session service to a
// status and code.
func RespondServiceError(c *gin.Context, err error) {
	status, code := Classify(err)
	RespondError(c, status, code, err)
}

// Classify returns the HTTP status and error code for err.
func Classify(err error) (int, string) {
	var (
		malformed   *assessment.MalformedQuizError
		unavailable *llm.ErrProviderUnavailable
		rateLimit   *llm.ErrRateLimit
		rejected    *llm.ErrRequestRejected
		truncated   *llm.ErrMaxTokensExceeded
	)
	switch {
	case session.IsValidation(err):
		return http.StatusBadRequest, CodeValidation
	case errors.As(err, &malformed), llm.IsInvalidResponse(err):
		return http.StatusBadGateway, CodeMalformedOutput
	case errors.As(err, &truncated):
		return http.StatusBadGateway, CodeMalformedOutput
	case errors.As(err, &unavailable), errors.As(err, &rateLimit), errors.As(err, &rejected):
		return http.StatusBadGateway, CodeModelUnavailable
	case store.IsUnavailable(err):
		return http.StatusInternalServerError, CodePersistenceFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

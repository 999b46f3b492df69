package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/abhisek/algotutor/internal/admission"
	"github.com/abhisek/algotutor/internal/http/response"
	"github.com/abhisek/algotutor/internal/logger"
)

// StudentIDKey is the gin context key holding the body's userId, when the
// admission middleware found one.
const StudentIDKey = "studentId"

// maxPeekBytes bounds how much of the body is buffered to find userId.
const maxPeekBytes = 1 << 20

// Admission rejects a request with 429 once its key has used up the
// window. The key is the body's userId, or the client IP without one.
// The body is restored for the handler.
func Admission(l admission.Limiter, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := admissionKey(c)
		if !admission.Admit(c.Request.Context(), l, key, log) {
			response.RespondError(c, http.StatusTooManyRequests, response.CodeRateLimited,
				fmt.Errorf("too many requests, try again later"))
			return
		}
		c.Next()
	}
}

func admissionKey(c *gin.Context) string {
	if c.Request.Body != nil {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBytes))
		c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		if err == nil {
			if id := gjson.GetBytes(body, "userId"); id.Type == gjson.String && id.Str != "" {
				c.Set(StudentIDKey, id.Str)
				return admission.StudentKey(id.Str)
			}
		}
	}
	return "ip:" + c.ClientIP()
}

package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/session"
	"github.com/abhisek/algotutor/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &session.ValidationError{Field: "userId", Message: "is required"}, http.StatusBadRequest, CodeValidation},
		{"malformed quiz", fmt.Errorf("get test: %w", &assessment.MalformedQuizError{Reason: "4 questions"}), http.StatusBadGateway, CodeMalformedOutput},
		{"invalid response", &llm.ErrInvalidResponse{Err: errors.New("bad json")}, http.StatusBadGateway, CodeMalformedOutput},
		{"truncated", &llm.ErrMaxTokensExceeded{}, http.StatusBadGateway, CodeMalformedOutput},
		{"provider down", fmt.Errorf("quiz generation failed: %w", &llm.ErrProviderUnavailable{}), http.StatusBadGateway, CodeModelUnavailable},
		{"rate limited", &llm.ErrRateLimit{Err: errors.New("429")}, http.StatusBadGateway, CodeModelUnavailable},
		{"request rejected", fmt.Errorf("chat: %w", &llm.ErrRequestRejected{StatusCode: 401, Err: errors.New("bad key")}), http.StatusBadGateway, CodeModelUnavailable},
		{"store", fmt.Errorf("check student code: %w", &store.UnavailableError{Op: "acquire", Err: errors.New("down")}), http.StatusInternalServerError, CodePersistenceFailed},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("Classify() = (%d, %s), want (%d, %s)", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

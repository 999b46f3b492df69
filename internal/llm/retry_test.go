package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry_Attempts(t *testing.T) {
	malformed := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
	truncated := MockResponse{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{`)}}
	rejected := MockResponse{Err: &ErrRequestRejected{StatusCode: 401, Err: errors.New("invalid x-api-key")}}

	tests := []struct {
		name      string
		queue     []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", []MockResponse{TextResponse("ok")}, false, 1},
		{"transient then success", []MockResponse{down(), TextResponse("ok")}, false, 2},
		{"all attempts fail", []MockResponse{down(), down(), down(), TextResponse("never")}, true, 3},
		{"malformed output is not retried", []MockResponse{malformed, TextResponse("never")}, true, 1},
		{"truncation is not retried", []MockResponse{truncated, TextResponse("never")}, true, 1},
		{"client error is not retried", []MockResponse{rejected, TextResponse("never")}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.queue...)
			_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestRetry_MalformedErrorSurfacesUnchanged(t *testing.T) {
	orig := &ErrInvalidResponse{Err: errors.New("missing questions")}
	mock := NewMockProvider(MockResponse{Err: orig})
	_, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) || inv != orig {
		t.Fatalf("expected the original ErrInvalidResponse, got %v", err)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(down(), down(), TextResponse("ok"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := WithRetry(mock, retryConfig()).Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
		TextResponse("ok"),
	)
	resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "ok" || mock.CallCount() != 2 {
		t.Fatalf("reply %q after %d calls", resp.Text(), mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsMeansOne(t *testing.T) {
	mock := NewMockProvider(down(), TextResponse("ok"))
	if _, err := WithRetry(mock, RetryConfig{}).Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected the single attempt to fail")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	if got := WithRetry(NewMockProvider(), retryConfig()).ModelID(); got != "mock" {
		t.Fatalf("expected 'mock', got %q", got)
	}
}

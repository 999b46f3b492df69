package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		TextResponse("Think about which node the frontier pops first."),
		MockResponse{Content: json.RawMessage(`{"b":2}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
	)

	resp, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "Think about which node the frontier pops first." {
		t.Fatalf("unexpected reply %q", resp.Text())
	}
	if resp.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp.StopReason)
	}

	resp, err = mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp.Usage.InputTokens)
	}
}

func TestMockProvider_EmptyQueueIsUnavailable(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(TextResponse("ok"))
	if _, ok := mock.LastCall(); ok {
		t.Fatal("no call recorded yet")
	}
	_, _ = mock.Generate(context.Background(), Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	last, ok := mock.LastCall()
	if !ok || last.System != "sys" {
		t.Fatalf("last call = %+v", last)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"question":"q"}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: choiceSchema()})
	if !IsInvalidResponse(err) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestUnavailable(t *testing.T) {
	p := Unavailable(nil)
	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) || !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected unavailable wrapping ErrNotConfigured, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	for in, ok := range map[string]bool{"user": true, "assistant": true, "system": false, "": false} {
		if _, got := ParseRole(in); got != ok {
			t.Errorf("ParseRole(%q) ok = %v, want %v", in, got, ok)
		}
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeQuiz)
	if p := PurposeFrom(ctx); p != PurposeQuiz {
		t.Fatalf("expected %q, got %q", PurposeQuiz, p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openrouter with key", Config{Provider: ProviderOpenRouter, OpenRouter: OpenAIConfig{APIKey: "sk-or"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"none needs no key", Config{Provider: ProviderNone}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveConfig(t *testing.T) {
	for _, k := range []string{"TUTOR_LLM_PROVIDER", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if got := ResolveConfig().Provider; got != ProviderNone {
		t.Fatalf("nothing configured: provider = %q, want none", got)
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	if cfg := ResolveConfig(); cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "sk-ant" {
		t.Fatalf("discovered config = %+v", cfg)
	}

	t.Setenv("TUTOR_LLM_PROVIDER", "openrouter")
	t.Setenv("TUTOR_OPENROUTER_API_KEY", "sk-or")
	cfg := ResolveConfig()
	if cfg.Provider != ProviderOpenRouter || cfg.OpenRouter.BaseURL != defaultOpenRouterBaseURL {
		t.Fatalf("explicit config = %+v", cfg)
	}
}

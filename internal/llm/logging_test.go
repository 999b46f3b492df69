package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/algotutor/internal/logger"
	"github.com/abhisek/algotutor/internal/store"
	"github.com/abhisek/algotutor/internal/store/storetest"
)

type failingRepo struct{ store.EventRepo }

func (failingRepo) AppendLLMRequest(context.Context, store.LLMRequestEventData) error {
	return errors.New("disk full")
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	s := storetest.Open(t)
	repo := s.EventRepo()
	mock := NewMockProvider(
		MockResponse{Content: []byte("Try a priority queue."), Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: fmt.Errorf("503")}},
	)
	p := WithLogging(mock, ProviderMock, repo, logger.Nop())

	ctx := WithPurpose(context.Background(), PurposeTutor)
	if _, err := p.Generate(ctx, Request{System: "tutor", Messages: []Message{{Role: RoleUser, Content: "UCS?"}}}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected the second call to fail")
	}

	events, err := repo.QueryLLMEvents(context.Background(), store.QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	failed, succeeded := events[0], events[1]
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("newest event should be the failure: %+v", failed)
	}
	if !succeeded.Success || succeeded.Purpose != PurposeTutor || succeeded.InputTokens != 12 || succeeded.Provider != ProviderMock {
		t.Errorf("successful event = %+v", succeeded)
	}
	if !strings.Contains(succeeded.RequestBody, "[system]\ntutor") || succeeded.ResponseBody != "Try a priority queue." {
		t.Errorf("bodies = %q / %q", succeeded.RequestBody, succeeded.ResponseBody)
	}
}

func TestLoggingProvider_EventFailureDoesNotFailCall(t *testing.T) {
	p := WithLogging(NewMockProvider(TextResponse("ok")), ProviderMock, failingRepo{}, nil)
	resp, err := p.Generate(context.Background(), Request{})
	if err != nil || resp.Text() != "ok" {
		t.Fatalf("resp=%v err=%v", resp, err)
	}
}

func TestLoggingProvider_LogsTokenCounts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mock := NewMockProvider(MockResponse{Content: []byte("ok"), Usage: Usage{InputTokens: 42, OutputTokens: 7}})
	p := WithLogging(mock, ProviderMock, nil, logger.FromZap(zap.New(core)))

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	entries := logs.FilterMessage("model call").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["input_tokens"] != int64(42) || fields["output_tokens"] != int64(7) {
		t.Errorf("token counts = %v / %v", fields["input_tokens"], fields["output_tokens"])
	}
}

func TestSerializeRequest_IncludesSchema(t *testing.T) {
	out := serializeRequest(Request{
		Messages: []Message{{Role: RoleUser, Content: "quiz please"}},
		Schema:   choiceSchema(),
	})
	if !strings.Contains(out, "[user]\nquiz please") || !strings.Contains(out, "[schema: test-choice]") {
		t.Errorf("serialized request:\n%s", out)
	}
}

func TestLookupCost(t *testing.T) {
	if LookupCost("gpt-4o-mini") == nil {
		t.Error("gpt-4o-mini should be priced")
	}
	if c := LookupCost("openai/gpt-4o-mini"); c == nil || c.InputPerMTok != 0.15 {
		t.Errorf("openrouter id lookup = %+v", c)
	}
	if LookupCost("made-up-model") != nil {
		t.Error("unknown model should have no price")
	}
	if got := (ModelCost{InputPerMTok: 1, OutputPerMTok: 2}).Cost(1_000_000, 500_000); got != 2 {
		t.Errorf("cost = %v, want 2", got)
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderNone}, nil, nil)
	if err != nil {
		t.Fatalf("none provider: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("none provider error = %v", err)
	}

	if _, err := NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, nil); err == nil {
		t.Error("openai without key should fail validation")
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenRouter
	cfg.OpenRouter.APIKey = "sk-or"
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("openrouter: %v", err)
	}
	if p.ModelID() != "openai/gpt-4o-mini" {
		t.Errorf("model = %q", p.ModelID())
	}
}

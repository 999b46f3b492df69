package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return FromZap(zap.New(core)), logs
}

func TestRedactsSecrets(t *testing.T) {
	log, logs := observed()
	log.Info("provider configured", "provider", "openai", "api_key", "sk-123", "authToken", "abc")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["api_key"] != redacted {
		t.Errorf("api_key = %v, want redacted", fields["api_key"])
	}
	if fields["authToken"] != redacted {
		t.Errorf("authToken = %v, want redacted", fields["authToken"])
	}
	if fields["provider"] != "openai" {
		t.Errorf("provider = %v, want untouched", fields["provider"])
	}
}

func TestKeepsTokenCounts(t *testing.T) {
	log, logs := observed()
	log.Info("llm call", "input_tokens", 42, "output_tokens", 7, "max_tokens", 1024, "refresh_token", "r-1")

	fields := logs.All()[0].ContextMap()
	tests := []struct {
		key  string
		want any
	}{
		{"input_tokens", int64(42)},
		{"output_tokens", int64(7)},
		{"max_tokens", int64(1024)},
		{"refresh_token", redacted},
	}
	for _, tt := range tests {
		if fields[tt.key] != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.key, fields[tt.key], fields[tt.key], tt.want)
		}
	}
}

func TestHashesStudentIdentifiers(t *testing.T) {
	log, logs := observed()
	log.With("student_id", "alice").Warn("degraded", "session_id", "sess-1", "op", "chat")

	fields := logs.All()[0].ContextMap()
	if fields["student_id"] != HashID("alice") {
		t.Errorf("student_id = %v, want hash", fields["student_id"])
	}
	if fields["session_id"] != HashID("sess-1") {
		t.Errorf("session_id = %v, want hash", fields["session_id"])
	}
	if fields["op"] != "chat" {
		t.Errorf("op = %v", fields["op"])
	}
}

func TestHashID_Stable(t *testing.T) {
	a, b := HashID("student-42"), HashID("student-42")
	if a != b || len(a) != 12 {
		t.Errorf("HashID not stable or wrong length: %q %q", a, b)
	}
	if HashID("student-43") == a {
		t.Error("different ids should hash differently")
	}
}

func TestScrubDoesNotMutateInput(t *testing.T) {
	kv := []interface{}{"password", "hunter2"}
	_ = scrub(kv)
	if kv[1] != "hunter2" {
		t.Error("scrub mutated its input")
	}
}

func TestNop(t *testing.T) {
	Nop().Info("discarded", "k", "v")
}

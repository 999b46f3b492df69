// Package llm abstracts the language-model providers behind the tutor.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates a completion for a conversation. Tutoring turns are
// free text; quiz generation sets a Schema and receives validated JSON.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is one completion call.
type Request struct {
	// System carries the compiled tutor instruction or the quiz author role.
	System string

	// Messages is the conversation, oldest first.
	Messages []Message

	// Schema, when set, selects the provider's structured-output mode and
	// the response is validated against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a wire role onto a Role. Only "user" and "assistant" are
// accepted.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), true
	}
	return "", false
}

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "search-quiz". It keys the compiled-schema
	// cache, so two different definitions must not share a name.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the provider output.
type Response struct {
	// Content is validated JSON for schema requests and the raw reply
	// text otherwise.
	Content json.RawMessage

	Usage Usage
	Model string

	// StopReason is normalised to "end" or "max_tokens".
	StopReason string
}

// Text returns the reply as trimmed text.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}

// Usage is the token accounting for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

package session

import (
	"github.com/abhisek/algotutor/internal/assessment"
)

// Message is one conversation turn. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

type StartInput struct {
	StudentID string
	Language  string
	Topic     string
}

type StartResult struct {
	SessionID string
	Mode      Mode
}

type ChatInput struct {
	SessionID string
	StudentID string
	Topic     string
	Language  string
	Messages  []Message
}

type ChatResult struct {
	Reply string
	Mode  Mode

	// ModelFailed is set when Reply is a diagnostic rather than a model
	// answer. Nothing was persisted in that case.
	ModelFailed bool
}

// LoadResult is the student's latest session. A student without sessions
// gets empty, non-nil slices.
type LoadResult struct {
	SessionID string
	Language  string
	Topic     string
	Messages  []Message
	Mastered  []string
	Mode      Mode
}

type SubmitInput struct {
	StudentID string
	Topic     string
	Answers   []assessment.Answer
}

type SubmitResult struct {
	Result   assessment.Result
	Promoted bool
	Mode     Mode
}

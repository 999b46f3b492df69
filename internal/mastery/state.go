package mastery

import "time"

// MasteryState represents a topic's position in the mastery lifecycle.
// There is no path back from StateMastered.
type MasteryState string

const (
	StateNew      MasteryState = "new"
	StateMastered MasteryState = "mastered"
)

// StateTransition records a mastery state change for logging.
type StateTransition struct {
	StudentID string
	Topic     string
	From      MasteryState
	To        MasteryState
	Trigger   string // "quiz-passed"
}

// TopicStatus is one row of a student's progress report.
type TopicStatus struct {
	Topic     string
	State     MasteryState
	UpdatedAt time.Time // zero when the topic was never promoted
}

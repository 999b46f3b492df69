// Package assessment generates topic quizzes and grades submitted answers.
package assessment

import (
	"fmt"
	"strings"
)

// QuizSize is the number of questions in every quiz.
const QuizSize = 5

// Label identifies one of a question's four options.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the option labels in display order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD}

// ParseLabel accepts "A".."D" in either case, ignoring surrounding space.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Labels {
		if l == known {
			return l, true
		}
	}
	return "", false
}

// Question is one multiple-choice question with exactly one correct label.
type Question struct {
	Text    string
	Options map[Label]string
	Correct Label
}

// Answer is a submitted response. Selected is empty when the student
// skipped the question.
type Answer struct {
	Question string
	Selected Label
	Correct  Label
}

// AttemptItem is one graded answer.
type AttemptItem struct {
	Question string
	Selected Label
	Correct  Label
	IsRight  bool
}

// Result is the outcome of grading one quiz attempt. It is never stored.
type Result struct {
	Passed       bool
	CorrectCount int
	Total        int
	Attempt      []AttemptItem
}

// Verdict renders Passed as "Passed" or "Failed".
func (r Result) Verdict() string {
	if r.Passed {
		return "Passed"
	}
	return "Failed"
}

// MalformedQuizError reports model output that is not a usable quiz.
type MalformedQuizError struct {
	Reason string
	Err    error
}

func (e *MalformedQuizError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed quiz: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed quiz: %s", e.Reason)
}

func (e *MalformedQuizError) Unwrap() error { return e.Err }

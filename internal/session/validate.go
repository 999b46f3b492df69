package session

import (
	"strings"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/llm"
)

func (s *Service) validateStudent(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("userId", "is required")
	}
	return nil
}

func (s *Service) validateLanguage(lang string) error {
	if strings.TrimSpace(lang) == "" {
		return invalid("languageInput", "is required")
	}
	return nil
}

func (s *Service) validateTopic(topic string) error {
	if topic == "" {
		return invalid("topic", "is required")
	}
	if !s.graph.IsValid(topic) {
		return invalid("topic", "%q is not in the topic catalog", topic)
	}
	return nil
}

func validateMessages(msgs []Message) error {
	if len(msgs) == 0 {
		return invalid("messages", "at least one message is required")
	}
	for i, m := range msgs {
		if _, ok := llm.ParseRole(m.Role); !ok {
			return invalid("messages", "message %d has role %q, want user or assistant", i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return invalid("messages", "message %d is empty", i)
		}
	}
	return nil
}

// normalizeAnswers checks labels and returns a copy with them in
// canonical upper case.
func normalizeAnswers(answers []assessment.Answer) ([]assessment.Answer, error) {
	if len(answers) == 0 {
		return nil, invalid("answers", "at least one answer is required")
	}
	out := make([]assessment.Answer, len(answers))
	for i, a := range answers {
		correct, ok := assessment.ParseLabel(string(a.Correct))
		if !ok {
			return nil, invalid("answers", "answer %d has invalid correct label %q", i, a.Correct)
		}
		out[i] = assessment.Answer{Question: a.Question, Correct: correct}
		if a.Selected == "" {
			continue
		}
		selected, ok := assessment.ParseLabel(string(a.Selected))
		if !ok {
			return nil, invalid("answers", "answer %d has invalid selected label %q", i, a.Selected)
		}
		out[i].Selected = selected
	}
	return out, nil
}

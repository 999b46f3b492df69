package mastery

import (
	"context"

	"github.com/abhisek/algotutor/internal/store"
	"github.com/abhisek/algotutor/internal/topicgraph"
)

// Service reads and promotes per-student mastery facts. Every call runs in
// its own gateway unit; persistence errors are returned unchanged.
type Service struct {
	gw store.Gateway
}

// NewService creates a mastery service on top of the gateway.
func NewService(gw store.Gateway) *Service {
	return &Service{gw: gw}
}

// MasteredTopics returns the set of topics the student has mastered.
// A student with no facts yields an empty, non-nil set.
func (s *Service) MasteredTopics(ctx context.Context, studentID string) (map[string]bool, error) {
	var topics []string
	err := s.gw.Do(ctx, func(tx *store.Tx) error {
		var err error
		topics, err = tx.MasteredTopics(ctx, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToSet(topics), nil
}

// Promote marks topic as mastered. Calling it again for a mastered topic
// only refreshes the timestamp. The returned transition is nil when the
// topic was already mastered.
func (s *Service) Promote(ctx context.Context, studentID, topic string) (*StateTransition, error) {
	var already bool
	err := s.gw.Do(ctx, func(tx *store.Tx) error {
		current, err := tx.MasteredTopics(ctx, studentID)
		if err != nil {
			return err
		}
		already = ToSet(current)[topic]
		return tx.PromoteTopic(ctx, studentID, topic)
	})
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}
	return &StateTransition{
		StudentID: studentID,
		Topic:     topic,
		From:      StateNew,
		To:        StateMastered,
		Trigger:   "quiz-passed",
	}, nil
}

// Facts returns the stored progress rows for the student.
func (s *Service) Facts(ctx context.Context, studentID string) ([]store.ProgressFact, error) {
	var facts []store.ProgressFact
	err := s.gw.Do(ctx, func(tx *store.Tx) error {
		var err error
		facts, err = tx.ProgressFacts(ctx, studentID)
		return err
	})
	return facts, err
}

// Report lists every catalog topic with the student's state for it, in
// catalog order.
func (s *Service) Report(ctx context.Context, studentID string, g *topicgraph.Graph) ([]TopicStatus, error) {
	facts, err := s.Facts(ctx, studentID)
	if err != nil {
		return nil, err
	}
	byTopic := make(map[string]store.ProgressFact, len(facts))
	for _, f := range facts {
		byTopic[f.Topic] = f
	}

	out := make([]TopicStatus, 0, g.Len())
	for _, id := range g.IDs() {
		st := TopicStatus{Topic: id, State: StateNew}
		if f, ok := byTopic[id]; ok && f.Mastered {
			st.State = StateMastered
			st.UpdatedAt = f.UpdatedAt
		}
		out = append(out, st)
	}
	return out, nil
}

// ToSet converts a topic list into a membership set.
func ToSet(topics []string) map[string]bool {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}
	return set
}

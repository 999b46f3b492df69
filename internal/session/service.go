// Package session orchestrates tutoring sessions: starting and resuming
// conversations, model turns, quizzes and mastery promotion. Persistence
// failures degrade the reported mode instead of failing the request.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/logger"
	"github.com/abhisek/algotutor/internal/mastery"
	"github.com/abhisek/algotutor/internal/prompt"
	"github.com/abhisek/algotutor/internal/store"
	"github.com/abhisek/algotutor/internal/topicgraph"
)

// Config tunes the orchestrator.
type Config struct {
	ModePolicy  ModePolicy
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{
		ModePolicy:  PolicyReprobe,
		MaxTokens:   1024,
		Temperature: 0.7,
	}
}

// Deps are the collaborators of a Service.
type Deps struct {
	Gateway  store.Gateway
	Graph    *topicgraph.Graph
	Compiler *prompt.Compiler
	Provider llm.Provider
	Mastery  *mastery.Service
	Quiz     *assessment.Engine
	Logger   *logger.Logger
}

// Service implements the session operations. It is safe for concurrent
// use; the only shared state is the mode gate.
type Service struct {
	gw       store.Gateway
	graph    *topicgraph.Graph
	compiler *prompt.Compiler
	provider llm.Provider
	quiz     *assessment.Engine
	cfg      Config
	log      *logger.Logger
	mode     *modeGate
}

// New wires a Service. Missing Compiler, Mastery and Quiz are built from
// the other deps.
func New(d Deps, cfg Config) *Service {
	if d.Logger == nil {
		d.Logger = logger.Nop()
	}
	if d.Compiler == nil {
		d.Compiler = prompt.NewCompiler(d.Graph, "")
	}
	if d.Mastery == nil {
		d.Mastery = mastery.NewService(d.Gateway)
	}
	if d.Quiz == nil {
		d.Quiz = assessment.NewEngine(d.Provider, d.Compiler, d.Mastery, assessment.DefaultConfig())
	}
	return &Service{
		gw:       d.Gateway,
		graph:    d.Graph,
		compiler: d.Compiler,
		provider: d.Provider,
		quiz:     d.Quiz,
		cfg:      cfg,
		log:      d.Logger,
		mode:     newModeGate(cfg.ModePolicy),
	}
}

// Mode is the process-level mode as of the last persistence outcome.
func (s *Service) Mode() Mode {
	return s.mode.current()
}

// Graph returns the topic catalog the service validates against.
func (s *Service) Graph() *topicgraph.Graph {
	return s.graph
}

// persist runs fn in one gateway unit unless the sticky gate is closed,
// and returns the mode the calling operation reports.
func (s *Service) persist(ctx context.Context, op string, fn func(*store.Tx) error) (Mode, error) {
	if s.mode.skip() {
		return ModeOffline, errSkipped
	}
	err := s.gw.Do(ctx, fn)
	if err != nil {
		s.log.Warn("persistence unavailable, continuing offline", "op", op, "error", err)
	}
	return s.mode.observe(err), err
}

var errSkipped = errors.New("persistence skipped: process is offline")

// StartSession records the student's selection and opens a session. When
// the store fails the returned identifier is a local token that is not
// stored anywhere.
func (s *Service) StartSession(ctx context.Context, in StartInput) (StartResult, error) {
	if err := s.validateStudent(in.StudentID); err != nil {
		return StartResult{}, err
	}
	if err := s.validateLanguage(in.Language); err != nil {
		return StartResult{}, err
	}
	if err := s.validateTopic(in.Topic); err != nil {
		return StartResult{}, err
	}

	var sessionID string
	mode, err := s.persist(ctx, "start-session", func(tx *store.Tx) error {
		if err := tx.UpsertStudent(ctx, in.StudentID, in.Language, in.Topic); err != nil {
			return err
		}
		sess, err := tx.InsertSession(ctx, in.StudentID)
		if err != nil {
			return err
		}
		sessionID = sess.ID
		return nil
	})
	if err != nil {
		sessionID = uuid.NewString()
	}

	s.log.Info("session started", "student_id", in.StudentID, "session_id", sessionID, "topic", in.Topic, "mode", mode)
	return StartResult{SessionID: sessionID, Mode: mode}, nil
}

// Chat runs one tutoring turn on a session owned by the student. Mastery
// and prior history are read in one unit, the model is called with history
// followed by the new messages, and the new messages plus the reply are
// appended in a second unit. A model failure yields a diagnostic reply and
// persists nothing.
func (s *Service) Chat(ctx context.Context, in ChatInput) (ChatResult, error) {
	if in.SessionID == "" {
		return ChatResult{}, invalid("sessionId", "is required")
	}
	if err := s.validateStudent(in.StudentID); err != nil {
		return ChatResult{}, err
	}
	if err := s.validateLanguage(in.Language); err != nil {
		return ChatResult{}, err
	}
	if err := s.validateTopic(in.Topic); err != nil {
		return ChatResult{}, err
	}
	if err := validateMessages(in.Messages); err != nil {
		return ChatResult{}, err
	}

	var (
		masteredList []string
		history      []store.Message
		owner        string
	)
	mode, readErr := s.persist(ctx, "chat-read", func(tx *store.Tx) error {
		sess, err := tx.GetSession(ctx, in.SessionID)
		if err != nil {
			return err
		}
		if sess != nil {
			owner = sess.StudentID
			if owner != in.StudentID {
				return nil
			}
		}
		if masteredList, err = tx.MasteredTopics(ctx, in.StudentID); err != nil {
			return err
		}
		history, err = tx.Messages(ctx, in.SessionID)
		return err
	})
	if readErr != nil {
		masteredList, history = nil, nil
	} else if owner != "" && owner != in.StudentID {
		s.log.Warn("session used by another student", "session_id", in.SessionID, "student_id", in.StudentID)
		return ChatResult{}, invalid("sessionId", "does not belong to this student")
	}

	req := llm.Request{
		System:      s.compiler.Compile(in.Topic, in.Language, mastery.ToSet(masteredList)),
		Messages:    make([]llm.Message, 0, len(history)+len(in.Messages)),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}
	for _, m := range history {
		req.Messages = append(req.Messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	for _, m := range in.Messages {
		req.Messages = append(req.Messages, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeTutor), req)
	if err != nil {
		s.log.Error("model call failed", "op", "chat", "session_id", in.SessionID, "error", err)
		return ChatResult{Reply: "Model error: " + err.Error(), Mode: mode, ModelFailed: true}, nil
	}
	reply := resp.Text()

	if readErr == nil {
		toAppend := make([]store.NewMessage, 0, len(in.Messages)+1)
		for _, m := range in.Messages {
			toAppend = append(toAppend, store.NewMessage{Role: m.Role, Content: m.Content})
		}
		toAppend = append(toAppend, store.NewMessage{Role: string(llm.RoleAssistant), Content: reply})

		mode, _ = s.persist(ctx, "chat-append", func(tx *store.Tx) error {
			if err := tx.EnsureSession(ctx, in.SessionID, in.StudentID, in.Language, in.Topic); err != nil {
				return err
			}
			return tx.AppendMessages(ctx, in.SessionID, toAppend)
		})
	}

	return ChatResult{Reply: reply, Mode: mode}, nil
}

// LoadSession returns the student's most recent session. An unreachable
// store yields an empty result in offline mode.
func (s *Service) LoadSession(ctx context.Context, studentID string) (LoadResult, error) {
	if err := s.validateStudent(studentID); err != nil {
		return LoadResult{}, err
	}

	res := LoadResult{Messages: []Message{}, Mastered: []string{}}
	var (
		student  *store.Student
		sess     *store.Session
		messages []store.Message
		mastered []string
	)
	mode, err := s.persist(ctx, "load-session", func(tx *store.Tx) error {
		var err error
		if student, err = tx.GetStudent(ctx, studentID); err != nil {
			return err
		}
		if mastered, err = tx.MasteredTopics(ctx, studentID); err != nil {
			return err
		}
		if sess, err = tx.LatestSession(ctx, studentID); err != nil || sess == nil {
			return err
		}
		messages, err = tx.Messages(ctx, sess.ID)
		return err
	})
	res.Mode = mode
	if err != nil {
		return res, nil
	}

	if student != nil {
		res.Language, res.Topic = student.Language, student.Topic
	}
	if sess != nil {
		res.SessionID = sess.ID
	}
	for _, m := range messages {
		res.Messages = append(res.Messages, Message{Role: m.Role, Content: m.Content})
	}
	res.Mastered = append(res.Mastered, s.graph.Ordered(mastery.ToSet(mastered))...)
	return res, nil
}

// GetTest generates a quiz. Model failures and malformed quizzes are
// returned as errors; no quiz is fabricated.
func (s *Service) GetTest(ctx context.Context, topic, language string) ([]assessment.Question, error) {
	if err := s.validateTopic(topic); err != nil {
		return nil, err
	}
	if err := s.validateLanguage(language); err != nil {
		return nil, err
	}
	qs, err := s.quiz.GenerateQuiz(ctx, topic, language)
	if err != nil {
		s.log.Error("quiz generation failed", "topic", topic, "error", err)
		return nil, err
	}
	return qs, nil
}

// SubmitTest grades the answers and promotes the topic on a pass. A
// failed promotion write degrades the mode; the verdict is still
// returned.
func (s *Service) SubmitTest(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if err := s.validateStudent(in.StudentID); err != nil {
		return SubmitResult{}, err
	}
	if err := s.validateTopic(in.Topic); err != nil {
		return SubmitResult{}, err
	}
	answers, err := normalizeAnswers(in.Answers)
	if err != nil {
		return SubmitResult{}, err
	}

	if s.mode.skip() {
		return SubmitResult{Result: assessment.Grade(answers), Mode: ModeOffline}, nil
	}

	sub, err := s.quiz.Submit(ctx, in.StudentID, in.Topic, answers)
	res := SubmitResult{Result: sub.Result, Promoted: sub.Transition != nil}
	if err != nil {
		s.log.Warn("persistence unavailable, continuing offline", "op", "submit-test", "error", err)
	}
	if sub.Result.Passed {
		res.Mode = s.mode.observe(err)
	} else {
		res.Mode = s.mode.current()
	}

	s.log.Info("test submitted", "student_id", in.StudentID, "topic", in.Topic,
		"verdict", sub.Result.Verdict(), "correct", sub.Result.CorrectCount, "total", sub.Result.Total)
	return res, nil
}

// CheckStudentCode registers an enrolment code and reports whether it was
// already known. Store failures are returned: there is no offline answer.
func (s *Service) CheckStudentCode(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, invalid("studentCode", "is required")
	}
	var existed bool
	err := s.gw.Do(ctx, func(tx *store.Tx) error {
		var err error
		existed, err = tx.RegisterStudentCode(ctx, code)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check student code: %w", err)
	}
	return existed, nil
}

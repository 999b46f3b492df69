package assessment

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/mastery"
	"github.com/abhisek/algotutor/internal/prompt"
)

// Promoter records a passed quiz. *mastery.Service satisfies it.
type Promoter interface {
	Promote(ctx context.Context, studentID, topic string) (*mastery.StateTransition, error)
}

// Config controls quiz generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{MaxTokens: 2048, Temperature: 0.7}
}

// Engine generates quizzes through the model and promotes mastery on a
// passed attempt.
type Engine struct {
	provider llm.Provider
	compiler *prompt.Compiler
	promoter Promoter
	config   Config
}

func NewEngine(provider llm.Provider, compiler *prompt.Compiler, promoter Promoter, cfg Config) *Engine {
	return &Engine{provider: provider, compiler: compiler, promoter: promoter, config: cfg}
}

type quizOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Correct  string            `json:"correct"`
}

// GenerateQuiz asks the model for a QuizSize-question quiz on topic.
// Output that fails the schema or the structural checks is a
// *MalformedQuizError; provider failures are returned wrapped.
func (e *Engine) GenerateQuiz(ctx context.Context, topic, language string) ([]Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuiz)

	req := llm.Request{
		System: prompt.QuizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: e.compiler.QuizPrompt(topic, language, QuizSize)},
		},
		Schema:      QuizSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		if llm.IsInvalidResponse(err) {
			return nil, &MalformedQuizError{Reason: "response does not match the quiz schema", Err: err}
		}
		return nil, fmt.Errorf("quiz generation failed: %w", err)
	}

	var raw quizOutput
	if err := llm.DecodeJSON(resp.Content, &raw); err != nil {
		return nil, &MalformedQuizError{Reason: "response is not JSON", Err: err}
	}
	return toQuestions(raw)
}

func toQuestions(raw quizOutput) ([]Question, error) {
	if len(raw.Questions) != QuizSize {
		return nil, &MalformedQuizError{Reason: fmt.Sprintf("expected %d questions, got %d", QuizSize, len(raw.Questions))}
	}

	out := make([]Question, 0, QuizSize)
	for i, q := range raw.Questions {
		text := strings.TrimSpace(q.Question)
		if text == "" {
			return nil, &MalformedQuizError{Reason: fmt.Sprintf("question %d has no text", i+1)}
		}
		if len(q.Options) != len(Labels) {
			return nil, &MalformedQuizError{Reason: fmt.Sprintf("question %d has %d options", i+1, len(q.Options))}
		}
		opts := make(map[Label]string, len(Labels))
		for _, l := range Labels {
			v := strings.TrimSpace(q.Options[string(l)])
			if v == "" {
				return nil, &MalformedQuizError{Reason: fmt.Sprintf("question %d option %s is empty", i+1, l)}
			}
			opts[l] = v
		}
		correct, ok := ParseLabel(q.Correct)
		if !ok {
			return nil, &MalformedQuizError{Reason: fmt.Sprintf("question %d has invalid correct label %q", i+1, q.Correct)}
		}
		out = append(out, Question{Text: text, Options: opts, Correct: correct})
	}
	return out, nil
}

// Submission is one graded attempt plus its promotion outcome.
type Submission struct {
	Result Result

	// Transition is set when a pass moved the topic to mastered.
	Transition *mastery.StateTransition
}

// Submit grades answers for (studentID, topic). A pass promotes the topic;
// a fail writes nothing. A promotion error is returned with the verdict.
func (e *Engine) Submit(ctx context.Context, studentID, topic string, answers []Answer) (Submission, error) {
	sub := Submission{Result: Grade(answers)}
	if !sub.Result.Passed {
		return sub, nil
	}
	tr, err := e.promoter.Promote(ctx, studentID, topic)
	if err != nil {
		return sub, err
	}
	sub.Transition = tr
	return sub, nil
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/algotutor/internal/assessment"
	"github.com/abhisek/algotutor/internal/config"
	"github.com/abhisek/algotutor/internal/llm"
	"github.com/abhisek/algotutor/internal/prompt"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a generated quiz for a topic (no database)",
	Long: `Generate a quiz for a topic and answer it interactively.

This is a stateless developer tool: no database, no mastery tracking, no events.
Useful for evaluating quiz quality and trying new catalog topics.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "", "Topic ID, e.g. \"Breadth-First Search\" (required)")
	previewCmd.Flags().String("language", "Python", "Programming language for code snippets")
	_ = previewCmd.MarkFlagRequired("topic")
}

// previewConfig loads the same configuration serve uses and requires a
// model provider.
func previewConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.LLM.Provider == llm.ProviderNone {
		return nil, fmt.Errorf("LLM provider: %w", llm.ErrNotConfigured)
	}
	return cfg, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	language, _ := cmd.Flags().GetString("language")

	g, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	if !g.IsValid(topic) {
		return fmt.Errorf("unknown topic %q (see `algotutor topic list`)", topic)
	}

	cfg, err := previewConfig()
	if err != nil {
		return err
	}

	// No EventRepo: event logging is skipped.
	ctx := context.Background()
	provider, err := llm.NewProvider(ctx, cfg.LLM, nil, nil)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	compiler := prompt.NewCompiler(g, cfg.InstructionLanguage)
	engine := assessment.NewEngine(provider, compiler, nil, assessment.DefaultConfig())

	fmt.Printf("Topic: %s (%s)\n", topic, language)
	fmt.Printf("Generating %d questions with %s...\n\n", assessment.QuizSize, provider.ModelID())

	questions, err := engine.GenerateQuiz(ctx, topic, language)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	answers := make([]assessment.Answer, 0, len(questions))

	for i, q := range questions {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(questions))
		fmt.Println(q.Text)
		for _, l := range assessment.Labels {
			fmt.Printf("  %s) %s\n", l, q.Options[l])
		}

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		ans := assessment.Answer{Question: q.Text, Correct: q.Correct}
		if l, ok := assessment.ParseLabel(scanner.Text()); ok {
			ans.Selected = l
		}
		answers = append(answers, ans)

		switch {
		case ans.Selected == "":
			fmt.Printf("(skipped) Answer: %s\n\n", q.Correct)
		case ans.Selected == q.Correct:
			fmt.Println("\033[32m✓ Correct!\033[0m")
			fmt.Println()
		default:
			fmt.Printf("\033[31m✗ Wrong.\033[0m Answer: %s\n\n", q.Correct)
		}
	}

	res := assessment.Grade(answers)
	fmt.Printf("── %s: %d/%d correct ──\n", res.Verdict(), res.CorrectCount, len(questions))
	return nil
}

package prompt

import (
	"fmt"
	"strings"
)

// QuizSystemPrompt frames the model as a quiz author.
const QuizSystemPrompt = `You write multiple-choice tests for an artificial intelligence course on search algorithms. Tests check whether a student understands how an algorithm behaves, how its logic is structured, and how to spot mistakes in code.`

// QuizPrompt builds the user message asking for a quiz on topic in the
// given programming language.
func (c *Compiler) QuizPrompt(topic, language string, questionCount int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", topic)
	if t, err := c.graph.Get(topic); err == nil && t.Classification() != "" {
		fmt.Fprintf(&b, "Classification: %s\n", t.Classification())
	}
	fmt.Fprintf(&b, "Programming language: %s\n", language)
	fmt.Fprintf(&b, "Write the test in: %s\n", c.instructionLanguage)

	fmt.Fprintf(&b, `
Instructions:
1. Write exactly %d questions, each with four options labelled A, B, C and D, and exactly one correct option.
2. Every question must be about the algorithm's logic or about code that implements it, not about general theory.
3. Short code fragments in pseudocode or a simple language (Python style) are welcome.
4. Include questions such as "what does this code do?", "which line is correct?" and "in which case does the algorithm return this result?".
5. Avoid questions that only test definitions or terminology.
6. Put the correct option's label in "correct".`, questionCount)

	return b.String()
}

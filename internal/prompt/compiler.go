package prompt

import (
	"fmt"
	"strings"

	"github.com/abhisek/algotutor/internal/topicgraph"
)

// DefaultInstructionLanguage is the natural language the tutor answers in.
const DefaultInstructionLanguage = "Latvian"

// Compiler turns (topic, programming language, mastery set) into the
// system instruction for the tutor model. It holds no mutable state, so
// the same inputs always produce the same text.
type Compiler struct {
	graph               *topicgraph.Graph
	instructionLanguage string
}

// NewCompiler creates a compiler over the topic graph. An empty
// instructionLanguage selects DefaultInstructionLanguage.
func NewCompiler(g *topicgraph.Graph, instructionLanguage string) *Compiler {
	if instructionLanguage == "" {
		instructionLanguage = DefaultInstructionLanguage
	}
	return &Compiler{graph: g, instructionLanguage: instructionLanguage}
}

// InstructionLanguage returns the language the tutor is told to answer in.
func (c *Compiler) InstructionLanguage() string {
	return c.instructionLanguage
}

// Compile builds the tutor instruction. mastered is the student's mastery
// set; topics outside the catalog are ignored.
func (c *Compiler) Compile(topic, language string, mastered map[string]bool) string {
	known := c.graph.Ordered(mastered)
	isCurrentMastered := mastered[topic] && c.graph.IsValid(topic)

	var b strings.Builder

	b.WriteString(masteryBlock(topic, known, isCurrentMastered))
	b.WriteString(relatedBlock(topic, c.graph.Related(topic), mastered))

	fmt.Fprintf(&b, "\nYou are a patient, insightful virtual tutor for an artificial intelligence course, specialised in %s.\n", topic)
	if t, err := c.graph.Get(topic); err == nil && t.Classification() != "" {
		fmt.Fprintf(&b, "Classification of %s: %s.\n", topic, t.Classification())
	}

	b.WriteString("\nConversation rules:\n")
	fmt.Fprintf(&b, "- If %s is already mastered and the student asks about it, do not explain it again from scratch; offer comparisons, advanced questions or challenging exercises instead.\n", topic)
	b.WriteString("- The student may freely discuss any topic they have mastered.\n")
	fmt.Fprintf(&b, "- If the student asks about a topic they have not mastered, tell them politely and suggest finishing %s first.\n", topic)

	fmt.Fprintf(&b, "\nThe student writes code in %s.\n", language)
	fmt.Fprintf(&b, "Always answer in %s, whatever programming language is being discussed.\n", c.instructionLanguage)

	b.WriteString(`
Responsibilities:
- Always state whether the algorithm is an uninformed or an informed search.
- Name the family the algorithm belongs to, for example graph search, heuristic search, local search or adversarial search.
- NEVER give a complete solution or a fully runnable program.
- Pseudocode, partial snippets and examples with deliberate gaps or placeholders are allowed.
- Help the student write the code step by step by explaining the logic and structure of each part.
- You may review code the student submits: point out bugs, suggest improvements and explain unclear parts.
- Guide the student towards writing their own correct code instead of handing out ready-made answers.
- Encourage reflection with questions about this topic or related topics.
- Tailor every explanation to the topics the student has already mastered.`)

	return b.String()
}

// masteryBlock chooses between teaching from first principles, teaching
// with analogies, and skipping re-teaching entirely.
func masteryBlock(topic string, known []string, isCurrentMastered bool) string {
	var b strings.Builder

	if len(known) == 0 {
		b.WriteString("The student has not mastered any topics yet.\n")
		fmt.Fprintf(&b, "Do not assume any prior knowledge of %s.\n", topic)
		fmt.Fprintf(&b, "Teach %s from first principles, using beginner-friendly language and examples.\n", topic)
		b.WriteString("Avoid advanced explanations and comparisons with other topics.\n")
		return b.String()
	}

	list := strings.Join(known, ", ")
	fmt.Fprintf(&b, "The student has already mastered these topics: %s.\n", list)
	if isCurrentMastered {
		fmt.Fprintf(&b, "The current topic (%s) is already mastered. Do NOT teach it again from scratch. ", topic)
		b.WriteString("Offer comparisons, deeper insights, advanced questions or challenge exercises instead.\n")
	} else {
		fmt.Fprintf(&b, "The current topic (%s) has NOT been mastered yet. Explain it clearly and from scratch, ", topic)
		fmt.Fprintf(&b, "but you may draw analogies to the mastered topics (%s) to aid understanding.\n", list)
	}
	fmt.Fprintf(&b, "You may reference or compare with any mastered topic (%s) to deepen understanding.\n", list)
	return b.String()
}

// relatedBlock partitions the topic's related edges by mastery.
func relatedBlock(topic string, related []string, mastered map[string]bool) string {
	var knownRelated, unknownRelated []string
	for _, r := range related {
		if mastered[r] {
			knownRelated = append(knownRelated, r)
		} else {
			unknownRelated = append(unknownRelated, r)
		}
	}

	var b strings.Builder
	if len(knownRelated) > 0 {
		list := strings.Join(knownRelated, ", ")
		fmt.Fprintf(&b, "\n%s is closely related to these mastered topics: %s.\n", topic, list)
		fmt.Fprintf(&b, "You MUST actively use %s as comparison anchors: use comparisons, analogies, references and transitions from them to explain new ideas.\n", list)
	}
	if len(unknownRelated) > 0 {
		list := strings.Join(unknownRelated, ", ")
		fmt.Fprintf(&b, "\nDo NOT assume the student knows these related topics: %s.\n", list)
		b.WriteString("Avoid referencing or comparing with them unless the student explicitly brings them up.\n")
	}
	return b.String()
}

package assessment

import "github.com/abhisek/algotutor/internal/llm"

func optionSchema(label Label) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Text of option " + string(label),
	}
}

// QuizSchema is the structured-output contract for a quiz. Counts and
// non-empty text are checked after decoding; strict providers reject
// array and length bounds.
var QuizSchema = &llm.Schema{
	Name:        "search-quiz",
	Description: "A multiple-choice test on one search algorithm",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question, optionally with a short code fragment",
						},
						"options": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"A": optionSchema(LabelA),
								"B": optionSchema(LabelB),
								"C": optionSchema(LabelC),
								"D": optionSchema(LabelD),
							},
							"required":             []any{"A", "B", "C", "D"},
							"additionalProperties": false,
						},
						"correct": map[string]any{
							"type":        "string",
							"enum":        []any{"A", "B", "C", "D"},
							"description": "Label of the single correct option",
						},
					},
					"required":             []any{"question", "options", "correct"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

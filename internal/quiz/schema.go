package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// quizSchemaDef is the JSON Schema the generated quiz must conform to.
// The correct_index bounds check depends on the sibling options array
// and is enforced separately in validateBounds.
var quizSchemaDef = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"quiz_id": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"subject": map[string]any{
			"type": "string",
		},
		"topic": map[string]any{
			"type": "string",
		},
		"difficulty": map[string]any{
			"type": "string",
			"enum": []any{"easy", "medium", "hard"},
		},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{
						"type":      "string",
						"minLength": 1,
					},
					"options": map[string]any{
						"type":     "array",
						"minItems": 2,
						"items":    map[string]any{"type": "string"},
					},
					"correct_index": map[string]any{
						"type":    "integer",
						"minimum": 0,
					},
					"explanation": map[string]any{
						"type": "string",
					},
				},
				"required": []any{"question", "options", "correct_index", "explanation"},
			},
		},
		"meta": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"topic_used": map[string]any{
					"type": "boolean",
				},
				"ignored_reason": map[string]any{
					"type": []any{"string", "null"},
				},
			},
			"required": []any{"topic_used"},
		},
	},
	"required": []any{"quiz_id", "subject", "topic", "difficulty", "questions"},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, so round
		// the definition through encoding/json first.
		defBytes, err := json.Marshal(quizSchemaDef)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const schemaURL = "schema://mcq-quiz.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// validateDocument checks the parsed quiz document against the schema.
// Validation failures are surfaced as ErrValidation, never silently
// coerced into a partially valid quiz.
func validateDocument(data map[string]any) error {
	schema, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile quiz schema: %w", err)
	}

	if err := schema.Validate(data); err != nil {
		return &ErrValidation{Err: err}
	}
	return nil
}

// validateBounds enforces the correct_index invariant, which depends on
// the sibling options array and cannot be expressed in the schema.
func validateBounds(quiz *MCQQuiz) error {
	for i, q := range quiz.Questions {
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return &ErrValidation{
				Err: fmt.Errorf("question %d: correct_index %d out of range for %d options",
					i, q.CorrectIndex, len(q.Options)),
			}
		}
	}
	return nil
}

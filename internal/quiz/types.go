// Package quiz generates, validates, scores, and remediates
// multiple-choice quizzes derived from a tutoring conversation.
package quiz

import "fmt"

// Difficulty levels accepted by the generator.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MCQQuestion is one multiple-choice question.
type MCQQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// Meta records whether the requested topic was actually used and, when
// it was not, why.
type Meta struct {
	TopicUsed     bool   `json:"topic_used"`
	IgnoredReason string `json:"ignored_reason,omitempty"`
}

// MCQQuiz is a validated multiple-choice quiz.
// Invariants: at least one question; every question has at least two
// options and a correct_index within bounds.
type MCQQuiz struct {
	QuizID     string        `json:"quiz_id"`
	Subject    string        `json:"subject"`
	Topic      string        `json:"topic"`
	Difficulty Difficulty    `json:"difficulty"`
	Questions  []MCQQuestion `json:"questions"`
	Meta       *Meta         `json:"meta,omitempty"`
}

// Result is one graded quiz attempt. Immutable once created; multiple
// results may exist per quiz, latest-by-append-order wins for
// remediation.
type Result struct {
	SessionID        string `json:"session_id"`
	QuizID           string `json:"quiz_id"`
	Topic            string `json:"topic"`
	TotalQuestions   int    `json:"total_questions"`
	CorrectAnswers   int    `json:"correct_answers"`
	SelectedIndices  []int  `json:"selected_indices"`
	IncorrectIndices []int  `json:"incorrect_indices"`
}

// ErrParse indicates the model response could not be parsed as JSON
// even after repair. Excerpt carries a truncated slice of the raw
// response for diagnostics.
type ErrParse struct {
	Excerpt string
	Err     error
}

func (e *ErrParse) Error() string {
	return fmt.Sprintf("failed to parse quiz JSON: %v\nRaw: %s", e.Err, e.Excerpt)
}

func (e *ErrParse) Unwrap() error { return e.Err }

// ErrValidation indicates the parsed quiz violates the schema.
type ErrValidation struct {
	Err error
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("quiz validation failed: %v", e.Err)
}

func (e *ErrValidation) Unwrap() error { return e.Err }

// ErrNotFound indicates no stored quiz exists for the given key.
type ErrNotFound struct {
	SessionID string
	QuizID    string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("quiz not found: %s__%s", e.SessionID, e.QuizID)
}

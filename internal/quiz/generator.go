package quiz

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhisek/sokrates/internal/llm"
	"github.com/abhisek/sokrates/internal/session"
)

const (
	// minQuestions and maxQuestions clamp the requested quiz size.
	minQuestions = 3
	maxQuestions = 10

	// retryPause separates the first and second generation attempts.
	retryPause = 600 * time.Millisecond

	// excerptLen bounds the raw-response excerpt carried by ErrParse.
	excerptLen = 300

	fallbackReason = "Transient generation error occurred; fell back to a safer prompt and the topic may have been ignored."
	inferredReason = "The requested topic was not reflected in the generated questions."
)

// Generator produces validated MCQ quizzes from a tutoring conversation.
type Generator struct {
	provider llm.Provider
	pause    time.Duration
}

// NewGenerator creates a quiz generator.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider, pause: retryPause}
}

// Generate builds a quiz prompt from the subject, topic, and the most
// recent conversation context, invokes the LLM at temperature 0, and
// returns a validated quiz.
//
// Attempt policy: on failure, pause briefly and retry once with
// identical inputs; if that also fails, retry a final time with an
// empty context (topic-only prompt). The last-resort attempt is flagged
// so a missing topic reason can note the fallback.
func (g *Generator) Generate(ctx context.Context, subject, topic string, conversation []session.ChatMessage, numQuestions int, difficulty Difficulty) (*MCQQuiz, error) {
	if numQuestions < minQuestions {
		numQuestions = minQuestions
	}
	if numQuestions > maxQuestions {
		numQuestions = maxQuestions
	}
	if difficulty == "" {
		difficulty = DifficultyMedium
	}

	convContext := formatContext(conversation)

	raw, usedFallback, err := g.invoke(ctx, subject, topic, difficulty, numQuestions, convContext)
	if err != nil {
		return nil, err
	}

	data, err := parseQuizJSON(raw)
	if err != nil {
		return nil, err
	}

	postProcess(data, topic)

	if err := validateDocument(data); err != nil {
		return nil, err
	}

	quiz, err := decodeQuiz(data)
	if err != nil {
		return nil, err
	}

	if err := validateBounds(quiz); err != nil {
		return nil, err
	}

	if usedFallback && quiz.Meta != nil && !quiz.Meta.TopicUsed && quiz.Meta.IgnoredReason == "" {
		quiz.Meta.IgnoredReason = fallbackReason
	}

	return quiz, nil
}

// invoke runs the bounded attempt sequence and returns the raw model
// output plus whether the empty-context fallback produced it.
func (g *Generator) invoke(ctx context.Context, subject, topic string, difficulty Difficulty, numQuestions int, convContext string) (string, bool, error) {
	ctx = llm.WithPurpose(ctx, "quiz-gen")

	req := llm.Request{
		System: quizSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuizUserMessage(subject, topic, difficulty, numQuestions, convContext)},
		},
		Temperature: llm.Float(0),
	}

	resp, err := g.provider.Generate(ctx, req)
	if err == nil {
		return resp.Content, false, nil
	}

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-time.After(g.pause):
	}

	resp, err = g.provider.Generate(ctx, req)
	if err == nil {
		return resp.Content, false, nil
	}

	// Last resort: topic-only prompt without conversation history.
	req.Messages = []llm.Message{
		{Role: llm.RoleUser, Content: buildQuizUserMessage(subject, topic, difficulty, numQuestions, "")},
	}
	resp, err = g.provider.Generate(ctx, req)
	if err != nil {
		return "", false, err
	}
	return resp.Content, true, nil
}

// parseQuizJSON decodes the model output, repairing once by extracting
// the substring between the first '{' and the last '}'.
func parseQuizJSON(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err == nil {
		return data, nil
	}

	repaired := extractJSON(raw)
	if err := json.Unmarshal([]byte(repaired), &data); err != nil {
		return nil, &ErrParse{Excerpt: excerpt(raw, excerptLen), Err: err}
	}
	return data, nil
}

// extractJSON returns the largest brace-delimited substring, or the
// input unchanged when no such substring exists.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return text[start : end+1]
	}
	return text
}

// excerpt truncates s to at most n bytes without splitting a rune.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// postProcess fills in fields the model may omit: a fresh quiz_id, and
// a meta block inferred heuristically when absent. topic_used is
// assumed true unless the topic string appears nowhere in the question
// and option text.
func postProcess(data map[string]any, topic string) {
	if id, ok := data["quiz_id"].(string); !ok || id == "" {
		data["quiz_id"] = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	if _, ok := data["meta"]; ok {
		return
	}

	topicUsed := true
	if topic != "" {
		var blob strings.Builder
		if questions, ok := data["questions"].([]any); ok {
			for _, q := range questions {
				qm, ok := q.(map[string]any)
				if !ok {
					continue
				}
				if text, ok := qm["question"].(string); ok {
					blob.WriteString(text)
					blob.WriteString("\n")
				}
				if opts, ok := qm["options"].([]any); ok {
					for _, o := range opts {
						if s, ok := o.(string); ok {
							blob.WriteString(s)
							blob.WriteString("\n")
						}
					}
				}
			}
		}
		topicUsed = strings.Contains(strings.ToLower(blob.String()), strings.ToLower(topic))
	}

	meta := map[string]any{"topic_used": topicUsed}
	if !topicUsed {
		meta["ignored_reason"] = inferredReason
	}
	data["meta"] = meta
}

// decodeQuiz converts the parsed document into the typed quiz.
func decodeQuiz(data map[string]any) (*MCQQuiz, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, &ErrParse{Err: err}
	}
	var quiz MCQQuiz
	if err := json.Unmarshal(payload, &quiz); err != nil {
		return nil, &ErrParse{Excerpt: excerpt(string(payload), excerptLen), Err: err}
	}
	return &quiz, nil
}

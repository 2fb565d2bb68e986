package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/abhisek/sokrates/internal/llm"
	"github.com/abhisek/sokrates/internal/session"
)

// validQuizJSON renders a minimal well-formed quiz document. The topic
// string is woven into the first question so meta inference sees it.
func validQuizJSON(topic string, numQuestions int) string {
	questions := make([]map[string]any, 0, numQuestions)
	for i := range numQuestions {
		questions = append(questions, map[string]any{
			"question":      fmt.Sprintf("Question %d about %s?", i+1, topic),
			"options":       []string{"alpha", "beta", "gamma", "delta"},
			"correct_index": i % 4,
			"explanation":   "because",
		})
	}
	doc := map[string]any{
		"quiz_id":    "quiz-1",
		"subject":    "Mathematics",
		"topic":      topic,
		"difficulty": "medium",
		"questions":  questions,
	}
	payload, _ := json.Marshal(doc)
	return string(payload)
}

func newFastGenerator(mock *llm.MockProvider) *Generator {
	g := NewGenerator(mock)
	g.pause = time.Millisecond
	return g
}

func testConversation() []session.ChatMessage {
	return []session.ChatMessage{
		{Role: llm.RoleUser, Content: "what is a derivative"},
		{Role: llm.RoleAssistant, Content: "let us find out together"},
	}
}

func TestGenerateValidQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON("derivatives", 4)})
	g := newFastGenerator(mock)

	quiz, err := g.Generate(context.Background(), "Mathematics", "derivatives", testConversation(), 4, DifficultyMedium)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if quiz.QuizID != "quiz-1" {
		t.Errorf("quiz id = %q", quiz.QuizID)
	}
	if len(quiz.Questions) != 4 {
		t.Errorf("got %d questions, want 4", len(quiz.Questions))
	}
	if quiz.Meta == nil || !quiz.Meta.TopicUsed {
		t.Errorf("meta = %+v, want topic_used true", quiz.Meta)
	}
	if mock.CallCount() != 1 {
		t.Errorf("call count = %d, want 1", mock.CallCount())
	}

	// Quiz generation asks for maximal determinism.
	req := mock.Calls[0]
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("temperature = %v, want an explicit 0", req.Temperature)
	}
}

func TestGenerateRepairsWrappedJSON(t *testing.T) {
	wrapped := "Sure, here is the quiz:\n```json\n" + validQuizJSON("limits", 3) + "\n```\nEnjoy!"
	mock := llm.NewMockProvider(llm.MockResponse{Content: wrapped})
	g := newFastGenerator(mock)

	quiz, err := g.Generate(context.Background(), "Mathematics", "limits", nil, 3, DifficultyEasy)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(quiz.Questions) != 3 {
		t.Errorf("got %d questions, want 3", len(quiz.Questions))
	}
}

func TestGenerateParseFailureCarriesExcerpt(t *testing.T) {
	long := strings.Repeat("not json at all ", 40)
	mock := llm.NewMockProvider(llm.MockResponse{Content: long})
	g := newFastGenerator(mock)

	_, err := g.Generate(context.Background(), "Mathematics", "", nil, 3, DifficultyMedium)
	var parseErr *ErrParse
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ErrParse", err)
	}
	if len(parseErr.Excerpt) != excerptLen {
		t.Errorf("excerpt length = %d, want %d", len(parseErr.Excerpt), excerptLen)
	}
}

func TestExcerptKeepsRunesWhole(t *testing.T) {
	// One ASCII byte followed by 3-byte runes puts every rune boundary
	// off the 300-byte cut.
	raw := "a" + strings.Repeat("€", 150)

	got := excerpt(raw, excerptLen)

	if len(got) > excerptLen {
		t.Errorf("excerpt length = %d, want at most %d", len(got), excerptLen)
	}
	if !utf8.ValidString(got) {
		t.Errorf("excerpt is not valid UTF-8: %q", got)
	}

	if short := excerpt("short", excerptLen); short != "short" {
		t.Errorf("excerpt(short) = %q", short)
	}
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
		llm.MockResponse{Content: validQuizJSON("derivatives", 3)},
	)
	g := newFastGenerator(mock)

	quiz, err := g.Generate(context.Background(), "Mathematics", "derivatives", testConversation(), 3, DifficultyMedium)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if quiz == nil || len(quiz.Questions) != 3 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if mock.CallCount() != 2 {
		t.Errorf("call count = %d, want 2", mock.CallCount())
	}

	// The second attempt repeats the identical prompt.
	first := mock.Calls[0].Messages[0].Content
	second := mock.Calls[1].Messages[0].Content
	if first != second {
		t.Error("retry should reuse the same prompt")
	}
}

func TestGenerateFallsBackToEmptyContext(t *testing.T) {
	// The fallback response declares topic_used false without a reason,
	// so the generator supplies the fallback explanation.
	var doc map[string]any
	if err := json.Unmarshal([]byte(validQuizJSON("other things entirely", 3)), &doc); err != nil {
		t.Fatal(err)
	}
	doc["meta"] = map[string]any{"topic_used": false}
	payload, _ := json.Marshal(doc)

	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("still down")}},
		llm.MockResponse{Content: string(payload)},
	)
	g := newFastGenerator(mock)

	quiz, err := g.Generate(context.Background(), "Mathematics", "derivatives", testConversation(), 3, DifficultyMedium)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("call count = %d, want 3", mock.CallCount())
	}

	// The last-resort prompt drops the conversation context.
	last := mock.Calls[2].Messages[0].Content
	if strings.Contains(last, "what is a derivative") {
		t.Error("fallback prompt should not carry conversation context")
	}

	if quiz.Meta == nil {
		t.Fatal("expected meta")
	}
	if quiz.Meta.TopicUsed {
		t.Error("topic_used should be false")
	}
	if quiz.Meta.IgnoredReason != fallbackReason {
		t.Errorf("ignored_reason = %q, want fallback reason", quiz.Meta.IgnoredReason)
	}
}

func TestGenerateSurfacesLastError(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("one")}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("two")}},
		llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("three")}},
	)
	g := newFastGenerator(mock)

	_, err := g.Generate(context.Background(), "Mathematics", "derivatives", nil, 3, DifficultyMedium)
	if err == nil {
		t.Fatal("expected error after three failed attempts")
	}
	var rateLimited *llm.ErrRateLimit
	if !errors.As(err, &rateLimited) {
		t.Errorf("error = %v, want the final attempt's error", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want 3", mock.CallCount())
	}
}

func TestGenerateValidationFailures(t *testing.T) {
	base := func() map[string]any {
		var doc map[string]any
		if err := json.Unmarshal([]byte(validQuizJSON("derivatives", 3)), &doc); err != nil {
			panic(err)
		}
		return doc
	}

	tests := []struct {
		name string
		mut  func(doc map[string]any)
	}{
		{
			name: "no questions",
			mut: func(doc map[string]any) {
				doc["questions"] = []any{}
			},
		},
		{
			name: "single option",
			mut: func(doc map[string]any) {
				q := doc["questions"].([]any)[0].(map[string]any)
				q["options"] = []string{"only"}
			},
		},
		{
			name: "correct index out of range",
			mut: func(doc map[string]any) {
				q := doc["questions"].([]any)[0].(map[string]any)
				q["correct_index"] = 4
			},
		},
		{
			name: "missing subject",
			mut: func(doc map[string]any) {
				delete(doc, "subject")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			tt.mut(doc)
			payload, err := json.Marshal(doc)
			if err != nil {
				t.Fatal(err)
			}

			mock := llm.NewMockProvider(llm.MockResponse{Content: string(payload)})
			g := newFastGenerator(mock)

			_, err = g.Generate(context.Background(), "Mathematics", "derivatives", nil, 3, DifficultyMedium)
			var valErr *ErrValidation
			if !errors.As(err, &valErr) {
				t.Fatalf("error = %v, want *ErrValidation", err)
			}
		})
	}
}

func TestGenerateFillsQuizID(t *testing.T) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(validQuizJSON("derivatives", 3)), &doc); err != nil {
		t.Fatal(err)
	}
	delete(doc, "quiz_id")
	payload, _ := json.Marshal(doc)

	mock := llm.NewMockProvider(llm.MockResponse{Content: string(payload)})
	g := newFastGenerator(mock)

	quiz, err := g.Generate(context.Background(), "Mathematics", "derivatives", nil, 3, DifficultyMedium)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if quiz.QuizID == "" {
		t.Error("expected a generated quiz id")
	}
	if strings.Contains(quiz.QuizID, "-") {
		t.Errorf("quiz id should be dashless: %q", quiz.QuizID)
	}
}

func TestGenerateInfersTopicIgnored(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validQuizJSON("integrals", 3)})
	g := newFastGenerator(mock)

	quiz, err := g.Generate(context.Background(), "Mathematics", "group theory", nil, 3, DifficultyMedium)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if quiz.Meta == nil {
		t.Fatal("expected inferred meta")
	}
	if quiz.Meta.TopicUsed {
		t.Error("topic_used should be false when the topic never appears")
	}
	if quiz.Meta.IgnoredReason != inferredReason {
		t.Errorf("ignored_reason = %q", quiz.Meta.IgnoredReason)
	}
}

func TestGenerateClampsQuestionCount(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: validQuizJSON("derivatives", 3)},
		llm.MockResponse{Content: validQuizJSON("derivatives", 3)},
	)
	g := newFastGenerator(mock)

	if _, err := g.Generate(context.Background(), "Mathematics", "derivatives", nil, 1, DifficultyMedium); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := g.Generate(context.Background(), "Mathematics", "derivatives", nil, 50, DifficultyMedium); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	low := mock.Calls[0].Messages[0].Content
	high := mock.Calls[1].Messages[0].Content
	if !strings.Contains(low, "Number of questions: 3.") {
		t.Errorf("low request should ask for 3 questions:\n%s", low)
	}
	if !strings.Contains(high, "Number of questions: 10.") {
		t.Errorf("high request should ask for 10 questions:\n%s", high)
	}
}

package quiz

import (
	"context"
	"strings"
	"testing"

	"github.com/abhisek/sokrates/internal/llm"
)

func remediationQuiz() *MCQQuiz {
	return &MCQQuiz{
		QuizID:  "quiz-1",
		Subject: "Mathematics",
		Topic:   "derivatives",
		Questions: []MCQQuestion{
			{Question: "d/dx of x^2?", Options: []string{"2x", "x", "x^2", "2"}, CorrectIndex: 0},
			{Question: "d/dx of sin x?", Options: []string{"-cos x", "cos x", "tan x", "sec x"}, CorrectIndex: 1},
			{Question: "d/dx of a constant?", Options: []string{"1", "the constant", "0", "undefined"}, CorrectIndex: 2},
		},
	}
}

func TestBuildRemediationMessages(t *testing.T) {
	system, user := buildRemediationMessages("Mathematics", "derivatives", remediationQuiz(), []int{1, 2}, "en")

	if !strings.Contains(system, "tutor") {
		t.Errorf("system prompt = %q", system)
	}
	if strings.Contains(system, "Persian") {
		t.Error("english sessions should not request Persian output")
	}

	for _, want := range []string{
		"Q2: d/dx of sin x? | Correct: cos x",
		"Q3: d/dx of a constant? | Correct: 0",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
	if strings.Contains(user, "Q1:") {
		t.Error("correctly answered questions should not be listed")
	}
}

func TestBuildRemediationMessagesPersian(t *testing.T) {
	for _, lang := range []string{"fa", "fa-IR", "FA"} {
		system, _ := buildRemediationMessages("Mathematics", "", remediationQuiz(), []int{0}, lang)
		if !strings.Contains(system, "Respond in Persian (Farsi).") {
			t.Errorf("language %q: system prompt missing Persian instruction", lang)
		}
	}
}

func TestBuildRemediationMessagesEdgeCases(t *testing.T) {
	// Out-of-range indices are skipped; nothing left yields "(none)".
	_, user := buildRemediationMessages("Mathematics", "", remediationQuiz(), []int{-1, 99}, "en")
	if !strings.Contains(user, "Mistakes:\n(none)") {
		t.Errorf("user prompt = %q", user)
	}

	_, user = buildRemediationMessages("Mathematics", "", remediationQuiz(), nil, "en")
	if !strings.Contains(user, "(none)") {
		t.Errorf("user prompt = %q", user)
	}
}

func TestRemediatorGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "Here is a short lesson."})
	r := NewRemediator(mock)

	lesson, err := r.Generate(context.Background(), "Mathematics", "derivatives", remediationQuiz(), []int{1}, "en")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if lesson != "Here is a short lesson." {
		t.Errorf("lesson = %q", lesson)
	}

	req := mock.Calls[0]
	if req.Temperature == nil || *req.Temperature != 0 {
		t.Errorf("temperature = %v, want an explicit 0", req.Temperature)
	}
	if !strings.Contains(req.Messages[0].Content, "d/dx of sin x?") {
		t.Errorf("request missing the missed question:\n%s", req.Messages[0].Content)
	}
}

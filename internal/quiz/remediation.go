package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/sokrates/internal/llm"
)

const remediationSystemPrompt = "You are a kind, effective tutor. Diagnose misconceptions and teach with concise steps, examples, and quick checks."

// Remediator turns a learner's missed questions into a short
// personalized follow-up lesson.
type Remediator struct {
	provider llm.Provider
}

// NewRemediator creates a remediation generator.
func NewRemediator(provider llm.Provider) *Remediator {
	return &Remediator{provider: provider}
}

// buildRemediationMessages assembles the system and user prompts. The
// system instruction is localized by language tag; mistakes outside the
// quiz's question range are skipped; an empty mistake list yields a
// "(none)" summary (callers normally short-circuit before that).
func buildRemediationMessages(subject, topic string, quiz *MCQQuiz, incorrectIndices []int, language string) (string, string) {
	system := remediationSystemPrompt
	if strings.HasPrefix(strings.ToLower(language), "fa") {
		system += " Respond in Persian (Farsi)."
	}

	var lines []string
	for _, i := range incorrectIndices {
		if i < 0 || i >= len(quiz.Questions) {
			continue
		}
		q := quiz.Questions[i]
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			continue
		}
		lines = append(lines, fmt.Sprintf("Q%d: %s | Correct: %s", i+1, q.Question, q.Options[q.CorrectIndex]))
	}
	summary := "(none)"
	if len(lines) > 0 {
		summary = strings.Join(lines, "\n")
	}

	user := fmt.Sprintf("Subject: %s. Topic: %s.\n", subject, topic) +
		"Create a brief personalized lesson to address the mistakes below.\n" +
		"For each mistake: explain the core concept, show a clear example, and include a quick 1-question check.\n" +
		"Mistakes:\n" + summary

	return system, user
}

// Generate produces the remediation lesson text at temperature 0.
func (r *Remediator) Generate(ctx context.Context, subject, topic string, quiz *MCQQuiz, incorrectIndices []int, language string) (string, error) {
	system, user := buildRemediationMessages(subject, topic, quiz, incorrectIndices, language)

	resp, err := r.provider.Generate(llm.WithPurpose(ctx, "remediation"), llm.Request{
		System: system,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: user},
		},
		Temperature: llm.Float(0),
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

package quiz

import (
	"fmt"
	"strings"

	"github.com/abhisek/sokrates/internal/session"
)

// contextWindow bounds how much conversation history reaches the quiz
// prompt. Oldest messages are dropped first.
const contextWindow = 20

const quizSystemPrompt = "You are an expert educator. Create a concise multiple-choice quiz. " +
	"Return ONLY strict JSON (no markdown, no text before/after)."

// buildQuizUserMessage renders the structured quiz request. The model
// is explicitly permitted to ignore an irrelevant topic in favor of the
// subject, flagging that via meta.topic_used.
func buildQuizUserMessage(subject, topic string, difficulty Difficulty, numQuestions int, context string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s. Topic: %s. Difficulty: %s. Number of questions: %d.\n",
		subject, topic, difficulty, numQuestions)
	b.WriteString("If the topic is clearly irrelevant to the subject and context, IGNORE the topic and generate the quiz for the subject instead.\n")
	b.WriteString("Include a 'meta' object indicating whether the topic was used and, if not, a brief reason.\n")
	fmt.Fprintf(&b, "Base questions on the following teaching context when relevant to the topic (may include prior Q&A):\n%s\n", context)
	b.WriteString("Each question must have exactly 4 options. Use 0-based 'correct_index'. Provide a brief 'explanation' for the correct answer.\n")
	b.WriteString("JSON schema: {\n" +
		"  'subject': str,\n" +
		"  'topic': str,\n" +
		"  'difficulty': 'easy'|'medium'|'hard',\n" +
		"  'questions': [ { 'question': str, 'options': [str, str, str, str], 'correct_index': int, 'explanation': str } ],\n" +
		"  'meta': { 'topic_used': bool, 'ignored_reason': str }\n" +
		"}")

	return b.String()
}

// formatContext serializes the most recent conversation messages as
// plain "role: content" blocks.
func formatContext(messages []session.ChatMessage) string {
	if len(messages) > contextWindow {
		messages = messages[len(messages)-contextWindow:]
	}

	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	return strings.Join(parts, "\n\n")
}

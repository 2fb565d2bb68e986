package tutor

import (
	"strings"

	"github.com/abhisek/sokrates/internal/websearch"
)

// BuildSystemPrompt renders the fixed Socratic tutoring persona for a
// subject and optional learning goal.
func BuildSystemPrompt(subject, goal string) string {
	var b strings.Builder
	b.WriteString("You are a patient, Socratic AI tutor. Ask guiding questions, break problems into steps, " +
		"and adapt to the learner's knowledge. Prefer concise explanations and examples.")
	if goal != "" {
		b.WriteString(" The learner's goal is: " + goal + ".")
	}
	b.WriteString(" You are tutoring the subject: " + subject + ".")
	b.WriteString(" Always verify understanding before moving on.")
	return b.String()
}

// openingInstruction is the synthetic user message that produces the
// proactive first assistant turn of a new session.
const openingInstruction = "Start the lesson with a brief greeting and a 3-step plan tailored to the subject and goal. " +
	"Ask one quick diagnostic question to gauge current understanding."

// formatFindings renders search results as a bulleted findings block.
// Hits missing a title or URL are dropped. Returns "" when nothing
// usable remains.
func formatFindings(results []websearch.Result) string {
	var bullets []string
	for _, r := range results {
		if r.Title == "" || r.URL == "" {
			continue
		}
		bullets = append(bullets, "- "+r.Title+": "+r.URL)
	}
	if len(bullets) == 0 {
		return ""
	}
	return "Relevant web findings (use with caution, verify facts):\n" + strings.Join(bullets, "\n")
}

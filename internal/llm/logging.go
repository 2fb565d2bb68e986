package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/abhisek/sokrates/internal/eventlog"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label ("tutor-turn", "quiz-gen",
// "remediation", ...) to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingProvider is a decorator that records every LLM request as an
// event. Logging failures never fail the request.
type LoggingProvider struct {
	inner Provider
	repo  eventlog.Repo
}

// WithLogging wraps a Provider with event logging.
func WithLogging(p Provider, repo eventlog.Repo) Provider {
	return &LoggingProvider{inner: p, repo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	ev := eventlog.Event{
		Timestamp: start,
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}

	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.Model = resp.Model
	}

	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	if logErr := l.repo.Append(ctx, ev); logErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

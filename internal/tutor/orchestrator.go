// Package tutor orchestrates tutoring turns: optional web augmentation,
// LLM generation, and session persistence.
package tutor

import (
	"context"

	"github.com/abhisek/sokrates/internal/llm"
	"github.com/abhisek/sokrates/internal/session"
	"github.com/abhisek/sokrates/internal/websearch"
)

// turnTemperature keeps tutoring replies deterministic-leaning.
const turnTemperature = 0.2

// searchMaxResults caps augmentation lookups per turn.
const searchMaxResults = 3

// Searcher is the slice of the web search client the orchestrator needs.
type Searcher interface {
	IsConfigured() bool
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// TurnState is the in-memory state of one tutoring turn as it moves
// through the Augment and Generate stages.
type TurnState struct {
	Messages        []session.ChatMessage
	EnableWebSearch bool
}

// Orchestrator mediates between the presentation layer, the session
// store, the search adapter, and the LLM provider.
type Orchestrator struct {
	store    *session.Store
	provider llm.Provider
	search   Searcher
}

// New creates an Orchestrator. search may be nil to disable augmentation.
func New(store *session.Store, provider llm.Provider, search Searcher) *Orchestrator {
	return &Orchestrator{store: store, provider: provider, search: search}
}

// StartSession creates and persists a new session: a system message
// built from the subject and goal, then one proactive assistant turn
// that opens the lesson. A failed proactive call is non-fatal; the
// session is still persisted with just the system message.
func (o *Orchestrator) StartSession(ctx context.Context, subject, goal, language string) (*session.Session, error) {
	sess, err := o.store.Create(subject, goal, language)
	if err != nil {
		return nil, err
	}

	prompt := BuildSystemPrompt(subject, goal)
	sess.Messages = append(sess.Messages, session.ChatMessage{
		Role:    llm.RoleSystem,
		Content: prompt,
	})

	resp, err := o.provider.Generate(llm.WithPurpose(ctx, "tutor-open"), llm.Request{
		System: prompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: openingInstruction},
		},
		Temperature: llm.Float(turnTemperature),
	})
	if err == nil {
		sess.Messages = append(sess.Messages, session.ChatMessage{
			Role:    llm.RoleAssistant,
			Content: resp.Content,
		})
	}

	if err := o.store.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ContinueSession runs one tutoring turn: Augment (optional), Generate,
// then persist the user and assistant messages in append order.
func (o *Orchestrator) ContinueSession(ctx context.Context, sessionID, userMessage string, enableWebSearch bool) (*session.Session, error) {
	sess, err := o.store.Load(sessionID)
	if err != nil {
		return nil, err
	}

	state := TurnState{
		Messages:        sess.Messages,
		EnableWebSearch: enableWebSearch,
	}

	augmented := o.augment(ctx, state, userMessage)

	resp, err := o.generate(ctx, state.Messages, augmented)
	if err != nil {
		return nil, err
	}

	// Persist the raw user message; augmentation lives only in the
	// request payload for this turn.
	sess.Messages = append(sess.Messages,
		session.ChatMessage{Role: llm.RoleUser, Content: userMessage},
		session.ChatMessage{Role: llm.RoleAssistant, Content: resp.Content},
	)
	if err := o.store.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// augment runs the optional Augment stage. It returns the user message,
// with a findings block appended when search is enabled, configured,
// and succeeds. Search failure never aborts the turn.
func (o *Orchestrator) augment(ctx context.Context, state TurnState, userMessage string) string {
	if !state.EnableWebSearch || o.search == nil || !o.search.IsConfigured() {
		return userMessage
	}

	results, err := o.search.Search(ctx, userMessage, searchMaxResults)
	if err != nil || len(results) == 0 {
		return userMessage
	}

	findings := formatFindings(results)
	if findings == "" {
		return userMessage
	}
	return userMessage + "\n\n" + findings
}

// generate serializes the session history plus the current user turn
// and calls the provider.
func (o *Orchestrator) generate(ctx context.Context, history []session.ChatMessage, userContent string) (*llm.Response, error) {
	req := llm.Request{Temperature: llm.Float(turnTemperature)}

	for _, m := range history {
		if m.Role == llm.RoleSystem {
			if req.System != "" {
				req.System += "\n\n"
			}
			req.System += m.Content
			continue
		}
		req.Messages = append(req.Messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: userContent})

	return o.provider.Generate(llm.WithPurpose(ctx, "tutor-turn"), req)
}

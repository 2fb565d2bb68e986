package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using the OpenAI SDK.
// It supports any OpenAI-compatible API via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider. All three of API key,
// base URL, and model are required.
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if !cfg.IsConfigured() {
		return nil, &ErrNotConfigured{
			Reason: "set OPENAI_API_KEY, OPENAI_BASE_URL, and OPENAI_MODEL",
		}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	config.HTTPClient = &http.Client{
		Transport: &retryAfterTransport{base: http.DefaultTransport},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    buildOpenAIMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: wireTemperature(req.Temperature),
	}

	holder := &retryAfterHolder{}
	ctx = context.WithValue(ctx, retryAfterKey{}, holder)

	resp, err := p.create(ctx, chatReq)
	if err == nil {
		return resp, nil
	}

	renamed, dropped := false, false
	for {
		switch edge := classifyCompatError(err); {
		case edge == edgeRenameMaxTokens && !renamed && chatReq.MaxTokens > 0:
			renamed = true
			chatReq.MaxCompletionTokens = chatReq.MaxTokens
			chatReq.MaxTokens = 0
		case edge == edgeDropTemperature && !dropped && chatReq.Temperature != 0:
			dropped = true
			chatReq.Temperature = 0
		default:
			return nil, mapOpenAIError(err, holder.get())
		}

		resp, err = p.create(ctx, chatReq)
		if err == nil {
			return resp, nil
		}
	}
}

// wireTemperature converts the optional temperature into the SDK field.
// The SDK omits a zero temperature from the wire request, so an
// explicit zero is encoded as the smallest positive float32, which the
// SDK documents as the way to actually send 0.
func wireTemperature(t *float64) float32 {
	if t == nil {
		return 0
	}
	if *t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(*t)
}

func (p *OpenAIProvider) ModelID() string {
	return p.model
}

// create issues one chat completion call. Errors are returned raw so the
// compat state machine can classify them before mapping.
func (p *OpenAIProvider) create(ctx context.Context, chatReq openai.ChatCompletionRequest) (*Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{
			Err: fmt.Errorf("no choices in OpenAI response"),
		}
	}

	choice := resp.Choices[0]
	return &Response{
		Content: choice.Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Model:      resp.Model,
		StopReason: mapOpenAIStopReason(choice.FinishReason),
	}, nil
}

func buildOpenAIMessages(req Request) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	return messages
}

func mapOpenAIStopReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return "end"
	case openai.FinishReasonLength:
		return "max_tokens"
	default:
		return "end"
	}
}

func mapOpenAIError(err error, retryAfter time.Duration) error {
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}

// retryAfterKey carries a holder through the request context so the
// transport can hand the Retry-After header of a 429 response back to
// the error mapping. The SDK's error type does not expose headers.
type retryAfterKey struct{}

type retryAfterHolder struct {
	mu sync.Mutex
	d  time.Duration
}

func (h *retryAfterHolder) set(d time.Duration) {
	h.mu.Lock()
	h.d = d
	h.mu.Unlock()
}

func (h *retryAfterHolder) get() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.d
}

type retryAfterTransport struct {
	base http.RoundTripper
}

func (t *retryAfterTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		if h, ok := req.Context().Value(retryAfterKey{}).(*retryAfterHolder); ok {
			h.set(parseRetryAfter(resp.Header.Get("Retry-After")))
		}
	}
	return resp, err
}

// parseRetryAfter handles both forms of the header: delay seconds and
// an HTTP date.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs > 0 {
			return time.Duration(secs) * time.Second
		}
		return 0
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// Package voice transcribes learner audio through the Whisper endpoint
// of the configured OpenAI-compatible backend. Audio bytes are passed
// through as-is; format conversion is the caller's concern.
package voice

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/sokrates/internal/llm"
)

const defaultModel = "whisper-1"

// Transcriber converts recorded audio to text.
type Transcriber struct {
	client *openai.Client
	model  string
}

// NewTranscriber creates a transcriber from the shared OpenAI
// configuration. Requires the same credential triple as the chat
// provider.
func NewTranscriber(cfg llm.OpenAIConfig) (*Transcriber, error) {
	if !cfg.IsConfigured() {
		return nil, &llm.ErrNotConfigured{
			Reason: "set OPENAI_API_KEY, OPENAI_BASE_URL, and OPENAI_MODEL",
		}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL

	return &Transcriber{
		client: openai.NewClientWithConfig(config),
		model:  defaultModel,
	}, nil
}

// Transcribe sends a WAV byte stream to the transcription endpoint and
// returns the recognized text.
func (t *Transcriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(wav),
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return resp.Text, nil
}

package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	mock.AddResponse(MockResponse{Content: "recovered"})

	p := WithRetry(mock, fastRetryConfig(3))
	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "recovered" {
		t.Errorf("content = %q, want %q", resp.Content, "recovered")
	}
	if mock.CallCount() != 2 {
		t.Errorf("call count = %d, want 2", mock.CallCount())
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	mock := NewMockProvider()
	for range 3 {
		mock.AddResponse(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	}

	p := WithRetry(mock, fastRetryConfig(3))
	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d, want 3", mock.CallCount())
	}

	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("error type = %T, want *ErrProviderUnavailable", err)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not configured", &ErrNotConfigured{Reason: "no key"}},
		{"max tokens", &ErrMaxTokensExceeded{Content: "partial"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider()
			mock.AddResponse(MockResponse{Err: tt.err})
			mock.AddResponse(MockResponse{Content: "should not be reached"})

			p := WithRetry(mock, fastRetryConfig(3))
			_, err := p.Generate(context.Background(), Request{})
			if err == nil {
				t.Fatal("expected error")
			}
			if mock.CallCount() != 1 {
				t.Errorf("call count = %d, want 1", mock.CallCount())
			}
		})
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	mock.AddResponse(MockResponse{Content: "late"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetryConfig(3)
	cfg.InitialWait = time.Second

	p := WithRetry(mock, cfg)
	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("call count = %d, want 1", mock.CallCount())
	}
}

func TestRetryRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{RetryAfter: 2 * time.Millisecond, Err: errors.New("slow down")}})
	mock.AddResponse(MockResponse{Content: "ok"})

	p := WithRetry(mock, fastRetryConfig(2))
	start := time.Now()
	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("content = %q, want %q", resp.Content, "ok")
	}
	if elapsed := time.Since(start); elapsed < 2*time.Millisecond {
		t.Errorf("elapsed %v, want at least RetryAfter", elapsed)
	}
}

func TestWithRetryEnforcesMinimumAttempts(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Content: "once"})

	p := WithRetry(mock, RetryConfig{MaxAttempts: 0})
	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "once" {
		t.Errorf("content = %q, want %q", resp.Content, "once")
	}
}

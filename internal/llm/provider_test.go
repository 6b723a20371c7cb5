package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// mockProvider is a test implementation of Provider
type mockProvider struct {
	name     string
	response *Response
	err      error
	calls    atomic.Int32
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := &mockProvider{name: "test"}

	r.Register("test", p)

	got, err := r.Get("test")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != p {
		t.Error("Get() returned wrong provider")
	}

	if _, err := r.Get("missing"); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("Get(missing) error = %v; want ErrProviderNotFound", err)
	}
}

func TestRegistry_SetDefault(t *testing.T) {
	r := NewRegistry()
	r.Register("a", &mockProvider{name: "a"})

	if err := r.SetDefault("missing"); !errors.Is(err, ErrProviderNotFound) {
		t.Errorf("SetDefault(missing) error = %v; want ErrProviderNotFound", err)
	}
	if err := r.SetDefault("a"); err != nil {
		t.Fatalf("SetDefault(a) error = %v", err)
	}

	p, err := r.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if p.Name() != "a" {
		t.Errorf("Default().Name() = %q; want a", p.Name())
	}
}

func TestRegistry_Default_Auto(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Default(); !errors.Is(err, ErrNoDefaultProvider) {
		t.Errorf("Default() on empty registry error = %v; want ErrNoDefaultProvider", err)
	}

	r.Register("only", &mockProvider{name: "only"})
	p, err := r.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if p.Name() != "only" {
		t.Errorf("Default().Name() = %q; want the only registered provider", p.Name())
	}
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	r.Register("a", &mockProvider{name: "a"})
	r.Register("b", &mockProvider{name: "b"})

	names := r.List()
	if len(names) != 2 {
		t.Errorf("List() returned %d names; want 2", len(names))
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q", got)
		}

		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v; want system prompt first", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "two questions"}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "key", BaseURL: server.URL})
	resp, err := p.Complete(context.Background(), &Request{
		System:   "You are an interviewer.",
		Messages: []Message{{Role: RoleUser, Content: "generate"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "two questions" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 10 || resp.Usage.OutputTokens != 5 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "bad", BaseURL: server.URL})
	if _, err := p.Complete(context.Background(), &Request{}); err == nil {
		t.Fatal("Complete() should fail on a non-200 response")
	}
}

func TestClaudeProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-api-key"); got != "key" {
			t.Errorf("x-api-key = %q", got)
		}

		var req claudeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.MaxTokens == 0 {
			t.Error("max_tokens must be set for the messages API")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content":     []map[string]string{{"type": "text", "text": "a summary"}},
			"stop_reason": "end_turn",
			"usage":       map[string]int{"input_tokens": 7, "output_tokens": 3},
		})
	}))
	defer server.Close()

	p := NewClaudeProvider(ClaudeConfig{APIKey: "key", BaseURL: server.URL})
	resp, err := p.Complete(context.Background(), &Request{
		Messages: []Message{{Role: RoleUser, Content: "summarize"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "a summary" {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.FinishReason != "end_turn" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
}

func TestResilientProvider_Complete_Success(t *testing.T) {
	inner := &mockProvider{name: "mock", response: &Response{Content: "ok"}}
	rp := NewResilientProvider(inner, ResilientConfig{})
	defer rp.Close()

	resp, err := rp.Complete(context.Background(), &Request{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q", resp.Content)
	}
	if rp.Name() != "mock" {
		t.Errorf("Name() = %q", rp.Name())
	}
}

func TestResilientProvider_NonRetryableFailsOnce(t *testing.T) {
	inner := &mockProvider{name: "mock", err: fmt.Errorf("API error (status 401): bad key")}
	rp := NewResilientProvider(inner, ResilientConfig{})
	defer rp.Close()

	if _, err := rp.Complete(context.Background(), &Request{}); err == nil {
		t.Fatal("Complete() should propagate the provider error")
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("provider called %d times; auth failures must not be retried", got)
	}
}

func TestIsRetryableHTTPError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: fmt.Errorf("API error (status 429): slow down"), want: true},
		{err: fmt.Errorf("API error (status 503): overloaded"), want: true},
		{err: fmt.Errorf("API error (status 400): bad request"), want: false},
		{err: fmt.Errorf("connection refused"), want: false},
	}
	for _, tt := range tests {
		if got := isRetryableHTTPError(tt.err); got != tt.want {
			t.Errorf("isRetryableHTTPError(%v) = %v; want %v", tt.err, got, tt.want)
		}
	}
}

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gleanhq/glean/pkg/fault"
)

func ollamaConfig(endpoint string) Config {
	return Config{
		Name:         "ollama",
		Endpoint:     endpoint,
		DefaultModel: "llama3.2",
	}.WithDefaults()
}

func TestOllamaExecute(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:           "llama3.2",
			Message:         ollamaMessage{Role: "assistant", Content: `{"title":"hello"}`},
			Done:            true,
			PromptEvalCount: 120,
			EvalCount:       15,
		})
	}))
	defer server.Close()

	p, err := New(ollamaConfig(server.URL), server.Client())
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Execute(context.Background(), Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "extract data"},
			{Role: RoleUser, Content: "some content"},
		},
		MaxTokens:   512,
		Temperature: 0.1,
		JSONSchema:  map[string]any{"type": "object"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != `{"title":"hello"}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 15 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if gotReq.Model != "llama3.2" || gotReq.Stream {
		t.Errorf("request = %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 {
		t.Errorf("messages = %v", gotReq.Messages)
	}
	if gotReq.Format == nil {
		t.Error("expected JSON schema in format field")
	}
	if gotReq.Options.NumPredict != 512 {
		t.Errorf("NumPredict = %d, want 512", gotReq.Options.NumPredict)
	}
}

func TestOllamaExecute_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p, err := New(ollamaConfig(server.URL), server.Client())
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Execute(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "content"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := fault.KindOf(err); kind != fault.KindResponse {
		t.Errorf("kind = %q, want %q", kind, fault.KindResponse)
	}
	if !fault.IsRetryable(err) {
		t.Error("503 must be retryable")
	}
}

func TestOllamaExecute_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	p, err := New(ollamaConfig(server.URL), server.Client())
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Execute(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "content"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if fault.IsRetryable(err) {
		t.Error("400 must not be retryable")
	}
}

func TestOllamaExecute_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	p, err := New(ollamaConfig(server.URL), nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Execute(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "content"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := fault.KindOf(err); kind != fault.KindConnection {
		t.Errorf("kind = %q, want %q", kind, fault.KindConnection)
	}
	if !fault.IsRetryable(err) {
		t.Error("connection failures must be retryable")
	}
}

func TestOllamaExecute_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	p, err := New(ollamaConfig(server.URL), server.Client())
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Execute(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "content"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if kind, _ := fault.KindOf(err); kind != fault.KindParsing {
		t.Errorf("kind = %q, want %q", kind, fault.KindParsing)
	}
}

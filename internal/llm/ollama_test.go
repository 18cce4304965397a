package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOllamaClient_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Input))
		}
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, 5*time.Second, 0)
	vecs, err := client.Embed(context.Background(), "nomic-embed-text", []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vecs) != 2 || vecs[1][0] != 0.3 {
		t.Errorf("unexpected embeddings %v", vecs)
	}
}

func TestOllamaClient_EmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaEmbedResponse{
			Embeddings: [][]float64{{0.1}},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, 5*time.Second, 0)
	if _, err := client.Embed(context.Background(), "m", []string{"a", "b"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestOllamaClient_EmbedEmptyInput(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1", time.Second, 0)
	vecs, err := client.Embed(context.Background(), "m", nil)
	if err != nil {
		t.Fatalf("empty input must not reach the server: %v", err)
	}
	if len(vecs) != 0 {
		t.Errorf("expected no vectors, got %d", len(vecs))
	}
}

func TestOllamaClient_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("streaming must be disabled")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Role: "assistant", Content: `{"stance":"support"}`},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, 5*time.Second, 0)
	got, err := client.Chat(context.Background(), "llama3.2:latest", "sys", "user")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != `{"stance":"support"}` {
		t.Errorf("content = %q", got)
	}
}

func TestOllamaClient_ChatChoicesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, 5*time.Second, 0)
	got, err := client.Chat(context.Background(), "m", "s", "u")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "hi" {
		t.Errorf("content = %q", got)
	}
}

func TestOllamaClient_ServerErrorRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Content: "ok"},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, 5*time.Second, 1)
	got, err := client.Chat(context.Background(), "m", "s", "u")
	if err != nil {
		t.Fatalf("Chat after retry: %v", err)
	}
	if got != "ok" {
		t.Errorf("content = %q", got)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestOllamaClient_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, 5*time.Second, 3)
	if _, err := client.Chat(context.Background(), "nope", "s", "u"); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("client error must not be retried, got %d calls", calls)
	}
}

func TestOllamaClient_TrimsTrailingSlash(t *testing.T) {
	client := NewOllamaClient("http://localhost:11434/", time.Second, 0)
	if client.baseURL != "http://localhost:11434" {
		t.Errorf("baseURL = %q", client.baseURL)
	}
}

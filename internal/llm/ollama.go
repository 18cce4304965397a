package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient implements Client against a local Ollama server
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	retries    int
}

// Ollama API structures

type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`

	// Some OpenAI-compatible backends answer with a choices array instead
	Choices []struct {
		Message ollamaChatMessage `json:"message"`
	} `json:"choices,omitempty"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaClient creates a client for the given base URL
func NewOllamaClient(baseURL string, timeout time.Duration, retries int) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout == 0 {
		timeout = 60 * time.Second // Local models can be slow
	}

	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retries: retries,
	}
}

// Name returns the provider name
func (c *OllamaClient) Name() string {
	return "ollama"
}

// Embed returns one embedding vector per input text
func (c *OllamaClient) Embed(ctx context.Context, model string, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	apiReq := ollamaEmbedRequest{Model: model, Input: texts}

	var out ollamaEmbedResponse
	err := withRetry(ctx, c.retries, func(ctx context.Context) error {
		return c.post(ctx, "/api/embed", apiReq, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d vectors for %d texts", len(out.Embeddings), len(texts))
	}

	return out.Embeddings, nil
}

// Chat sends a system + user prompt pair and returns the response content
func (c *OllamaClient) Chat(ctx context.Context, model, system, user string) (string, error) {
	apiReq := ollamaChatRequest{
		Model: model,
		Messages: []ollamaChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false, // Get the complete response at once
	}

	var out ollamaChatResponse
	err := withRetry(ctx, c.retries, func(ctx context.Context) error {
		return c.post(ctx, "/api/chat", apiReq, &out)
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	content := out.Message.Content
	if content == "" && len(out.Choices) > 0 {
		content = out.Choices[0].Message.Content
	}
	return content, nil
}

// post executes a JSON request against the Ollama API and decodes the result
func (c *OllamaClient) post(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Connection and timeout failures are worth retrying
		return Transient(fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Transient(fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		msg := string(respBody)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		err := fmt.Errorf("API error (%d): %s", httpResp.StatusCode, msg)
		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500 {
			return Transient(err)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

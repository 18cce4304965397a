package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client against OpenAI or any OpenAI-compatible
// endpoint (set BaseURL for the latter)
type OpenAIClient struct {
	client  *openai.Client
	retries int
}

// NewOpenAIClient creates a client with the given API key and optional
// custom base URL
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration, retries int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	if timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: timeout}
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		retries: retries,
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Embed returns one embedding vector per input text
func (c *OpenAIClient) Embed(ctx context.Context, model string, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	req := openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(model),
	}

	var resp openai.EmbeddingResponse
	err := withRetry(ctx, c.retries, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.client.CreateEmbeddings(ctx, req)
		return classifyOpenAIError(callErr)
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, item := range resp.Data {
		vec := make([]float64, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Chat sends a system + user prompt pair via the Chat Completions API
func (c *OpenAIClient) Chat(ctx context.Context, model, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.3, // Lower temperature for more focused, parseable output
	}

	var resp openai.ChatCompletionResponse
	err := withRetry(ctx, c.retries, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.client.CreateChatCompletion(ctx, req)
		return classifyOpenAIError(callErr)
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError marks rate-limit and server-side failures as transient
func classifyOpenAIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500 {
			return Transient(err)
		}
		return err
	}

	// Non-API errors are network-level failures
	return Transient(err)
}

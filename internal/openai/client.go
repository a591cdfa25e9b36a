package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultChatModel      = "gpt-4-turbo"
	defaultTimeout        = 5 * time.Second
)

// Client is a minimal OpenAI API client covering the two calls this system
// makes: embeddings and chat completions. Every call is bounded by the
// client timeout; a timed-out call surfaces as an ordinary request error.
type Client struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	client         *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:         apiKey,
		BaseURL:        defaultBaseURL,
		EmbeddingModel: defaultEmbeddingModel,
		ChatModel:      defaultChatModel,
		client:         &http.Client{Timeout: defaultTimeout},
	}
}

// SetTimeout overrides the per-call HTTP timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.client.Timeout = d
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateEmbedding generates the embedding vector for a single text.
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	req := embeddingRequest{
		Input: []string{text},
		Model: c.EmbeddingModel,
	}

	var resp embeddingResponse
	if err := c.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return resp.Data[0].Embedding, nil
}

// ChatCompletion generates a completion for a system instruction plus a user
// prompt.
func (c *Client) ChatCompletion(ctx context.Context, system, prompt string) (string, error) {
	req := chatRequest{
		Model: c.ChatModel,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateEmbedding(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody embeddingRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}, "index": 0},
			},
			"model": "text-embedding-3-small",
		})
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.BaseURL = srv.URL

	vec, err := client.CreateEmbedding(context.Background(), "a calm day")

	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "/embeddings", gotPath)
	require.Equal(t, []string{"a calm day"}, gotBody.Input)
	require.Equal(t, "text-embedding-3-small", gotBody.Model)
}

func TestCreateEmbeddingEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.BaseURL = srv.URL

	_, err := client.CreateEmbedding(context.Background(), "text")
	require.ErrorContains(t, err, "no embeddings returned")
}

func TestChatCompletion(t *testing.T) {
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "You felt calm."}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.BaseURL = srv.URL

	answer, err := client.ChatCompletion(context.Background(), "answer from journals", "what happened?")

	require.NoError(t, err)
	require.Equal(t, "You felt calm.", answer)
	require.Len(t, gotBody.Messages, 2)
	require.Equal(t, "system", gotBody.Messages[0].Role)
	require.Equal(t, "answer from journals", gotBody.Messages[0].Content)
	require.Equal(t, "user", gotBody.Messages[1].Role)
	require.Equal(t, "what happened?", gotBody.Messages[1].Content)
}

func TestNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.BaseURL = srv.URL

	_, err := client.CreateEmbedding(context.Background(), "text")
	require.ErrorContains(t, err, "status 429")

	_, err = client.ChatCompletion(context.Background(), "sys", "prompt")
	require.ErrorContains(t, err, "status 429")
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := NewClient("test-key")
	client.BaseURL = srv.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreateEmbedding(ctx, "text")
	require.Error(t, err)
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "test-model", req.Model)

		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: "Hi there!"}}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", time.Second)

	got, err := client.Complete(context.Background(), "be helpful", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there!", got)
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", time.Second)

	_, err := client.Complete(context.Background(), "be helpful", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatCompletionResponse{})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", time.Second)

	_, err := client.Complete(context.Background(), "be helpful", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestConfigured(t *testing.T) {
	assert.False(t, (*Client)(nil).Configured())
	assert.False(t, NewClient("http://localhost", "", "m", 0).Configured())
	assert.True(t, NewClient("http://localhost", "key", "m", 0).Configured())
}

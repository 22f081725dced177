package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/providers"
)

func TestProvider_Complete(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Take it one day at a time."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
		}`))
	}))
	defer srv.Close()

	p, err := NewProvider("openai", config.AIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test", MaxTokens: 50, Temperature: 0.5})
	require.NoError(t, err)

	resp, err := p.Complete(context.Background(), providers.CompletionRequest{
		System:   "be kind",
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "I miss them"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Take it one day at a time.", resp.Content)
	assert.Equal(t, 19, resp.Usage.TotalTokens)
	assert.Equal(t, "stop", resp.FinishReason)

	assert.Equal(t, "gpt-test", got["model"])
	msgs := got["messages"].([]interface{})
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])
	assert.Equal(t, "I miss them", msgs[1].(map[string]interface{})["content"])
}

func TestProvider_ErrorsSurface(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "upstream down", "type": "server_error"}}`))
	}))
	defer srv.Close()

	p, err := NewProvider("openai", config.AIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), providers.CompletionRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}

func TestProvider_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	p, err := NewProvider("openai", config.AIConfig{BaseURL: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), providers.CompletionRequest{})
	assert.ErrorIs(t, err, providers.ErrEmptyCompletion)
}

func TestNewProvider_RequiresKeyWithoutBaseURL(t *testing.T) {
	_, err := NewProvider("openai", config.AIConfig{})
	assert.Error(t, err)
}

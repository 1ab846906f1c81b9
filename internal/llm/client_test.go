package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CompleteSendsGenerateRequest(t *testing.T) {
	var received generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "Lift heavy, recover well.", "done": true})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Model: "llama3", Temperature: 0.7})

	text, err := client.Complete(context.Background(), "How do I get stronger?")

	require.NoError(t, err)
	assert.Equal(t, "Lift heavy, recover well.", text)
	assert.Equal(t, "llama3", received.Model)
	assert.Equal(t, "How do I get stronger?", received.Prompt)
	assert.False(t, received.Stream)
	assert.Equal(t, 0.7, received.Options.Temperature)
}

func TestClient_CompleteTextFieldFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "alternate field"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	text, err := client.Complete(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "alternate field", text)
}

func TestClient_CompleteEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "", "done": true})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Complete(context.Background(), "prompt")

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestClient_CompleteNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL})

	_, err := client.Complete(context.Background(), "prompt")

	assert.Error(t, err)
}

func TestClient_Defaults(t *testing.T) {
	client := NewClient(Config{})

	assert.Equal(t, "llama3", client.Model())
	assert.Equal(t, "http://localhost:11434", client.baseURL)
	assert.Equal(t, 0.7, client.temperature)
}

func TestDisabled_AlwaysErrDisabled(t *testing.T) {
	_, err := Disabled{}.Complete(context.Background(), "anything")

	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, Disabled{}.Model())
}

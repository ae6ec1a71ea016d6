package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/domain"
	"github.com/Aryankumar29/Newsletter-Digest-Agent/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := NewLLMService(Config{})
		assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	})

	t.Run("applies defaults", func(t *testing.T) {
		svc, err := NewLLMService(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, DefaultModel, svc.ModelName())
	})
}

func TestLLMService_Generate(t *testing.T) {
	var gotReq messagesRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [
				{"type": "text", "text": "{\"executive_summary\": "},
				{"type": "text", "text": "\"done\"}"}
			],
			"stop_reason": "end_turn"
		}`))
	})

	result, err := svc.Generate(context.Background(), "summarise this", driven.GenerateOptions{
		MaxTokens: 4096,
	})
	require.NoError(t, err)

	// Text blocks concatenate in order.
	assert.Equal(t, `{"executive_summary": "done"}`, result)
	assert.Equal(t, 4096, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "summarise this", gotReq.Messages[0].Content)
}

func TestLLMService_Generate_Errors(t *testing.T) {
	t.Run("rate limited maps to domain error", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("overloaded maps to rate limit", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(529)
		})
		_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
		assert.ErrorIs(t, err, domain.ErrRateLimited)
	})

	t.Run("unauthorised maps to auth error", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
		assert.ErrorIs(t, err, domain.ErrAuthInvalid)
	})

	t.Run("server error is opaque", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrRateLimited)
		assert.NotErrorIs(t, err, domain.ErrAuthInvalid)
	})

	t.Run("empty content", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"content": []}`))
		})
		_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
		assert.Error(t, err)
	})
}

func TestLLMService_Ping(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			_, _ = w.Write([]byte(`{"data": []}`))
		})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("bad key", func(t *testing.T) {
		svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		assert.ErrorIs(t, svc.Ping(context.Background()), domain.ErrAuthInvalid)
	})
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/llm/mocks"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
	}{
		{name: "bare object", raw: `{"summary":"ok"}`, wantKey: "summary"},
		{name: "json fence", raw: "```json\n{\"summary\":\"ok\"}\n```", wantKey: "summary"},
		{name: "plain fence", raw: "```\n{\"summary\":\"ok\"}\n```", wantKey: "summary"},
		{name: "fence with surrounding space", raw: "  \n```JSON\r\n{\"summary\":\"ok\"}\r\n```  \n", wantKey: "summary"},
		{name: "unclosed fence", raw: "```json\n{\"summary\":\"ok\"}", wantKey: "summary"},
		{name: "extra keys kept", raw: `{"summary":"ok","surprise":[1,2]}`, wantKey: "surprise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Decode(tt.raw)
			require.NoError(t, err)
			assert.Contains(t, res, tt.wantKey)
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantSnippet string
	}{
		{name: "prose", raw: "Sure! Here is your analysis.", wantSnippet: "Sure! Here is your analysis."},
		{name: "empty", raw: "", wantSnippet: emptySnippet},
		{name: "whitespace", raw: " \n\t", wantSnippet: emptySnippet},
		{name: "array", raw: `[{"summary":"x"}]`, wantSnippet: `[{"summary":"x"}]`},
		{name: "null", raw: "null", wantSnippet: "null"},
		{name: "truncated", raw: `{"summary": "half`, wantSnippet: `{"summary": "half`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.raw)
			var de *DecodeError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.wantSnippet, de.Snippet)
		})
	}
}

func TestSnippet_TruncatesRunes(t *testing.T) {
	raw := strings.Repeat("é", SnippetLimit+20)
	s := Snippet(raw)
	assert.Equal(t, SnippetLimit, len([]rune(s)))
	assert.True(t, strings.HasPrefix(raw, s))
}

func TestStripFences_LeavesInnerBackticks(t *testing.T) {
	raw := "```json\n{\"response_template\":\"use `code` here\"}\n```"
	assert.Equal(t, "{\"response_template\":\"use `code` here\"}", StripFences(raw))
}

type capturedRequest struct {
	Auth string
	Body map[string]any
}

func newCompletionServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if captured != nil {
			captured.Auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&captured.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(b)
}

func TestOpenAIGateway_Complete(t *testing.T) {
	var got capturedRequest
	srv := newCompletionServer(t, http.StatusOK, completionBody(`{"summary":"fine"}`), &got)

	g := NewOpenAIGateway(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1/"})
	out, err := g.Complete(context.Background(), "analyze this")
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"fine"}`, out)
	assert.Equal(t, "Bearer test-key", got.Auth)
	assert.Equal(t, DefaultModel, got.Body["model"])
	assert.Equal(t, float64(DefaultMaxTokens), got.Body["max_tokens"])
	assert.NotContains(t, got.Body, "max_completion_tokens")

	msgs, ok := got.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "analyze this", msgs[0].(map[string]any)["content"])
}

func TestOpenAIGateway_ReasoningModelUsesCompletionTokens(t *testing.T) {
	var got capturedRequest
	srv := newCompletionServer(t, http.StatusOK, completionBody("{}"), &got)

	g := NewOpenAIGateway(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Model: "o3-mini", MaxTokens: 1000})
	_, err := g.Complete(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, float64(1000), got.Body["max_completion_tokens"])
	assert.NotContains(t, got.Body, "max_tokens")
}

func TestOpenAIGateway_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":{"message":"bad","type":"invalid_request_error"}}`, want: ErrProviderError},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"no","type":"auth"}}`, want: ErrProviderError},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, want: ErrProviderUnavailable},
		{name: "upstream down", status: http.StatusServiceUnavailable, body: `upstream connect error`, want: ErrProviderUnavailable},
		{name: "no choices", status: http.StatusOK, body: `{"id":"x","object":"chat.completion","choices":[]}`, want: ErrProviderError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCompletionServer(t, tt.status, tt.body, nil)
			g := NewOpenAIGateway(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})

			_, err := g.Complete(context.Background(), "p")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestOpenAIGateway_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	g := NewOpenAIGateway(Config{APIKey: "k", BaseURL: srv.URL + "/v1", Timeout: 50 * time.Millisecond})
	_, err := g.Complete(context.Background(), "p")
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
}

func TestOpenAIGateway_Configured(t *testing.T) {
	assert.True(t, NewOpenAIGateway(Config{APIKey: "k"}).Configured())
	assert.False(t, NewOpenAIGateway(Config{APIKey: "  "}).Configured())
	assert.Equal(t, "gpt-4.1", NewOpenAIGateway(Config{Model: "gpt-4.1"}).Model())
}

func TestInstrumentedGateway(t *testing.T) {
	reg := prometheus.NewRegistry()
	next := new(mocks.MockGateway)
	g, err := NewInstrumentedGateway(next, reg)
	require.NoError(t, err)

	next.On("Configured").Return(true).Once()
	next.On("Complete", mock.Anything, "ok").Return("{}", nil).Once()
	next.On("Complete", mock.Anything, "down").Return("", ErrProviderUnavailable).Once()
	next.On("Complete", mock.Anything, "bad").Return("", ErrProviderError).Once()

	assert.True(t, g.Configured())
	_, _ = g.Complete(context.Background(), "ok")
	_, _ = g.Complete(context.Background(), "down")
	_, err = g.Complete(context.Background(), "bad")
	assert.True(t, errors.Is(err, ErrProviderError))

	assert.Equal(t, float64(1), testutil.ToFloat64(g.requests.WithLabelValues(outcomeOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.requests.WithLabelValues(outcomeUnavailable)))
	assert.Equal(t, float64(1), testutil.ToFloat64(g.requests.WithLabelValues(outcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(g.duration))
	next.AssertExpectations(t)

	_, err = NewInstrumentedGateway(next, reg)
	assert.Error(t, err, "duplicate registration")
}

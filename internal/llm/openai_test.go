package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer fakes the /chat/completions endpoint. When the request asks for a
// stream it replays deltas as server-sent events.
func chatServer(t *testing.T, deltas []string, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		if captured != nil {
			*captured = req
		}

		if stream, _ := req["stream"].(bool); !stream {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"1","object":"chat.completion","model":"test-model",
				"choices":[{"index":0,"message":{"role":"assistant","content":"full reply"},"finish_reason":"stop"}],
				"usage":{"prompt_tokens":7,"completion_tokens":3,"total_tokens":10}}`)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, d := range deltas {
			chunk := map[string]any{
				"id": "1", "object": "chat.completion.chunk", "model": "test-model",
				"choices": []map[string]any{{"index": 0, "delta": map[string]string{"content": d}}},
			}
			data, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
}

func TestOpenAIClientStream(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, []string{"Hello", " there."}, &req)
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{Provider: "groq", APIKey: "test-key", BaseURL: srv.URL + "/", Model: "test-model"})
	assert.Equal(t, "groq", c.Name())

	events, err := c.Stream(context.Background(), CompletionRequest{
		System:      "be brief",
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
		MaxTokens:   120,
		Temperature: Temperature(0.5),
	})
	require.NoError(t, err)

	var deltas []string
	var done *CompletionResponse
	for evt := range events {
		switch evt.Type {
		case EventDelta:
			deltas = append(deltas, evt.Content)
		case EventDone:
			done = evt.Response
		case EventError:
			t.Fatalf("unexpected error event: %s", evt.Error)
		}
	}

	assert.Equal(t, []string{"Hello", " there."}, deltas)
	require.NotNil(t, done)
	assert.Equal(t, "Hello there.", done.Content)

	assert.Equal(t, "test-model", req["model"])
	assert.EqualValues(t, 120, req["max_tokens"])
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIClientComplete(t *testing.T) {
	srv := chatServer(t, nil, nil)
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{Provider: "openai", APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})
	resp, err := c.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "write a report"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "full reply", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, 3, resp.Usage.OutputTokens)
}

func TestOpenAIClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit reached","type":"rate_limit"}}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{Provider: "groq", APIKey: "test-key", BaseURL: srv.URL, Model: "m"})
	_, err := c.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "groq", pe.Provider)
	assert.Equal(t, http.StatusTooManyRequests, pe.Code)
	assert.Contains(t, pe.Message, "rate limit")

	_, err = c.Stream(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.ErrorAs(t, err, &pe)
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat endpoint. Groq, OpenAI and
// Ollama all speak this protocol; only the base URL and key differ.
type OpenAIConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string // used when a request leaves Model empty
}

// OpenAIClient talks to an OpenAI-compatible chat completions API.
type OpenAIClient struct {
	provider string
	model    string
	api      *openai.Client
}

// NewOpenAIClient creates a client for the given endpoint.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	return &OpenAIClient{
		provider: provider,
		model:    cfg.Model,
		api:      openai.NewClientWithConfig(oc),
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return c.provider }

// Complete sends a non-streaming chat completion.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return nil, c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.provider, Message: "no choices in response"}
	}

	choice := resp.Choices[0]
	return &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Model:      resp.Model,
		Duration:   time.Since(start),
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Stream sends a streaming chat completion. Deltas arrive in order; the
// channel ends with exactly one "done" or "error" event.
func (c *OpenAIClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	r := c.buildRequest(req)
	r.Stream = true

	stream, err := c.api.CreateChatCompletionStream(ctx, r)
	if err != nil {
		return nil, c.wrapError(err)
	}

	ch := make(chan StreamEvent)
	go c.streamLoop(ctx, stream, ch)
	return ch, nil
}

func (c *OpenAIClient) streamLoop(ctx context.Context, stream *openai.ChatCompletionStream, ch chan<- StreamEvent) {
	defer close(ch)
	defer stream.Close()

	start := time.Now()
	send := func(evt StreamEvent) bool {
		select {
		case ch <- evt:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var (
		full   strings.Builder
		model  string
		reason string
	)
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			send(StreamEvent{Type: EventDone, Response: &CompletionResponse{
				Content:    full.String(),
				StopReason: reason,
				Model:      model,
				Duration:   time.Since(start),
			}})
			return
		}
		if err != nil {
			send(StreamEvent{Type: EventError, Error: c.wrapError(err).Error()})
			return
		}

		model = chunk.Model
		for _, choice := range chunk.Choices {
			if choice.FinishReason != "" {
				reason = string(choice.FinishReason)
			}
			if choice.Delta.Content == "" {
				continue
			}
			full.WriteString(choice.Delta.Content)
			if !send(StreamEvent{Type: EventDelta, Content: choice.Delta.Content}) {
				return
			}
		}
	}
}

func (c *OpenAIClient) buildRequest(req CompletionRequest) openai.ChatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	r := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  msgs,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		r.Temperature = float32(*req.Temperature)
	}
	return r
}

// wrapError converts go-openai errors into ProviderError.
func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: c.provider, Message: apiErr.Message, Code: apiErr.HTTPStatusCode}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: c.provider, Message: reqErr.Error(), Code: reqErr.HTTPStatusCode}
	}
	return &ProviderError{Provider: c.provider, Message: fmt.Sprintf("request failed: %v", err)}
}

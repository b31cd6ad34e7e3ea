package llm

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/soyeahso/evaluet/internal/config"
	"github.com/soyeahso/evaluet/internal/logging"
)

// ProviderError is returned when an LLM provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code (401, 429, 500, etc.)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Retryable reports whether the failure is rate limiting or a server fault.
func (e *ProviderError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= http.StatusInternalServerError
}

// Registry binds model names to the provider client that serves them.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Client
	models    map[string]string // model → provider
	primary   string
	log       *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Client),
		models:    make(map[string]string),
		log:       log.Sub("llm"),
	}
}

// Register adds a provider client. The first provider registered serves
// models that were never bound.
func (r *Registry) Register(provider string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider] = client
	if r.primary == "" {
		r.primary = provider
	}
	r.log.Debug().Str("provider", provider).Msg("registered LLM provider")
}

// Bind routes model to a registered provider.
func (r *Registry) Bind(model, provider string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[provider]; !ok {
		return fmt.Errorf("bind %q: unknown provider %q", model, provider)
	}
	r.models[model] = provider
	return nil
}

// Resolve returns a client for model. A provider name yields that provider
// as is; any other name yields a client that requests model by default.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.providers[model]; ok {
		return c, nil
	}

	provider, ok := r.models[model]
	if !ok {
		provider = r.primary
	}
	c, ok := r.providers[provider]
	if !ok {
		return nil, fmt.Errorf("no LLM provider for model %q", model)
	}
	return &modelClient{Client: c, model: model}, nil
}

// Providers returns the registered provider names, sorted.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// NewRegistryFromConfig registers the configured OpenAI-compatible provider
// and binds the interview and report models to it.
func NewRegistryFromConfig(cfg config.LLMConfig, log *logging.Logger) *Registry {
	reg := NewRegistry(log)
	reg.Register(cfg.Provider, NewOpenAIClient(OpenAIConfig{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	}))
	for _, m := range []string{cfg.Model, cfg.ReportModel} {
		if m != "" {
			_ = reg.Bind(m, cfg.Provider)
		}
	}
	return reg
}

// modelClient fills in its bound model when a request leaves Model empty.
type modelClient struct {
	Client
	model string
}

func (m *modelClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.Model == "" {
		req.Model = m.model
	}
	return m.Client.Complete(ctx, req)
}

func (m *modelClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamEvent, error) {
	if req.Model == "" {
		req.Model = m.model
	}
	return m.Client.Stream(ctx, req)
}

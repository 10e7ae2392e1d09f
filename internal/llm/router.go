// Package llm routes generation requests to one of a fixed set of text
// generation backends, normalizing options, responses and failures.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
)

// Provider selects a generation backend. The set is closed: unknown values
// are rejected at the boundary before any network call.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
)

// Options is the common generation option set. Nil fields fall back to
// backend-appropriate defaults; each adapter maps set fields onto its
// backend's native parameter names.
type Options struct {
	Temperature *float32
	TopP        *float32
	TopK        *int
	NumCtx      *int
	MaxTokens   *int
}

// Float32 returns a pointer to v, for building Options literals.
func Float32(v float32) *float32 { return &v }

// Int returns a pointer to v, for building Options literals.
func Int(v int) *int { return &v }

// Backend is one concrete generation adapter.
type Backend interface {
	Generate(ctx context.Context, model, prompt string, opts Options) (string, error)
	DefaultModel() string
	Label() string
}

// ProviderInfo is one entry of the read-only provider directory. It carries
// no secrets.
type ProviderInfo struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	DefaultModel string `json:"default_model"`
}

// Config holds backend endpoints and credentials.
type Config struct {
	OpenAIAPIKey  string
	GroqAPIKey    string
	OllamaBaseURL string

	// HTTPClient overrides the transport for all adapters. Tests inject one
	// pointed at a local server.
	HTTPClient *http.Client
}

// Router dispatches prompts to the configured backends.
type Router struct {
	backends map[Provider]Backend
	order    []Provider
}

// NewRouter creates a Router with the full backend set.
func NewRouter(cfg Config) *Router {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	r := &Router{backends: make(map[Provider]Backend)}
	r.register(ProviderOllama, NewOllamaBackend(cfg.OllamaBaseURL, httpClient))
	r.register(ProviderOpenAI, NewOpenAIBackend(cfg.OpenAIAPIKey, "", httpClient))
	r.register(ProviderGroq, NewGroqBackend(cfg.GroqAPIKey, httpClient))
	return r
}

func (r *Router) register(p Provider, b Backend) {
	r.backends[p] = b
	r.order = append(r.order, p)
}

// Generate dispatches prompt to the selected provider, arming the call with
// timeout. Failures are normalized: deadline expiry yields a TIMEOUT-coded
// error distinguishable from a backend-reported failure and from a
// transport failure, both UPSTREAM_ERROR-coded.
func (r *Router) Generate(ctx context.Context, provider Provider, model, prompt string, opts Options, timeout time.Duration) (string, error) {
	backend, ok := r.backends[provider]
	if !ok {
		return "", domain.ErrUnsupportedProvider
	}

	if model == "" {
		model = backend.DefaultModel()
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	answer, err := backend.Generate(ctx, model, prompt, opts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeTimeout, "generation timed out", err)
		}
		return "", err
	}
	return answer, nil
}

// Providers returns the provider directory in registration order.
func (r *Router) Providers() []ProviderInfo {
	infos := make([]ProviderInfo, 0, len(r.order))
	for _, p := range r.order {
		b := r.backends[p]
		infos = append(infos, ProviderInfo{
			Key:          string(p),
			Label:        b.Label(),
			DefaultModel: b.DefaultModel(),
		})
	}
	return infos
}

// backendError normalizes a failure the backend reported itself.
func backendError(label string, status int, message string) error {
	return domain.NewDomainError(domain.ErrCodeUpstream,
		fmt.Sprintf("%s backend error (status %d): %s", label, status, message))
}

// transportError normalizes a network-layer failure.
func transportError(label string, err error) error {
	return domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, label+" transport failure", err)
}

package llm

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGroqModel   = "llama-3.1-8b-instant"
	groqBaseURL        = "https://api.groq.com/openai/v1"

	defaultChatTemperature float32 = 0.2
	defaultChatMaxTokens           = 1024
)

// OpenAIBackend generates completions through the OpenAI chat completions
// API. It also serves any OpenAI-compatible endpoint via a base URL
// override; top_k and num_ctx have no native mapping there and are ignored.
type OpenAIBackend struct {
	client       *openai.Client
	label        string
	defaultModel string
}

// NewOpenAIBackend creates the OpenAI adapter. baseURL is optional and
// overrides the default endpoint.
func NewOpenAIBackend(apiKey, baseURL string, httpClient *http.Client) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIBackend{
		client:       openai.NewClientWithConfig(cfg),
		label:        "OpenAI",
		defaultModel: defaultOpenAIModel,
	}
}

// NewGroqBackend creates the Groq adapter. Groq speaks the OpenAI chat
// protocol on its own endpoint with its own key and default model.
func NewGroqBackend(apiKey string, httpClient *http.Client) *OpenAIBackend {
	b := NewOpenAIBackend(apiKey, groqBaseURL, httpClient)
	b.label = "Groq"
	b.defaultModel = defaultGroqModel
	return b
}

func (b *OpenAIBackend) Label() string        { return b.label }
func (b *OpenAIBackend) DefaultModel() string { return b.defaultModel }

func (b *OpenAIBackend) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: defaultChatTemperature,
		MaxTokens:   defaultChatMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}
	if opts.TopP != nil {
		req.TopP = *opts.TopP
	}
	if opts.MaxTokens != nil {
		req.MaxTokens = *opts.MaxTokens
	}

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", backendError(b.label, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return "", transportError(b.label, err)
	}

	if len(resp.Choices) == 0 {
		return "", backendError(b.label, http.StatusOK, "response contained no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

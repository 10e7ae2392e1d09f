package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOllamaModel   = "llama3.1"

	defaultOllamaTemperature float32 = 0.2
	defaultOllamaTopP        float32 = 0.9
	defaultOllamaTopK                = 40
	defaultOllamaNumCtx              = 4096
	defaultOllamaNumPredict          = 512
)

// OllamaBackend generates completions through Ollama's native /api/generate
// endpoint. No authentication; options map onto Ollama's native names
// (top_k, num_ctx, num_predict).
type OllamaBackend struct {
	baseURL string
	http    *http.Client
}

func NewOllamaBackend(baseURL string, httpClient *http.Client) *OllamaBackend {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OllamaBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (b *OllamaBackend) Label() string        { return "Ollama" }
func (b *OllamaBackend) DefaultModel() string { return defaultOllamaModel }

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
	TopK        int     `json:"top_k"`
	NumCtx      int     `json:"num_ctx"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (b *OllamaBackend) Generate(ctx context.Context, model, prompt string, opts Options) (string, error) {
	native := ollamaOptions{
		Temperature: defaultOllamaTemperature,
		TopP:        defaultOllamaTopP,
		TopK:        defaultOllamaTopK,
		NumCtx:      defaultOllamaNumCtx,
		NumPredict:  defaultOllamaNumPredict,
	}
	if opts.Temperature != nil {
		native.Temperature = *opts.Temperature
	}
	if opts.TopP != nil {
		native.TopP = *opts.TopP
	}
	if opts.TopK != nil {
		native.TopK = *opts.TopK
	}
	if opts.NumCtx != nil {
		native.NumCtx = *opts.NumCtx
	}
	if opts.MaxTokens != nil {
		native.NumPredict = *opts.MaxTokens
	}

	body, err := json.Marshal(ollamaRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: native,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return "", transportError(b.Label(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(b.Label(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", backendError(b.Label(), resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", backendError(b.Label(), resp.StatusCode, "malformed response body")
	}
	if result.Error != "" {
		return "", backendError(b.Label(), resp.StatusCode, result.Error)
	}
	return result.Response, nil
}

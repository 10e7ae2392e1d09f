package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cloo-solutions/askd/internal/api"
	"github.com/cloo-solutions/askd/internal/api/middleware"
	"github.com/cloo-solutions/askd/internal/llm"
	"github.com/cloo-solutions/askd/internal/service"
)

type AnswerService interface {
	Ask(ctx context.Context, input service.AskInput) (*service.AnswerOutput, error)
}

type AskHandler struct {
	svc AnswerService
}

func NewAskHandler(svc AnswerService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskOptions struct {
	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
	NumCtx      *int     `json:"num_ctx,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

type AskRequest struct {
	Question   string      `json:"question"`
	OrgTopK    int         `json:"org_top_k,omitempty"`
	DomainTopK int         `json:"domain_top_k,omitempty"`
	MaxContext int         `json:"max_context,omitempty"`
	Provider   string      `json:"provider,omitempty"`
	Model      string      `json:"model,omitempty"`
	TimeoutMS  int64       `json:"timeout_ms,omitempty"`
	Options    *AskOptions `json:"options,omitempty"`
}

// Ask answers a question grounded in stored chunks. Retrieval is scoped by
// the X-Org-ID header when present.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.TimeoutMS < 0 {
		api.Error(w, http.StatusBadRequest, "timeout_ms must be positive")
		return
	}

	input := service.AskInput{
		Question:   req.Question,
		OrgID:      middleware.GetOrgID(r.Context()),
		OrgTopK:    req.OrgTopK,
		DomainTopK: req.DomainTopK,
		MaxContext: req.MaxContext,
		Provider:   llm.Provider(req.Provider),
		Model:      req.Model,
		GenTimeout: time.Duration(req.TimeoutMS) * time.Millisecond,
	}
	if req.Options != nil {
		input.Options = llm.Options{
			Temperature: req.Options.Temperature,
			TopP:        req.Options.TopP,
			TopK:        req.Options.TopK,
			NumCtx:      req.Options.NumCtx,
			MaxTokens:   req.Options.MaxTokens,
		}
	}

	output, err := h.svc.Ask(r.Context(), input)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, output)
}

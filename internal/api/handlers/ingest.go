package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cloo-solutions/askd/internal/api"
	"github.com/cloo-solutions/askd/internal/api/middleware"
	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/cloo-solutions/askd/internal/service"
)

type IngestionService interface {
	Ingest(ctx context.Context, input service.IngestInput) (*service.IngestResult, error)
}

type IngestHandler struct {
	svc IngestionService
}

func NewIngestHandler(svc IngestionService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

type IngestRequest struct {
	Tier   string `json:"tier"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

type IngestResponse struct {
	ChunkCount int                    `json:"chunk_count"`
	Parts      []service.IngestedPart `json:"parts"`
}

// Ingest chunks, embeds and stores a document. Org-tier documents are scoped
// by the X-Org-ID header.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Text == "" {
		api.Error(w, http.StatusBadRequest, "text is required")
		return
	}

	tier := domain.TierDomain
	if req.Tier != "" {
		parsed, err := domain.ParseTier(req.Tier)
		if err != nil {
			api.HandleError(w, err)
			return
		}
		tier = parsed
	}

	result, err := h.svc.Ingest(r.Context(), service.IngestInput{
		Tier:   tier,
		OrgID:  middleware.GetOrgID(r.Context()),
		Source: req.Source,
		Text:   req.Text,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, IngestResponse{
		ChunkCount: result.ChunkCount,
		Parts:      result.Parts,
	})
}

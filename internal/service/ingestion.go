package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/cloo-solutions/askd/internal/telemetry"
	"github.com/google/uuid"
)

// Embedder generates a vector embedding for a piece of text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// ChunkWriter persists chunk records.
type ChunkWriter interface {
	Upsert(ctx context.Context, c *domain.ChunkRecord) error
}

// IngestInput describes a document to be chunked, embedded and stored.
type IngestInput struct {
	Tier   domain.Tier
	OrgID  string
	Source string
	Text   string
}

// IngestedPart identifies one stored chunk of the document.
type IngestedPart struct {
	ID   string `json:"id"`
	Part int    `json:"part"`
}

// IngestResult reports what was stored for a document.
type IngestResult struct {
	ChunkCount int            `json:"chunk_count"`
	Parts      []IngestedPart `json:"parts"`
}

// IngestionService turns raw documents into embedded, stored chunks.
type IngestionService struct {
	embedder    Embedder
	store       ChunkWriter
	chunkCfg    ChunkConfig
	concurrency int
	kbVersion   func() string
}

// NewIngestionService creates an ingestion service. concurrency bounds how
// many chunks are embedded and stored in parallel per document.
func NewIngestionService(embedder Embedder, store ChunkWriter, chunkCfg ChunkConfig, concurrency int) *IngestionService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &IngestionService{
		embedder:    embedder,
		store:       store,
		chunkCfg:    chunkCfg,
		concurrency: concurrency,
		kbVersion:   func() string { return time.Now().UTC().Format("2006-01-02") },
	}
}

// Ingest splits the document into overlapping word windows, embeds each
// window and upserts the resulting chunk records. The whole call fails on
// the first chunk error; parts already stored before the failure remain
// stored and are reported in the error message.
func (s *IngestionService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "document text cannot be empty", domain.ErrEmptyDocument)
	}
	if input.Tier == domain.TierOrg && input.OrgID == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "org tier requires an org id", domain.ErrMissingOrgID)
	}
	if _, err := domain.ParseTier(string(input.Tier)); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid tier", err)
	}

	ctx, span := telemetry.StartSpan(ctx, "service.ingest", telemetry.SpanAttributes{
		OrgID:     input.OrgID,
		Tier:      string(input.Tier),
		Operation: "ingest",
	})
	defer span.End()

	chunks := ChunkWords(input.Text, s.chunkCfg.MaxWords, s.chunkCfg.Overlap)
	if len(chunks) == 0 {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "document text cannot be empty", domain.ErrEmptyDocument)
	}

	version := s.kbVersion()
	total := len(chunks)

	type indexed struct {
		index int
		text  string
	}
	items := make([]indexed, total)
	for i, text := range chunks {
		items[i] = indexed{index: i, text: text}
	}

	parts, err := MapLimit(ctx, items, s.concurrency, func(ctx context.Context, item indexed) (IngestedPart, error) {
		part := item.index + 1 // part numbers are 1-based

		embedding, err := s.embedder.GenerateEmbedding(ctx, item.text)
		if err != nil {
			return IngestedPart{}, fmt.Errorf("embed part %d: %w", part, err)
		}

		record := &domain.ChunkRecord{
			ID:   uuid.NewString(),
			Text: item.text,
			Metadata: domain.ChunkMetadata{
				Source:     input.Source,
				Tier:       input.Tier,
				OrgID:      input.OrgID,
				Part:       part,
				TotalParts: total,
				KBVersion:  version,
			},
			Embedding: embedding,
		}
		if err := domain.ValidateChunkRecord(record, s.embedder.Dimensions()); err != nil {
			return IngestedPart{}, fmt.Errorf("validate part %d: %w", part, err)
		}
		if err := s.store.Upsert(ctx, record); err != nil {
			return IngestedPart{}, fmt.Errorf("store part %d: %w", part, err)
		}

		return IngestedPart{ID: record.ID, Part: part}, nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &IngestResult{ChunkCount: total, Parts: parts}, nil
}

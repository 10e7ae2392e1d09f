package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/cloo-solutions/askd/internal/llm"
	"github.com/cloo-solutions/askd/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// ChunkSearcher runs vector similarity searches over stored chunks.
type ChunkSearcher interface {
	SearchDomain(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error)
	SearchOrg(ctx context.Context, orgID string, embedding []float32, limit int) ([]domain.SearchResult, error)
}

// Generator produces an answer from a prompt through a named provider.
type Generator interface {
	Generate(ctx context.Context, provider llm.Provider, model, prompt string, opts llm.Options, timeout time.Duration) (string, error)
}

// AnswerTimeouts bounds each stage of an answer call. Margin is how long
// the watchdog waits past a stage's own deadline before giving up on a
// stage that ignores cancellation.
type AnswerTimeouts struct {
	Embed      time.Duration
	Search     time.Duration
	Generation time.Duration
	Margin     time.Duration
}

// AnswerDefaults carries the knobs applied when a request leaves them unset.
type AnswerDefaults struct {
	OrgTopK    int
	DomainTopK int
	MaxContext int
	Provider   llm.Provider
}

// AskInput is a question plus retrieval and generation parameters.
// GenTimeout overrides the configured generation deadline when positive.
type AskInput struct {
	Question   string
	OrgID      string
	OrgTopK    int
	DomainTopK int
	MaxContext int
	Provider   llm.Provider
	Model      string
	Options    llm.Options
	GenTimeout time.Duration
}

// ContextEntry describes one retrieved chunk used to ground the answer.
type ContextEntry struct {
	ID       string  `json:"id"`
	Source   string  `json:"source,omitempty"`
	Tier     string  `json:"tier"`
	Distance float64 `json:"distance"`
}

// AnswerUsage reports where the answer came from.
type AnswerUsage struct {
	Provider   string `json:"provider"`
	Model      string `json:"model,omitempty"`
	OrgID      string `json:"org_id,omitempty"`
	OrgHits    int    `json:"org_hits"`
	DomainHits int    `json:"domain_hits"`
}

// AnswerOutput is the full result of an answer call.
type AnswerOutput struct {
	Answer    string         `json:"answer"`
	Usage     AnswerUsage    `json:"usage"`
	Context   []ContextEntry `json:"context"`
	ElapsedMS int64          `json:"elapsed_ms"`
}

// AnswerService orchestrates embed, retrieve, merge and generate.
type AnswerService struct {
	embedder  Embedder
	searcher  ChunkSearcher
	generator Generator
	defaults  AnswerDefaults
	timeouts  AnswerTimeouts
}

func NewAnswerService(embedder Embedder, searcher ChunkSearcher, generator Generator, defaults AnswerDefaults, timeouts AnswerTimeouts) *AnswerService {
	if defaults.OrgTopK <= 0 {
		defaults.OrgTopK = 3
	}
	if defaults.DomainTopK <= 0 {
		defaults.DomainTopK = 3
	}
	if defaults.MaxContext <= 0 {
		defaults.MaxContext = 4
	}
	return &AnswerService{
		embedder:  embedder,
		searcher:  searcher,
		generator: generator,
		defaults:  defaults,
		timeouts:  timeouts,
	}
}

// Ask embeds the question, retrieves the closest chunks from both tiers,
// merges them into a bounded context window and asks the selected provider
// for a grounded answer. The org search only runs when an org id is set.
func (s *AnswerService) Ask(ctx context.Context, input AskInput) (*AnswerOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "question cannot be empty", domain.ErrEmptyQuestion)
	}

	orgTopK := input.OrgTopK
	if orgTopK <= 0 {
		orgTopK = s.defaults.OrgTopK
	}
	domainTopK := input.DomainTopK
	if domainTopK <= 0 {
		domainTopK = s.defaults.DomainTopK
	}
	maxContext := input.MaxContext
	if maxContext <= 0 {
		maxContext = s.defaults.MaxContext
	}
	provider := input.Provider
	if provider == "" {
		provider = s.defaults.Provider
	}
	genTimeout := input.GenTimeout
	if genTimeout <= 0 {
		genTimeout = s.timeouts.Generation
	}

	ctx, span := telemetry.StartSpan(ctx, "service.ask", telemetry.SpanAttributes{
		OrgID:     input.OrgID,
		Provider:  string(provider),
		Operation: "ask",
	})
	defer span.End()

	started := time.Now()

	embedding, err := WithDeadline(ctx, "embed", s.timeouts.Embed, s.timeouts.Margin, func(ctx context.Context) ([]float32, error) {
		return s.embedder.GenerateEmbedding(ctx, input.Question)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	var orgResults, domainResults []domain.SearchResult
	g, gctx := errgroup.WithContext(ctx)
	if input.OrgID != "" {
		g.Go(func() error {
			results, err := WithDeadline(gctx, "search-org", s.timeouts.Search, s.timeouts.Margin, func(ctx context.Context) ([]domain.SearchResult, error) {
				return s.searcher.SearchOrg(ctx, input.OrgID, embedding, orgTopK)
			})
			if err != nil {
				return err
			}
			orgResults = results
			return nil
		})
	}
	g.Go(func() error {
		results, err := WithDeadline(gctx, "search-domain", s.timeouts.Search, s.timeouts.Margin, func(ctx context.Context) ([]domain.SearchResult, error) {
			return s.searcher.SearchDomain(ctx, embedding, domainTopK)
		})
		if err != nil {
			return err
		}
		domainResults = results
		return nil
	})
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}

	merged := MergeContext(orgResults, domainResults, maxContext)
	prompt := BuildPrompt(merged, input.Question)

	answer, err := WithDeadline(ctx, "generate", genTimeout, s.timeouts.Margin, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, provider, input.Model, prompt, input.Options, genTimeout)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	entries := make([]ContextEntry, 0, len(merged))
	for _, r := range merged {
		entries = append(entries, ContextEntry{
			ID:       r.ID,
			Source:   r.Metadata.Source,
			Tier:     string(r.Metadata.Tier),
			Distance: r.Distance,
		})
	}

	return &AnswerOutput{
		Answer: answer,
		Usage: AnswerUsage{
			Provider:   string(provider),
			Model:      input.Model,
			OrgID:      input.OrgID,
			OrgHits:    len(orgResults),
			DomainHits: len(domainResults),
		},
		Context:   entries,
		ElapsedMS: time.Since(started).Milliseconds(),
	}, nil
}

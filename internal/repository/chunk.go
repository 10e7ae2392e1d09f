package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// dbtx is the subset of pgx shared by pools and transactions.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ChunkRepository persists chunk records and performs nearest-neighbor
// search over both retrieval tiers.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

func NewChunkRepositoryWithTx(tx pgx.Tx) *ChunkRepository {
	return &ChunkRepository{db: tx}
}

// Upsert writes a chunk record; an existing ID has its text, metadata and
// embedding replaced (last-writer-wins). The tier is fixed at creation and
// never updated. Org-tier records without an org id are rejected before
// reaching the database.
func (r *ChunkRepository) Upsert(ctx context.Context, c *domain.ChunkRecord) error {
	if c.Metadata.Tier == domain.TierOrg && c.Metadata.OrgID == "" {
		return domain.ErrMissingOrgID
	}
	now := time.Now().UTC()
	_, err := r.db.Exec(ctx,
		`INSERT INTO chunks (id, tier, org_id, source, part, total_parts, kb_version, content, embedding, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		 ON CONFLICT (id) DO UPDATE SET
			org_id = EXCLUDED.org_id,
			source = EXCLUDED.source,
			part = EXCLUDED.part,
			total_parts = EXCLUDED.total_parts,
			kb_version = EXCLUDED.kb_version,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		c.ID,
		c.Metadata.Tier,
		nullableString(c.Metadata.OrgID),
		c.Metadata.Source,
		c.Metadata.Part,
		c.Metadata.TotalParts,
		c.Metadata.KBVersion,
		c.Text,
		pgvector.NewVector(c.Embedding),
		now,
	)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to upsert chunk", err)
	}
	return nil
}

// SearchDomain returns up to limit domain-tier records ordered by ascending
// distance to the query embedding. No hits is an empty slice, never an error.
func (r *ChunkRepository) SearchDomain(ctx context.Context, embedding []float32, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		return []domain.SearchResult{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, tier, org_id, source, part, total_parts, kb_version, content,
		        embedding <=> $1::vector AS distance
		 FROM chunks
		 WHERE tier = 'domain'
		 ORDER BY distance ASC
		 LIMIT $2`,
		domain.EncodeVector(embedding), limit,
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "domain tier search failed", err)
	}
	defer rows.Close()
	return scanSearchResults(rows)
}

// SearchOrg is SearchDomain filtered to one organization's tier.
func (r *ChunkRepository) SearchOrg(ctx context.Context, orgID string, embedding []float32, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		return []domain.SearchResult{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, tier, org_id, source, part, total_parts, kb_version, content,
		        embedding <=> $1::vector AS distance
		 FROM chunks
		 WHERE tier = 'org' AND org_id = $2
		 ORDER BY distance ASC
		 LIMIT $3`,
		domain.EncodeVector(embedding), orgID, limit,
	)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "org tier search failed", err)
	}
	defer rows.Close()
	return scanSearchResults(rows)
}

// GetByID fetches a single chunk record, mainly for inspection and tests.
func (r *ChunkRepository) GetByID(ctx context.Context, id string) (*domain.ChunkRecord, error) {
	var c domain.ChunkRecord
	var orgID *string
	var vec pgvector.Vector
	err := r.db.QueryRow(ctx,
		`SELECT id, tier, org_id, source, part, total_parts, kb_version, content, embedding
		 FROM chunks WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Metadata.Tier, &orgID, &c.Metadata.Source, &c.Metadata.Part,
		&c.Metadata.TotalParts, &c.Metadata.KBVersion, &c.Text, &vec)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.NewDomainError(domain.ErrCodeNotFound, "chunk not found")
		}
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to fetch chunk", err)
	}
	if orgID != nil {
		c.Metadata.OrgID = *orgID
	}
	c.Embedding = vec.Slice()
	return &c, nil
}

func scanSearchResults(rows pgx.Rows) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0)
	for rows.Next() {
		var res domain.SearchResult
		var orgID *string
		if err := rows.Scan(&res.ID, &res.Metadata.Tier, &orgID, &res.Metadata.Source,
			&res.Metadata.Part, &res.Metadata.TotalParts, &res.Metadata.KBVersion,
			&res.Text, &res.Distance); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "failed to scan search result", err)
		}
		if orgID != nil {
			res.Metadata.OrgID = *orgID
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStorage, "search iteration failed", err)
	}
	return results, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

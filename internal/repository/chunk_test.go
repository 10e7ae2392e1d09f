//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/cloo-solutions/askd/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmbedding(seed float32) []float32 {
	v := make([]float32, 1536)
	for i := range v {
		v[i] = seed
	}
	v[0] = 1 // keep vectors non-degenerate for cosine distance
	return v
}

func newChunk(tier domain.Tier, orgID string, seed float32) *domain.ChunkRecord {
	return &domain.ChunkRecord{
		ID:   uuid.NewString(),
		Text: "chunk body",
		Metadata: domain.ChunkMetadata{
			Source:     "handbook.txt",
			Tier:       tier,
			OrgID:      orgID,
			Part:       1,
			TotalParts: 1,
			KBVersion:  "2026-08-30",
		},
		Embedding: testEmbedding(seed),
	}
}

func TestChunkRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	c := newChunk(domain.TierDomain, "", 0.5)
	require.NoError(t, repo.Upsert(ctx, c))

	// Searching the tier with the chunk's own embedding returns it with
	// distance ~0.
	results, err := repo.SearchDomain(ctx, c.Embedding, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, c.ID, results[0].ID)
	assert.InDelta(t, 0, results[0].Distance, 1e-5)
	assert.Equal(t, domain.TierDomain, results[0].Metadata.Tier)
	assert.Equal(t, "handbook.txt", results[0].Metadata.Source)
}

func TestChunkRepository_UpsertIsLastWriterWins(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	c := newChunk(domain.TierDomain, "", 0.5)
	require.NoError(t, repo.Upsert(ctx, c))

	c.Text = "replacement body"
	require.NoError(t, repo.Upsert(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "replacement body", got.Text)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks WHERE id = $1`, c.ID).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestChunkRepository_OrgTierScoping(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	mine := newChunk(domain.TierOrg, "org-a", 0.4)
	other := newChunk(domain.TierOrg, "org-b", 0.4)
	global := newChunk(domain.TierDomain, "", 0.4)
	require.NoError(t, repo.Upsert(ctx, mine))
	require.NoError(t, repo.Upsert(ctx, other))
	require.NoError(t, repo.Upsert(ctx, global))

	results, err := repo.SearchOrg(ctx, "org-a", mine.Embedding, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, mine.ID, results[0].ID)

	// The domain search never sees org-tier records.
	results, err = repo.SearchDomain(ctx, global.Embedding, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, global.ID, results[0].ID)
}

func TestChunkRepository_SearchLimits(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewChunkRepository(pool)

	results, err := repo.SearchDomain(ctx, testEmbedding(0.1), 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	// No rows is an empty slice, not an error.
	results, err = repo.SearchDomain(ctx, testEmbedding(0.1), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

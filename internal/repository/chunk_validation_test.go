package repository

import (
	"context"
	"testing"

	"github.com/cloo-solutions/askd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs without a database: the record is rejected before any query.
func TestChunkRepository_UpsertOrgTierRequiresOrgID(t *testing.T) {
	repo := NewChunkRepository(nil)

	err := repo.Upsert(context.Background(), &domain.ChunkRecord{
		ID:   "c1",
		Text: "org chunk without an owner",
		Metadata: domain.ChunkMetadata{
			Tier:       domain.TierOrg,
			Part:       1,
			TotalParts: 1,
		},
		Embedding: []float32{0.1, 0.2},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingOrgID)
}

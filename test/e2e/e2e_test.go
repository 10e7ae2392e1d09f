//go:build e2e

package e2e

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_IngestAndAsk covers the full ingest, retrieve and answer flow
// against a real pgvector database and a fake generation backend.
func TestE2E_IngestAndAsk(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := env.Get("/health", "")
		require.NoError(t, err)

		var status map[string]string
		require.NoError(t, json.Unmarshal(resp.Data, &status))
		assert.Equal(t, "ok", status["status"])
	})

	t.Run("providers directory", func(t *testing.T) {
		resp, err := env.Get("/providers", "")
		require.NoError(t, err)

		var dir struct {
			Providers []struct {
				Key          string `json:"key"`
				DefaultModel string `json:"default_model"`
			} `json:"providers"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &dir))
		require.NotEmpty(t, dir.Providers)
		assert.Equal(t, "ollama", dir.Providers[0].Key)
	})

	t.Run("ingest domain document", func(t *testing.T) {
		resp, err := env.Post("/ingest", map[string]string{
			"tier":   "domain",
			"source": "vacation-policy.md",
			"text":   strings.Repeat("vacation policy allows twenty days per year ", 10),
		}, "")
		require.NoError(t, err)

		var result struct {
			ChunkCount int `json:"chunk_count"`
			Parts      []struct {
				ID   string `json:"id"`
				Part int    `json:"part"`
			} `json:"parts"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Greater(t, result.ChunkCount, 1)
		assert.Len(t, result.Parts, result.ChunkCount)
		parts := map[int]bool{}
		for _, p := range result.Parts {
			parts[p.Part] = true
		}
		assert.True(t, parts[1])
		assert.True(t, parts[result.ChunkCount])
		assert.False(t, parts[0])
	})

	t.Run("ingest org document", func(t *testing.T) {
		resp, err := env.Post("/ingest", map[string]string{
			"tier": "org",
			"text": "acme specific override: thirty vacation days",
		}, "acme")
		require.NoError(t, err)

		var result struct {
			ChunkCount int `json:"chunk_count"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, 1, result.ChunkCount)
	})

	t.Run("org ingest without header fails", func(t *testing.T) {
		_, err := env.Post("/ingest", map[string]string{
			"tier": "org",
			"text": "orphan org document",
		}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 400")
	})

	t.Run("ask with org scope", func(t *testing.T) {
		resp, err := env.Post("/ask", map[string]any{
			"question": "how many vacation days do I have?",
		}, "acme")
		require.NoError(t, err)

		var answer struct {
			Answer string `json:"answer"`
			Usage  struct {
				Provider   string `json:"provider"`
				OrgID      string `json:"org_id"`
				OrgHits    int    `json:"org_hits"`
				DomainHits int    `json:"domain_hits"`
			} `json:"usage"`
			Context []struct {
				ID       string  `json:"id"`
				Tier     string  `json:"tier"`
				Distance float64 `json:"distance"`
			} `json:"context"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &answer))
		assert.Contains(t, answer.Answer, "grounded")
		assert.Equal(t, "ollama", answer.Usage.Provider)
		assert.Equal(t, "acme", answer.Usage.OrgID)
		assert.NotEmpty(t, answer.Context)

		for i := 1; i < len(answer.Context); i++ {
			assert.LessOrEqual(t, answer.Context[i-1].Distance, answer.Context[i].Distance)
		}
	})

	t.Run("ask without org scope skips org tier", func(t *testing.T) {
		resp, err := env.Post("/ask", map[string]any{
			"question": "what is the vacation policy?",
		}, "")
		require.NoError(t, err)

		var answer struct {
			Usage struct {
				OrgHits    int `json:"org_hits"`
				DomainHits int `json:"domain_hits"`
			} `json:"usage"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &answer))
		assert.Zero(t, answer.Usage.OrgHits)
		assert.Greater(t, answer.Usage.DomainHits, 0)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := env.Post("/ask", map[string]any{
			"question": "q",
			"provider": "mystery",
		}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 400")
	})
}

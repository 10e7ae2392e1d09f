package domain

import "fmt"

// Tier identifies the retrieval scope a chunk belongs to.
type Tier string

const (
	// TierDomain is the globally visible knowledge tier.
	TierDomain Tier = "domain"
	// TierOrg is the organization-scoped knowledge tier.
	TierOrg Tier = "org"
)

// ParseTier validates a tier selector coming from the request boundary.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierDomain:
		return TierDomain, nil
	case TierOrg:
		return TierOrg, nil
	}
	return "", NewDomainError(ErrCodeValidation, fmt.Sprintf("invalid tier %q", s))
}

// ChunkMetadata carries the structured attributes persisted with a chunk.
type ChunkMetadata struct {
	Source     string `json:"source"`
	Tier       Tier   `json:"tier"`
	OrgID      string `json:"org_id,omitempty"`
	Part       int    `json:"part"`
	TotalParts int    `json:"total_parts"`
	KBVersion  string `json:"kb_version"`
}

// ChunkRecord is one embedded slice of a source document.
// A record's tier is fixed at creation; re-upserting the same ID replaces
// text, metadata and embedding (last-writer-wins).
type ChunkRecord struct {
	ID        string
	Text      string
	Metadata  ChunkMetadata
	Embedding []float32
}

// SearchResult is a single nearest-neighbor hit. Distance is the store's
// similarity metric, lower meaning more similar.
type SearchResult struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
	Distance float64
}

// ValidateChunkRecord checks a record before it reaches the store.
// Records with a wrong-dimension embedding are rejected, never padded or
// truncated.
func ValidateChunkRecord(c *ChunkRecord, dimensions int) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "chunk record cannot be nil")
	}
	if c.ID == "" {
		return NewDomainError(ErrCodeValidation, "chunk record ID is required")
	}
	if c.Metadata.Tier != TierDomain && c.Metadata.Tier != TierOrg {
		return NewDomainError(ErrCodeValidation, fmt.Sprintf("invalid tier %q", c.Metadata.Tier))
	}
	if c.Metadata.Tier == TierOrg && c.Metadata.OrgID == "" {
		return ErrMissingOrgID
	}
	if dimensions > 0 && len(c.Embedding) != dimensions {
		return NewDomainError(ErrCodeValidation,
			fmt.Sprintf("embedding has %d dimensions, expected %d", len(c.Embedding), dimensions))
	}
	return nil
}

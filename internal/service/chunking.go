package service

import "strings"

// ChunkConfig controls how documents are split before embedding.
type ChunkConfig struct {
	MaxWords int
	Overlap  int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxWords: 200,
		Overlap:  40,
	}
}

// ChunkWords splits text on whitespace into word windows of maxWords,
// advancing the window start by max(1, maxWords-overlap) each step so
// consecutive chunks share overlap words. Whitespace-only windows are
// dropped. Pure: same input and parameters always yield the same output.
func ChunkWords(text string, maxWords, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWords <= 0 {
		cfg := DefaultChunkConfig()
		maxWords = cfg.MaxWords
	}

	// overlap >= maxWords would stall the window; clamp to guarantee
	// forward progress.
	step := maxWords - overlap
	if step < 1 {
		step = 1
	}

	chunks := make([]string, 0, (len(words)+step-1)/step)
	for start := 0; start < len(words); start += step {
		end := start + maxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}

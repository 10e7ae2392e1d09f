package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkWords_Empty(t *testing.T) {
	assert.Nil(t, ChunkWords("", 10, 2))
	assert.Nil(t, ChunkWords("   \n\t  ", 10, 2))
}

func TestChunkWords_SingleChunk(t *testing.T) {
	chunks := ChunkWords("one two three", 10, 2)
	require.Len(t, chunks, 1)
	assert.Equal(t, "one two three", chunks[0])
}

func TestChunkWords_OverlapWindows(t *testing.T) {
	text := "w1 w2 w3 w4 w5 w6 w7 w8"
	chunks := ChunkWords(text, 4, 2)

	require.Equal(t, []string{
		"w1 w2 w3 w4",
		"w3 w4 w5 w6",
		"w5 w6 w7 w8",
	}, chunks)
}

func TestChunkWords_PrefixesReconstructInput(t *testing.T) {
	words := make([]string, 47)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	text := strings.Join(words, " ")

	maxWords, overlap := 10, 3
	step := maxWords - overlap
	chunks := ChunkWords(text, maxWords, overlap)

	// Joining each chunk's non-overlapping prefix, plus the final chunk in
	// full, reconstructs the word sequence exactly.
	var rebuilt []string
	for i, c := range chunks {
		cw := strings.Fields(c)
		if i == len(chunks)-1 {
			rebuilt = append(rebuilt, cw...)
		} else {
			rebuilt = append(rebuilt, cw[:step]...)
		}
	}
	assert.Equal(t, words, rebuilt)
}

func TestChunkWords_CountFormula(t *testing.T) {
	for _, tc := range []struct {
		words, maxWords, overlap int
	}{
		{1, 10, 3},
		{10, 10, 3},
		{11, 10, 3},
		{100, 10, 3},
		{250, 40, 10},
	} {
		ws := make([]string, tc.words)
		for i := range ws {
			ws[i] = "x"
		}
		chunks := ChunkWords(strings.Join(ws, " "), tc.maxWords, tc.overlap)

		step := tc.maxWords - tc.overlap
		want := (tc.words - tc.overlap + step - 1) / step
		if want < 1 {
			want = 1
		}
		assert.Len(t, chunks, want,
			"words=%d max=%d overlap=%d", tc.words, tc.maxWords, tc.overlap)
	}
}

func TestChunkWords_OverlapAtLeastMaxClampsStep(t *testing.T) {
	text := "a b c d e"
	chunks := ChunkWords(text, 2, 5)

	// Step clamps to 1 so the call terminates and still covers every word.
	require.Equal(t, []string{"a b", "b c", "c d", "d e"}, chunks)
}

func TestChunkWords_Deterministic(t *testing.T) {
	text := "alpha beta gamma delta epsilon zeta eta theta"
	first := ChunkWords(text, 3, 1)
	second := ChunkWords(text, 3, 1)
	assert.Equal(t, first, second)
}

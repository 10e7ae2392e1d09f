package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/askd/internal/domain"
)

const promptTemplate = `You are a careful assistant answering questions from an internal knowledge base.

Use ONLY the context below to answer. Cite the sources you used by their label in parentheses. If the context does not contain the information required to answer, say so explicitly instead of guessing.

Context:
%s

Question: %s

Answer:`

// BuildPrompt renders the retrieved context entries and the question into a
// single generation-ready prompt. Entries are rendered in the order supplied
// (the caller has already distance-sorted them). Pure, no I/O.
func BuildPrompt(entries []domain.SearchResult, question string) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		label := e.Metadata.Source
		if label == "" {
			label = e.ID
		}
		text := strings.Join(strings.Fields(e.Text), " ")
		lines = append(lines, fmt.Sprintf("- (%s) %s", label, text))
	}
	context := strings.Join(lines, "\n")
	if context == "" {
		context = "- (none) no relevant context found"
	}
	return fmt.Sprintf(promptTemplate, context, question)
}

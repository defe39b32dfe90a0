package internal

import (
	"context"
	"fmt"
	"strings"
)

const maxVocabularyTerms = 10

// GenerateVocabulary extracts up to ten key terms as "> **Term**: definition" lines
func (g *Generator) GenerateVocabulary(ctx context.Context, vc VideoContext, summaries string) (string, float64, error) {
	data := PromptData{Transcript: vc.Transcript, Summaries: summaries}
	msgs, err := g.messages(data,
		[2]string{RoleSystem, PromptVocabularySystem},
		[2]string{RoleUser, PromptVocabularyUser})
	if err != nil {
		return "", 0, err
	}
	msgs = []Message{msgs[0], {Role: RoleSystem, Content: vc.Corrections}, msgs[1]}

	resp, err := g.complete(ctx, ChatRequest{Name: "vocabulary", Model: vc.Model, Messages: msgs})
	if err != nil {
		return "", 0, fmt.Errorf("generating vocabulary: %w", err)
	}
	return limitVocabulary(resp.Content, maxVocabularyTerms), resp.Cost, nil
}

// limitVocabulary keeps at most n term lines and drops blank lines between them
func limitVocabulary(content string, n int) string {
	var terms []string
	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if len(terms) == n {
				break
			}
			terms = append(terms, line)
			continue
		}
		// definitions wrapped onto a following line stay with their term
		if len(terms) > 0 {
			terms[len(terms)-1] += " " + line
		}
	}
	if len(terms) == 0 {
		return strings.TrimSpace(content)
	}
	return strings.Join(terms, "\n\n")
}

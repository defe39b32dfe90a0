package internal

import (
	"context"
	"fmt"
	"strings"
)

// GenerateSynopsis writes a TL;DR of the combined section summaries.
// With PunchySynopsis set, a second call refines the first answer.
func (g *Generator) GenerateSynopsis(ctx context.Context, model, summaries string) (string, float64, error) {
	msgs, err := g.messages(PromptData{Summaries: summaries},
		[2]string{RoleSystem, PromptSynopsisSystem},
		[2]string{RoleUser, PromptSynopsisUser})
	if err != nil {
		return "", 0, err
	}

	resp, err := g.complete(ctx, ChatRequest{Name: "synopsis", Model: model, Messages: msgs})
	if err != nil {
		return "", 0, fmt.Errorf("generating synopsis: %w", err)
	}
	synopsis := strings.TrimSpace(resp.Content)
	cost := resp.Cost

	if !g.opts.PunchySynopsis {
		return synopsis, cost, nil
	}

	punchy, err := g.message(RoleUser, PromptSynopsisPunchy, PromptData{})
	if err != nil {
		return "", cost, err
	}
	msgs = append(msgs, Message{Role: RoleAssistant, Content: synopsis}, punchy)

	resp, err = g.complete(ctx, ChatRequest{Name: "synopsis_punchy", Model: model, Messages: msgs})
	if err != nil {
		return "", cost, fmt.Errorf("refining synopsis: %w", err)
	}
	return strings.TrimSpace(resp.Content), cost + resp.Cost, nil
}

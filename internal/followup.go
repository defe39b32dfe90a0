package internal

import (
	"context"
	"fmt"
	"strings"
)

// GenerateFollowUp writes a response document to the viewer's takes on a video
func (g *Generator) GenerateFollowUp(ctx context.Context, vc VideoContext, takes []string) (string, float64, error) {
	system := PromptFollowUpResonance
	if g.opts.FollowUpStyle == FollowUpInsights {
		system = PromptFollowUpInsights
	}

	data := PromptData{
		Title:       vc.Title,
		Transcript:  vc.Transcript,
		Corrections: vc.Corrections,
		Takes:       formatTakes(takes),
	}
	msgs, err := g.messages(data,
		[2]string{RoleSystem, system},
		[2]string{RoleUser, PromptFollowUpUser})
	if err != nil {
		return "", 0, err
	}

	temperature := 0.7
	resp, err := g.complete(ctx, ChatRequest{
		Name:        "follow_up",
		Model:       vc.Model,
		Messages:    msgs,
		Temperature: &temperature,
	})
	if err != nil {
		return "", 0, fmt.Errorf("generating follow-up: %w", err)
	}
	return strings.TrimSpace(resp.Content), resp.Cost, nil
}

func formatTakes(takes []string) string {
	lines := make([]string, 0, len(takes))
	for _, t := range takes {
		if t = strings.TrimSpace(t); t != "" {
			lines = append(lines, "- "+t)
		}
	}
	return strings.Join(lines, "\n")
}

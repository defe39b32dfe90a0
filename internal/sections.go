package internal

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// SectionSummary is the generated markdown for one outline section
type SectionSummary struct {
	Index   int     `json:"index"`
	Content string  `json:"content"`
	Cost    float64 `json:"cost"`
}

// numberedHeading matches headings such as "## 2. Title" or "### 1.3 Title"
// but not "## 2024 Roadmap"
var numberedHeading = regexp.MustCompile(`(?m)^(#{1,6}[ \t]+)(?:\d+(?:\.\d+)+[.):]?|\d+[.):])[ \t]+`)

// normalizeHeadings strips section numbers from markdown headings
func normalizeHeadings(content string) string {
	return numberedHeading.ReplaceAllString(content, "${1}")
}

// GenerateSection summarizes one outline section. For index > 1 the anchor,
// when present, is replayed as an assistant turn to keep the style consistent.
func (g *Generator) GenerateSection(ctx context.Context, vc VideoContext, outline *Outline, index int, anchor string) (SectionSummary, error) {
	data := PromptData{
		Title:      vc.Title,
		Channel:    vc.Channel,
		Transcript: vc.Transcript,
		Outline:    outline.Text,
		Index:      index,
	}
	msgs, err := g.messages(data,
		[2]string{RoleSystem, PromptSectionSystem},
		[2]string{RoleUser, PromptSectionUser})
	if err != nil {
		return SectionSummary{}, err
	}
	msgs = []Message{msgs[0], {Role: RoleSystem, Content: vc.Corrections}, msgs[1]}

	if index > 1 && anchor != "" {
		style, err := g.message(RoleUser, PromptSectionStyle, data)
		if err != nil {
			return SectionSummary{}, err
		}
		msgs = append(msgs, Message{Role: RoleAssistant, Content: anchor}, style)
	}

	resp, err := g.complete(ctx, ChatRequest{
		Name:     fmt.Sprintf("section_%d", index),
		Model:    vc.Model,
		Messages: msgs,
	})
	if err != nil {
		return SectionSummary{}, fmt.Errorf("summarizing section %d: %w", index, err)
	}

	return SectionSummary{
		Index:   index,
		Content: normalizeHeadings(strings.TrimSpace(resp.Content)),
		Cost:    resp.Cost,
	}, nil
}

// GenerateSections writes section 1 first and then the remaining sections
// concurrently, anchored on section 1. Results come back in index order.
// The first failure cancels the outstanding calls.
func (g *Generator) GenerateSections(ctx context.Context, vc VideoContext, outline *Outline) ([]SectionSummary, error) {
	if outline == nil || outline.Sections < 1 {
		return nil, fmt.Errorf("%w: no sections to summarize", ErrMalformedOutline)
	}
	if outline.Sections > MaxOutlineSections {
		return nil, fmt.Errorf("%w: %d sections exceeds the limit of %d",
			ErrMalformedOutline, outline.Sections, MaxOutlineSections)
	}
	logger := g.logger.With(slog.String("video_id", vc.VideoID))

	first, err := g.GenerateSection(ctx, vc, outline, 1, "")
	if err != nil {
		return nil, err
	}

	results := make([]SectionSummary, outline.Sections)
	results[0] = first
	if outline.Sections == 1 {
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if g.opts.SectionConcurrency > 0 {
		eg.SetLimit(g.opts.SectionConcurrency)
	}
	for i := 2; i <= outline.Sections; i++ {
		eg.Go(func() error {
			summary, err := g.GenerateSection(egCtx, vc, outline, i, first.Content)
			if err != nil {
				return err
			}
			results[i-1] = summary
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logger.Info("sections summarized", slog.Int("sections", len(results)))
	return results, nil
}

// SumSectionCosts totals section costs in index order
func SumSectionCosts(sections []SectionSummary) float64 {
	var total float64
	for _, s := range sections {
		total += s.Cost
	}
	return total
}

// CombineSections joins section bodies in index order
func CombineSections(sections []SectionSummary) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n")
}

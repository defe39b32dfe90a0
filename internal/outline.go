package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrMalformedOutline is returned when the outline response can't be used
var ErrMalformedOutline = errors.New("malformed outline")

// MaxOutlineSections bounds the section fan-out of a single run
const MaxOutlineSections = 50

// outlineItemPattern matches unindented numbered or bulleted outline items
var outlineItemPattern = regexp.MustCompile(`(?m)^(?:\d+[.)]|[-*+])[ \t]+\S`)

// Outline is the sectioned plan the section summaries follow
type Outline struct {
	Text     string `json:"outline"`
	Sections int    `json:"num_bullets"`
}

type outlinePayload struct {
	Outline    json.RawMessage `json:"outline"`
	NumBullets *int            `json:"num_bullets"`
}

// GenerateOutline asks for a numbered outline and its top-level section count
func (g *Generator) GenerateOutline(ctx context.Context, vc VideoContext) (*Outline, float64, error) {
	data := PromptData{Title: vc.Title, Channel: vc.Channel, Transcript: vc.Transcript}
	msgs, err := g.messages(data,
		[2]string{RoleSystem, PromptOutlineSystem},
		[2]string{RoleUser, PromptOutlineUser})
	if err != nil {
		return nil, 0, err
	}
	// corrections ride along as a second system message
	msgs = []Message{msgs[0], {Role: RoleSystem, Content: vc.Corrections}, msgs[1]}

	resp, err := g.complete(ctx, ChatRequest{Name: "outline", Model: vc.Model, Messages: msgs, JSON: true})
	if err != nil {
		return nil, 0, fmt.Errorf("generating outline: %w", err)
	}

	outline, err := parseOutline(resp.Content)
	if err != nil {
		g.logger.Error("outline response unusable",
			slog.String("video_id", vc.VideoID),
			slog.Any("error", err))
		return nil, resp.Cost, err
	}

	g.logger.Info("outline",
		slog.String("video_id", vc.VideoID),
		slog.Int("sections", outline.Sections),
		slog.Float64("cost", resp.Cost))
	return outline, resp.Cost, nil
}

func parseOutline(content string) (*Outline, error) {
	parsed := ParseLLMJSON[outlinePayload](content)
	payload, ok := parsed.Value()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutline, parsed.Err())
	}
	if payload.NumBullets == nil {
		return nil, fmt.Errorf("%w: missing num_bullets", ErrMalformedOutline)
	}
	if *payload.NumBullets < 1 {
		return nil, fmt.Errorf("%w: num_bullets is %d", ErrMalformedOutline, *payload.NumBullets)
	}

	if *payload.NumBullets > MaxOutlineSections {
		return nil, fmt.Errorf("%w: num_bullets %d exceeds the limit of %d",
			ErrMalformedOutline, *payload.NumBullets, MaxOutlineSections)
	}

	text, err := outlineText(payload.Outline)
	if err != nil {
		return nil, err
	}
	// free-form outlines without list items are only held to the limit
	if items := countOutlineItems(text); items > 0 && *payload.NumBullets > items {
		return nil, fmt.Errorf("%w: num_bullets %d but the outline has %d items",
			ErrMalformedOutline, *payload.NumBullets, items)
	}
	return &Outline{Text: text, Sections: *payload.NumBullets}, nil
}

// countOutlineItems counts top-level list items in an outline
func countOutlineItems(text string) int {
	return len(outlineItemPattern.FindAllStringIndex(text, -1))
}

// outlineText accepts the outline as a string or as a list of items
func outlineText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("%w: missing outline", ErrMalformedOutline)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: empty outline", ErrMalformedOutline)
		}
		return strings.TrimSpace(text), nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", fmt.Errorf("%w: outline is neither text nor a list", ErrMalformedOutline)
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			s = string(item)
		}
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(s)))
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: empty outline", ErrMalformedOutline)
	}
	return strings.Join(lines, "\n"), nil
}

package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// NoTranscriptionErrors is the report text when no findings remain
const NoTranscriptionErrors = "No transcription errors found."

// Finding is one suspected transcription error
type Finding struct {
	Term              string `json:"term"`
	Context           string `json:"context"`
	Reasoning         string `json:"reasoning,omitempty"`
	SpelledCorrect    bool   `json:"spelled_correct"`
	IncorrectSpelling string `json:"incorrect_spelling,omitempty"`
	CorrectSpelling   string `json:"correct_spelling"`
	Confident         bool   `json:"confident"`
}

// CorrectionReport holds the findings and the text injected into later prompts
type CorrectionReport struct {
	Findings []Finding `json:"errors"`
	Table    string    `json:"table"`
	// Parsed is false when the model's output could not be decoded
	Parsed bool `json:"parsed"`
}

// Text returns the report as prompt context
func (r *CorrectionReport) Text() string {
	if r == nil || strings.TrimSpace(r.Table) == "" {
		return NoTranscriptionErrors
	}
	return r.Table
}

type correctionPayload struct {
	ToInvestigate []string           `json:"to_investigate"`
	SimilarWords  []string           `json:"list_of_similar_words"`
	Reasoning     []correctionReason `json:"reasoning"`
}

type correctionReason struct {
	Term        string `json:"term"`
	Context     string `json:"context"`
	Reasoning   string `json:"reasoning"`
	FinalAnswer struct {
		ScratchPad        string `json:"scratch_pad"`
		SpelledCorrect    *bool  `json:"spelled_correct"`
		IncorrectSpelling string `json:"incorrect_spelling"`
		CorrectSpelling   string `json:"correct_spelling"`
	} `json:"final_answer"`
	Confident bool `json:"confident"`
}

func (r correctionReason) finding() Finding {
	// a missing judgement counts as correctly spelled
	spelledCorrect := r.FinalAnswer.SpelledCorrect == nil || *r.FinalAnswer.SpelledCorrect
	return Finding{
		Term:              r.Term,
		Context:           r.Context,
		Reasoning:         r.Reasoning,
		SpelledCorrect:    spelledCorrect,
		IncorrectSpelling: r.FinalAnswer.IncorrectSpelling,
		CorrectSpelling:   r.FinalAnswer.CorrectSpelling,
		Confident:         r.Confident,
	}
}

// DetectTranscriptionErrors finds likely misrecognised words and renders them
// as a markdown table. An unparseable response yields an empty report.
func (g *Generator) DetectTranscriptionErrors(ctx context.Context, vc VideoContext) (*CorrectionReport, float64, error) {
	logger := g.logger.With(slog.String("stage", "corrections"), slog.String("video_id", vc.VideoID))

	data := PromptData{Title: vc.Title, Transcript: vc.Transcript}
	msgs, err := g.messages(data,
		[2]string{RoleSystem, PromptCorrectionsSystem},
		[2]string{RoleUser, PromptCorrectionsUser})
	if err != nil {
		return nil, 0, err
	}

	resp, err := g.complete(ctx, ChatRequest{Name: "corrections", Model: vc.Model, Messages: msgs, JSON: true})
	if err != nil {
		return nil, 0, fmt.Errorf("determining transcription errors: %w", err)
	}
	cost := resp.Cost

	parsed := ParseLLMJSON[correctionPayload](resp.Content)
	payload, ok := parsed.Value()
	if !ok {
		logger.Warn("could not parse transcription errors, continuing without them",
			slog.Any("error", parsed.Err()))
		return &CorrectionReport{Table: NoTranscriptionErrors}, cost, nil
	}

	findings := make([]Finding, 0, len(payload.Reasoning))
	for _, r := range payload.Reasoning {
		f := r.finding()
		if g.opts.OnlyMisspelled && f.SpelledCorrect {
			continue
		}
		findings = append(findings, f)
	}

	report := &CorrectionReport{Findings: findings, Parsed: true}
	if len(findings) == 0 {
		report.Table = NoTranscriptionErrors
		return report, cost, nil
	}

	table, tableCost, err := g.renderCorrectionTable(ctx, vc.Model, findings)
	if err != nil {
		return nil, cost, err
	}
	report.Table = table
	cost += tableCost

	logger.Info("transcription errors", slog.Int("findings", len(findings)), slog.Float64("cost", cost))
	return report, cost, nil
}

func (g *Generator) renderCorrectionTable(ctx context.Context, model string, findings []Finding) (string, float64, error) {
	encoded, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encoding findings: %w", err)
	}

	msgs, err := g.messages(PromptData{Findings: string(encoded)},
		[2]string{RoleSystem, PromptCorrectionsTableSystem},
		[2]string{RoleUser, PromptCorrectionsTableUser})
	if err != nil {
		return "", 0, err
	}

	resp, err := g.complete(ctx, ChatRequest{Name: "corrections_table", Model: model, Messages: msgs})
	if err != nil {
		return "", 0, fmt.Errorf("rendering transcription error table: %w", err)
	}
	return strings.TrimSpace(resp.Content), resp.Cost, nil
}

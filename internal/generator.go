package internal

import (
	"context"
	"log/slog"
)

// Follow-up styles
const (
	FollowUpResonance = "resonance"
	FollowUpInsights  = "insights"
)

// GeneratorOptions tunes the generation stages
type GeneratorOptions struct {
	// OnlyMisspelled drops correction findings the model judged correctly spelled
	OnlyMisspelled bool
	// PunchySynopsis adds a second refinement call to the synopsis stage
	PunchySynopsis bool
	// SectionConcurrency bounds concurrent section calls; 0 means unbounded
	SectionConcurrency int
	FollowUpStyle      string
}

// DefaultGeneratorOptions returns the options used when nothing is configured
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		PunchySynopsis: true,
		FollowUpStyle:  FollowUpResonance,
	}
}

// VideoContext is the shared input threaded through the generation stages
type VideoContext struct {
	Model      string
	VideoID    string
	Title      string
	Channel    string
	Transcript string
	// Corrections is the error report text injected into later prompts
	Corrections string
}

// Generator runs the LLM stages of the notes pipeline. Every stage returns
// its own cost; callers do the summing.
type Generator struct {
	ai      *AI
	prompts *PromptManager
	opts    GeneratorOptions
	logger  *slog.Logger
}

// NewGenerator creates a new stage runner
func NewGenerator(ai *AI, prompts *PromptManager, opts GeneratorOptions, logger *slog.Logger) *Generator {
	if opts.FollowUpStyle == "" {
		opts.FollowUpStyle = FollowUpResonance
	}
	return &Generator{
		ai:      ai,
		prompts: prompts,
		opts:    opts,
		logger:  orDiscard(logger),
	}
}

// Prices returns the price table the generator charges against
func (g *Generator) Prices() PriceTable {
	return g.ai.Prices()
}

func (g *Generator) complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	return g.ai.Complete(ctx, req)
}

func (g *Generator) message(role, name string, data PromptData) (Message, error) {
	content, err := g.prompts.Render(name, data)
	if err != nil {
		return Message{}, err
	}
	return Message{Role: role, Content: content}, nil
}

// messages renders a sequence of (role, template) pairs with the same data
func (g *Generator) messages(data PromptData, parts ...[2]string) ([]Message, error) {
	msgs := make([]Message, 0, len(parts))
	for _, p := range parts {
		m, err := g.message(p[0], p[1], data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

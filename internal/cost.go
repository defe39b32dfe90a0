package internal

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnknownModel is returned when a model has no entry in the price table
var ErrUnknownModel = errors.New("unknown model")

// ModelPrice is the cost per 1000 tokens for a model
type ModelPrice struct {
	Input  float64 `mapstructure:"input" json:"input"`
	Output float64 `mapstructure:"output" json:"output"`
}

// PriceTable maps model identifiers to their token prices
type PriceTable map[string]ModelPrice

// Usage is the token count reported for a single completion
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// DefaultPrices returns the built-in price table
func DefaultPrices() PriceTable {
	return PriceTable{
		"gpt-4o-mini":  {Input: 0.000150, Output: 0.000600},
		"gpt-4o":       {Input: 0.005, Output: 0.015},
		"gpt-4.1-nano": {Input: 0.0001, Output: 0.0004},
		"o4-mini":      {Input: 0.0011, Output: 0.0044},
	}
}

// Merge returns a copy of the table with overrides applied on top
func (p PriceTable) Merge(overrides PriceTable) PriceTable {
	merged := make(PriceTable, len(p)+len(overrides))
	maps.Copy(merged, p)
	maps.Copy(merged, overrides)
	return merged
}

// Models returns the sorted list of models with known prices
func (p PriceTable) Models() []string {
	return slices.Sorted(maps.Keys(p))
}

// Lookup returns the price for model or ErrUnknownModel
func (p PriceTable) Lookup(model string) (ModelPrice, error) {
	price, ok := p[model]
	if !ok {
		return ModelPrice{}, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return price, nil
}

// CalculateCost converts token usage into a monetary cost for model
func CalculateCost(usage Usage, model string, prices PriceTable) (float64, error) {
	price, err := prices.Lookup(model)
	if err != nil {
		return 0, err
	}
	input := float64(usage.PromptTokens) / 1000 * price.Input
	output := float64(usage.CompletionTokens) / 1000 * price.Output
	return input + output, nil
}

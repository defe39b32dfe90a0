package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"golang.org/x/time/rate"
)

// ErrMissingAPIKey is returned when no OpenAI API key is configured
var ErrMissingAPIKey = errors.New("OpenAI API key is required - set it in config.toml or OPENAI_API_KEY environment variable")

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a chat conversation
type Message struct {
	Role    string
	Content string
}

// ChatRequest describes one chat completion call
type ChatRequest struct {
	// Name labels the call in logs
	Name        string
	Model       string
	Messages    []Message
	JSON        bool
	Temperature *float64
	MaxTokens   int64
}

// ChatResponse is the content and token usage of a completion
type ChatResponse struct {
	Content string
	Usage   Usage
}

// ChatClient defines the chat completion operations the pipeline needs
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// CreateChatCompletion implements the chat completion method
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(req.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices from OpenAI")
	}
	return &ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Completion is the result of a priced chat call
type Completion struct {
	Content string
	Usage   Usage
	Cost    float64
}

// AI prices, paces and times out chat completions
type AI struct {
	client     ChatClient
	prices     PriceTable
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *slog.Logger
	apiKey     string
	clientOnce sync.Once
	clientErr  error
}

// NewAI creates a new AI processor around an existing client
func NewAI(client ChatClient, prices PriceTable, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *AI {
	return &AI{
		client:  client,
		prices:  prices,
		timeout: timeout,
		limiter: newLimiter(requestsPerSecond),
		logger:  orDiscard(logger),
	}
}

// NewAIWithKey creates a new AI processor with lazy client initialization
func NewAIWithKey(apiKey string, prices PriceTable, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *AI {
	ai := NewAI(nil, prices, timeout, requestsPerSecond, logger)
	ai.apiKey = apiKey
	return ai
}

func newLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	ai.clientOnce.Do(func() {
		if ai.client != nil {
			return
		}
		if ai.apiKey == "" {
			ai.clientErr = ErrMissingAPIKey
			return
		}
		ai.client = NewOpenAIClient(ai.apiKey)
	})
	return ai.clientErr
}

// Prices returns the price table used for cost accounting
func (ai *AI) Prices() PriceTable {
	return ai.prices
}

// Complete runs one chat completion and returns its content and cost.
// Unknown models fail before any request is sent.
func (ai *AI) Complete(ctx context.Context, req ChatRequest) (*Completion, error) {
	if _, err := ai.prices.Lookup(req.Model); err != nil {
		return nil, err
	}
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}
	if err := ai.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: waiting for rate limiter: %w", req.Name, err)
	}

	if ai.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := ai.client.CreateChatCompletion(ctx, req)
	if err != nil {
		ai.logger.Error("chat completion failed",
			slog.String("call", req.Name),
			slog.String("model", req.Model),
			slog.Any("error", err))
		return nil, fmt.Errorf("%s: creating chat completion: %w", req.Name, err)
	}

	cost, err := CalculateCost(resp.Usage, req.Model, ai.prices)
	if err != nil {
		return nil, err
	}

	ai.logger.Debug("chat completion",
		slog.String("call", req.Name),
		slog.String("model", req.Model),
		slog.Int64("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int64("completion_tokens", resp.Usage.CompletionTokens),
		slog.Float64("cost", cost),
		slog.Duration("took", time.Since(start)))

	return &Completion{Content: resp.Content, Usage: resp.Usage, Cost: cost}, nil
}

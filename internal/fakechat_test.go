package internal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testModel = "test-model"

func testPrices() PriceTable {
	return PriceTable{testModel: {Input: 0.001, Output: 0.002}}
}

// fakeReply answers one chat call; usage defaults to 1000 prompt and 500 completion tokens
type fakeReply struct {
	Content string
	Usage   *Usage
	Err     error
}

// fakeChat routes requests on ChatRequest.Name and records every call
type fakeChat struct {
	mu      sync.Mutex
	calls   []ChatRequest
	replies map[string]func(req ChatRequest) fakeReply
}

func newFakeChat() *fakeChat {
	return &fakeChat{replies: make(map[string]func(ChatRequest) fakeReply)}
}

func (f *fakeChat) on(name string, content string) *fakeChat {
	f.replies[name] = func(ChatRequest) fakeReply { return fakeReply{Content: content} }
	return f
}

func (f *fakeChat) onFunc(name string, fn func(req ChatRequest) fakeReply) *fakeChat {
	f.replies[name] = fn
	return f
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn, ok := f.replies[req.Name]
	if !ok && strings.HasPrefix(req.Name, "section_") {
		fn, ok = f.replies["section"]
	}
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("unexpected chat call %q", req.Name)
	}
	reply := fn(req)
	if reply.Err != nil {
		return nil, reply.Err
	}
	usage := Usage{PromptTokens: 1000, CompletionTokens: 500}
	if reply.Usage != nil {
		usage = *reply.Usage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ChatResponse{Content: reply.Content, Usage: usage}, nil
}

// names returns the call names in the order they were made
func (f *fakeChat) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		names = append(names, c.Name)
	}
	return names
}

func (f *fakeChat) call(t *testing.T, name string) ChatRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.calls, func(c ChatRequest) bool { return c.Name == name })
	require.GreaterOrEqual(t, i, 0, "no %q call recorded", name)
	return f.calls[i]
}

// defaultCallCost is the cost of one call with default usage at testPrices
const defaultCallCost = 1.0*0.001 + 0.5*0.002

var errChatDown = errors.New("chat backend down")

func newTestGenerator(t *testing.T, chat ChatClient, opts GeneratorOptions) *Generator {
	t.Helper()
	ai := NewAI(chat, testPrices(), 0, 0, nil)
	return NewGenerator(ai, MustPromptManager(), opts, nil)
}

func testVideo() VideoContext {
	return VideoContext{
		Model:       testModel,
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Intro to Graphs",
		Channel:     "CS Lectures",
		Transcript:  "today we talk about graphs and dykstra's algorithm",
		Corrections: NoTranscriptionErrors,
	}
}

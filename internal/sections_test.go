package internal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionReply(req ChatRequest) fakeReply {
	index := strings.TrimPrefix(req.Name, "section_")
	return fakeReply{Content: fmt.Sprintf("## %s. Part %s\n\nBody %s", index, index, index)}
}

func TestGenerateSections_SingleSection(t *testing.T) {
	chat := newFakeChat().onFunc("section", sectionReply)
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	sections, err := g.GenerateSections(context.Background(), testVideo(), &Outline{Text: "1. Only", Sections: 1})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, []string{"section_1"}, chat.names())
	assert.Equal(t, "## Part 1\n\nBody 1", sections[0].Content)

	req := chat.call(t, "section_1")
	require.Len(t, req.Messages, 3)
	assert.Contains(t, req.Messages[2].Content, "Let's start with bullet 1.")
}

func TestGenerateSections_OrderedDespiteCompletionOrder(t *testing.T) {
	section3Done := make(chan struct{})
	chat := newFakeChat().
		onFunc("section", sectionReply).
		onFunc("section_2", func(req ChatRequest) fakeReply {
			select {
			case <-section3Done:
			case <-time.After(5 * time.Second):
				return fakeReply{Err: fmt.Errorf("section 3 never finished")}
			}
			return sectionReply(req)
		}).
		onFunc("section_3", func(req ChatRequest) fakeReply {
			defer close(section3Done)
			return sectionReply(req)
		})
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	outline := &Outline{Text: "1. A\n2. B\n3. C", Sections: 3}
	sections, err := g.GenerateSections(context.Background(), testVideo(), outline)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	for i, s := range sections {
		assert.Equal(t, i+1, s.Index)
		assert.Equal(t, fmt.Sprintf("## Part %d\n\nBody %d", i+1, i+1), s.Content)
	}

	names := chat.names()
	assert.Equal(t, "section_1", names[0])
	assert.ElementsMatch(t, []string{"section_1", "section_2", "section_3"}, names)
	assert.Equal(t, "## Part 1\n\nBody 1\n\n## Part 2\n\nBody 2\n\n## Part 3\n\nBody 3", CombineSections(sections))
	assert.InDelta(t, 3*defaultCallCost, SumSectionCosts(sections), 1e-9)
}

func TestGenerateSections_AnchorsOnFirstSection(t *testing.T) {
	chat := newFakeChat().onFunc("section", sectionReply)
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	vc := testVideo()
	vc.Corrections = correctionTable
	_, err := g.GenerateSections(context.Background(), vc, &Outline{Text: "1. A\n2. B", Sections: 2})
	require.NoError(t, err)

	req := chat.call(t, "section_2")
	require.Len(t, req.Messages, 5)
	assert.Equal(t, RoleSystem, req.Messages[0].Role)
	assert.Equal(t, Message{Role: RoleSystem, Content: correctionTable}, req.Messages[1])
	assert.Contains(t, req.Messages[2].Content, "Let's start with bullet 2.")
	assert.Contains(t, req.Messages[2].Content, "1. A\n2. B")
	assert.Equal(t, Message{Role: RoleAssistant, Content: "## Part 1\n\nBody 1"}, req.Messages[3])
	assert.Equal(t, Message{Role: RoleUser, Content: "Now, please summarize bullet 2 in a similar style."}, req.Messages[4])
}

func TestGenerateSections_BoundedConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	chat := newFakeChat().onFunc("section", func(req ChatRequest) fakeReply {
		mu.Lock()
		running++
		peak = max(peak, running)
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		mu.Lock()
		running--
		mu.Unlock()
		return sectionReply(req)
	})
	opts := DefaultGeneratorOptions()
	opts.SectionConcurrency = 2
	g := newTestGenerator(t, chat, opts)

	sections, err := g.GenerateSections(context.Background(), testVideo(), &Outline{Text: "outline", Sections: 6})
	require.NoError(t, err)
	assert.Len(t, sections, 6)
	assert.LessOrEqual(t, peak, 2)
}

func TestGenerateSections_FailureAbortsRun(t *testing.T) {
	chat := newFakeChat().
		onFunc("section", sectionReply).
		onFunc("section_3", func(ChatRequest) fakeReply { return fakeReply{Err: errChatDown} })
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	sections, err := g.GenerateSections(context.Background(), testVideo(), &Outline{Text: "outline", Sections: 4})
	require.ErrorIs(t, err, errChatDown)
	assert.Contains(t, err.Error(), "section 3")
	assert.Nil(t, sections)
}

func TestGenerateSections_RejectsEmptyOutline(t *testing.T) {
	g := newTestGenerator(t, newFakeChat(), DefaultGeneratorOptions())

	_, err := g.GenerateSections(context.Background(), testVideo(), &Outline{Sections: 0})
	assert.ErrorIs(t, err, ErrMalformedOutline)
	_, err = g.GenerateSections(context.Background(), testVideo(), nil)
	assert.ErrorIs(t, err, ErrMalformedOutline)
}

func TestGenerateSections_RejectsOversizedOutline(t *testing.T) {
	chat := newFakeChat()
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	_, err := g.GenerateSections(context.Background(), testVideo(), &Outline{Text: "1. A", Sections: MaxOutlineSections + 1})
	assert.ErrorIs(t, err, ErrMalformedOutline)
	assert.Empty(t, chat.names())
}

func TestNormalizeHeadings(t *testing.T) {
	tests := map[string]string{
		"## 1. Introduction":             "## Introduction",
		"### 2.3 Details":                "### Details",
		"## 4) Wrap":                     "## Wrap",
		"#### 10: Ten":                   "#### Ten",
		"## Introduction":                "## Introduction",
		"1. list items stay numbered":    "1. list items stay numbered",
		"## 2024 Roadmap":                "## 2024 Roadmap",
		"text\n## 3. Three\nmore text":   "text\n## Three\nmore text",
		"##2. no space is not a heading": "##2. no space is not a heading",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeHeadings(in), in)
	}
}

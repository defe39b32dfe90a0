package internal

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVocabulary(t *testing.T) {
	chat := newFakeChat().on("vocabulary", "> **Graph**: nodes and edges\n\n> **Dijkstra**: shortest path algorithm\n")
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	vc := testVideo()
	vc.Corrections = correctionTable
	vocab, cost, err := g.GenerateVocabulary(context.Background(), vc, "## Part 1")
	require.NoError(t, err)
	assert.Equal(t, "> **Graph**: nodes and edges\n\n> **Dijkstra**: shortest path algorithm", vocab)
	assert.InDelta(t, defaultCallCost, cost, 1e-9)

	req := chat.call(t, "vocabulary")
	require.Len(t, req.Messages, 3)
	assert.Equal(t, Message{Role: RoleSystem, Content: correctionTable}, req.Messages[1])
	assert.Contains(t, req.Messages[2].Content, vc.Transcript)
	assert.Contains(t, req.Messages[2].Content, "## Part 1")
}

func TestLimitVocabulary(t *testing.T) {
	var lines []string
	for i := 1; i <= 14; i++ {
		lines = append(lines, fmt.Sprintf("> **Term %d**: definition %d", i, i))
	}
	got := limitVocabulary(strings.Join(lines, "\n"), 10)
	terms := strings.Split(got, "\n\n")
	require.Len(t, terms, 10)
	assert.Equal(t, "> **Term 1**: definition 1", terms[0])
	assert.Equal(t, "> **Term 10**: definition 10", terms[9])

	t.Run("wrapped definitions stay with their term", func(t *testing.T) {
		got := limitVocabulary("Here are the terms:\n> **Graph**: a set of\nnodes and edges\n> **Edge**: a link", 10)
		assert.Equal(t, "> **Graph**: a set of nodes and edges\n\n> **Edge**: a link", got)
	})

	t.Run("unformatted output is kept", func(t *testing.T) {
		assert.Equal(t, "Graph - nodes and edges", limitVocabulary("  Graph - nodes and edges \n", 10))
	})
}

package internal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOutline(t *testing.T) {
	chat := newFakeChat().on("outline", `{"outline": "1. Graphs\n2. Shortest paths", "num_bullets": 2}`)
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	vc := testVideo()
	vc.Corrections = correctionTable
	outline, cost, err := g.GenerateOutline(context.Background(), vc)
	require.NoError(t, err)
	assert.Equal(t, "1. Graphs\n2. Shortest paths", outline.Text)
	assert.Equal(t, 2, outline.Sections)
	assert.InDelta(t, defaultCallCost, cost, 1e-9)

	req := chat.call(t, "outline")
	assert.True(t, req.JSON)
	require.Len(t, req.Messages, 3)
	assert.Contains(t, req.Messages[0].Content, "'Intro to Graphs' by CS Lectures")
	assert.Equal(t, Message{Role: RoleSystem, Content: correctionTable}, req.Messages[1])
	assert.Equal(t, RoleUser, req.Messages[2].Role)
	assert.Contains(t, req.Messages[2].Content, vc.Transcript)
}

func TestParseOutline(t *testing.T) {
	t.Run("list outline is numbered", func(t *testing.T) {
		outline, err := parseOutline(`{"outline": ["Graphs", " Shortest paths "], "num_bullets": 2}`)
		require.NoError(t, err)
		assert.Equal(t, "1. Graphs\n2. Shortest paths", outline.Text)
	})

	t.Run("fenced response", func(t *testing.T) {
		outline, err := parseOutline("```json\n{\"outline\": \"1. Only\", \"num_bullets\": 1}\n```")
		require.NoError(t, err)
		assert.Equal(t, 1, outline.Sections)
	})

	t.Run("nested items are not sections", func(t *testing.T) {
		outline, err := parseOutline(`{"outline": "1. Graphs\n   - nodes\n   - edges\n2. Paths", "num_bullets": 2}`)
		require.NoError(t, err)
		assert.Equal(t, 2, outline.Sections)
	})

	t.Run("free-form outline within the limit", func(t *testing.T) {
		outline, err := parseOutline(`{"outline": "Graphs, then paths", "num_bullets": 2}`)
		require.NoError(t, err)
		assert.Equal(t, 2, outline.Sections)
	})

	malformed := map[string]string{
		"not json":            "here is your outline: 1. Graphs",
		"missing num_bullets": `{"outline": "1. Graphs"}`,
		"zero sections":       `{"outline": "1. Graphs", "num_bullets": 0}`,
		"negative sections":   `{"outline": "1. Graphs", "num_bullets": -2}`,
		"missing outline":     `{"num_bullets": 2}`,
		"empty outline":       `{"outline": "  ", "num_bullets": 2}`,
		"empty list":          `{"outline": [], "num_bullets": 2}`,
		"number outline":      `{"outline": 42, "num_bullets": 2}`,
		"huge count":          `{"outline": "1. A\n2. B", "num_bullets": 9223372036854775807}`,
		"above the limit":     `{"outline": "Graphs and paths", "num_bullets": 51}`,
		"more than the items": `{"outline": "1. A\n2. B", "num_bullets": 40}`,
		"more than the list":  `{"outline": ["A", "B"], "num_bullets": 3}`,
	}
	for name, content := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := parseOutline(content)
			assert.ErrorIs(t, err, ErrMalformedOutline)
		})
	}
}

func TestGenerateOutline_MalformedKeepsCost(t *testing.T) {
	chat := newFakeChat().on("outline", `{"outline": "1. Graphs", "num_bullets": 0}`)
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	outline, cost, err := g.GenerateOutline(context.Background(), testVideo())
	assert.ErrorIs(t, err, ErrMalformedOutline)
	assert.Nil(t, outline)
	assert.InDelta(t, defaultCallCost, cost, 1e-9)
}

func TestCountOutlineItems(t *testing.T) {
	assert.Equal(t, 3, countOutlineItems("1. A\n2) B\n- C"))
	assert.Equal(t, 1, countOutlineItems("1. A\n  1.1 nested\n  - nested"))
	assert.Equal(t, 0, countOutlineItems("## Heading\nprose"))
}

func TestGenerateOutline_OversizedCountStopsBeforeSections(t *testing.T) {
	chat := newFakeChat().on("outline", `{"outline": "1. A\n2. B", "num_bullets": 9223372036854775807}`)
	g := newTestGenerator(t, chat, DefaultGeneratorOptions())

	_, _, err := g.GenerateOutline(context.Background(), testVideo())
	require.ErrorIs(t, err, ErrMalformedOutline)
	assert.Equal(t, []string{"outline"}, chat.names())
}

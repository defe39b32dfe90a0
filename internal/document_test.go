package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "Go_ The Good_Bad _Ugly_ _ Part 1", SanitizeFileName(`Go: The Good/Bad "Ugly" | Part 1`))
	assert.Equal(t, "a_b_c_d_e_f", SanitizeFileName(`a\b*c?d<e>f`))
	assert.Equal(t, "Plain title", SanitizeFileName("Plain title"))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "Q_A.md", NoteFileName("Q/A"))
	assert.Equal(t, "RE_Q_A.md", FollowUpFileName("Q/A"))
	assert.Equal(t, "Q_A_transcript.txt", TranscriptFileName("Q/A"))
}

func TestAssembleDocument(t *testing.T) {
	sections := []SectionSummary{
		{Index: 1, Content: "## First\n\nOne"},
		{Index: 2, Content: "## Second\n\nTwo"},
	}
	doc := AssembleDocument("Intro to Graphs", "dQw4w9WgXcQ", " ## TL;DR\nShort. ", "> **Graph**: nodes", sections)

	assert.True(t, strings.HasPrefix(doc, "# Intro to Graphs\n\n<iframe"))
	assert.Contains(t, doc, `src="https://www.youtube.com/embed/dQw4w9WgXcQ"`)

	order := []string{"# Intro to Graphs", "<iframe", "## TL;DR\nShort.", "## Key Vocabulary\n\n> **Graph**: nodes", "## First\n\nOne\n\n## Second\n\nTwo"}
	last := -1
	for _, part := range order {
		idx := strings.Index(doc, part)
		require.GreaterOrEqual(t, idx, 0, "missing %q", part)
		assert.Greater(t, idx, last, "%q out of order", part)
		last = idx
	}
	assert.True(t, strings.HasSuffix(doc, "Two\n"))
}

func TestNotesWriter(t *testing.T) {
	dir := t.TempDir()
	w := NewNotesWriter(filepath.Join(dir, "notes"), filepath.Join(dir, "transcripts"))

	path, err := w.SaveNotes("Q/A: Graphs", "# notes", "the transcript")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes", "Q_A_ Graphs.md"), path)

	transcript, err := os.ReadFile(filepath.Join(dir, "transcripts", "Q_A_ Graphs_transcript.txt"))
	require.NoError(t, err)
	assert.Equal(t, "the transcript", string(transcript))

	notes, err := w.ReadNotes("Q/A: Graphs")
	require.NoError(t, err)
	assert.Equal(t, "# notes", notes)

	followUp, err := w.SaveFollowUp("Q/A: Graphs", "# RE: Q/A: Graphs\n\nbody\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes", "RE_Q_A_ Graphs.md"), followUp)

	_, err = w.ReadNotes("never generated")
	assert.Error(t, err)
}

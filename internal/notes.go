package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

// NotesWriter saves generated documents and transcripts to disk
type NotesWriter struct {
	notesDir       string
	transcriptsDir string
}

// NewNotesWriter creates a writer for the given directories
func NewNotesWriter(notesDir, transcriptsDir string) *NotesWriter {
	return &NotesWriter{notesDir: notesDir, transcriptsDir: transcriptsDir}
}

// NotesDir returns the directory notes are written to
func (w *NotesWriter) NotesDir() string {
	return w.notesDir
}

// SaveNotes writes the notes document and the transcript.
// It returns the path of the notes file.
func (w *NotesWriter) SaveNotes(title, document, transcript string) (string, error) {
	if err := EnsureDirs(w.notesDir, w.transcriptsDir); err != nil {
		return "", fmt.Errorf("creating output directories: %w", err)
	}

	notePath := filepath.Join(w.notesDir, NoteFileName(title))
	if err := os.WriteFile(notePath, []byte(document), 0644); err != nil {
		return "", fmt.Errorf("saving notes: %w", err)
	}

	transcriptPath := filepath.Join(w.transcriptsDir, TranscriptFileName(title))
	if err := os.WriteFile(transcriptPath, []byte(transcript), 0644); err != nil {
		return "", fmt.Errorf("saving transcript: %w", err)
	}

	return notePath, nil
}

// SaveFollowUp writes a follow-up document next to the notes
func (w *NotesWriter) SaveFollowUp(title, content string) (string, error) {
	if err := EnsureDirs(w.notesDir); err != nil {
		return "", fmt.Errorf("creating notes directory: %w", err)
	}

	path := filepath.Join(w.notesDir, FollowUpFileName(title))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("saving follow-up: %w", err)
	}
	return path, nil
}

// ReadNotes loads previously generated notes for a title
func (w *NotesWriter) ReadNotes(title string) (string, error) {
	data, err := os.ReadFile(filepath.Join(w.notesDir, NoteFileName(title)))
	if err != nil {
		return "", fmt.Errorf("reading notes: %w", err)
	}
	return string(data), nil
}

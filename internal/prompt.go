package internal

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Prompt template names
const (
	PromptCorrectionsSystem      = "corrections_system"
	PromptCorrectionsUser        = "corrections_user"
	PromptCorrectionsTableSystem = "corrections_table_system"
	PromptCorrectionsTableUser   = "corrections_table_user"
	PromptOutlineSystem          = "outline_system"
	PromptOutlineUser            = "outline_user"
	PromptSectionSystem          = "section_system"
	PromptSectionUser            = "section_user"
	PromptSectionStyle           = "section_style"
	PromptSynopsisSystem         = "synopsis_system"
	PromptSynopsisUser           = "synopsis_user"
	PromptSynopsisPunchy         = "synopsis_punchy"
	PromptVocabularySystem       = "vocabulary_system"
	PromptVocabularyUser         = "vocabulary_user"
	PromptFollowUpResonance      = "followup_resonance_system"
	PromptFollowUpInsights       = "followup_insights_system"
	PromptFollowUpUser           = "followup_user"
)

// PromptData for template injection
type PromptData struct {
	Title       string
	Channel     string
	Transcript  string
	Corrections string
	Outline     string
	Summaries   string
	Takes       string
	Findings    string
	Index       int
}

// PromptManager renders the embedded prompt templates. A file with the same
// name in the override directory replaces the embedded one.
type PromptManager struct {
	templates   *template.Template
	overrideDir string
}

// NewPromptManager parses every prompt template
func NewPromptManager(overrideDir string) (*PromptManager, error) {
	paths, err := fs.Glob(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("listing prompt templates: %w", err)
	}

	root := template.New("prompts").Option("missingkey=error")
	for _, p := range paths {
		name := strings.TrimSuffix(path.Base(p), ".tmpl")

		content, err := promptFS.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading prompt template %s: %w", name, err)
		}
		if overrideDir != "" {
			override := filepath.Join(overrideDir, name+".tmpl")
			if FileExists(override) {
				if content, err = os.ReadFile(override); err != nil {
					return nil, fmt.Errorf("reading prompt override %s: %w", override, err)
				}
			}
		}

		if _, err := root.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parsing prompt template %s: %w", name, err)
		}
	}

	return &PromptManager{templates: root, overrideDir: overrideDir}, nil
}

// MustPromptManager returns the embedded templates without overrides
func MustPromptManager() *PromptManager {
	pm, err := NewPromptManager("")
	if err != nil {
		panic(err)
	}
	return pm
}

// Render executes the named template
func (pm *PromptManager) Render(name string, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := pm.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// Names lists the available template names
func (pm *PromptManager) Names() []string {
	var names []string
	for _, t := range pm.templates.Templates() {
		if t.Name() != "prompts" {
			names = append(names, t.Name())
		}
	}
	return names
}

package internal

import (
	"fmt"
	"strings"
)

var fileNameReplacer = strings.NewReplacer(
	":", "_", "/", "_", `\`, "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeFileName replaces characters that are unsafe in file names
func SanitizeFileName(title string) string {
	return fileNameReplacer.Replace(title)
}

// NoteFileName is the markdown file name for a video's notes
func NoteFileName(title string) string {
	return SanitizeFileName(title) + ".md"
}

// FollowUpFileName is the markdown file name for a follow-up document
func FollowUpFileName(title string) string {
	return "RE_" + SanitizeFileName(title) + ".md"
}

// TranscriptFileName is the text file name for a video's transcript
func TranscriptFileName(title string) string {
	return SanitizeFileName(title) + "_transcript.txt"
}

// AssembleDocument builds the final notes: title, embedded video, synopsis,
// vocabulary and the section summaries in index order
func AssembleDocument(title, videoID, synopsis, vocabulary string, sections []SectionSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, `<iframe width="560" height="315" src="%s" title="YouTube video player" frameborder="0" allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture; web-share" allowfullscreen></iframe>`, EmbedURL(videoID))
	b.WriteString("\n\n")

	if synopsis = strings.TrimSpace(synopsis); synopsis != "" {
		b.WriteString(synopsis)
		b.WriteString("\n\n")
	}

	b.WriteString("## Key Vocabulary\n\n")
	if vocabulary = strings.TrimSpace(vocabulary); vocabulary != "" {
		b.WriteString(vocabulary)
		b.WriteString("\n\n")
	}

	b.WriteString(CombineSections(sections))
	b.WriteString("\n")

	return b.String()
}

package internal

import "context"

// Placeholder metadata values
const (
	UnknownTitle         = "Unknown Title"
	UnknownChannel       = "Unknown Channel"
	ErrorFetchingTitle   = "Error Fetching Title"
	ErrorFetchingChannel = "Error Fetching Channel"
)

// VideoMetadata contains the YouTube video details used in prompts and documents
type VideoMetadata struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
}

// TranscriptSource fetches the caption text of a video
type TranscriptSource interface {
	Transcript(ctx context.Context, videoID string) (string, error)
}

// MetadataSource fetches video details. It never fails; missing values
// are reported with placeholders.
type MetadataSource interface {
	Metadata(ctx context.Context, videoID string) VideoMetadata
}

// Stage names a step of the notes pipeline for progress reporting
type Stage string

const (
	StageFetch       Stage = "Fetching transcript and details"
	StageCorrections Stage = "Checking transcription errors"
	StageOutline     Stage = "Generating outline"
	StageSections    Stage = "Summarizing sections"
	StageSynopsis    Stage = "Writing synopsis and vocabulary"
	StageFollowUp    Stage = "Writing follow-up"
	StageSave        Stage = "Saving notes"
)

// NotesResult is the outcome of a full pipeline run
type NotesResult struct {
	VideoID     string            `json:"video_id"`
	Title       string            `json:"title"`
	Channel     string            `json:"channel"`
	Document    string            `json:"summary"`
	Corrections *CorrectionReport `json:"transcription_errors"`
	Transcript  string            `json:"transcription"`
	Outline     *Outline          `json:"outline"`
	Sections    []SectionSummary  `json:"sections"`
	Cost        float64           `json:"cost"`
	FileName    string            `json:"file_name"`
	NotePath    string            `json:"note_path,omitempty"`
}

// FollowUpResult is the outcome of the follow-up stage
type FollowUpResult struct {
	VideoID  string  `json:"video_id"`
	Title    string  `json:"title"`
	Content  string  `json:"follow_up"`
	Cost     float64 `json:"cost"`
	FileName string  `json:"file_name"`
	NotePath string  `json:"note_path,omitempty"`
}

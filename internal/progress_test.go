package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingBar struct {
	descriptions []string
	finished     int
}

func (r *recordingBar) Describe(description string) {
	r.descriptions = append(r.descriptions, description)
}

func (r *recordingBar) Finish() {
	r.finished++
}

func TestStageReporter(t *testing.T) {
	bar := &recordingBar{}
	report := StageReporter(bar)
	report(StageFetch)
	report(StageSections)

	assert.Equal(t, []string{"Fetching transcript and details...", "Summarizing sections..."}, bar.descriptions)
}

func TestQuietSpinner(t *testing.T) {
	bar := NewUIManager(true).NewSpinner("working")
	assert.IsType(t, &SilentProgressBar{}, bar)
	bar.Describe("still working")
	bar.Finish()
}

func TestVisibleSpinnerFinishIsIdempotent(t *testing.T) {
	bar := NewUIManager(false).NewSpinner("working")
	bar.Describe("still working")
	bar.Finish()
	assert.NotPanics(t, bar.Finish)
}

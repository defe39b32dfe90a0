package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = "1\r\n00:00:00,000 --> 00:00:02,000\r\ntoday we talk about\r\n\r\n" +
	"2\r\n00:00:02,000 --> 00:00:04,000\r\ntoday we talk about\r\ngraphs\r\n\r\n" +
	"3\r\n00:00:04,000 --> 00:00:06,000\r\nand dykstra's algorithm\r\n\r\n"

func TestParseSRT(t *testing.T) {
	got := parseSRT(sampleSRT)
	assert.Equal(t, []string{
		"today we talk about",
		"today we talk about",
		"graphs",
		"and dykstra's algorithm",
	}, got)

	assert.Empty(t, parseSRT(""))
	assert.Empty(t, parseSRT("1\n00:00:00,000 --> 00:00:01,000\n"))
}

func TestSRTToText(t *testing.T) {
	assert.Equal(t, "today we talk about graphs and dykstra's algorithm", srtToText(sampleSRT))
}

func TestRemoveDuplicates(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, removeDuplicates([]string{"hello", "hello", "world"}))
	assert.Equal(t, []string{"hello there"}, removeDuplicates([]string{"hello there", "hello"}))
	assert.Equal(t, []string{"a", "b", "a"}, removeDuplicates([]string{"a", "b", "a"}))
	assert.Empty(t, removeDuplicates(nil))
}

func TestExtractSubtitleInfo(t *testing.T) {
	assert.True(t, extractSubtitleInfo(map[string]any{"subtitles": map[string]any{"en": []any{}}}))
	assert.True(t, extractSubtitleInfo(map[string]any{
		"subtitles":          map[string]any{},
		"automatic_captions": map[string]any{"en": []any{}},
	}))
	assert.False(t, extractSubtitleInfo(map[string]any{"subtitles": map[string]any{}}))
	assert.False(t, extractSubtitleInfo(map[string]any{"subtitles": nil}))
	assert.False(t, extractSubtitleInfo(map[string]any{}))
}

func TestYouTube_EnsureInstalledRetriesAfterFailure(t *testing.T) {
	yt := NewYouTube(t.TempDir(), "en", nil)
	calls := 0
	yt.install = func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("connection reset")
		}
		return nil
	}

	err := yt.ensureInstalled(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	require.NoError(t, yt.ensureInstalled(context.Background()))
	require.NoError(t, yt.ensureInstalled(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestYouTube_EnsureInstalledIgnoresCallerCancellation(t *testing.T) {
	yt := NewYouTube(t.TempDir(), "en", nil)
	var installErr error
	yt.install = func(ctx context.Context) error {
		installErr = ctx.Err()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, yt.ensureInstalled(ctx))
	assert.NoError(t, installErr)
}

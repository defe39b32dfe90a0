package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrNoTranscript is returned when a video has no captions to fetch.
// It is terminal and never retried.
var ErrNoTranscript = errors.New("no transcript available")

// RetryConfig controls the bounded fixed-delay retry used for page and transcript fetches
type RetryConfig struct {
	Attempts int
	Delay    time.Duration

	// Sleep waits between attempts; nil uses a timer that honours ctx
	Sleep func(ctx context.Context, d time.Duration) error
	// Terminal reports errors that must not be retried
	Terminal func(err error) bool
}

// DefaultRetryConfig is three attempts two seconds apart
var DefaultRetryConfig = RetryConfig{
	Attempts: 3,
	Delay:    2 * time.Second,
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RetryDo calls fn up to rc.Attempts times with rc.Delay between attempts.
// Terminal errors and context cancellation return immediately.
func RetryDo[T any](ctx context.Context, rc RetryConfig, logger *slog.Logger, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := max(rc.Attempts, 1)
	sleep := rc.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger = orDiscard(logger)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if rc.Terminal != nil && rc.Terminal(err) {
			return zero, err
		}

		if attempt < attempts {
			logger.Debug("retrying",
				slog.Int("attempt", attempt),
				slog.Duration("wait", rc.Delay),
				slog.Any("error", err))
			if err := sleep(ctx, rc.Delay); err != nil {
				return zero, err
			}
		}
	}
	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// RetryingTranscripts wraps a TranscriptSource with bounded retry.
// ErrNoTranscript is passed through on the first attempt.
type RetryingTranscripts struct {
	source TranscriptSource
	retry  RetryConfig
	logger *slog.Logger
}

// NewRetryingTranscripts creates a retrying transcript source
func NewRetryingTranscripts(source TranscriptSource, retry RetryConfig, logger *slog.Logger) *RetryingTranscripts {
	if retry.Terminal == nil {
		retry.Terminal = func(err error) bool { return errors.Is(err, ErrNoTranscript) }
	}
	return &RetryingTranscripts{source: source, retry: retry, logger: orDiscard(logger)}
}

// Transcript fetches the transcript for videoID
func (r *RetryingTranscripts) Transcript(ctx context.Context, videoID string) (string, error) {
	return RetryDo(ctx, r.retry, r.logger.With(slog.String("video_id", videoID)),
		func(ctx context.Context) (string, error) {
			return r.source.Transcript(ctx, videoID)
		})
}

// TranscriptExplanation turns a transcript error into the text shown in place of a transcript
func TranscriptExplanation(err error) string {
	if errors.Is(err, ErrNoTranscript) {
		return "No transcription available for this video."
	}
	return fmt.Sprintf("Error fetching transcription: %v", err)
}

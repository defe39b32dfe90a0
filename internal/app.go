package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// App holds the application state and dependencies
type App struct {
	source    TranscriptSource
	retry     RetryConfig
	metadata  MetadataSource
	generator *Generator
	writer    *NotesWriter
	config    *Config
	logger    *slog.Logger
	progress  func(Stage)

	transcripts TranscriptSource
}

// AppOption customizes App creation
type AppOption func(*App)

// WithTranscriptSource sets the transcript source; it is still wrapped with retry
func WithTranscriptSource(source TranscriptSource) AppOption {
	return func(a *App) {
		a.source = source
	}
}

// WithMetadataSource sets the video details source
func WithMetadataSource(metadata MetadataSource) AppOption {
	return func(a *App) {
		a.metadata = metadata
	}
}

// WithChatClient sets the LLM client used by every stage
func WithChatClient(client ChatClient) AppOption {
	return func(a *App) {
		ai := NewAI(client, a.config.ModelPrices, a.config.LLMTimeout, a.config.LLMRequestsPerSecond, a.logger)
		a.generator = NewGenerator(ai, a.generator.prompts, a.generator.opts, a.logger)
	}
}

// WithNotesWriter sets where notes are saved
func WithNotesWriter(writer *NotesWriter) AppOption {
	return func(a *App) {
		a.writer = writer
	}
}

// WithRetry sets the transcript retry policy
func WithRetry(retry RetryConfig) AppOption {
	return func(a *App) {
		a.retry = retry
	}
}

// WithProgress registers a callback invoked as the pipeline enters each stage
func WithProgress(progress func(Stage)) AppOption {
	return func(a *App) {
		a.progress = progress
	}
}

// NewApp initializes the application
func NewApp(config *Config, logger *slog.Logger, options ...AppOption) (*App, error) {
	logger = orDiscard(logger)

	prompts, err := NewPromptManager(config.PromptsDir)
	if err != nil {
		return nil, err
	}

	ai := NewAIWithKey(config.OpenAIAPIKey, config.ModelPrices, config.LLMTimeout, config.LLMRequestsPerSecond, logger)
	retry := RetryConfig{Attempts: config.RetryAttempts, Delay: config.RetryDelay}

	app := &App{
		source:    newTranscriptSource(config, logger),
		retry:     retry,
		metadata:  NewPageMetadata(retry, config.MetadataTimeout, logger),
		generator: NewGenerator(ai, prompts, config.GeneratorOptions(), logger),
		writer:    NewNotesWriter(config.NotesDir, config.TranscriptsDir),
		config:    config,
		logger:    logger,
		progress:  func(Stage) {},
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	app.transcripts = NewRetryingTranscripts(app.source, app.retry, logger)
	return app, nil
}

func newTranscriptSource(config *Config, logger *slog.Logger) TranscriptSource {
	if config.TranscriptSource == TranscriptSourceWeb {
		return NewWatchPage(strings.Split(config.SubtitleLangs, ","), logger)
	}
	return NewYouTube(config.CacheDir, config.SubtitleLangs, logger)
}

// Config returns the application configuration
func (app *App) Config() *Config {
	return app.config
}

// Writer returns the notes writer
func (app *App) Writer() *NotesWriter {
	return app.writer
}

// ResolveModel returns model, or the configured default when empty, if it has a known price
func (app *App) ResolveModel(model string) (string, error) {
	if model == "" {
		model = app.config.Model
	}
	if err := ValidateModel(model, app.generator.Prices()); err != nil {
		return "", err
	}
	return model, nil
}

// VideoDetails resolves a URL or ID and fetches its title and channel
func (app *App) VideoDetails(ctx context.Context, ref string) (string, VideoMetadata, error) {
	videoID, err := ParseVideoRef(ref)
	if err != nil {
		return "", VideoMetadata{}, err
	}
	return videoID, app.metadata.Metadata(ctx, videoID), nil
}

// Transcript fetches a video's transcript with bounded retry
func (app *App) Transcript(ctx context.Context, videoID string) (string, error) {
	return app.transcripts.Transcript(ctx, videoID)
}

// fetchVideo gets metadata and transcript concurrently
func (app *App) fetchVideo(ctx context.Context, videoID, model string) (VideoContext, error) {
	vc := VideoContext{Model: model, VideoID: videoID}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		details := app.metadata.Metadata(egCtx, videoID)
		vc.Title = details.Title
		vc.Channel = details.Channel
		return nil
	})
	eg.Go(func() error {
		transcript, err := app.transcripts.Transcript(egCtx, videoID)
		if err != nil {
			return fmt.Errorf("fetching transcript: %w", err)
		}
		vc.Transcript = transcript
		return nil
	})
	if err := eg.Wait(); err != nil {
		return VideoContext{}, err
	}
	return vc, nil
}

// TranscriptionErrors runs the error-correction stage for a video
func (app *App) TranscriptionErrors(ctx context.Context, videoID, title, model string) (*CorrectionReport, float64, error) {
	model, err := app.ResolveModel(model)
	if err != nil {
		return nil, 0, err
	}
	transcript, err := app.Transcript(ctx, videoID)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching transcript: %w", err)
	}
	if title == "" {
		title = app.metadata.Metadata(ctx, videoID).Title
	}
	vc := VideoContext{Model: model, VideoID: videoID, Title: title, Transcript: transcript}
	return app.generator.DetectTranscriptionErrors(ctx, vc)
}

// GenerateOutline runs the stages up to the outline. The cost covers the
// error-correction and outline calls.
func (app *App) GenerateOutline(ctx context.Context, videoID, model string) (*Outline, float64, error) {
	model, err := app.ResolveModel(model)
	if err != nil {
		return nil, 0, err
	}
	vc, err := app.fetchVideo(ctx, videoID, model)
	if err != nil {
		return nil, 0, err
	}

	report, cost, err := app.generator.DetectTranscriptionErrors(ctx, vc)
	if err != nil {
		return nil, cost, err
	}
	vc.Corrections = report.Text()

	outline, outlineCost, err := app.generator.GenerateOutline(ctx, vc)
	return outline, cost + outlineCost, err
}

// GenerateNotes runs the full pipeline for a URL or ID and saves the result
// when file output is enabled
func (app *App) GenerateNotes(ctx context.Context, ref, model string) (*NotesResult, error) {
	videoID, err := ParseVideoRef(ref)
	if err != nil {
		return nil, err
	}

	result, err := app.GenerateSummary(ctx, videoID, model)
	if err != nil {
		return nil, err
	}

	if app.config.WriteFiles && app.writer != nil {
		app.progress(StageSave)
		path, err := app.writer.SaveNotes(result.Title, result.Document, result.Transcript)
		if err != nil {
			app.logger.Error("saving notes", slog.String("video_id", videoID), slog.Any("error", err))
		} else {
			result.NotePath = path
		}
	}
	return result, nil
}

// GenerateSummary runs the full pipeline for a video ID without writing files
func (app *App) GenerateSummary(ctx context.Context, videoID, model string) (*NotesResult, error) {
	model, err := app.ResolveModel(model)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := app.logger.With(
		slog.String("run_id", runID),
		slog.String("video_id", videoID),
		slog.String("model", model))
	start := time.Now()
	logger.Info("starting notes pipeline")

	var total float64
	fail := func(err error) (*NotesResult, error) {
		logger.Error("notes pipeline failed", slog.Float64("cost", total), slog.Any("error", err))
		return nil, err
	}

	app.progress(StageFetch)
	vc, err := app.fetchVideo(ctx, videoID, model)
	if err != nil {
		return fail(err)
	}

	app.progress(StageCorrections)
	report, cost, err := app.generator.DetectTranscriptionErrors(ctx, vc)
	total += cost
	if err != nil {
		return fail(err)
	}
	vc.Corrections = report.Text()

	app.progress(StageOutline)
	outline, cost, err := app.generator.GenerateOutline(ctx, vc)
	total += cost
	if err != nil {
		return fail(err)
	}

	app.progress(StageSections)
	sections, err := app.generator.GenerateSections(ctx, vc, outline)
	if err != nil {
		return fail(err)
	}
	total += SumSectionCosts(sections)
	combined := CombineSections(sections)

	app.progress(StageSynopsis)
	var (
		synopsis, vocabulary         string
		synopsisCost, vocabularyCost float64
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		synopsis, synopsisCost, err = app.generator.GenerateSynopsis(egCtx, model, combined)
		return err
	})
	eg.Go(func() (err error) {
		vocabulary, vocabularyCost, err = app.generator.GenerateVocabulary(egCtx, vc, combined)
		return err
	})
	err = eg.Wait()
	total += synopsisCost + vocabularyCost
	if err != nil {
		return fail(err)
	}

	document := AssembleDocument(vc.Title, videoID, synopsis, vocabulary, sections)

	logger.Info("notes pipeline finished",
		slog.Int("sections", len(sections)),
		slog.Float64("cost", total),
		slog.Duration("took", time.Since(start)))

	return &NotesResult{
		VideoID:     videoID,
		Title:       vc.Title,
		Channel:     vc.Channel,
		Document:    document,
		Corrections: report,
		Transcript:  vc.Transcript,
		Outline:     outline,
		Sections:    sections,
		Cost:        total,
		FileName:    NoteFileName(vc.Title),
	}, nil
}

// GenerateFollowUp writes a response to the viewer's takes, re-fetching the
// transcript and corrections for the video
func (app *App) GenerateFollowUp(ctx context.Context, videoID string, takes []string, model string) (*FollowUpResult, error) {
	model, err := app.ResolveModel(model)
	if err != nil {
		return nil, err
	}

	app.progress(StageFetch)
	vc, err := app.fetchVideo(ctx, videoID, model)
	if err != nil {
		return nil, err
	}

	app.progress(StageCorrections)
	report, total, err := app.generator.DetectTranscriptionErrors(ctx, vc)
	if err != nil {
		return nil, err
	}
	vc.Corrections = report.Text()

	app.progress(StageFollowUp)
	content, cost, err := app.generator.GenerateFollowUp(ctx, vc, takes)
	total += cost
	if err != nil {
		return nil, err
	}

	title := "RE: " + vc.Title
	result := &FollowUpResult{
		VideoID:  videoID,
		Title:    title,
		Content:  content,
		Cost:     total,
		FileName: FollowUpFileName(vc.Title),
	}

	if app.config.WriteFiles && app.writer != nil {
		app.progress(StageSave)
		path, err := app.writer.SaveFollowUp(vc.Title, "# "+title+"\n\n"+content+"\n")
		if err != nil {
			app.logger.Error("saving follow-up", slog.String("video_id", videoID), slog.Any("error", err))
		} else {
			result.NotePath = path
		}
	}

	app.logger.Info("follow-up generated", slog.String("video_id", videoID), slog.Float64("cost", total))
	return result, nil
}

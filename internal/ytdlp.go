package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"
)

// YouTube fetches transcripts by downloading subtitles with yt-dlp
type YouTube struct {
	cacheDir string
	subLangs string
	logger   *slog.Logger

	install   func(ctx context.Context) error
	installMu sync.Mutex
	installed bool
}

// NewYouTube creates a new yt-dlp backed transcript source
func NewYouTube(cacheDir, subLangs string, logger *slog.Logger) *YouTube {
	if subLangs == "" {
		subLangs = "en"
	}
	return &YouTube{
		cacheDir: cacheDir,
		subLangs: subLangs,
		logger:   orDiscard(logger),
		install:  installYtDlp,
	}
}

func installYtDlp(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

// ensureInstalled resolves or downloads the yt-dlp binary. A failed install
// is retried by the next caller; the download outlives the caller's context.
func (yt *YouTube) ensureInstalled(ctx context.Context) error {
	yt.installMu.Lock()
	defer yt.installMu.Unlock()
	if yt.installed {
		return nil
	}
	if err := yt.install(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("installing yt-dlp: %w", err)
	}
	yt.installed = true
	return nil
}

// hasCaptions checks subtitle availability from yt-dlp JSON output
func (yt *YouTube) hasCaptions(ctx context.Context, videoURL string) (bool, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		if result != nil {
			yt.logger.Debug("yt-dlp metadata stderr", slog.String("stderr", result.Stderr))
		}
		return false, fmt.Errorf("extracting video info: %w", err)
	}

	var rawData map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &rawData); err != nil {
		return false, fmt.Errorf("parsing video info: %w", err)
	}
	return extractSubtitleInfo(rawData), nil
}

// Transcript downloads the video's subtitles and returns them as plain text
func (yt *YouTube) Transcript(ctx context.Context, videoID string) (string, error) {
	if err := yt.ensureInstalled(ctx); err != nil {
		return "", err
	}

	videoURL := WatchURL(videoID)
	ok, err := yt.hasCaptions(ctx, videoURL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s has no captions", ErrNoTranscript, videoID)
	}

	if err := EnsureDirs(yt.cacheDir); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}
	dir, err := os.MkdirTemp(yt.cacheDir, "subs-"+videoID+"-")
	if err != nil {
		return "", fmt.Errorf("creating subtitle directory: %w", err)
	}
	defer os.RemoveAll(dir)

	dl := ytdlp.New().
		WriteSubs().
		WriteAutoSubs().
		SubLangs(yt.subLangs).
		ConvertSubs("srt").
		NoPlaylist().
		SkipDownload().
		Output(filepath.Join(dir, "%(id)s"))

	result, err := dl.Run(ctx, videoURL)
	if err != nil {
		if result != nil {
			yt.logger.Debug("yt-dlp subtitle stderr", slog.String("stderr", result.Stderr))
		}
		return "", fmt.Errorf("downloading subtitles: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.srt"))
	if err != nil {
		return "", fmt.Errorf("listing subtitle files: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: no %s subtitles for %s", ErrNoTranscript, yt.subLangs, videoID)
	}
	slices.Sort(files)
	yt.logger.Debug("subtitle files", slog.Any("files", files))

	content, err := os.ReadFile(files[0])
	if err != nil {
		return "", fmt.Errorf("reading SRT file: %w", err)
	}
	return srtToText(string(content)), nil
}

// srtToText joins caption fragments with single spaces in temporal order
func srtToText(content string) string {
	return strings.Join(removeDuplicates(parseSRT(content)), " ")
}

// parseSRT extracts text content from SRT format
func parseSRT(content string) []string {
	var lines []string

	content = strings.ReplaceAll(content, "\r\n", "\n")
	for block := range strings.SplitSeq(content, "\n\n") {
		blockLines := strings.Split(strings.Trim(block, "\n"), "\n")
		if len(blockLines) >= 3 {
			// skip sequence number and timestamp
			for i := 2; i < len(blockLines); i++ {
				if line := strings.TrimSpace(blockLines[i]); line != "" {
					lines = append(lines, line)
				}
			}
		}
	}

	return lines
}

// removeDuplicates drops the rolling repeats auto-generated captions produce
func removeDuplicates(lines []string) []string {
	result := make([]string, 0, len(lines))
	prevLine := ""

	for _, line := range lines {
		isDuplicate := prevLine != "" && (strings.Contains(line, prevLine) || strings.Contains(prevLine, line))
		if !isDuplicate {
			result = append(result, line)
		}
		prevLine = line
	}

	return result
}

// extractSubtitleInfo extracts subtitle availability from yt-dlp JSON output
func extractSubtitleInfo(rawData map[string]any) bool {
	if subtitles, ok := rawData["subtitles"].(map[string]any); ok && len(subtitles) > 0 {
		return true
	}
	if autoCaptions, ok := rawData["automatic_captions"].(map[string]any); ok && len(autoCaptions) > 0 {
		return true
	}
	return false
}

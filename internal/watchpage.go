package internal

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultYouTubeBaseURL = "https://www.youtube.com"
	browserUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML
	ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "
)

// WatchPage fetches transcripts by reading caption tracks from the watch page
type WatchPage struct {
	client  *http.Client
	baseURL string
	langs   []string
	logger  *slog.Logger
}

// WatchPageOption configures a WatchPage
type WatchPageOption func(*WatchPage)

// WithWatchPageClient sets the HTTP client
func WithWatchPageClient(client *http.Client) WatchPageOption {
	return func(w *WatchPage) { w.client = client }
}

// WithWatchPageBaseURL points the source at a different host
func WithWatchPageBaseURL(baseURL string) WatchPageOption {
	return func(w *WatchPage) { w.baseURL = strings.TrimRight(baseURL, "/") }
}

// NewWatchPage creates a watch page transcript source
func NewWatchPage(langs []string, logger *slog.Logger, opts ...WatchPageOption) *WatchPage {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	w := &WatchPage{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultYouTubeBaseURL,
		langs:   langs,
		logger:  orDiscard(logger),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript fetches the caption text for videoID
func (w *WatchPage) Transcript(ctx context.Context, videoID string) (string, error) {
	body, err := w.get(ctx, w.baseURL+"/watch?v="+videoID)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSONObject(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return "", errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil || len(player.Captions.Renderer.CaptionTracks) == 0 {
		// bot checks and rate limits surface as unplayable pages
		if status := player.PlayabilityStatus; status != nil && status.Status != "" && status.Status != "OK" {
			return "", fmt.Errorf("watch page not playable (%s): %s", status.Status, status.Reason)
		}
		return "", fmt.Errorf("%w: %s has no caption tracks", ErrNoTranscript, videoID)
	}

	track := pickBestTrack(player.Captions.Renderer.CaptionTracks, w.langs)
	w.logger.Debug("caption track",
		slog.String("video_id", videoID),
		slog.String("lang", track.LanguageCode),
		slog.String("kind", track.Kind))

	return w.fetchTimedText(ctx, track.BaseURL)
}

func (w *WatchPage) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}

// fetchTimedText fetches a timedtext XML caption URL and joins its lines
func (w *WatchPage) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	body, err := w.get(ctx, baseURL)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	fragments := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text != "" {
			fragments = append(fragments, text)
		}
	}
	return strings.Join(fragments, " "), nil
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first track
func pickBestTrack(tracks []captionTrack, langs []string) captionTrack {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

// extractJSONObject returns the balanced JSON object at the start of b
func extractJSONObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

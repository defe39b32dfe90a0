package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// channelSelectors are tried in order; the first non-empty match wins
var channelSelectors = []struct {
	selector string
	attr     string
}{
	{`#channel-name #text`, ""},
	{`yt-formatted-string#text.ytd-channel-name`, ""},
	{`yt-formatted-string.ytd-channel-name`, ""},
	{`span[itemprop="author"] link[itemprop="name"]`, "content"},
	{`link[itemprop="name"]`, "content"},
}

// PageMetadata reads title and channel from the video's watch page
type PageMetadata struct {
	client  *http.Client
	baseURL string
	retry   RetryConfig
	logger  *slog.Logger
}

// NewPageMetadata creates a watch page metadata source
func NewPageMetadata(retry RetryConfig, timeout time.Duration, logger *slog.Logger) *PageMetadata {
	return &PageMetadata{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultYouTubeBaseURL,
		retry:   retry,
		logger:  orDiscard(logger),
	}
}

// WithBaseURL returns a copy of the source pointed at a different host
func (m *PageMetadata) WithBaseURL(baseURL string) *PageMetadata {
	cp := *m
	cp.baseURL = strings.TrimRight(baseURL, "/")
	return &cp
}

// Metadata fetches title and channel, falling back to placeholders
func (m *PageMetadata) Metadata(ctx context.Context, videoID string) VideoMetadata {
	logger := m.logger.With(slog.String("video_id", videoID))

	page, err := RetryDo(ctx, m.retry, logger, func(ctx context.Context) (string, error) {
		return m.fetch(ctx, m.baseURL+"/watch?v="+videoID)
	})
	if err != nil {
		logger.Error("fetching video details", slog.Any("error", err))
		return VideoMetadata{Title: ErrorFetchingTitle, Channel: ErrorFetchingChannel}
	}

	details := parseVideoDetails(page)
	if details.Channel == UnknownChannel {
		logger.Warn("could not find channel name using any selector", slog.Int("html_bytes", len(page)))
	}
	logger.Debug("video details", slog.String("title", details.Title), slog.String("channel", details.Channel))
	return details
}

func (m *PageMetadata) fetch(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// parseVideoDetails extracts title and channel from watch page HTML
func parseVideoDetails(page string) VideoMetadata {
	details := VideoMetadata{Title: UnknownTitle, Channel: UnknownChannel}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return details
	}

	if title, ok := doc.Find(`meta[name="title"]`).First().Attr("content"); ok && strings.TrimSpace(title) != "" {
		details.Title = strings.TrimSpace(title)
	} else if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		details.Title = strings.TrimSpace(strings.Split(title, " - YouTube")[0])
	}

	for _, cs := range channelSelectors {
		sel := doc.Find(cs.selector).First()
		if sel.Length() == 0 {
			continue
		}
		var channel string
		if cs.attr != "" {
			channel, _ = sel.Attr(cs.attr)
		} else {
			channel = sel.Text()
		}
		if channel = strings.TrimSpace(channel); channel != "" {
			details.Channel = channel
			break
		}
	}

	return details
}

package internal

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidVideoReference is returned when a URL or ID cannot be resolved to a video ID
var ErrInvalidVideoReference = errors.New("invalid YouTube URL or ID")

var (
	bareVideoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

	// Checked in order; the first capture wins.
	videoIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`v=([^&#?]+)`),
		regexp.MustCompile(`be/([^&#?]+)`),
		regexp.MustCompile(`embed/([^&#?]+)`),
	}
)

// ResolveVideoID extracts a video ID from a watch URL, short URL, embed URL or bare ID.
// The input may be percent-encoded.
func ResolveVideoID(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	if ref == "" {
		return "", false
	}

	if bareVideoIDPattern.MatchString(ref) {
		return ref, true
	}

	for _, pattern := range videoIDPatterns {
		if m := pattern.FindStringSubmatch(ref); len(m) == 2 {
			return m[1], true
		}
	}

	return "", false
}

// ParseVideoRef resolves ref or returns ErrInvalidVideoReference
func ParseVideoRef(ref string) (string, error) {
	id, ok := ResolveVideoID(ref)
	if !ok {
		return "", ErrInvalidVideoReference
	}
	return id, nil
}

// IsValidYouTubeID checks if a string looks like a valid YouTube video ID
func IsValidYouTubeID(id string) bool {
	return bareVideoIDPattern.MatchString(id)
}

// WatchURL returns the canonical watch page URL for a video
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// EmbedURL returns the embeddable player URL for a video
func EmbedURL(videoID string) string {
	return "https://www.youtube.com/embed/" + videoID
}

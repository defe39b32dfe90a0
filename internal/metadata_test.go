package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watchPageHTML = `<!DOCTYPE html>
<html><head>
<title>Intro to Graphs - YouTube</title>
<meta name="title" content="Intro to Graphs">
</head><body>
<span itemprop="author" itemscope itemtype="http://schema.org/Person">
  <link itemprop="url" href="http://www.youtube.com/@cslectures">
  <link itemprop="name" content="CS Lectures">
</span>
</body></html>`

func TestParseVideoDetails(t *testing.T) {
	tests := []struct {
		name string
		page string
		want VideoMetadata
	}{
		{
			name: "meta title and author link",
			page: watchPageHTML,
			want: VideoMetadata{Title: "Intro to Graphs", Channel: "CS Lectures"},
		},
		{
			name: "title tag fallback",
			page: `<html><head><title>Shortest Paths - YouTube</title></head><body></body></html>`,
			want: VideoMetadata{Title: "Shortest Paths", Channel: UnknownChannel},
		},
		{
			name: "rendered channel name wins",
			page: `<html><head><meta name="title" content="T"></head><body>
				<div id="channel-name"><div id="text"> Rendered Channel </div></div>
				<link itemprop="name" content="Link Channel">
			</body></html>`,
			want: VideoMetadata{Title: "T", Channel: "Rendered Channel"},
		},
		{
			name: "bare name link",
			page: `<html><body><link itemprop="name" content="Just A Link"></body></html>`,
			want: VideoMetadata{Title: UnknownTitle, Channel: "Just A Link"},
		},
		{
			name: "nothing found",
			page: `<html><body><p>consent wall</p></body></html>`,
			want: VideoMetadata{Title: UnknownTitle, Channel: UnknownChannel},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseVideoDetails(tt.page))
		})
	}
}

func TestPageMetadata_Metadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/watch", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("v"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(watchPageHTML))
	}))
	defer srv.Close()

	m := NewPageMetadata(RetryConfig{Attempts: 1}, 5*time.Second, nil).WithBaseURL(srv.URL + "/")
	got := m.Metadata(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, VideoMetadata{Title: "Intro to Graphs", Channel: "CS Lectures"}, got)
}

func TestPageMetadata_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(watchPageHTML))
	}))
	defer srv.Close()

	m := NewPageMetadata(RetryConfig{Attempts: 3, Sleep: noSleep}, 5*time.Second, nil).WithBaseURL(srv.URL)
	got := m.Metadata(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, "Intro to Graphs", got.Title)
	assert.Equal(t, int32(3), hits.Load())
}

func TestPageMetadata_FailureUsesPlaceholders(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewPageMetadata(RetryConfig{Attempts: 2, Sleep: noSleep}, 5*time.Second, nil).WithBaseURL(srv.URL)
	got := m.Metadata(context.Background(), "dQw4w9WgXcQ")
	assert.Equal(t, VideoMetadata{Title: ErrorFetchingTitle, Channel: ErrorFetchingChannel}, got)
	assert.Equal(t, int32(2), hits.Load())
}

func TestPageMetadata_WithBaseURLCopies(t *testing.T) {
	m := NewPageMetadata(DefaultRetryConfig, time.Second, nil)
	other := m.WithBaseURL("http://localhost:1234/")
	require.NotSame(t, m, other)
	assert.Equal(t, defaultYouTubeBaseURL, m.baseURL)
	assert.Equal(t, "http://localhost:1234", other.baseURL)
}

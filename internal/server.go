package internal

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// APIKeyHeader carries the shared secret on every request
const APIKeyHeader = "X-API-Key"

// Server exposes the notes pipeline over HTTP
type Server struct {
	app    *App
	apiKey string
	logger *slog.Logger
}

// NewServer creates an HTTP API server. An empty apiKey is rejected.
func NewServer(app *App, apiKey string, logger *slog.Logger) (*Server, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required - set API_KEY or api_key in config.toml")
	}
	return &Server{app: app, apiKey: apiKey, logger: orDiscard(logger)}, nil
}

type urlRequest struct {
	URL string `json:"url"`
}

type followUpRequest struct {
	VideoID string   `json:"video_id"`
	Takes   []string `json:"takes"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler returns the routed, authenticated handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /youtube_notes/full_process", s.handleFullProcess)
	mux.HandleFunc("POST /youtube_notes/generate_outline", s.handleOutline)
	mux.HandleFunc("POST /youtube_notes/generate_follow_up", s.handleFollowUp)
	mux.HandleFunc("POST /youtube_notes/video_details", s.handleVideoDetails)
	mux.HandleFunc("GET /youtube_notes/transcription", s.handleTranscription)
	mux.HandleFunc("POST /youtube_notes/transcription_errors", s.handleTranscriptionErrors)
	mux.HandleFunc("POST /youtube_notes/generate_summary", s.handleSummary)

	return s.withRequestLog(s.withAuth(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
			writeError(w, http.StatusForbidden, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.logger.Info("http request",
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("took", time.Since(start)))
	})
}

func (s *Server) handleFullProcess(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := s.app.GenerateNotes(r.Context(), req.URL, r.URL.Query().Get("model"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"video_id":             result.VideoID,
		"summary":              result.Document,
		"transcription_errors": result.Corrections.Text(),
		"transcription":        result.Transcript,
		"cost":                 result.Cost,
		"title":                result.Title,
		"file_name":            result.FileName,
	})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	videoID, ok := queryVideoID(w, r, "video_id")
	if !ok {
		return
	}
	outline, cost, err := s.app.GenerateOutline(r.Context(), videoID, r.URL.Query().Get("model"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"outline":     outline.Text,
		"num_bullets": outline.Sections,
		"cost":        cost,
	})
}

func (s *Server) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	var req followUpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	videoID, err := ParseVideoRef(req.VideoID)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if len(req.Takes) == 0 {
		writeError(w, http.StatusBadRequest, "takes must not be empty")
		return
	}
	result, err := s.app.GenerateFollowUp(r.Context(), videoID, req.Takes, r.URL.Query().Get("model"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"follow_up": result.Content,
		"cost":      result.Cost,
		"title":     result.Title,
		"file_name": result.FileName,
	})
}

func (s *Server) handleVideoDetails(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeBody(w, r, &req) {
		return
	}
	videoID, details, err := s.app.VideoDetails(r.Context(), req.URL)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"video_id": videoID,
		"details":  details,
	})
}

func (s *Server) handleTranscription(w http.ResponseWriter, r *http.Request) {
	videoID, ok := queryVideoID(w, r, "video_identifier")
	if !ok {
		return
	}
	transcript, err := s.app.Transcript(r.Context(), videoID)
	if err != nil {
		s.logger.Warn("transcript unavailable", slog.String("video_id", videoID), slog.Any("error", err))
		transcript = TranscriptExplanation(err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transcription": transcript})
}

func (s *Server) handleTranscriptionErrors(w http.ResponseWriter, r *http.Request) {
	videoID, ok := queryVideoID(w, r, "video_id")
	if !ok {
		return
	}
	q := r.URL.Query()
	report, cost, err := s.app.TranscriptionErrors(r.Context(), videoID, q.Get("video_title"), q.Get("model"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"errors": report.Findings,
		"table":  report.Text(),
		"cost":   cost,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	videoID, ok := queryVideoID(w, r, "video_id")
	if !ok {
		return
	}
	result, err := s.app.GenerateSummary(r.Context(), videoID, r.URL.Query().Get("model"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": result.Document,
		"cost":    result.Cost,
	})
}

// ErrorStatus maps pipeline errors to HTTP status codes
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidVideoReference), errors.Is(err, ErrUnknownModel):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoTranscript):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, ErrMissingAPIKey):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	status := ErrorStatus(err)
	detail := err.Error()
	if errors.Is(err, ErrNoTranscript) {
		detail = TranscriptExplanation(err)
	}
	s.logger.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	writeError(w, status, detail)
}

func queryVideoID(w http.ResponseWriter, r *http.Request, param string) (string, bool) {
	videoID, ok := ResolveVideoID(r.URL.Query().Get(param))
	if !ok {
		writeError(w, http.StatusBadRequest, ErrInvalidVideoReference.Error())
		return "", false
	}
	return videoID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

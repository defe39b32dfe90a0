package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPServer wraps the MCP server and application dependencies
type MCPServer struct {
	app       *App
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewMCPServer creates a new MCP server instance
func NewMCPServer(app *App, version string, logger *slog.Logger) *MCPServer {
	mcpServer := server.NewMCPServer(
		AppName+"-server",
		version,
		server.WithToolCapabilities(true),
	)

	s := &MCPServer{
		app:       app,
		mcpServer: mcpServer,
		logger:    orDiscard(logger),
	}

	s.registerTools()

	return s
}

// registerTools registers all available MCP tools
func (s *MCPServer) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_youtube_metadata",
		mcp.WithDescription("Get the title and channel of a YouTube video."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleGetMetadata)

	s.mcpServer.AddTool(mcp.NewTool("get_youtube_transcript",
		mcp.WithDescription("Get the existing captions of a YouTube video as plain text (free). Fails if the video has no captions."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
	), s.handleGetTranscript)

	s.mcpServer.AddTool(mcp.NewTool("generate_youtube_notes",
		mcp.WithDescription("Generate structured markdown notes for a YouTube video: TL;DR, key vocabulary and a summary of every section (paid, uses the OpenAI API). Returns the notes followed by the cost."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
		mcp.WithString("model",
			mcp.Description("OpenAI model, defaults to the configured model"),
		),
	), s.handleGenerateNotes)

	s.mcpServer.AddTool(mcp.NewTool("generate_follow_up",
		mcp.WithDescription("Write a follow-up document responding to the user's takes on a YouTube video (paid, uses the OpenAI API)."),
		mcp.WithString("url",
			mcp.Description("YouTube video URL or ID"),
			mcp.Required(),
		),
		mcp.WithString("takes",
			mcp.Description("The user's takes on the video, one per line"),
			mcp.Required(),
		),
		mcp.WithString("model",
			mcp.Description("OpenAI model, defaults to the configured model"),
		),
	), s.handleGenerateFollowUp)
}

// handleGetMetadata implements the get_youtube_metadata tool
func (s *MCPServer) handleGetMetadata(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	s.logger.Info("tool call", slog.String("tool", "get_youtube_metadata"), slog.String("url", url))

	videoID, details, err := s.app.VideoDetails(ctx, url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("metadata error", err), nil
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "Video ID: %s\n", videoID)
	fmt.Fprintf(&buf, "Title: %s\n", details.Title)
	fmt.Fprintf(&buf, "Channel: %s\n", details.Channel)

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
	}, nil
}

// handleGetTranscript implements the get_youtube_transcript tool
func (s *MCPServer) handleGetTranscript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	s.logger.Info("tool call", slog.String("tool", "get_youtube_transcript"), slog.String("url", url))

	videoID, err := ParseVideoRef(url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid video", err), nil
	}

	transcript, err := s.app.Transcript(ctx, videoID)
	if err != nil {
		s.logger.Error("transcript failed", slog.String("video_id", videoID), slog.Any("error", err))
		return mcp.NewToolResultErrorFromErr(TranscriptExplanation(err), err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(transcript)},
	}, nil
}

// handleGenerateNotes implements the generate_youtube_notes tool
func (s *MCPServer) handleGenerateNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	model := request.GetString("model", "")
	s.logger.Info("tool call", slog.String("tool", "generate_youtube_notes"), slog.String("url", url))

	result, err := s.app.GenerateNotes(ctx, url, model)
	if err != nil {
		s.logger.Error("notes failed", slog.String("url", url), slog.Any("error", err))
		return mcp.NewToolResultErrorFromErr("failed to generate notes", err), nil
	}

	text := fmt.Sprintf("%s\n---\nCost: $%.4f", result.Document, result.Cost)
	if result.NotePath != "" {
		text += "\nSaved to: " + result.NotePath
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}, nil
}

// handleGenerateFollowUp implements the generate_follow_up tool
func (s *MCPServer) handleGenerateFollowUp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url parameter is required and must be a string"), nil
	}
	takes, err := request.RequireString("takes")
	if err != nil || strings.TrimSpace(takes) == "" {
		return mcp.NewToolResultError("takes parameter is required and must be a non-empty string"), nil
	}
	model := request.GetString("model", "")
	s.logger.Info("tool call", slog.String("tool", "generate_follow_up"), slog.String("url", url))

	videoID, err := ParseVideoRef(url)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("invalid video", err), nil
	}

	result, err := s.app.GenerateFollowUp(ctx, videoID, strings.Split(takes, "\n"), model)
	if err != nil {
		s.logger.Error("follow-up failed", slog.String("video_id", videoID), slog.Any("error", err))
		return mcp.NewToolResultErrorFromErr("failed to generate follow-up", err), nil
	}

	text := fmt.Sprintf("# %s\n\n%s\n---\nCost: $%.4f", result.Title, result.Content, result.Cost)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}, nil
}

// Start starts the MCP server using the specified transport
func (s *MCPServer) Start(ctx context.Context, transport string, port int) error {
	if transport == "http" {
		httpServer := server.NewStreamableHTTPServer(s.mcpServer)
		addr := fmt.Sprintf(":%d", port)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Info("mcp http server listening", slog.String("addr", addr))
		go func() {
			<-ctx.Done()
			_ = httpServer.Shutdown(context.Background())
		}()
		return httpServer.Start(addr)
	}

	s.logger.Info("mcp stdio server starting")
	return server.ServeStdio(s.mcpServer)
}

// GetServer returns the underlying MCP server for advanced configuration
func (s *MCPServer) GetServer() *server.MCPServer {
	return s.mcpServer
}

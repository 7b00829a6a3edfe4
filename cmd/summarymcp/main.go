package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"call-summary-bot/internal/config"
	"call-summary-bot/internal/llm"
	"call-summary-bot/internal/logger"
	mcpclient "call-summary-bot/internal/mcp"
	"call-summary-bot/internal/summarizer"
	"call-summary-bot/internal/types"
)

const toolName = mcpclient.SummarizeTool

type summarizeFunc func(ctx context.Context, transcript string, durationSeconds int, displayName string) (types.ConversationSummary, error)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: optional ./config.yaml)")
	port := flag.String("port", "8081", "port for the streamable HTTP endpoint")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	complete, err := llm.New(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatal("llm client", zap.Error(err))
	}
	s := newMCPServer(summarizer.New(complete, cfg.LLM, log).Summarize, cfg.Webhook.DefaultDisplayName)

	httpServer := server.NewStreamableHTTPServer(
		s,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
	)
	log.Info("summary MCP server listening", zap.String("addr", ":"+*port+"/mcp"))
	if err := httpServer.Start(":" + *port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}

func newMCPServer(summarize summarizeFunc, defaultName string) *server.MCPServer {
	s := server.NewMCPServer(
		"call-summary",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	tool := mcp.Tool{
		Name:        toolName,
		Description: "Summarize a call transcript into topics, highlights, mood and follow-up topics",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"transcript":       map[string]any{"type": "string", "description": "Full call transcript"},
				"duration_seconds": map[string]any{"type": "integer", "description": "Call duration in seconds"},
				"display_name":     map[string]any{"type": "string", "description": "Name of the person on the call"},
			},
			Required: []string{"transcript"},
		},
	}

	s.AddTool(tool, summarizeTool(summarize, defaultName))
	return s
}

func summarizeTool(summarize summarizeFunc, defaultName string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcript, err := request.RequireString("transcript")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name := strings.TrimSpace(request.GetString("display_name", ""))
		if name == "" {
			name = defaultName
		}

		summary, err := summarize(ctx, transcript, request.GetInt("duration_seconds", 0), name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := json.Marshal(summary)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

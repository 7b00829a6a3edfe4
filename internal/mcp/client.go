package mcpclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"call-summary-bot/internal/apperrors"
	"call-summary-bot/internal/summarizer"
	"call-summary-bot/internal/types"
)

// SummarizeTool is the tool name served by cmd/summarymcp.
const SummarizeTool = "conversation.summarize"

// NewRemoteSummarizer returns a summarize func that calls SummarizeTool on the
// streamable HTTP MCP server at endpoint. Results go through the same parsing
// and defaults as a local summary, and failures are summarization errors.
func NewRemoteSummarizer(endpoint string) func(ctx context.Context, transcript string, durationSeconds int, displayName string) (types.ConversationSummary, error) {
	return func(ctx context.Context, transcript string, durationSeconds int, displayName string) (types.ConversationSummary, error) {
		text, err := Call(ctx, endpoint, SummarizeTool, map[string]interface{}{
			"transcript":       transcript,
			"duration_seconds": durationSeconds,
			"display_name":     displayName,
		})
		if err != nil {
			return types.ConversationSummary{}, apperrors.Summarization(err)
		}
		summary, err := summarizer.ParseSummary(text)
		if err != nil {
			return types.ConversationSummary{}, apperrors.Summarization(fmt.Errorf("tool result: %w", err))
		}
		return summary, nil
	}
}

// Call initializes an MCP session, calls a tool with arbitrary arguments and
// returns its concatenated text content.
func Call(ctx context.Context, endpoint string, tool string, args map[string]interface{}) (string, error) {
	c, err := mcpclient.NewStreamableHttpClient(endpoint)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if err := c.Start(ctx); err != nil {
		return "", fmt.Errorf("start mcp client: %w", err)
	}

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Request: mcp.Request{Method: string(mcp.MethodInitialize)},
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "call-summary-cli",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("initialize mcp session: %w", err)
	}

	res, err := c.CallTool(ctx, mcp.CallToolRequest{
		Request: mcp.Request{Method: string(mcp.MethodToolsCall)},
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		return "", err
	}
	if res == nil || len(res.Content) == 0 {
		return "", errors.New("empty tool result")
	}

	var parts []string
	for _, item := range res.Content {
		if v, ok := item.(mcp.TextContent); ok && v.Text != "" {
			parts = append(parts, v.Text)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no text content returned")
	}
	text := strings.Join(parts, "\n")
	if res.IsError {
		return "", fmt.Errorf("tool %s: %s", tool, text)
	}
	return text, nil
}

package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agrivaani/agrivaani/internal/composer"
	"github.com/agrivaani/agrivaani/internal/intent"
	"github.com/agrivaani/agrivaani/internal/lang"
	"github.com/agrivaani/agrivaani/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store *storage.Store
}

// NewMCPServer creates an MCP server exposing the assistant to agent hosts:
// the full classify-and-compose loop as a tool, direct snapshot tools, and
// the farming tips as a resource.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"agrivaani",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("agrivaani is an offline-first farming assistant for weather, crop, and market questions in Telangana."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("ask_assistant",
			mcp.WithDescription("Ask the farming assistant a question. Works offline from cached data."),
			mcp.WithString("question", mcp.Description("The question text, in any supported language"), mcp.Required()),
			mcp.WithString("language", mcp.Description("Response language: english, hindi, telugu, or urdu (default english)")),
		),
		mcpAskAssistant(deps),
	)

	s.AddTool(
		mcp.NewTool("get_weather",
			mcp.WithDescription("Return the cached weather snapshot for the region."),
		),
		mcpGetWeather(deps),
	)

	s.AddTool(
		mcp.NewTool("get_market_prices",
			mcp.WithDescription("Return the cached mandi price board."),
		),
		mcpGetMarketPrices(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"farm://tips",
			"Farming Tips",
			mcp.WithResourceDescription("Current farming advisory list as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceTips(deps),
	)

	return s
}

func mcpAskAssistant(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		l := lang.Parse(req.GetString("language", ""))
		topic := intent.Classify(question)
		reply := composer.Compose(topic, l, deps.Store)

		out, err := json.Marshal(map[string]string{
			"topic": topic.String(),
			"reply": reply,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal reply: %v", err)), nil
		}
		return mcpText(string(out)), nil
	}
}

func mcpGetWeather(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Store.Weather())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal weather: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetMarketPrices(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Store.MarketPrices())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal prices: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceTips(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Store.FarmingTips())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal tips: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

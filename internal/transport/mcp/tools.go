// Package mcp exposes the vault to LLM agents as Model Context Protocol tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers search_items, save_item and list_items on server.
func RegisterTools(server *mcpserver.MCPServer, h *Handlers) {
	server.AddTool(mcp.Tool{
		Name:        "search_items",
		Description: "Search the saved items vault with natural language. Filters such as type, price and dates are detected from the query.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text query, e.g. \"headphones under 3000 from last month\"",
				},
				"limit": map[string]any{
					"type":        "number",
					"description": "Maximum number of results (default: 20)",
					"default":     20,
				},
				"type": map[string]any{
					"type":        "string",
					"description": "Item type: text, link, image, gif, voice, video, product, note, social, pdf or doc",
				},
				"reason": map[string]any{
					"type":        "string",
					"description": "Intent label, e.g. \"to buy later\"",
				},
				"category": map[string]any{
					"type":        "string",
					"description": "Category or topic name",
				},
				"date_range": map[string]any{
					"type":        "string",
					"description": "Named range: today, week, month, year or all",
				},
			},
		},
	}, h.SearchItems)

	server.AddTool(mcp.Tool{
		Name:        "save_item",
		Description: "Save a link, note or snippet to the vault. Type, topic and keywords are classified automatically.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"title": map[string]any{
					"type":        "string",
					"description": "Display title",
				},
				"url": map[string]any{
					"type":        "string",
					"description": "Source URL",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "Captured text or note body",
				},
				"topics": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "User tags; the first one becomes the category",
				},
			},
			Required: []string{"title"},
		},
	}, h.SaveItem)

	server.AddTool(mcp.Tool{
		Name:        "list_items",
		Description: "List the most recently saved items.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"limit": map[string]any{
					"type":        "number",
					"description": "Maximum number of items (default: 10)",
				},
			},
		},
	}, h.ListItems)
}

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/alertr/internal/alerts"
	"github.com/mark3labs/alertr/internal/preview"
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the history tools with the MCP server.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list-alerts",
			mcp.WithDescription("List sent alerts, newest first"),
		),
		s.handleListAlerts,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get-alert",
			mcp.WithDescription("Show one sent alert as markdown, with recipient names"),
			mcp.WithString("id", mcp.Required(),
				mcp.Description("Alert id as returned by list-alerts"),
			),
		),
		s.handleGetAlert,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete-alert",
			mcp.WithDescription("Remove a sent alert from the history"),
			mcp.WithString("id", mcp.Required(),
				mcp.Description("Alert id as returned by list-alerts"),
			),
		),
		s.handleDeleteAlert,
	)
}

// handleListAlerts returns the history as a JSON array.
func (s *Server) handleListAlerts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list alerts: %v", err)), nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal alerts: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func alertID(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	args := request.GetArguments()
	if args == nil {
		return "", mcp.NewToolResultError("no arguments provided")
	}
	id, ok := args["id"].(string)
	if !ok || id == "" {
		return "", mcp.NewToolResultError("missing or empty 'id' parameter")
	}
	return id, nil
}

// handleGetAlert renders one alert with the preview template.
func (s *Server) handleGetAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := alertID(request)
	if errResult != nil {
		return errResult, nil
	}

	a, err := s.store.Get(ctx, id)
	if errors.Is(err, alerts.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("alert %s not found", id)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load alert: %v", err)), nil
	}

	md, err := preview.Build(a.Payload, s.preview)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render alert: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("id: %s\nsent: %s\n\n%s", a.ID, a.SentAt.Format("2006-01-02 15:04"), md)), nil
}

// handleDeleteAlert deletes one alert.
func (s *Server) handleDeleteAlert(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := alertID(request)
	if errResult != nil {
		return errResult, nil
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, alerts.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("alert %s not found", id)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete alert: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted alert %s", id)), nil
}

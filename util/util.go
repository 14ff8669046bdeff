package util

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
)

// ToolHandler is the legacy map-based handler signature the tool surface is
// written in. AdaptLegacyHandler lifts it to the server's signature.
type ToolHandler func(arguments map[string]interface{}) (*mcp.CallToolResult, error)

// AdaptLegacyHandler converts a map-based tool handler to the request-based
// signature the MCP server expects.
func AdaptLegacyHandler(handler ToolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handler(request.Params.Arguments)
	}
}

// ErrorGuard wraps a tool handler so panics surface as tool errors instead
// of killing the server.
func ErrorGuard(handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error(string(debug.Stack()))
				result = mcp.NewToolResultError(fmt.Sprintf("tool panicked: %v", r))
				err = nil
			}
		}()
		return handler(ctx, request)
	}
}

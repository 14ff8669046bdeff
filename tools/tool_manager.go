package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/athapong/contract-intel/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterToolManagerTool(s *server.MCPServer) {
	tool := mcp.NewTool("tool_manager",
		mcp.WithDescription("Manage MCP tools - list availability and enablement"),
		mcp.WithString("action", mcp.Required(), mcp.Description("Action to perform: list")),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(toolManagerHandler)))
}

func toolManagerHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	action, ok := arguments["action"].(string)
	if !ok {
		return mcp.NewToolResultError("action must be a string"), nil
	}

	enableTools := os.Getenv("ENABLE_TOOLS")
	toolList := strings.Split(enableTools, ",")

	switch action {
	case "list":
		response := "Available tools:\n"
		allEnabled := enableTools == ""

		tools := []struct {
			name string
			desc string
		}{
			{"tool_manager", "Tool management"},
			{"contract", "Contract analysis, risk scoring and export"},
			{"fetch", "Fetch and analyze contracts from URLs"},
			{"assistant", "Plain-language summaries, clause explanations and rewording"},
			{"clause_library", "Qdrant-backed clause similarity search"},
		}

		for _, t := range tools {
			status := "disabled"
			if allEnabled || contains(toolList, t.name) {
				status = "enabled"
			}
			response += fmt.Sprintf("- %s (%s) [%s]\n", t.name, t.desc, status)
		}
		response += "\nSet ENABLE_TOOLS to a comma-separated list to restrict the surface; empty enables everything."

		return mcp.NewToolResultText(response), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action: %s", action)), nil
	}
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == item {
			return true
		}
	}
	return false
}

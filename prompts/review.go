package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterReviewPrompts(s *server.MCPServer) {
	prompt := mcp.NewPrompt("contract_review",
		mcp.WithPromptDescription("Review an analyzed contract and walk through its risks"),
		mcp.WithArgument("analysis_id", mcp.ArgumentDescription("Analysis ID returned by contract_analyze")),
	)
	s.AddPrompt(prompt, contractReviewHandler)
}

func contractReviewHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	analysisID := request.Params.Arguments["analysis_id"]

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Contract review for analysis %s", analysisID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Use contract_risk and contract_entities on analysis %s, then contract_summary. Walk through each high severity finding, explain concerning clauses with contract_explain_clause and propose fixes with contract_suggest_alternatives.", analysisID),
				},
			},
		},
	}, nil
}

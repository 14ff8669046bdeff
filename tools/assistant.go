package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/athapong/contract-intel/assistant"
	"github.com/athapong/contract-intel/services"
	"github.com/athapong/contract-intel/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var defaultAssistant = sync.OnceValue(func() *assistant.Assistant {
	return assistant.New(services.DefaultGeminiClient())
})

func RegisterAssistantTools(s *server.MCPServer) {
	summaryTool := mcp.NewTool("contract_summary",
		mcp.WithDescription("Generate a plain-language business summary of a stored contract analysis"),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("Analysis ID returned by contract_analyze")),
	)

	explainTool := mcp.NewTool("contract_explain_clause",
		mcp.WithDescription("Explain a contract clause in plain language"),
		mcp.WithString("clause", mcp.Required(), mcp.Description("The clause text to explain")),
		mcp.WithString("context", mcp.Description("Surrounding context for the clause")),
	)

	alternativesTool := mcp.NewTool("contract_suggest_alternatives",
		mcp.WithDescription("Suggest more balanced wordings for an unfavorable clause"),
		mcp.WithString("clause", mcp.Required(), mcp.Description("The concerning clause text")),
		mcp.WithString("concern", mcp.Required(), mcp.Description("Why the clause is concerning")),
	)

	classifyTool := mcp.NewTool("contract_classify",
		mcp.WithDescription("Classify the type of a stored contract (employment, NDA, lease, ...)"),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("Analysis ID returned by contract_analyze")),
	)

	s.AddTool(summaryTool, util.ErrorGuard(util.AdaptLegacyHandler(summaryHandler)))
	s.AddTool(explainTool, util.ErrorGuard(util.AdaptLegacyHandler(explainClauseHandler)))
	s.AddTool(alternativesTool, util.ErrorGuard(util.AdaptLegacyHandler(suggestAlternativesHandler)))
	s.AddTool(classifyTool, util.ErrorGuard(util.AdaptLegacyHandler(classifyHandler)))
}

func summaryHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	analysis, errResult := loadAnalysis(arguments)
	if errResult != nil {
		return errResult, nil
	}

	summary, err := defaultAssistant().PlainSummary(context.Background(), analysis)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate summary: %v", err)), nil
	}

	return mcp.NewToolResultText(summary), nil
}

func explainClauseHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	clause, ok := arguments["clause"].(string)
	if !ok || clause == "" {
		return mcp.NewToolResultError("clause must be a non-empty string"), nil
	}
	clauseContext, _ := arguments["context"].(string)

	explanation, err := defaultAssistant().ExplainClause(context.Background(), clause, clauseContext)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to explain clause: %v", err)), nil
	}

	return mcp.NewToolResultText(explanation.Explanation), nil
}

func suggestAlternativesHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	clause, ok := arguments["clause"].(string)
	if !ok || clause == "" {
		return mcp.NewToolResultError("clause must be a non-empty string"), nil
	}
	concern, ok := arguments["concern"].(string)
	if !ok || concern == "" {
		return mcp.NewToolResultError("concern must be a non-empty string"), nil
	}

	alternatives, err := defaultAssistant().SuggestAlternatives(context.Background(), clause, concern)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to suggest alternatives: %v", err)), nil
	}

	payload, err := json.MarshalIndent(alternatives, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode alternatives: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func classifyHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	analysis, errResult := loadAnalysis(arguments)
	if errResult != nil {
		return errResult, nil
	}

	classification, err := defaultAssistant().ClassifyContractType(context.Background(), analysis.Document.Text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to classify contract: %v", err)), nil
	}

	result := fmt.Sprintf("%s (confidence %.2f)", classification.Category, classification.Confidence)
	return mcp.NewToolResultText(result), nil
}

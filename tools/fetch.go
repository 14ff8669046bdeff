package tools

import (
	"context"
	"fmt"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/athapong/contract-intel/services"
	"github.com/athapong/contract-intel/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func RegisterFetchTool(s *server.MCPServer) {
	tool := mcp.NewTool("contract_fetch",
		mcp.WithDescription("Fetch a contract published at an HTTP/HTTPS URL, convert it to plain text and analyze it like an uploaded document."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The complete HTTP/HTTPS URL of the contract page"),
		),
	)

	s.AddTool(tool, util.ErrorGuard(util.AdaptLegacyHandler(fetchHandler)))
}

func fetchHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	url, ok := arguments["url"].(string)
	if !ok {
		return mcp.NewToolResultError("url must be a string"), nil
	}

	resp, err := services.DefaultHttpClient().Get(url)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch URL: %s", err)), nil
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read response body: %s", err)), nil
	}

	// Markdown keeps the headings and numbering section detection relies on
	mdContent, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to convert HTML to Markdown: %v", err)), nil
	}

	ctx := context.Background()
	analysis, err := AnalysisPipeline().Analyze(ctx, url, "text/markdown", []byte(mdContent))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	if err := ReportStore().Save(ctx, analysis); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store analysis: %v", err)), nil
	}

	result := fmt.Sprintf("Analysis %s completed for %s\nRisk score: %d/100 (%s)",
		analysis.ID, url, analysis.Risk.Score, analysis.Risk.Level)
	return mcp.NewToolResultText(result), nil
}

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/athapong/contract-intel/pkg/contract/metrics"
	"github.com/athapong/contract-intel/pkg/contract/nlp"
	"github.com/athapong/contract-intel/pkg/contract/parsers"
	"github.com/athapong/contract-intel/pkg/contract/risk"
	"github.com/athapong/contract-intel/pkg/contract/storage"
	"github.com/athapong/contract-intel/pkg/contract/visualizer"
	"github.com/athapong/contract-intel/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// AnalysisPipeline returns the shared analyzer chain used by every surface.
var AnalysisPipeline = sync.OnceValue(func() *contract.AnalysisPipeline {
	return contract.DefaultPipeline(
		parsers.ForContentType,
		nlp.NewEngine(),
		risk.NewAnalyzer(),
	)
})

// ReportStore returns the shared report store. Set CONTRACT_REPORT_DIR to
// persist analyses on disk; by default they live for the session only.
var ReportStore = sync.OnceValue(func() storage.ReportStore {
	if dir := os.Getenv("CONTRACT_REPORT_DIR"); dir != "" {
		return storage.NewJSONReportStore(dir)
	}
	return storage.NewMemoryReportStore()
})

func RegisterContractTools(s *server.MCPServer) {
	analyzeTool := mcp.NewTool("contract_analyze",
		mcp.WithDescription("Analyze a contract document: extract entities and clauses, flag vague language and compute a risk score. Accepts a local file path or inline text."),
		mcp.WithString("file_path", mcp.Description("Path to the contract file (pdf, docx, html, txt)")),
		mcp.WithString("text", mcp.Description("Inline contract text, used when file_path is not given")),
	)

	riskTool := mcp.NewTool("contract_risk",
		mcp.WithDescription("Return the risk assessment and compliance checks of a stored analysis"),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("Analysis ID returned by contract_analyze")),
	)

	entitiesTool := mcp.NewTool("contract_entities",
		mcp.WithDescription("Return the extracted entities and clauses of a stored analysis"),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("Analysis ID returned by contract_analyze")),
	)

	exportTool := mcp.NewTool("contract_export",
		mcp.WithDescription("Export a stored analysis as a JSON report or HTML dashboard"),
		mcp.WithString("analysis_id", mcp.Required(), mcp.Description("Analysis ID returned by contract_analyze")),
		mcp.WithString("output_path", mcp.Required(), mcp.Description("Destination file path; .html produces a dashboard, anything else a JSON report")),
	)

	listTool := mcp.NewTool("contract_list",
		mcp.WithDescription("List all stored contract analyses"),
	)

	s.AddTool(analyzeTool, util.ErrorGuard(util.AdaptLegacyHandler(contractAnalyzeHandler)))
	s.AddTool(riskTool, util.ErrorGuard(util.AdaptLegacyHandler(contractRiskHandler)))
	s.AddTool(entitiesTool, util.ErrorGuard(util.AdaptLegacyHandler(contractEntitiesHandler)))
	s.AddTool(exportTool, util.ErrorGuard(util.AdaptLegacyHandler(contractExportHandler)))
	s.AddTool(listTool, util.ErrorGuard(util.AdaptLegacyHandler(contractListHandler)))
}

func contractAnalyzeHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ctx := context.Background()

	var name, contentType string
	var content []byte

	if filePath, ok := arguments["file_path"].(string); ok && filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read file: %v", err)), nil
		}

		_, ct, err := parsers.ForFileName(filePath)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, contentType, content = filePath, ct, data
	} else if text, ok := arguments["text"].(string); ok && text != "" {
		name, contentType, content = "inline", "text/plain", []byte(text)
	} else {
		return mcp.NewToolResultError("either file_path or text must be provided"), nil
	}

	analysis, err := AnalysisPipeline().Analyze(ctx, name, contentType, content)
	if err != nil {
		metrics.ParseErrors.WithLabelValues(contentType).Inc()
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	if err := ReportStore().Save(ctx, analysis); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store analysis: %v", err)), nil
	}
	metrics.RiskScoreDistribution.Observe(float64(analysis.Risk.Score))

	result := fmt.Sprintf("Analysis %s completed for %s\nRisk score: %d/100 (%s)\nEntities: %d, Clauses: %d, Findings: %d, Ambiguities: %d",
		analysis.ID, name,
		analysis.Risk.Score, analysis.Risk.Level,
		len(analysis.Entities), len(analysis.Clauses),
		len(analysis.Risk.Findings()), len(analysis.Ambiguities))
	return mcp.NewToolResultText(result), nil
}

func contractRiskHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	analysis, errResult := loadAnalysis(arguments)
	if errResult != nil {
		return errResult, nil
	}

	payload, err := json.MarshalIndent(map[string]interface{}{
		"risk":       analysis.Risk,
		"compliance": analysis.Compliance,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode risk assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func contractEntitiesHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	analysis, errResult := loadAnalysis(arguments)
	if errResult != nil {
		return errResult, nil
	}

	payload, err := json.MarshalIndent(map[string]interface{}{
		"entities":    analysis.Entities,
		"clauses":     analysis.Clauses,
		"ambiguities": analysis.Ambiguities,
		"keywords":    analysis.Keywords,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode entities: %v", err)), nil
	}

	return mcp.NewToolResultText(string(payload)), nil
}

func contractExportHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	analysis, errResult := loadAnalysis(arguments)
	if errResult != nil {
		return errResult, nil
	}

	outputPath, ok := arguments["output_path"].(string)
	if !ok || outputPath == "" {
		return mcp.NewToolResultError("output_path must be a non-empty string"), nil
	}

	if isHTMLPath(outputPath) {
		viz := visualizer.NewHTMLVisualizer(outputPath)
		if err := viz.Visualize(analysis); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to write dashboard: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Dashboard written to %s", outputPath)), nil
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode analysis: %v", err)), nil
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write report: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("JSON report written to %s", outputPath)), nil
}

func contractListHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	summaries, err := ReportStore().List(context.Background())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list analyses: %v", err)), nil
	}

	metrics.StoredAnalyses.Set(float64(len(summaries)))

	payload, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode summaries: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func loadAnalysis(arguments map[string]interface{}) (*contract.Analysis, *mcp.CallToolResult) {
	id, ok := arguments["analysis_id"].(string)
	if !ok || id == "" {
		return nil, mcp.NewToolResultError("analysis_id must be a non-empty string")
	}

	analysis, err := ReportStore().Load(context.Background(), id)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to load analysis: %v", err))
	}
	return analysis, nil
}

func isHTMLPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

func analyzeInline(t *testing.T, text string) string {
	t.Helper()

	result, err := contractAnalyzeHandler(map[string]interface{}{"text": text})
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	// First line reads "Analysis <id> completed for <name>"
	fields := strings.Fields(resultText(t, result))
	require.GreaterOrEqual(t, len(fields), 2)
	return fields[1]
}

func TestContractAnalyzeHandler(t *testing.T) {
	t.Run("Inline text", func(t *testing.T) {
		result, err := contractAnalyzeHandler(map[string]interface{}{
			"text": "Acme Ltd shall not disclose confidential information without 30 days notice.",
		})
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := resultText(t, result)
		assert.Contains(t, text, "Risk score:")
		assert.Contains(t, text, "Entities:")
	})

	t.Run("File path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vendor.txt")
		require.NoError(t, os.WriteFile(path, []byte("The supplier shall indemnify and hold harmless the buyer."), 0644))

		result, err := contractAnalyzeHandler(map[string]interface{}{"file_path": path})
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Contains(t, resultText(t, result), path)
	})

	t.Run("Missing arguments", func(t *testing.T) {
		result, err := contractAnalyzeHandler(map[string]interface{}{})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("Unreadable file", func(t *testing.T) {
		result, err := contractAnalyzeHandler(map[string]interface{}{"file_path": "/no/such/file.txt"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestContractRiskHandler(t *testing.T) {
	id := analyzeInline(t, "The contractor accepts unlimited liability and liquidated damages.")

	result, err := contractRiskHandler(map[string]interface{}{"analysis_id": id})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "unlimited_liability")
	assert.Contains(t, text, "compliance")
}

func TestContractEntitiesHandler(t *testing.T) {
	id := analyzeInline(t, "Acme Ltd shall pay Rs. 75,000 to the consultant.")

	result, err := contractEntitiesHandler(map[string]interface{}{"analysis_id": id})
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Acme Ltd")
	assert.Contains(t, text, "OBLIGATION")

	t.Run("Unknown ID", func(t *testing.T) {
		result, err := contractEntitiesHandler(map[string]interface{}{"analysis_id": "nope"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestContractExportHandler(t *testing.T) {
	id := analyzeInline(t, "The vendor shall deliver goods with 15 days notice.")

	t.Run("JSON report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		result, err := contractExportHandler(map[string]interface{}{
			"analysis_id": id,
			"output_path": path,
		})
		require.NoError(t, err)
		require.False(t, result.IsError)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), id)
	})

	t.Run("HTML dashboard", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dash.html")
		result, err := contractExportHandler(map[string]interface{}{
			"analysis_id": id,
			"output_path": path,
		})
		require.NoError(t, err)
		require.False(t, result.IsError)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Contract Risk Dashboard")
	})

	t.Run("Missing output path", func(t *testing.T) {
		result, err := contractExportHandler(map[string]interface{}{"analysis_id": id})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestContractListHandler(t *testing.T) {
	id := analyzeInline(t, "Each party agrees to arbitration in Mumbai.")

	result, err := contractListHandler(map[string]interface{}{})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), id)
}

func TestIsHTMLPath(t *testing.T) {
	assert.True(t, isHTMLPath("out/dashboard.html"))
	assert.True(t, isHTMLPath("OUT.HTM"))
	assert.False(t, isHTMLPath("report.json"))
	assert.False(t, isHTMLPath("plain"))
}

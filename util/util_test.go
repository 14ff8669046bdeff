package util

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(arguments map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = arguments
	return request
}

func TestAdaptLegacyHandler(t *testing.T) {
	adapted := AdaptLegacyHandler(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
		name, _ := arguments["name"].(string)
		return mcp.NewToolResultText("hello " + name), nil
	})

	result, err := adapted(context.Background(), callRequest(map[string]interface{}{"name": "counsel"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "hello counsel", tc.Text)
}

func TestErrorGuard(t *testing.T) {
	t.Run("Passes results through", func(t *testing.T) {
		guarded := ErrorGuard(AdaptLegacyHandler(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("fine"), nil
		}))

		result, err := guarded(context.Background(), callRequest(nil))
		require.NoError(t, err)
		assert.False(t, result.IsError)
	})

	t.Run("Recovers panics as tool errors", func(t *testing.T) {
		guarded := ErrorGuard(AdaptLegacyHandler(func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
			panic("boom")
		}))

		result, err := guarded(context.Background(), callRequest(nil))
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
	})
}

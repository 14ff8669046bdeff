package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedReply(reply string) GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return reply, nil
	}
}

func capturePrompt(reply string, captured *string) GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		*captured = prompt
		return reply, nil
	}
}

func summaryAnalysis() *contract.Analysis {
	return &contract.Analysis{
		ID: "a1",
		Document: contract.Document{
			Name: "service.txt",
			Text: "Acme Ltd shall provide services to the Client for Rs. 50,000.",
		},
		Entities: []contract.Entity{
			{Type: contract.EntityTypeOrganization, Text: "Acme Ltd"},
			{Type: contract.EntityTypeAmount, Text: "Rs. 50,000"},
			{Type: contract.EntityTypeDate, Text: "01/04/2024"},
		},
		Risk: contract.RiskAssessment{
			High:  []contract.RiskFinding{{Category: "unlimited_liability"}},
			Score: 10,
		},
	}
}

func TestPlainSummary(t *testing.T) {
	t.Run("Prompt carries extracted facts", func(t *testing.T) {
		var prompt string
		assistant := NewWithGenerator(capturePrompt("A short summary.", &prompt))

		summary, err := assistant.PlainSummary(context.Background(), summaryAnalysis())
		require.NoError(t, err)
		assert.Equal(t, "A short summary.", summary)

		assert.Contains(t, prompt, "Acme Ltd")
		assert.Contains(t, prompt, "Rs. 50,000")
		assert.Contains(t, prompt, "01/04/2024")
		assert.Contains(t, prompt, "Composite Risk Score: 10/100")
		assert.Contains(t, prompt, "High Risk Issues: 1")
	})

	t.Run("Generation errors are wrapped", func(t *testing.T) {
		assistant := NewWithGenerator(func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("quota exceeded")
		})

		_, err := assistant.PlainSummary(context.Background(), summaryAnalysis())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "summary")
		assert.Contains(t, err.Error(), "quota exceeded")
	})
}

func TestExplainClause(t *testing.T) {
	assistant := NewWithGenerator(fixedReply("This clause means the vendor carries all losses."))

	explanation, err := assistant.ExplainClause(context.Background(),
		"The vendor accepts unlimited liability.", "Found in section 7.")
	require.NoError(t, err)

	assert.Equal(t, "This clause means the vendor carries all losses.", explanation.Explanation)
	assert.Equal(t, "The vendor accepts unlimited liability.", explanation.OriginalClause)
}

func TestSuggestAlternatives(t *testing.T) {
	t.Run("Splits numbered blocks and diffs each", func(t *testing.T) {
		reply := "1. Liability is capped at the fees paid in the prior 12 months.\n\n" +
			"2. Liability is limited to direct damages only."
		assistant := NewWithGenerator(fixedReply(reply))

		alternatives, err := assistant.SuggestAlternatives(context.Background(),
			"The vendor accepts unlimited liability.", "one-sided liability")
		require.NoError(t, err)
		require.Len(t, alternatives, 2)

		assert.Contains(t, alternatives[0].Wording, "capped at the fees")
		assert.Contains(t, alternatives[1].Wording, "direct damages")
		assert.NotEmpty(t, alternatives[0].Diff)
		assert.NotEmpty(t, alternatives[1].Diff)
	})

	t.Run("Blank reply is an error", func(t *testing.T) {
		assistant := NewWithGenerator(fixedReply("   \n"))

		_, err := assistant.SuggestAlternatives(context.Background(), "clause", "concern")
		assert.Error(t, err)
	})
}

func TestClassifyContractType(t *testing.T) {
	t.Run("Parses plain JSON", func(t *testing.T) {
		assistant := NewWithGenerator(fixedReply(`{"category": "Service Agreement", "confidence": 0.92}`))

		c, err := assistant.ClassifyContractType(context.Background(), "Acme Ltd shall provide services.")
		require.NoError(t, err)
		assert.Equal(t, "Service Agreement", c.Category)
		assert.InDelta(t, 0.92, c.Confidence, 0.001)
	})

	t.Run("Strips markdown fences", func(t *testing.T) {
		reply := "```json\n{\"category\": \"Lease Agreement\", \"confidence\": 0.8}\n```"
		assistant := NewWithGenerator(fixedReply(reply))

		c, err := assistant.ClassifyContractType(context.Background(), "The lessor leases the premises.")
		require.NoError(t, err)
		assert.Equal(t, "Lease Agreement", c.Category)
	})

	t.Run("Unknown category falls back to Other", func(t *testing.T) {
		assistant := NewWithGenerator(fixedReply(`{"category": "Treaty", "confidence": 0.5}`))

		c, err := assistant.ClassifyContractType(context.Background(), "some text")
		require.NoError(t, err)
		assert.Equal(t, "Other", c.Category)
	})

	t.Run("Case-insensitive category match", func(t *testing.T) {
		assistant := NewWithGenerator(fixedReply(`{"category": "service agreement", "confidence": 0.7}`))

		c, err := assistant.ClassifyContractType(context.Background(), "some text")
		require.NoError(t, err)
		assert.Equal(t, "service agreement", c.Category)
	})
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`{"a":1}`))
	assert.Equal(t, `{"a":1}`, extractJSON(`Here you go: {"a":1} hope that helps`))
	assert.Equal(t, "no braces", extractJSON("no braces"))
}

func TestTruncateToTokens(t *testing.T) {
	t.Run("Short text unchanged", func(t *testing.T) {
		assert.Equal(t, "short clause", truncateToTokens("short clause", 100))
	})

	t.Run("Long text gets cut", func(t *testing.T) {
		long := strings.Repeat("indemnification obligations survive termination ", 1000)
		cut := truncateToTokens(long, 50)
		assert.Less(t, len(cut), len(long))
	})
}

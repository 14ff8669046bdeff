package nlp

import (
	"testing"

	"github.com/jdkato/prose/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeywords(t *testing.T) {
	engine := NewEngine()

	text := "The vendor liability covers all damages under this agreement. " +
		"The liability extends to indemnity claims. " +
		"Payment of damages follows the termination notice."

	doc, err := prose.NewDocument(text)
	require.NoError(t, err)

	keywords := engine.ExtractKeywords(doc)
	require.NotEmpty(t, keywords)
	assert.LessOrEqual(t, len(keywords), 10)

	t.Run("Scores sorted descending", func(t *testing.T) {
		for i := 1; i < len(keywords); i++ {
			assert.GreaterOrEqual(t, keywords[i-1].Score, keywords[i].Score)
		}
	})

	t.Run("Legal terms surface", func(t *testing.T) {
		texts := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			texts = append(texts, kw.Text)
		}
		assert.Contains(t, texts, "liability")
	})

	t.Run("Offsets point into the source", func(t *testing.T) {
		for _, kw := range keywords {
			assert.Equal(t, kw.Text, text[kw.StartPos:kw.EndPos])
		}
	})

	t.Run("Stop words excluded", func(t *testing.T) {
		for _, kw := range keywords {
			assert.False(t, isStopWord(kw.Text), kw.Text)
		}
	})
}

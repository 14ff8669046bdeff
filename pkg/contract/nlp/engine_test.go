package nlp

import (
	"context"
	"testing"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/jdkato/prose/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEntities(t *testing.T) {
	engine := NewEngine()

	t.Run("Organization names", func(t *testing.T) {
		entities := engine.ExtractEntities("This agreement is made by Acme Solutions Ltd of Mumbai.", nil)

		found := findEntity(entities, contract.EntityTypeOrganization)
		require.NotNil(t, found)
		assert.Equal(t, "Acme Solutions Ltd", found.Text)
		assert.Equal(t, "pattern", found.Source)
		assert.InDelta(t, 0.9, found.Confidence, 0.001)
	})

	t.Run("Quoted party alias", func(t *testing.T) {
		entities := engine.ExtractEntities(`Vendor Corp, hereinafter referred to as "Supplier", agrees.`, nil)

		var texts []string
		for _, e := range entities {
			if e.Type == contract.EntityTypeParty {
				texts = append(texts, e.Text)
			}
		}
		assert.Contains(t, texts, "Supplier")
	})

	t.Run("Monetary amounts", func(t *testing.T) {
		entities := engine.ExtractEntities("A fee of Rs. 50,000 plus 2 lakh as deposit.", nil)

		var amounts []string
		for _, e := range entities {
			if e.Type == contract.EntityTypeAmount {
				amounts = append(amounts, e.Text)
			}
		}
		assert.Len(t, amounts, 2)
	})

	t.Run("Dates and durations", func(t *testing.T) {
		entities := engine.ExtractEntities("Effective 01/04/2024 for a term of 12 months.", nil)

		assert.NotNil(t, findEntity(entities, contract.EntityTypeDate))
		assert.NotNil(t, findEntity(entities, contract.EntityTypeDuration))
	})

	t.Run("Duplicates are collapsed", func(t *testing.T) {
		entities := engine.ExtractEntities("Acme Ltd and Acme Ltd and ACME LTD", nil)

		count := 0
		for _, e := range entities {
			if e.Type == contract.EntityTypeOrganization {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("NER spans are whole or absent", func(t *testing.T) {
		// The prose doc deliberately belongs to a different text, so any
		// NER entity it yields cannot be located in the scanned string.
		proseDoc, err := prose.NewDocument("John Smith lives in London and signs contracts.")
		require.NoError(t, err)

		text := "the quick brown fox"
		entities := engine.ExtractEntities(text, proseDoc)
		for _, e := range entities {
			if e.Source != "ner" {
				continue
			}
			if e.StartPos < 0 {
				assert.Equal(t, -1, e.StartPos, e.Text)
				assert.Equal(t, -1, e.EndPos, e.Text)
			} else {
				assert.Equal(t, e.Text, text[e.StartPos:e.EndPos])
			}
		}
	})

	t.Run("Offsets point into the source", func(t *testing.T) {
		text := "The deposit of Rs. 10,000 is refundable."
		entities := engine.ExtractEntities(text, nil)

		found := findEntity(entities, contract.EntityTypeAmount)
		require.NotNil(t, found)
		assert.Equal(t, found.Text, text[found.StartPos:found.EndPos])
	})
}

func TestClassifyClauses(t *testing.T) {
	engine := NewEngine()

	cases := []struct {
		name     string
		sentence string
		category contract.ClauseCategory
		marker   string
	}{
		{"Obligation", "The vendor shall deliver the goods on time.", contract.ClauseObligation, "shall"},
		{"Prohibition wins over obligation", "The vendor shall not disclose any data.", contract.ClauseProhibition, "shall not"},
		{"Right", "The client may terminate with notice.", contract.ClauseRight, "may"},
		{"Must", "The supplier must insure the shipment.", contract.ClauseObligation, "must"},
		{"Agrees to", "Each party agrees to arbitration.", contract.ClauseObligation, "agrees to"},
		{"Prohibited from", "The employee is prohibited from competing.", contract.ClauseProhibition, "prohibited from"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clauses := engine.ClassifyClauses([]sentenceSpan{{Text: tc.sentence, StartPos: 0, EndPos: len(tc.sentence)}})
			require.Len(t, clauses, 1)
			assert.Equal(t, tc.category, clauses[0].Category)
			assert.Equal(t, tc.marker, clauses[0].Marker)
		})
	}

	t.Run("Neutral sentence skipped", func(t *testing.T) {
		clauses := engine.ClassifyClauses([]sentenceSpan{{Text: "This document has two pages."}})
		assert.Empty(t, clauses)
	})

	t.Run("Marker inside a word does not fire", func(t *testing.T) {
		clauses := engine.ClassifyClauses([]sentenceSpan{{Text: "Payment terms are listed in the annexure."}})
		assert.Empty(t, clauses)
	})
}

func TestDetectAmbiguousTerms(t *testing.T) {
	engine := NewEngine()

	spans := []sentenceSpan{
		{Text: "The vendor will use best efforts to respond promptly."},
		{Text: "Delivery is due on the fifth business day."},
	}

	flags := engine.DetectAmbiguousTerms(spans)
	require.Len(t, flags, 1)
	assert.ElementsMatch(t, []string{"best efforts", "promptly"}, flags[0].Terms)
	assert.NotEmpty(t, flags[0].Concern)
}

func TestLocateSentences(t *testing.T) {
	text := "First sentence here. Second sentence follows."
	doc, err := prose.NewDocument(text)
	require.NoError(t, err)

	spans := locateSentences(text, doc.Sentences())
	require.NotEmpty(t, spans)

	for _, span := range spans {
		require.GreaterOrEqual(t, span.StartPos, 0)
		assert.Equal(t, span.Text, text[span.StartPos:span.EndPos])
	}
}

func TestEngineAnalyze(t *testing.T) {
	engine := NewEngine()

	doc := &contract.Document{
		ID:   "doc-1",
		Text: "Acme Ltd shall pay Rs. 25,000 within 30 days. The client may audit records with reasonable notice.",
	}
	analysis := &contract.Analysis{Document: *doc}

	err := engine.Analyze(context.Background(), doc, analysis)
	require.NoError(t, err)

	assert.NotEmpty(t, analysis.Entities)
	assert.NotEmpty(t, analysis.Clauses)
	assert.NotEmpty(t, analysis.Ambiguities)
}

func findEntity(entities []contract.Entity, typ contract.EntityType) *contract.Entity {
	for i := range entities {
		if entities[i].Type == typ {
			return &entities[i]
		}
	}
	return nil
}

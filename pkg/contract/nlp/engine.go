package nlp

import (
	"context"
	"strings"

	"github.com/athapong/contract-intel/pkg/contract"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jdkato/prose/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	processingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nlp_processing_duration_seconds",
			Help: "Time spent running NLP analysis on contracts",
		},
		[]string{"stage"},
	)

	entityCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlp_entities_extracted_total",
			Help: "Number of entities extracted",
		},
		[]string{"entity_type"},
	)

	clauseCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlp_clauses_classified_total",
			Help: "Number of clauses classified",
		},
		[]string{"category"},
	)
)

func init() {
	prometheus.MustRegister(processingDuration)
	prometheus.MustRegister(entityCount)
	prometheus.MustRegister(clauseCount)
}

// Engine performs regex and prose based extraction over contract text.
type Engine struct {
	logger *logrus.Logger
}

// NewEngine creates a new NLP engine.
func NewEngine() *Engine {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Engine{
		logger: logger,
	}
}

// Analyze implements the contract.Analyzer interface. It fills the entity,
// clause, ambiguity and keyword facets of the analysis.
func (e *Engine) Analyze(ctx context.Context, doc *contract.Document, analysis *contract.Analysis) error {
	timer := prometheus.NewTimer(processingDuration.WithLabelValues("nlp"))
	defer timer.ObserveDuration()

	e.logger.WithField("content_length", len(doc.Text)).Info("Starting NLP analysis")

	proseDoc, err := prose.NewDocument(doc.Text)
	if err != nil {
		e.logger.WithError(err).Error("Failed to create prose document")
		return errors.Wrap(err, "failed to tokenize document")
	}

	sentences := locateSentences(doc.Text, proseDoc.Sentences())

	analysis.Entities = e.ExtractEntities(doc.Text, proseDoc)
	analysis.Clauses = e.ClassifyClauses(sentences)
	analysis.Ambiguities = e.DetectAmbiguousTerms(sentences)
	analysis.Keywords = e.ExtractKeywords(proseDoc)

	e.logger.WithFields(logrus.Fields{
		"entities_count":    len(analysis.Entities),
		"clauses_count":     len(analysis.Clauses),
		"ambiguities_count": len(analysis.Ambiguities),
		"keywords_count":    len(analysis.Keywords),
	}).Info("NLP analysis completed")

	return nil
}

// sentenceSpan pairs a sentence with its byte offsets in the source text.
type sentenceSpan struct {
	Text     string
	StartPos int
	EndPos   int
}

// locateSentences maps prose sentences back to byte offsets in the original
// text. Prose preserves sentence text verbatim, so a forward scan suffices.
func locateSentences(text string, sentences []prose.Sentence) []sentenceSpan {
	spans := make([]sentenceSpan, 0, len(sentences))
	offset := 0
	for _, sent := range sentences {
		trimmed := strings.TrimSpace(sent.Text)
		if trimmed == "" {
			continue
		}
		idx := strings.Index(text[offset:], trimmed)
		if idx < 0 {
			spans = append(spans, sentenceSpan{Text: trimmed, StartPos: -1, EndPos: -1})
			continue
		}
		start := offset + idx
		spans = append(spans, sentenceSpan{
			Text:     trimmed,
			StartPos: start,
			EndPos:   start + len(trimmed),
		})
		offset = start + len(trimmed)
	}
	return spans
}

// ExtractEntities runs the regex catalogs over the text and merges in the
// prose NER output for persons and locations.
func (e *Engine) ExtractEntities(text string, proseDoc *prose.Document) []contract.Entity {
	entities := make([]contract.Entity, 0)
	seen := mapset.NewSet[string]()

	for _, p := range entityPatterns {
		for _, match := range p.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := match[0], match[1]
			if p.group > 0 && 2*p.group+1 < len(match) && match[2*p.group] >= 0 {
				start, end = match[2*p.group], match[2*p.group+1]
			}

			value := text[start:end]
			key := string(p.typ) + "|" + strings.ToLower(value)
			if !seen.Add(key) {
				continue
			}

			entities = append(entities, contract.Entity{
				Type:       p.typ,
				Text:       value,
				StartPos:   start,
				EndPos:     end,
				Confidence: 0.9,
				Source:     "pattern",
			})
			entityCount.WithLabelValues(string(p.typ)).Inc()
		}
	}

	if proseDoc != nil {
		for _, ent := range proseDoc.Entities() {
			var typ contract.EntityType
			switch ent.Label {
			case "PERSON":
				typ = contract.EntityTypePerson
			case "GPE":
				typ = contract.EntityTypeLocation
			default:
				continue
			}

			key := string(typ) + "|" + strings.ToLower(ent.Text)
			if !seen.Add(key) {
				continue
			}

			start := strings.Index(text, ent.Text)
			end := start + len(ent.Text)
			if start < 0 {
				end = -1
			}
			entities = append(entities, contract.Entity{
				Type:       typ,
				Text:       ent.Text,
				StartPos:   start,
				EndPos:     end,
				Confidence: 0.75,
				Source:     "ner",
			})
			entityCount.WithLabelValues(string(typ)).Inc()
		}
	}

	return entities
}

// ClassifyClauses tags each sentence with at most one category. Prohibitions
// are checked first, then obligations, then rights.
func (e *Engine) ClassifyClauses(sentences []sentenceSpan) []contract.Clause {
	clauses := make([]contract.Clause, 0)

	for _, sent := range sentences {
		lower := strings.ToLower(sent.Text)

		category, marker := classify(lower)
		if category == "" {
			continue
		}

		clauses = append(clauses, contract.Clause{
			Category: category,
			Text:     sent.Text,
			Marker:   marker,
			StartPos: sent.StartPos,
			EndPos:   sent.EndPos,
		})
		clauseCount.WithLabelValues(string(category)).Inc()
	}

	return clauses
}

func classify(lower string) (contract.ClauseCategory, string) {
	for _, marker := range prohibitionMarkers {
		if strings.Contains(lower, marker) {
			return contract.ClauseProhibition, marker
		}
	}
	for _, marker := range obligationMarkers {
		if containsWord(lower, marker) {
			return contract.ClauseObligation, marker
		}
	}
	for _, marker := range rightMarkers {
		if containsWord(lower, marker) {
			return contract.ClauseRight, marker
		}
	}
	return "", ""
}

// containsWord matches a marker on word boundaries so "may" does not fire
// inside "mayhem" or "payment".
func containsWord(text, marker string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], marker)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(marker)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

// DetectAmbiguousTerms flags sentences containing vague wording.
func (e *Engine) DetectAmbiguousTerms(sentences []sentenceSpan) []contract.AmbiguityFlag {
	flags := make([]contract.AmbiguityFlag, 0)

	for _, sent := range sentences {
		lower := strings.ToLower(sent.Text)

		var found []string
		for _, term := range ambiguousTerms {
			if strings.Contains(lower, term) {
				found = append(found, term)
			}
		}

		if len(found) > 0 {
			flags = append(flags, contract.AmbiguityFlag{
				Sentence: sent.Text,
				Terms:    found,
				Concern:  ambiguityConcern,
			})
		}
	}

	return flags
}

package contract

import (
	"context"
	"time"
)

// EntityType identifies the kind of value an extracted entity carries.
type EntityType string

const (
	EntityTypeParty        EntityType = "PARTY"
	EntityTypeOrganization EntityType = "ORGANIZATION"
	EntityTypePerson       EntityType = "PERSON"
	EntityTypeLocation     EntityType = "LOCATION"
	EntityTypeAmount       EntityType = "AMOUNT"
	EntityTypeDate         EntityType = "DATE"
	EntityTypeDuration     EntityType = "DURATION"
)

// ClauseCategory classifies a clause sentence.
type ClauseCategory string

const (
	ClauseObligation  ClauseCategory = "OBLIGATION"
	ClauseRight       ClauseCategory = "RIGHT"
	ClauseProhibition ClauseCategory = "PROHIBITION"
)

// Severity ranks a risk finding or compliance gap.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityNone   Severity = "none"
)

// Entity represents a substring of the contract text matched by an
// extraction pattern.
type Entity struct {
	Type       EntityType `json:"type"`
	Text       string     `json:"text"`
	StartPos   int        `json:"start_pos"`
	EndPos     int        `json:"end_pos"`
	Confidence float64    `json:"confidence"`
	Source     string     `json:"source,omitempty"`
}

// Clause represents a sentence tagged as an obligation, right or prohibition.
type Clause struct {
	Category ClauseCategory `json:"category"`
	Text     string         `json:"text"`
	Marker   string         `json:"marker"`
	StartPos int            `json:"start_pos"`
	EndPos   int            `json:"end_pos"`
}

// AmbiguityFlag marks a sentence containing vague language.
type AmbiguityFlag struct {
	Sentence string   `json:"sentence"`
	Terms    []string `json:"terms"`
	Concern  string   `json:"concern"`
}

// Keyword represents an extracted keyword with relevance score.
type Keyword struct {
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	StartPos int     `json:"start_pos"`
	EndPos   int     `json:"end_pos"`
}

// Section marks a detected heading inside the contract text.
type Section struct {
	Header   string `json:"header"`
	Position int    `json:"position"`
}

// RiskFinding is a single pattern hit with its surrounding context.
type RiskFinding struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	MatchedText string   `json:"matched_text"`
	Context     string   `json:"context"`
	Position    int      `json:"position"`
}

// RiskAssessment aggregates findings into a composite 0-100 score.
type RiskAssessment struct {
	High           []RiskFinding `json:"high"`
	Medium         []RiskFinding `json:"medium"`
	Low            []RiskFinding `json:"low"`
	Score          int           `json:"composite_score"`
	Level          string        `json:"level"`
	Recommendation string        `json:"recommendation"`
}

// ComplianceCheck reports presence of an essential contract element.
type ComplianceCheck struct {
	Element  string   `json:"element"`
	Status   string   `json:"status"`
	Severity Severity `json:"severity"`
	Note     string   `json:"note,omitempty"`
}

// Document represents an ingested contract with extracted text.
type Document struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	ContentType string                 `json:"content_type"`
	Text        string                 `json:"text"`
	Sections    []Section              `json:"sections,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	ParsedAt    time.Time              `json:"parsed_at"`
}

// Analysis is the full report for one contract. It is the JSON export format.
type Analysis struct {
	ID          string            `json:"id"`
	Document    Document          `json:"document"`
	Entities    []Entity          `json:"entities"`
	Clauses     []Clause          `json:"clauses"`
	Ambiguities []AmbiguityFlag   `json:"ambiguities"`
	Keywords    []Keyword         `json:"keywords"`
	Risk        RiskAssessment    `json:"risk"`
	Compliance  []ComplianceCheck `json:"compliance"`
	AnalyzedAt  time.Time         `json:"analyzed_at"`
}

// DocumentParser extracts plain text from one document format.
type DocumentParser interface {
	Parse(ctx context.Context, content []byte, metadata map[string]interface{}) (*Document, error)
	SupportedTypes() []string
}

// Analyzer produces one facet of an Analysis from parsed text.
type Analyzer interface {
	Analyze(ctx context.Context, doc *Document, analysis *Analysis) error
}

// Pipeline runs a document through parsing and all analyzers.
type Pipeline interface {
	Analyze(ctx context.Context, name, contentType string, content []byte) (*Analysis, error)
	AddAnalyzer(analyzer Analyzer)
}

// ClausesByCategory returns all clauses of the given category.
func (a *Analysis) ClausesByCategory(category ClauseCategory) []Clause {
	var out []Clause
	for _, c := range a.Clauses {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// EntitiesByType returns all entities of the given type.
func (a *Analysis) EntitiesByType(entityType EntityType) []Entity {
	var out []Entity
	for _, e := range a.Entities {
		if e.Type == entityType {
			out = append(out, e)
		}
	}
	return out
}

// Findings returns every risk finding regardless of severity.
func (r *RiskAssessment) Findings() []RiskFinding {
	out := make([]RiskFinding, 0, len(r.High)+len(r.Medium)+len(r.Low))
	out = append(out, r.High...)
	out = append(out, r.Medium...)
	out = append(out, r.Low...)
	return out
}

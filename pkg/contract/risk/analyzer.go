package risk

import (
	"context"
	"regexp"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "risk_analysis_duration_seconds",
			Help: "Time spent running risk analysis on contracts",
		},
		[]string{"stage"},
	)

	findingCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_findings_total",
			Help: "Number of risk findings detected",
		},
		[]string{"severity", "category"},
	)
)

func init() {
	prometheus.MustRegister(analysisDuration)
	prometheus.MustRegister(findingCount)
}

// riskCategory groups patterns that signal the same contractual hazard.
type riskCategory struct {
	name     string
	patterns []*regexp.Regexp
}

var highRiskCategories = []riskCategory{
	{"unlimited_liability", compileAll(
		`(?i)unlimited\s+liability`,
		`(?i)without\s+any\s+limit`,
		`(?i)entire\s+liability`,
	)},
	{"unilateral_termination", compileAll(
		`(?i)(party\s+[AB]|company|first\s+party)\s+may\s+terminate.*without\s+(notice|cause)`,
		`(?i)terminate\s+at\s+will`,
		`(?i)sole\s+discretion.*terminate`,
	)},
	{"ip_transfer", compileAll(
		`(?i)all\s+intellectual\s+property.*transferred`,
		`(?i)ownership.*vests.*exclusively`,
		`(?i)irrevocable.*assignment.*ip`,
	)},
	{"non_compete_broad", compileAll(
		`(?i)non-compete.*\d+\s+(years|year)`,
		`(?i)not\s+engage.*competing.*business`,
		`(?i)restricted.*similar.*activity`,
	)},
}

var mediumRiskCategories = []riskCategory{
	{"auto_renewal", compileAll(
		`(?i)automatically\s+renewed?`,
		`(?i)auto-renewal`,
		`(?i)unless.*notice.*\d+\s+days.*renew`,
	)},
	{"penalty_clause", compileAll(
		`(?i)penalty.*₹?\d+`,
		`(?i)liquidated\s+damages`,
		`(?i)shall\s+pay.*breach`,
	)},
	{"jurisdiction_limited", compileAll(
		`(?i)exclusive\s+jurisdiction`,
		`(?i)courts?\s+at\s+\w+\s+only`,
		`(?i)subject\s+to.*jurisdiction.*\w+`,
	)},
	{"indemnity_broad", compileAll(
		`(?i)indemnify.*hold\s+harmless`,
		`(?i)defend.*against\s+any\s+claims?`,
		`(?i)indemnification.*losses`,
	)},
}

var lowRiskCategories = []riskCategory{
	{"notice_period", compileAll(
		`(?i)\d+\s+days?\s+notice`,
		`(?i)notice\s+period.*\d+`,
	)},
	{"confidentiality", compileAll(
		`(?i)confidential\s+information`,
		`(?i)non-disclosure`,
	)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		res[i] = regexp.MustCompile(expr)
	}
	return res
}

const contextWindow = 50

// Severity weights for the composite score.
var severityWeights = map[contract.Severity]int{
	contract.SeverityHigh:   10,
	contract.SeverityMedium: 5,
	contract.SeverityLow:    1,
}

// Analyzer scans contract text for risk patterns and scores the result.
type Analyzer struct {
	logger *logrus.Logger
}

// NewAnalyzer creates a new risk analyzer.
func NewAnalyzer() *Analyzer {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Analyzer{
		logger: logger,
	}
}

// Analyze implements the contract.Analyzer interface. It fills the risk and
// compliance facets of the analysis.
func (a *Analyzer) Analyze(ctx context.Context, doc *contract.Document, analysis *contract.Analysis) error {
	timer := prometheus.NewTimer(analysisDuration.WithLabelValues("risk"))
	defer timer.ObserveDuration()

	analysis.Risk = a.Assess(doc.Text)
	analysis.Compliance = a.CheckCompliance(doc.Text)

	a.logger.WithFields(logrus.Fields{
		"score":        analysis.Risk.Score,
		"level":        analysis.Risk.Level,
		"high_count":   len(analysis.Risk.High),
		"medium_count": len(analysis.Risk.Medium),
		"low_count":    len(analysis.Risk.Low),
	}).Info("Risk analysis completed")

	return nil
}

// Assess runs every risk pattern over the text and computes the composite
// score. Weights: high=10, medium=5, low=1, capped at 100.
func (a *Analyzer) Assess(text string) contract.RiskAssessment {
	assessment := contract.RiskAssessment{
		High:   a.scan(text, contract.SeverityHigh, highRiskCategories),
		Medium: a.scan(text, contract.SeverityMedium, mediumRiskCategories),
		Low:    a.scan(text, contract.SeverityLow, lowRiskCategories),
	}

	total := len(assessment.High)*severityWeights[contract.SeverityHigh] +
		len(assessment.Medium)*severityWeights[contract.SeverityMedium] +
		len(assessment.Low)*severityWeights[contract.SeverityLow]

	if total > 100 {
		total = 100
	}
	assessment.Score = total

	switch {
	case assessment.Score > 60:
		assessment.Level = "HIGH RISK"
		assessment.Recommendation = "Immediate legal review recommended"
	case assessment.Score > 30:
		assessment.Level = "MEDIUM RISK"
		assessment.Recommendation = "Review and negotiate key clauses"
	default:
		assessment.Level = "LOW RISK"
		assessment.Recommendation = "Standard contract with minor concerns"
	}

	return assessment
}

func (a *Analyzer) scan(text string, severity contract.Severity, categories []riskCategory) []contract.RiskFinding {
	findings := make([]contract.RiskFinding, 0)

	for _, category := range categories {
		for _, pattern := range category.patterns {
			for _, match := range pattern.FindAllStringIndex(text, -1) {
				start := max(0, match[0]-contextWindow)
				end := min(len(text), match[1]+contextWindow)

				findings = append(findings, contract.RiskFinding{
					Severity:    severity,
					Category:    category.name,
					MatchedText: text[match[0]:match[1]],
					Context:     text[start:end],
					Position:    match[0],
				})
				findingCount.WithLabelValues(string(severity), category.name).Inc()
			}
		}
	}

	return findings
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

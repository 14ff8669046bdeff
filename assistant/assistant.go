package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/athapong/contract-intel/pkg/contract"
	"github.com/athapong/contract-intel/pkg/contract/metrics"
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.0-flash"

	// Token budget for contract excerpts embedded in prompts.
	excerptTokenBudget = 2000
)

// Known contract categories for classification.
var contractTypes = []string{
	"Employment Agreement",
	"Vendor/Supplier Contract",
	"Service Agreement",
	"Lease Agreement",
	"Partnership Deed",
	"NDA/Confidentiality Agreement",
	"Sales Agreement",
	"Consulting Agreement",
	"Other",
}

// GenerateFunc produces model output for a prompt. It exists so tests can
// run the assistant without a live Gemini client.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// Assistant turns analyses into plain-language guidance using Gemini.
type Assistant struct {
	generate GenerateFunc
	model    string
	logger   *logrus.Logger
}

// New creates an assistant backed by the given Gemini client.
func New(client *genai.Client) *Assistant {
	a := NewWithGenerator(func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, defaultModel, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return firstText(resp)
	})
	return a
}

// NewWithGenerator creates an assistant with a custom generation function.
func NewWithGenerator(generate GenerateFunc) *Assistant {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Assistant{
		generate: generate,
		model:    defaultModel,
		logger:   logger,
	}
}

// PlainSummary produces a short business-friendly summary of the analysis.
func (a *Assistant) PlainSummary(ctx context.Context, analysis *contract.Analysis) (string, error) {
	parties := entityTexts(analysis, contract.EntityTypeParty, contract.EntityTypeOrganization)
	dates := entityTexts(analysis, contract.EntityTypeDate)
	amounts := entityTexts(analysis, contract.EntityTypeAmount)

	prompt := fmt.Sprintf(`You are a legal assistant helping small business owners understand contracts.

Contract Text (excerpts):
%s

Extracted Information:
- Parties: %s
- Key Dates: %s
- Financial Terms: %s

Risk Analysis Results:
- Composite Risk Score: %d/100
- High Risk Issues: %d
- Medium Risk Issues: %d

Task: Create a 4-5 sentence plain-language summary for a busy business owner. Focus on:
1. What type of contract this is
2. Who the parties are
3. Main obligations
4. Key risks they should know about
5. Overall recommendation

Use simple business language, avoid legal jargon. Be direct and actionable.`,
		truncateToTokens(analysis.Document.Text, excerptTokenBudget),
		strings.Join(parties, ", "),
		strings.Join(dates, ", "),
		strings.Join(amounts, ", "),
		analysis.Risk.Score,
		len(analysis.Risk.High),
		len(analysis.Risk.Medium),
	)

	return a.run(ctx, "summary", prompt)
}

// Explanation is the assistant's plain-language reading of a clause.
type Explanation struct {
	Explanation    string `json:"explanation"`
	OriginalClause string `json:"original_clause"`
}

// ExplainClause explains a specific clause in plain language.
func (a *Assistant) ExplainClause(ctx context.Context, clauseText, clauseContext string) (*Explanation, error) {
	prompt := fmt.Sprintf(`Explain this contract clause to a non-lawyer:

Clause: %q

Context: %s

Provide:
1. Plain English explanation (2-3 sentences)
2. What this means for the business
3. Any potential concerns
4. Whether this is standard or unusual

Be concise and practical.`, clauseText, clauseContext)

	text, err := a.run(ctx, "explain_clause", prompt)
	if err != nil {
		return nil, err
	}

	return &Explanation{
		Explanation:    text,
		OriginalClause: clauseText,
	}, nil
}

// Alternative is a suggested rewording of an unfavorable clause, with a
// character-level diff against the original.
type Alternative struct {
	Wording string `json:"wording"`
	Diff    string `json:"diff"`
}

// SuggestAlternatives asks for balanced rewordings of an unfavorable clause.
func (a *Assistant) SuggestAlternatives(ctx context.Context, clauseText, concern string) ([]Alternative, error) {
	prompt := fmt.Sprintf(`This contract clause is concerning:

Original Clause: %q
Concern: %s

Suggest 2 alternative wordings that would be more balanced and fair for an SME. Make them:
- Legally sound
- Protecting both parties
- Clear and unambiguous
- Suitable for Indian business context

Format: Return only the alternative clauses, numbered 1 and 2.`, clauseText, concern)

	text, err := a.run(ctx, "suggest_alternatives", prompt)
	if err != nil {
		return nil, err
	}

	dmp := diffmatchpatch.New()

	var alternatives []Alternative
	for _, block := range strings.Split(strings.TrimSpace(text), "\n\n") {
		wording := strings.TrimSpace(block)
		if wording == "" {
			continue
		}

		diffs := dmp.DiffMain(clauseText, wording, false)
		alternatives = append(alternatives, Alternative{
			Wording: wording,
			Diff:    dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs)),
		})
	}

	if len(alternatives) == 0 {
		return nil, errors.New("model returned no alternatives")
	}

	return alternatives, nil
}

// Classification is the detected contract type.
type Classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ClassifyContractType classifies the contract into a known category. The
// model answers in JSON; unknown categories fall back to "Other".
func (a *Assistant) ClassifyContractType(ctx context.Context, text string) (*Classification, error) {
	prompt := fmt.Sprintf(`Classify this contract into ONE of these categories:
%s

Contract excerpt:
%s

Respond with JSON only: {"category": "<category name>", "confidence": <0.0-1.0>}`,
		"- "+strings.Join(contractTypes, "\n- "),
		truncateToTokens(text, excerptTokenBudget/2),
	)

	reply, err := a.run(ctx, "classify", prompt)
	if err != nil {
		return nil, err
	}

	payload := extractJSON(reply)
	category := gjson.Get(payload, "category").String()
	confidence := gjson.Get(payload, "confidence").Float()

	if !validContractType(category) {
		category = "Other"
	}

	return &Classification{
		Category:   category,
		Confidence: confidence,
	}, nil
}

func (a *Assistant) run(ctx context.Context, operation, prompt string) (string, error) {
	text, err := a.generate(ctx, prompt)
	if err != nil {
		metrics.AssistantRequests.WithLabelValues(operation, "error").Inc()
		a.logger.WithError(err).WithField("operation", operation).Error("Assistant request failed")
		return "", errors.Wrapf(err, "assistant %s failed", operation)
	}

	metrics.AssistantRequests.WithLabelValues(operation, "success").Inc()
	return strings.TrimSpace(text), nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("model returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}

	if sb.Len() == 0 {
		return "", errors.New("model returned no text")
	}
	return sb.String(), nil
}

// truncateToTokens cuts text to a token budget using the cl100k_base
// encoding. On encoder failure it falls back to a byte cut.
func truncateToTokens(text string, budget int) string {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		if len(text) > budget*4 {
			return text[:budget*4]
		}
		return text
	}

	tokens := encoding.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return encoding.Decode(tokens[:budget])
}

// extractJSON strips markdown fences the model may wrap around JSON output.
func extractJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	if start := strings.Index(reply, "{"); start >= 0 {
		if end := strings.LastIndex(reply, "}"); end > start {
			return reply[start : end+1]
		}
	}
	return reply
}

func validContractType(category string) bool {
	for _, t := range contractTypes {
		if strings.EqualFold(t, category) {
			return true
		}
	}
	return false
}

func entityTexts(analysis *contract.Analysis, types ...contract.EntityType) []string {
	var out []string
	for _, typ := range types {
		for _, e := range analysis.EntitiesByType(typ) {
			out = append(out, e.Text)
		}
	}
	return out
}

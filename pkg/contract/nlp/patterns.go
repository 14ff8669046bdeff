package nlp

import (
	"regexp"

	"github.com/athapong/contract-intel/pkg/contract"
)

// entityPattern binds a compiled expression to the entity type it produces.
// Group selects a capture group to report instead of the whole match; zero
// means the full match.
type entityPattern struct {
	re    *regexp.Regexp
	typ   contract.EntityType
	group int
}

var entityPatterns = []entityPattern{
	// Party references
	{regexp.MustCompile(`(?i)(party|company|firm|organization)\s+[A-Z][a-zA-Z\s&,\.]+`), contract.EntityTypeParty, 0},
	{regexp.MustCompile(`(?i)(hereinafter referred to as|referred to as)\s+"([^"]+)"`), contract.EntityTypeParty, 2},

	// Registered organization names
	{regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Ltd|Limited|Inc|Corp|Company|Pvt)\b`), contract.EntityTypeOrganization, 0},

	// Monetary amounts
	{regexp.MustCompile(`(?i)(rs\.?|inr|rupees)\s*[\d,]+(?:\.\d{2})?`), contract.EntityTypeAmount, 0},
	{regexp.MustCompile(`₹\s*[\d,]+(?:\.\d{2})?`), contract.EntityTypeAmount, 0},
	{regexp.MustCompile(`(?i)\d+\s*(lakh|crore|thousand)`), contract.EntityTypeAmount, 0},

	// Dates
	{regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`), contract.EntityTypeDate, 0},
	{regexp.MustCompile(`(?i)(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}`), contract.EntityTypeDate, 0},

	// Durations
	{regexp.MustCompile(`(?i)\d+\s*(days?|weeks?|months?|years?)\b`), contract.EntityTypeDuration, 0},
	{regexp.MustCompile(`(?i)(term of|period of)\s+\d+\s*(days?|months?|years?)`), contract.EntityTypeDuration, 0},
}

// Clause markers, most specific category first. Prohibition markers contain
// obligation markers as substrings, so prohibition must be tested first.
var (
	prohibitionMarkers = []string{"shall not", "must not", "prohibited from", "restricted from"}
	obligationMarkers  = []string{"shall", "must", "required to", "obligated to", "agrees to"}
	rightMarkers       = []string{"may", "entitled to", "has the right to", "permitted to"}
)

// Vague wording that tends to cause disputes.
var ambiguousTerms = []string{
	"reasonable", "appropriate", "as soon as possible", "promptly",
	"substantial", "material", "best efforts", "good faith",
	"approximately", "around", "may", "might", "could",
}

const ambiguityConcern = "Vague language may lead to disputes"

package risk

import (
	"fmt"
	"regexp"

	"github.com/athapong/contract-intel/pkg/contract"
)

// essentialElement is a contract element required under Section 10 of the
// Indian Contract Act, 1872.
type essentialElement struct {
	name    string
	pattern *regexp.Regexp
}

var essentialElements = []essentialElement{
	{"consideration", regexp.MustCompile(`(?i)(consideration|valuable\s+consideration|monetary|payment)`)},
	{"free_consent", regexp.MustCompile(`(?i)(consent|agree|acceptance|mutual\s+understanding)`)},
	{"competent_parties", regexp.MustCompile(`(?i)(major|age\s+of\s+majority|sound\s+mind|competent)`)},
	{"lawful_object", regexp.MustCompile(`(?i)(lawful\s+purpose|legal\s+object|legitimate)`)},
}

// CheckCompliance verifies that every essential element is mentioned in the
// contract text. Missing elements are reported at high severity.
func (a *Analyzer) CheckCompliance(text string) []contract.ComplianceCheck {
	checks := make([]contract.ComplianceCheck, 0, len(essentialElements))

	for _, element := range essentialElements {
		if element.pattern.MatchString(text) {
			checks = append(checks, contract.ComplianceCheck{
				Element:  element.name,
				Status:   "PRESENT",
				Severity: contract.SeverityNone,
			})
			continue
		}

		checks = append(checks, contract.ComplianceCheck{
			Element:  element.name,
			Status:   "MISSING",
			Severity: contract.SeverityHigh,
			Note:     fmt.Sprintf("Contract should explicitly mention %s as per Section 10, Indian Contract Act", element.name),
		})
	}

	return checks
}

package parsers

import (
	"regexp"
	"sort"

	"github.com/athapong/contract-intel/pkg/contract"
)

var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(article|section|clause)\s+(\d+)`),
	regexp.MustCompile(`(?i)\b(parties|definitions|scope|term|payment|liability)\b`),
}

// DetectSections locates heading-like markers in the contract text. Texts
// shorter than 10 bytes carry no usable structure and yield nil.
func DetectSections(text string) []contract.Section {
	if len(text) < 10 {
		return nil
	}

	var sections []contract.Section
	for _, pattern := range sectionPatterns {
		for _, match := range pattern.FindAllStringIndex(text, -1) {
			sections = append(sections, contract.Section{
				Header:   text[match[0]:match[1]],
				Position: match[0],
			})
		}
	}

	sort.Slice(sections, func(i, j int) bool {
		return sections[i].Position < sections[j].Position
	})

	return sections
}

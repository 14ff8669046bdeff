package nlp

import (
	"math"
	"sort"
	"strings"

	"github.com/athapong/contract-intel/pkg/contract"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jdkato/prose/v2"
)

const (
	keywordWindow    = 4
	keywordDamping   = 0.85
	keywordEpsilon   = 0.0001
	keywordMaxIter   = 50
	keywordMaxResult = 10
	legalTermBoost   = 1.5
)

// Terms that matter in contract review get a relevance boost.
var legalBoostTerms = []string{
	"liability", "indemnity", "indemnification", "termination", "terminate",
	"confidentiality", "confidential", "payment", "penalty", "damages",
	"jurisdiction", "arbitration", "warranty", "breach", "renewal",
	"consideration", "obligation", "notice", "compliance", "assignment",
	"intellectual", "property", "non-compete", "disclosure", "party",
}

var stopWords = mapset.NewSet[string](
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
	"for", "of", "with", "by",
)

// ExtractKeywords runs TextRank over noun co-occurrences and boosts
// legal terminology.
func (e *Engine) ExtractKeywords(doc *prose.Document) []contract.Keyword {
	tokens := doc.Tokens()
	sentences := doc.Sentences()

	graph := make(map[string]map[string]float64)
	scores := make(map[string]float64)

	for _, tok := range tokens {
		if isStopWord(tok.Text) || len(tok.Tag) == 0 || tok.Tag[0] != 'N' {
			continue
		}
		if _, ok := graph[tok.Text]; !ok {
			graph[tok.Text] = make(map[string]float64)
			scores[tok.Text] = 1.0
		}
	}

	for _, sent := range sentences {
		words := strings.Fields(sent.Text)
		for i, word := range words {
			if _, exists := graph[word]; !exists {
				continue
			}

			start := max(0, i-keywordWindow)
			end := min(len(words), i+keywordWindow)

			for j := start; j < end; j++ {
				if i == j {
					continue
				}
				coWord := words[j]
				if _, exists := graph[coWord]; exists {
					graph[word][coWord] += 1.0
					graph[coWord][word] += 1.0
				}
			}
		}
	}

	for iter := 0; iter < keywordMaxIter; iter++ {
		diff := 0.0
		next := make(map[string]float64, len(scores))

		for word := range graph {
			sum := 0.0
			for other, weight := range graph[word] {
				total := sumEdgeWeights(graph[other])
				if total > 0 {
					sum += weight * scores[other] / total
				}
			}
			score := (1 - keywordDamping) + keywordDamping*sum
			diff += math.Abs(score - scores[word])
			next[word] = score
		}

		if diff < keywordEpsilon {
			break
		}
		scores = next
	}

	for word, score := range scores {
		lower := strings.ToLower(word)
		for _, term := range legalBoostTerms {
			if strings.Contains(lower, term) {
				scores[word] = score * legalTermBoost
				break
			}
		}
	}

	keywords := make([]contract.Keyword, 0, len(scores))
	for word, score := range scores {
		startPos := strings.Index(doc.Text, word)
		if startPos < 0 {
			continue
		}
		keywords = append(keywords, contract.Keyword{
			Text:     word,
			Score:    score,
			StartPos: startPos,
			EndPos:   startPos + len(word),
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Score != keywords[j].Score {
			return keywords[i].Score > keywords[j].Score
		}
		return keywords[i].Text < keywords[j].Text
	})

	if len(keywords) > keywordMaxResult {
		keywords = keywords[:keywordMaxResult]
	}

	return keywords
}

func isStopWord(word string) bool {
	return stopWords.Contains(strings.ToLower(word))
}

func sumEdgeWeights(edges map[string]float64) float64 {
	sum := 0.0
	for _, weight := range edges {
		sum += weight
	}
	return sum
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

package analyzer

import (
	"sort"
	"strings"
)

const (
	// minSentenceLength filters out fragments and navigation noise.
	minSentenceLength = 20

	// maxRelevantSentences bounds each category's matched sentence list.
	maxRelevantSentences = 5

	// longKeywordLength marks keywords specific enough to count double.
	longKeywordLength = 5
)

type scoredSentence struct {
	text  string
	score int
}

// findRelevantSentences splits text into sentences and returns the up-to-5
// most relevant ones for the given keyword list, most relevant first.
// Deliberately simple and deterministic: a weighted substring count stands in
// for semantic retrieval so results are reproducible and cheap.
func findRelevantSentences(text string, keywords []string) []string {
	sentences := sentenceSplit.Split(text, -1)

	scored := make([]scoredSentence, 0, len(sentences))
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLength {
			continue
		}

		lower := strings.ToLower(sentence)
		score := 0
		for _, keyword := range keywords {
			occurrences := strings.Count(lower, strings.ToLower(keyword))
			if occurrences == 0 {
				continue
			}
			weight := 1
			if len(keyword) > longKeywordLength {
				weight = 2
			}
			score += occurrences * weight
		}
		if score > 0 {
			scored = append(scored, scoredSentence{text: sentence, score: score})
		}
	}

	// Stable sort keeps document order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := len(scored)
	if limit > maxRelevantSentences {
		limit = maxRelevantSentences
	}

	result := make([]string, 0, limit)
	for _, s := range scored[:limit] {
		result = append(result, s.text)
	}
	return result
}

package queue

import "strings"

const (
	chunkWords   = 300
	chunkOverlap = 50
)

// chunkText splits text into word-based chunks with a fixed overlap so
// each embedding retains some surrounding context. Returns nil for
// whitespace-only input.
func chunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	step := chunkWords - chunkOverlap
	for start := 0; start < len(words); start += step {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

package analyzer

import (
	"math"
	"regexp"
	"strings"

	"github.com/zombar/legalens/internal/models"
)

const (
	// wordsPerMinute is the assumed reading speed for reading time estimates.
	wordsPerMinute = 200

	// truncateWordThreshold bounds downstream token costs for very long
	// documents; content above it is cut to the first 70% of sentences.
	truncateWordThreshold = 3000
	truncateKeepRatio     = 0.7
)

var (
	unsafeCharsRe = regexp.MustCompile(`[^\w\s.,;:!?()'"%&/@-]`)
	blankLinesRe  = regexp.MustCompile(`\n\s*\n+`)
	spacesRe      = regexp.MustCompile(`[ \t]+`)
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
)

// Normalize cleans raw extracted text and computes the document statistics
// every downstream component reads. The declared type is overridden when
// content sniffing finds a more specific marker phrase.
func Normalize(raw string, declared models.DocumentType) models.NormalizedDocument {
	cleaned := cleanContent(raw)

	docType := declared
	if !docType.Valid() {
		docType = models.TypeTerms
	}
	docType = sniffDocumentType(cleaned, docType)

	wordCount := len(strings.Fields(cleaned))
	if wordCount > truncateWordThreshold {
		cleaned = truncateSentences(cleaned)
		wordCount = len(strings.Fields(cleaned))
	}

	readingTime := 0
	if wordCount > 0 {
		readingTime = int(math.Ceil(float64(wordCount) / wordsPerMinute))
	}

	return models.NormalizedDocument{
		RawText:            raw,
		CleanedText:        cleaned,
		WordCount:          wordCount,
		ReadingTimeMinutes: readingTime,
		DocumentType:       docType,
	}
}

// cleanContent strips characters outside the safe punctuation set, collapses
// whitespace runs, and reduces multiple blank lines to one.
func cleanContent(text string) string {
	text = unsafeCharsRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n")
	text = spacesRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// sniffDocumentType overrides the generic default type when the content
// carries a type-specific marker phrase. Fixed priority list, first match wins.
func sniffDocumentType(content string, declared models.DocumentType) models.DocumentType {
	if declared != models.TypeTerms {
		return declared
	}
	lower := strings.ToLower(content)
	for _, m := range typeMarkers() {
		if strings.Contains(lower, m.marker) {
			return m.docType
		}
	}
	return declared
}

// truncateSentences keeps the first 70% of sentences, re-joined with ". ".
func truncateSentences(text string) string {
	sentences := sentenceSplit.Split(text, -1)
	keep := int(float64(len(sentences)) * truncateKeepRatio)
	if keep < 1 {
		keep = 1
	}

	kept := make([]string, 0, keep)
	for _, s := range sentences[:keep] {
		s = strings.TrimSpace(s)
		if s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ". ")
}

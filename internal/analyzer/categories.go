package analyzer

import (
	"math"

	"github.com/zombar/legalens/internal/models"
)

// baseCategories always run; conditional categories run per document type.
var baseCategories = []string{
	models.CategoryDataCollection,
	models.CategoryUserRights,
	models.CategoryDataSharing,
	models.CategorySecurity,
}

// conditionalCategories maps each optional category to the document types
// that trigger it.
var conditionalCategories = map[string][]models.DocumentType{
	models.CategoryContractTerms:   {models.TypeContract, models.TypeEULA},
	models.CategoryConfidentiality: {models.TypeNDA},
}

// AnalyzeCategories runs the relevance finder once per applicable category and
// converts each matched-sentence count into a 0-10 raw score. Deterministic:
// the same document always yields identical findings.
func AnalyzeCategories(doc models.NormalizedDocument) []models.CategoryFinding {
	keywords := categoryKeywords()

	categories := make([]string, 0, len(baseCategories)+2)
	categories = append(categories, baseCategories...)
	for _, name := range []string{models.CategoryContractTerms, models.CategoryConfidentiality} {
		for _, t := range conditionalCategories[name] {
			if doc.DocumentType == t {
				categories = append(categories, name)
				break
			}
		}
	}

	findings := make([]models.CategoryFinding, 0, len(categories))
	for _, name := range categories {
		sentences := findRelevantSentences(doc.CleanedText, keywords[name])
		findings = append(findings, models.CategoryFinding{
			Category:         name,
			Found:            len(sentences) > 0,
			MatchedSentences: sentences,
			RawScore:         adjustCategoryScore(name, len(sentences)),
		})
	}
	return findings
}

// adjustCategoryScore applies the category-specific nonlinear adjustment.
// The constants are tuned, not derived; changing them changes scoring
// outcomes that downstream thresholds depend on.
func adjustCategoryScore(category string, matchCount int) float64 {
	base := math.Min(float64(matchCount)*1.5, 10)

	switch category {
	case models.CategoryDataCollection:
		// Capped lower: collection mentions alone don't imply good practice.
		return math.Min(base*0.8, 8)
	case models.CategoryUserRights:
		// Rights language is a positive signal worth amplifying.
		return math.Min(base*1.2, 10)
	case models.CategoryDataSharing:
		// Floored: even sparse sharing sections indicate nonzero practice.
		return math.Max(base, 3)
	case models.CategorySecurity:
		return math.Min(base*1.1, 10)
	case models.CategoryContractTerms:
		return math.Min(base, 10)
	case models.CategoryConfidentiality:
		return math.Min(base*1.1, 10)
	}
	return base
}

// Package analyzer implements the deterministic document analysis core:
// content normalization, keyword-driven category detection, risk phrase
// scanning, weighted scoring, and recommendation generation.
package analyzer

import (
	"github.com/zombar/legalens/internal/models"
)

// Analysis bundles everything the deterministic core produces for one
// normalized document.
type Analysis struct {
	Document models.NormalizedDocument
	Findings []models.CategoryFinding
	Risks    []models.RiskFinding
	Score    models.ComprehensiveScore
}

// Analyze normalizes raw content and runs category analysis, risk assessment,
// scoring, and recommendation generation in one pass. Pure and idempotent:
// the same input always yields the same Analysis.
func Analyze(raw string, declared models.DocumentType) Analysis {
	doc := Normalize(raw, declared)

	findings := AnalyzeCategories(doc)
	risks := AssessRisks(doc)
	score := Score(findings, doc.DocumentType, risks)
	score.Recommendations = Recommend(findings, doc.DocumentType, score.RiskFactors, score.OverallScore)

	return Analysis{
		Document: doc,
		Findings: findings,
		Risks:    risks,
		Score:    score,
	}
}

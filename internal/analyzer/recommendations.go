package analyzer

import (
	"github.com/zombar/legalens/internal/models"
)

// maxRecommendations bounds the list; generation order is preserved and the
// list is truncated, never re-sorted.
const maxRecommendations = 6

// Recommend derives actionable recommendations from category findings, risk
// factors, document type, and the overall score, in fixed priority order:
// category thresholds, then risk presence, then document-type remarks, then
// one mutually exclusive score-band remark.
func Recommend(findings []models.CategoryFinding, docType models.DocumentType, riskFactors []string, overallScore int) []string {
	byCategory := make(map[string]models.CategoryFinding, len(findings))
	for _, f := range findings {
		byCategory[f.Category] = f
	}

	recs := make([]string, 0, maxRecommendations)

	if byCategory[models.CategoryDataCollection].RawScore < 7 {
		recs = append(recs, "Review what personal data is collected; the document gives limited detail about collection practices.")
	}
	if byCategory[models.CategoryUserRights].RawScore < 7 {
		recs = append(recs, "Check what rights you have over your data; user rights coverage is thin or missing.")
	}
	if byCategory[models.CategoryDataSharing].RawScore > 5 {
		recs = append(recs, "Pay attention to third-party sharing clauses; this document discloses substantial data sharing.")
	}
	if byCategory[models.CategorySecurity].RawScore < 7 {
		recs = append(recs, "Look for security commitments; the document says little about how your data is protected.")
	}

	if len(riskFactors) > 0 {
		recs = append(recs, "Review the flagged risk clauses carefully before agreeing to this document.")
	}

	switch docType {
	case models.TypePrivacy:
		if overallScore < 60 {
			recs = append(recs, "Consider whether this policy meets GDPR/CCPA expectations before sharing personal data.")
		}
	case models.TypeNDA:
		recs = append(recs, "Verify the confidentiality scope and duration match what you are comfortable committing to.")
	}

	switch {
	case overallScore < 40:
		recs = append(recs, "This document scores poorly overall; seek legal advice before accepting it.")
	case overallScore < 60:
		recs = append(recs, "Several areas scored below average; read the full document rather than relying on the summary.")
	case overallScore < 80:
		recs = append(recs, "Reasonable overall, but review the lower-scoring categories above.")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

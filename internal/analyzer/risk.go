package analyzer

import (
	"strings"

	"github.com/zombar/legalens/internal/models"
)

// maxRiskFindings caps the findings list for performance and readability.
const maxRiskFindings = 5

// AssessRisks scans content for the fixed high- and medium-risk phrase lists,
// in list order, and returns at most 5 findings. The high-risk list is
// exhausted first, so high-risk phrases always win when the cap is reached.
// Matching is plain substring containment, not word-boundary matching.
func AssessRisks(doc models.NormalizedDocument) []models.RiskFinding {
	lower := strings.ToLower(doc.CleanedText)

	findings := make([]models.RiskFinding, 0, maxRiskFindings)
	for _, phrase := range highRiskPhrases() {
		if len(findings) >= maxRiskFindings {
			return findings
		}
		if strings.Contains(lower, phrase) {
			findings = append(findings, models.RiskFinding{Severity: models.RiskHigh, Phrase: phrase})
		}
	}
	for _, phrase := range mediumRiskPhrases() {
		if len(findings) >= maxRiskFindings {
			return findings
		}
		if strings.Contains(lower, phrase) {
			findings = append(findings, models.RiskFinding{Severity: models.RiskMedium, Phrase: phrase})
		}
	}
	return findings
}

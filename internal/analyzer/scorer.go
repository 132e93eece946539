package analyzer

import (
	"math"

	"github.com/zombar/legalens/internal/models"
)

// Fixed maxima for the document-type-specific bonus categories.
const (
	contractTermsMax   = 15
	confidentialityMax = 20

	riskPenaltyPerFinding = 3
	riskPenaltyCap        = 15
)

// scoreWeightsByType keys the static weight tables by document type.
// Every row sums to 100.
var scoreWeightsByType = map[models.DocumentType]models.ScoreWeights{
	models.TypePrivacy:  {DataCollection: 30, UserRights: 30, DataSharing: 20, Security: 20},
	models.TypeTerms:    {DataCollection: 25, UserRights: 25, DataSharing: 25, Security: 25},
	models.TypeNDA:      {DataCollection: 15, UserRights: 20, DataSharing: 35, Security: 30},
	models.TypeContract: {DataCollection: 20, UserRights: 30, DataSharing: 25, Security: 25},
	models.TypeEULA:     {DataCollection: 25, UserRights: 30, DataSharing: 25, Security: 20},
	models.TypeCookies:  {DataCollection: 35, UserRights: 25, DataSharing: 25, Security: 15},
}

var categoryDescriptions = map[string]string{
	models.CategoryDataCollection:  "Transparency about what personal data is collected",
	models.CategoryUserRights:      "Rights offered to users over their data",
	models.CategoryDataSharing:     "Extent of data sharing with third parties (less is better)",
	models.CategorySecurity:        "Security measures protecting stored data",
	models.CategoryContractTerms:   "Clarity of contractual terms and obligations",
	models.CategoryConfidentiality: "Scope and fairness of confidentiality obligations",
}

// WeightsFor returns the score weight table for a document type.
// Unknown types fall back to the default (terms) weights.
func WeightsFor(docType models.DocumentType) models.ScoreWeights {
	if w, ok := scoreWeightsByType[docType]; ok {
		return w
	}
	return scoreWeightsByType[models.TypeTerms]
}

// RatingForScore maps an overall score to its qualitative rating and color.
// Bands use inclusive lower bounds: 80, 65, 50, 35.
func RatingForScore(score int) (models.Rating, string) {
	switch {
	case score >= 80:
		return models.RatingExcellent, "green"
	case score >= 65:
		return models.RatingGood, "blue"
	case score >= 50:
		return models.RatingFair, "yellow"
	case score >= 35:
		return models.RatingPoor, "orange"
	default:
		return models.RatingVeryPoor, "red"
	}
}

// Score combines category findings, document-type weights, and the risk
// penalty into the final 0-100 score with rating and breakdown.
func Score(findings []models.CategoryFinding, docType models.DocumentType, risks []models.RiskFinding) models.ComprehensiveScore {
	byCategory := make(map[string]models.CategoryFinding, len(findings))
	for _, f := range findings {
		byCategory[f.Category] = f
	}

	weights := WeightsFor(docType)
	breakdown := make(map[string]models.ScoreBreakdownEntry, len(findings))
	total := 0.0

	collection := weightPositive(byCategory[models.CategoryDataCollection], weights.DataCollection, docType)
	total += collection
	breakdown[models.CategoryDataCollection] = entry(collection, weights.DataCollection, models.CategoryDataCollection)

	rights := weightPositive(byCategory[models.CategoryUserRights], weights.UserRights, docType)
	total += rights
	breakdown[models.CategoryUserRights] = entry(rights, weights.UserRights, models.CategoryUserRights)

	sharing := weightSharing(byCategory[models.CategoryDataSharing], weights.DataSharing)
	total += sharing
	breakdown[models.CategoryDataSharing] = entry(sharing, weights.DataSharing, models.CategoryDataSharing)

	security := weightSecurity(byCategory[models.CategorySecurity], weights.Security)
	total += security
	breakdown[models.CategorySecurity] = entry(security, weights.Security, models.CategorySecurity)

	if f, ok := byCategory[models.CategoryContractTerms]; ok {
		contract := 8.0
		if f.Found {
			contract = clamp(f.RawScore*1.5, 5, contractTermsMax)
		}
		total += contract
		breakdown[models.CategoryContractTerms] = entry(contract, contractTermsMax, models.CategoryContractTerms)
	}

	if f, ok := byCategory[models.CategoryConfidentiality]; ok {
		confidentiality := 10.0
		if f.Found {
			confidentiality = clamp(f.RawScore*2, 5, confidentialityMax)
		}
		total += confidentiality
		breakdown[models.CategoryConfidentiality] = entry(confidentiality, confidentialityMax, models.CategoryConfidentiality)
	}

	penalty := riskPenaltyPerFinding * len(risks)
	if penalty > riskPenaltyCap {
		penalty = riskPenaltyCap
	}

	overall := int(math.Round(total)) - penalty
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	rating, color := RatingForScore(overall)

	riskFactors := make([]string, 0, len(risks))
	for _, r := range risks {
		riskFactors = append(riskFactors, r.Label())
	}

	return models.ComprehensiveScore{
		OverallScore: overall,
		Rating:       rating,
		Color:        color,
		Breakdown:    breakdown,
		RiskFactors:  riskFactors,
		RiskPenalty:  penalty,
	}
}

// weightPositive handles data collection and user rights, where more detected
// detail is a positive transparency signal.
func weightPositive(f models.CategoryFinding, weight float64, docType models.DocumentType) float64 {
	if f.Found {
		return clamp(f.RawScore*weight/10, 5, weight)
	}
	if docType == models.TypePrivacy {
		return 5
	}
	return weight / 2
}

// weightSharing inverts the signal: for sharing, detection volume is itself
// the negative being measured, so a higher raw score reduces the result.
func weightSharing(f models.CategoryFinding, weight float64) float64 {
	if !f.Found {
		return weight * 0.8
	}
	return weight - clamp(f.RawScore*weight/15, 0, weight-5)
}

func weightSecurity(f models.CategoryFinding, weight float64) float64 {
	if !f.Found {
		return weight / 2
	}
	return clamp(f.RawScore*weight/10, 5, weight)
}

func entry(score, max float64, category string) models.ScoreBreakdownEntry {
	return models.ScoreBreakdownEntry{
		Score:       int(math.Round(score)),
		MaxScore:    int(max),
		Description: categoryDescriptions[category],
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

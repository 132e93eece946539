package models

import "time"

// DocumentType classifies the kind of legal document being analyzed.
type DocumentType string

const (
	TypeTerms    DocumentType = "terms"
	TypePrivacy  DocumentType = "privacy"
	TypeNDA      DocumentType = "nda"
	TypeContract DocumentType = "contract"
	TypeEULA     DocumentType = "eula"
	TypeCookies  DocumentType = "cookies"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeTerms, TypePrivacy, TypeNDA, TypeContract, TypeEULA, TypeCookies:
		return true
	}
	return false
}

// Category names for the fixed analysis dimensions.
const (
	CategoryDataCollection  = "data_collection"
	CategoryUserRights      = "user_rights"
	CategoryDataSharing     = "data_sharing"
	CategorySecurity        = "security"
	CategoryContractTerms   = "contract_terms"
	CategoryConfidentiality = "confidentiality_terms"
)

// NormalizedDocument is the cleaned, immutable input to the analysis core.
type NormalizedDocument struct {
	RawText            string       `json:"raw_text"`
	CleanedText        string       `json:"cleaned_text"`
	WordCount          int          `json:"word_count"`
	ReadingTimeMinutes int          `json:"reading_time_minutes"`
	DocumentType       DocumentType `json:"document_type"`
}

// CategoryFinding holds the relevance result for one analysis category.
type CategoryFinding struct {
	Category         string   `json:"category"`
	Found            bool     `json:"found"`
	MatchedSentences []string `json:"matched_sentences"`
	RawScore         float64  `json:"raw_score"` // 0-10 after the category adjustment
}

// RiskSeverity labels a risk finding.
type RiskSeverity string

const (
	RiskHigh   RiskSeverity = "High"
	RiskMedium RiskSeverity = "Medium"
)

// RiskFinding is one detected risk phrase.
type RiskFinding struct {
	Severity RiskSeverity `json:"severity"`
	Phrase   string       `json:"phrase"`
}

// Label renders the finding the way it appears in risk factor lists.
func (f RiskFinding) Label() string {
	return string(f.Severity) + ": " + f.Phrase
}

// ScoreWeights is the maximum point contribution of each base category
// toward the 0-100 overall score. Weights always sum to 100.
type ScoreWeights struct {
	DataCollection float64 `json:"data_collection"`
	UserRights     float64 `json:"user_rights"`
	DataSharing    float64 `json:"data_sharing"`
	Security       float64 `json:"security"`
}

// Sum returns the total of all weights.
func (w ScoreWeights) Sum() float64 {
	return w.DataCollection + w.UserRights + w.DataSharing + w.Security
}

// ScoreBreakdownEntry is the weighted result for one category.
type ScoreBreakdownEntry struct {
	Score       int    `json:"score"`
	MaxScore    int    `json:"max_score"`
	Description string `json:"description"`
}

// Rating is the qualitative label derived from the overall score band.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingVeryPoor  Rating = "Very Poor"
)

// ComprehensiveScore is the terminal output of the scoring pipeline.
type ComprehensiveScore struct {
	OverallScore    int                            `json:"overall_score"` // 0-100
	Rating          Rating                         `json:"rating"`
	Color           string                         `json:"color"`
	Breakdown       map[string]ScoreBreakdownEntry `json:"breakdown"`
	RiskFactors     []string                       `json:"risk_factors"`
	RiskPenalty     int                            `json:"risk_penalty"` // 0-15
	Recommendations []string                       `json:"recommendations"`
}

// Source is a labeled reference shown alongside a finished analysis.
type Source struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// StorageStatus reports how the best-effort storage stage ended.
type StorageStatus string

const (
	StorageStored  StorageStatus = "stored"
	StorageLimited StorageStatus = "stored_with_limitations"
	StorageSkipped StorageStatus = "skipped"
)

// AnalysisResult is the full outcome of one document analysis request.
type AnalysisResult struct {
	ID            string             `json:"id"`
	DocumentType  DocumentType       `json:"document_type"`
	Title         string             `json:"title,omitempty"`
	WordCount     int                `json:"word_count"`
	ReadingTime   int                `json:"reading_time_minutes"`
	Score         ComprehensiveScore `json:"score"`
	Summary       string             `json:"summary"`
	Sources       []Source           `json:"sources"`
	StorageStatus StorageStatus      `json:"storage_status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

package analyzer

import (
	"strings"
	"testing"

	"github.com/zombar/legalens/internal/models"
)

func TestRecommendNoneForStrongDocument(t *testing.T) {
	findings := baseFindings(8, 9, 3, 8)
	recs := Recommend(findings, models.TypeTerms, nil, 85)
	if len(recs) != 0 {
		t.Errorf("strong document should produce no recommendations, got %v", recs)
	}
}

func TestRecommendCategoryThresholds(t *testing.T) {
	tests := []struct {
		name     string
		findings []models.CategoryFinding
		keyword  string
	}{
		{"weak collection", baseFindings(2, 9, 3, 8), "collected"},
		{"weak rights", baseFindings(8, 2, 3, 8), "rights"},
		{"heavy sharing", baseFindings(8, 9, 7, 8), "third-party"},
		{"weak security", baseFindings(8, 9, 3, 2), "security"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Recommend(tt.findings, models.TypeTerms, nil, 85)
			if len(recs) != 1 {
				t.Fatalf("got %d recommendations, want 1: %v", len(recs), recs)
			}
			if !strings.Contains(recs[0], tt.keyword) {
				t.Errorf("recommendation %q should mention %q", recs[0], tt.keyword)
			}
		})
	}
}

func TestRecommendRiskPresence(t *testing.T) {
	recs := Recommend(baseFindings(8, 9, 3, 8), models.TypeTerms,
		[]string{"High: sell your data"}, 85)
	if len(recs) != 1 || !strings.Contains(recs[0], "risk") {
		t.Errorf("got %v, want one risk review recommendation", recs)
	}
}

func TestRecommendPrivacyCompliance(t *testing.T) {
	// Below 60 a privacy policy earns the GDPR/CCPA remark.
	recs := Recommend(baseFindings(8, 9, 3, 8), models.TypePrivacy, nil, 55)
	joined := strings.Join(recs, " ")
	if !strings.Contains(joined, "GDPR") {
		t.Errorf("privacy below 60 should mention GDPR/CCPA: %v", recs)
	}

	recs = Recommend(baseFindings(8, 9, 3, 8), models.TypePrivacy, nil, 75)
	joined = strings.Join(recs, " ")
	if strings.Contains(joined, "GDPR") {
		t.Errorf("privacy at 75 should not mention GDPR/CCPA: %v", recs)
	}
}

func TestRecommendNDAScopeAlways(t *testing.T) {
	recs := Recommend(baseFindings(8, 9, 3, 8), models.TypeNDA, nil, 90)
	joined := strings.Join(recs, " ")
	if !strings.Contains(joined, "confidentiality scope") {
		t.Errorf("nda should always get the scope reminder: %v", recs)
	}
}

func TestRecommendScoreBandsExclusive(t *testing.T) {
	tests := []struct {
		score   int
		keyword string
	}{
		{30, "legal advice"},
		{50, "below average"},
		{70, "Reasonable overall"},
		{85, ""},
	}

	for _, tt := range tests {
		recs := Recommend(baseFindings(8, 9, 3, 8), models.TypeTerms, nil, tt.score)
		joined := strings.Join(recs, " ")

		if tt.keyword == "" {
			if len(recs) != 0 {
				t.Errorf("score %d: got %v, want none", tt.score, recs)
			}
			continue
		}
		if !strings.Contains(joined, tt.keyword) {
			t.Errorf("score %d: %v should contain %q", tt.score, recs, tt.keyword)
		}
		// Only one band remark fires.
		bandHits := 0
		for _, kw := range []string{"legal advice", "below average", "Reasonable overall"} {
			if strings.Contains(joined, kw) {
				bandHits++
			}
		}
		if bandHits != 1 {
			t.Errorf("score %d: %d band remarks fired, want 1: %v", tt.score, bandHits, recs)
		}
	}
}

func TestRecommendCapAtSix(t *testing.T) {
	// Weak everything on a low-scoring privacy policy with risks fires
	// seven candidates; the list truncates to six.
	recs := Recommend(baseFindings(2, 2, 7, 2), models.TypePrivacy,
		[]string{"High: without notice"}, 30)
	if len(recs) != 6 {
		t.Errorf("got %d recommendations, want capped at 6: %v", len(recs), recs)
	}
}

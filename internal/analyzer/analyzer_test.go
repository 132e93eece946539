package analyzer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/zombar/legalens/internal/models"
)

const samplePrivacyPolicy = `Privacy Policy.
We collect personal information including your email address, IP address and
location data when you use our services. We may sell your data to advertising
partners and other third parties at our discretion.
You can opt out of marketing emails and request a copy of your data under GDPR.
We protect stored data with encryption and access control measures.
Records may be retained indefinitely as long as necessary.`

func TestAnalyzeEndToEnd(t *testing.T) {
	result := Analyze(samplePrivacyPolicy, models.TypeTerms)

	// Content sniffing upgrades the declared default.
	if result.Document.DocumentType != models.TypePrivacy {
		t.Errorf("DocumentType = %q, want privacy (sniffed)", result.Document.DocumentType)
	}

	if len(result.Findings) != 4 {
		t.Fatalf("got %d findings, want 4", len(result.Findings))
	}
	for _, f := range result.Findings {
		if !f.Found {
			t.Errorf("category %q should be found in the sample policy", f.Category)
		}
	}

	var labels []string
	for _, r := range result.Risks {
		labels = append(labels, r.Label())
	}
	joined := strings.Join(labels, "; ")
	if !strings.Contains(joined, "High: sell your data") {
		t.Errorf("risks %v should include High: sell your data", labels)
	}

	if result.Score.OverallScore < 0 || result.Score.OverallScore > 100 {
		t.Errorf("OverallScore = %d, want within [0,100]", result.Score.OverallScore)
	}
	if result.Score.RiskPenalty == 0 {
		t.Error("RiskPenalty should be nonzero for the sample policy")
	}
	if len(result.Score.Recommendations) == 0 {
		t.Error("sample policy should yield recommendations")
	}
	if len(result.Score.Recommendations) > 6 {
		t.Errorf("got %d recommendations, cap is 6", len(result.Score.Recommendations))
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	first := Analyze(samplePrivacyPolicy, models.TypeTerms)
	second := Analyze(samplePrivacyPolicy, models.TypeTerms)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated analysis of identical input must produce identical results")
	}
}

func TestAnalyzeNDAScenario(t *testing.T) {
	text := `Non-Disclosure Agreement.
The receiving party shall hold all confidential information and trade secrets
in strict confidence for a perpetual term. The recipient must return or destroy
proprietary material on request. Obligations survive termination indefinitely.`

	result := Analyze(text, models.TypeTerms)

	if result.Document.DocumentType != models.TypeNDA {
		t.Errorf("DocumentType = %q, want nda (sniffed)", result.Document.DocumentType)
	}

	var confidentiality *models.CategoryFinding
	for i := range result.Findings {
		if result.Findings[i].Category == models.CategoryConfidentiality {
			confidentiality = &result.Findings[i]
		}
	}
	if confidentiality == nil {
		t.Fatal("nda analysis must include the confidentiality category")
	}
	if !confidentiality.Found {
		t.Error("confidentiality terms should be found")
	}

	// "perpetual" and "indefinite" are high-risk regardless of context.
	highs := 0
	for _, r := range result.Risks {
		if r.Severity == models.RiskHigh {
			highs++
		}
	}
	if highs < 2 {
		t.Errorf("got %d high risk findings, want at least 2: %v", highs, result.Risks)
	}

	joined := strings.Join(result.Score.Recommendations, " ")
	if !strings.Contains(joined, "confidentiality scope") {
		t.Errorf("nda recommendations %v should include the scope reminder", result.Score.Recommendations)
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	result := Analyze("", models.TypePrivacy)

	if result.Document.WordCount != 0 {
		t.Errorf("WordCount = %d, want 0", result.Document.WordCount)
	}
	for _, f := range result.Findings {
		if f.Found {
			t.Errorf("category %q found in empty document", f.Category)
		}
	}
	if len(result.Risks) != 0 {
		t.Errorf("got %d risks for empty document", len(result.Risks))
	}
	if result.Score.OverallScore < 0 || result.Score.OverallScore > 100 {
		t.Errorf("OverallScore = %d out of range", result.Score.OverallScore)
	}
}

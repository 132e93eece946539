package analyzer

import "github.com/zombar/legalens/internal/models"

// categoryKeywords returns the fixed keyword list for each analysis category.
// Keywords longer than 5 characters count double during relevance scoring.
func categoryKeywords() map[string][]string {
	return map[string][]string{
		models.CategoryDataCollection: {
			"collect", "personal information", "personal data", "information we collect",
			"data collection", "gather", "obtain", "ip address", "email address",
			"location data", "device information", "browsing history", "usage data",
			"log files", "identifiers",
		},
		models.CategoryUserRights: {
			"your rights", "access your", "delete your", "opt out", "opt-out",
			"unsubscribe", "data portability", "rectification", "erasure",
			"withdraw consent", "gdpr", "ccpa", "right to", "request a copy",
			"restrict processing",
		},
		models.CategoryDataSharing: {
			"third party", "third parties", "share your", "disclose", "sell",
			"transfer", "affiliates", "partners", "service providers",
			"advertisers", "business transfer", "merger", "subsidiaries",
		},
		models.CategorySecurity: {
			"security", "encrypt", "encryption", "protect", "safeguard",
			"ssl", "tls", "secure", "access control", "data breach",
			"two-factor", "incident response", "industry standard",
		},
		models.CategoryContractTerms: {
			"termination", "liability", "indemnify", "indemnification",
			"warranty", "governing law", "jurisdiction", "arbitration",
			"breach", "obligations", "payment terms", "renewal", "force majeure",
		},
		models.CategoryConfidentiality: {
			"confidential", "confidentiality", "non-disclosure", "proprietary",
			"trade secret", "disclosing party", "receiving party", "recipient",
			"return or destroy", "permitted purpose", "duty of care",
		},
	}
}

// highRiskPhrases are scanned first; a match is always preferred over a
// medium-risk one when the finding cap is reached.
func highRiskPhrases() []string {
	return []string{
		"sell your data",
		"sell your personal",
		"without notice",
		"without your consent",
		"waive your rights",
		"no liability",
		"track across websites",
		"perpetual",
		"indefinite",
		"irrevocable",
		"binding arbitration",
		"class action waiver",
	}
}

func mediumRiskPhrases() []string {
	return []string{
		"advertising partners",
		"government request",
		"law enforcement",
		"international transfer",
		"retain your data",
		"analytics providers",
		"change these terms",
		"automatic renewal",
		"at our discretion",
		"as long as necessary",
	}
}

// typeMarkers is the content-sniffing priority list applied when the caller
// declared the generic default type. First match wins.
type typeMarker struct {
	marker string
	docType models.DocumentType
}

func typeMarkers() []typeMarker {
	return []typeMarker{
		{"privacy", models.TypePrivacy},
		{"non-disclosure", models.TypeNDA},
		{"end user license", models.TypeEULA},
		{"cookie", models.TypeCookies},
	}
}

package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/zombar/legalens/internal/models"
)

func setupTestDatabase(t *testing.T) (*DB, func()) {
	t.Helper()
	testName := fmt.Sprintf("queries_%d", time.Now().UnixNano())
	connStr, dbCleanup := setupTestDB(t, testName)

	db, err := New(connStr)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		dbCleanup()
	}

	return db, cleanup
}

func createTestResult(id string, docType models.DocumentType) *models.AnalysisResult {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.AnalysisResult{
		ID:           id,
		DocumentType: docType,
		Title:        "Sample Privacy Policy",
		WordCount:    420,
		ReadingTime:  3,
		Score: models.ComprehensiveScore{
			OverallScore: 72,
			Rating:       models.RatingGood,
			Color:        "blue",
			Breakdown: map[string]models.ScoreBreakdownEntry{
				models.CategoryDataCollection: {Score: 22, MaxScore: 30, Description: "What data is collected and how"},
				models.CategoryUserRights:     {Score: 25, MaxScore: 30, Description: "Your rights over your data"},
				models.CategoryDataSharing:    {Score: 12, MaxScore: 20, Description: "Third-party sharing practices"},
				models.CategorySecurity:       {Score: 16, MaxScore: 20, Description: "Security measures described"},
			},
			RiskFactors:     []string{"Medium: advertising partners"},
			RiskPenalty:     3,
			Recommendations: []string{"Review the data sharing section carefully."},
		},
		Summary:       "A reasonably user-friendly privacy policy.",
		Sources:       []models.Source{{Label: "Document", Value: "privacy (420 words)"}},
		StorageStatus: models.StorageStored,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	result := createTestResult("doc-001", models.TypePrivacy)
	if err := db.SaveAnalysis(result, "https://example.com/privacy"); err != nil {
		t.Fatalf("Failed to save analysis: %v", err)
	}

	got, err := db.GetAnalysis("doc-001")
	if err != nil {
		t.Fatalf("Failed to get analysis: %v", err)
	}
	if got.ID != result.ID {
		t.Errorf("ID = %q, want %q", got.ID, result.ID)
	}
	if got.DocumentType != models.TypePrivacy {
		t.Errorf("DocumentType = %q, want %q", got.DocumentType, models.TypePrivacy)
	}
	if got.Score.OverallScore != 72 {
		t.Errorf("OverallScore = %d, want 72", got.Score.OverallScore)
	}
	if got.Score.Rating != models.RatingGood {
		t.Errorf("Rating = %q, want %q", got.Score.Rating, models.RatingGood)
	}
	if len(got.Score.Breakdown) != 4 {
		t.Errorf("Breakdown has %d entries, want 4", len(got.Score.Breakdown))
	}
}

func TestSaveAnalysisUpsert(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	result := createTestResult("doc-upsert", models.TypeTerms)
	if err := db.SaveAnalysis(result, "pasted text"); err != nil {
		t.Fatalf("Failed to save analysis: %v", err)
	}

	result.Score.OverallScore = 55
	result.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := db.SaveAnalysis(result, "pasted text"); err != nil {
		t.Fatalf("Failed to re-save analysis: %v", err)
	}

	got, err := db.GetAnalysis("doc-upsert")
	if err != nil {
		t.Fatalf("Failed to get analysis: %v", err)
	}
	if got.Score.OverallScore != 55 {
		t.Errorf("OverallScore after upsert = %d, want 55", got.Score.OverallScore)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	if _, err := db.GetAnalysis("missing"); err != ErrNotFound {
		t.Errorf("GetAnalysis(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListAnalyses(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	for i := 0; i < 5; i++ {
		result := createTestResult(fmt.Sprintf("doc-%03d", i), models.TypePrivacy)
		result.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		result.UpdatedAt = result.CreatedAt
		if err := db.SaveAnalysis(result, "test"); err != nil {
			t.Fatalf("Failed to save analysis %d: %v", i, err)
		}
	}

	results, err := db.ListAnalyses(3, 0)
	if err != nil {
		t.Fatalf("Failed to list analyses: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("ListAnalyses returned %d results, want 3", len(results))
	}
	// Newest first
	if results[0].ID != "doc-004" {
		t.Errorf("First result ID = %q, want doc-004", results[0].ID)
	}

	page2, err := db.ListAnalyses(3, 3)
	if err != nil {
		t.Fatalf("Failed to list second page: %v", err)
	}
	if len(page2) != 2 {
		t.Errorf("Second page has %d results, want 2", len(page2))
	}
}

func TestListAnalysesByType(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	types := []models.DocumentType{models.TypePrivacy, models.TypeNDA, models.TypePrivacy}
	for i, docType := range types {
		result := createTestResult(fmt.Sprintf("typed-%d", i), docType)
		if err := db.SaveAnalysis(result, "test"); err != nil {
			t.Fatalf("Failed to save analysis %d: %v", i, err)
		}
	}

	results, err := db.ListAnalysesByType(models.TypePrivacy, 10)
	if err != nil {
		t.Fatalf("Failed to list by type: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("ListAnalysesByType(privacy) returned %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.DocumentType != models.TypePrivacy {
			t.Errorf("Result %s has type %q, want privacy", r.ID, r.DocumentType)
		}
	}
}

func TestDeleteAnalysis(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	result := createTestResult("doc-del", models.TypeEULA)
	if err := db.SaveAnalysis(result, "test"); err != nil {
		t.Fatalf("Failed to save analysis: %v", err)
	}
	if err := db.SaveChunks([]Chunk{
		{UserID: "u1", DocID: "doc-del", ChunkIndex: 0, Content: "chunk one", Embedding: []float32{0.1, 0.2}},
		{UserID: "u1", DocID: "doc-del", ChunkIndex: 1, Content: "chunk two", Embedding: []float32{0.3, 0.4}},
	}); err != nil {
		t.Fatalf("Failed to save chunks: %v", err)
	}

	if err := db.DeleteAnalysis("doc-del"); err != nil {
		t.Fatalf("Failed to delete analysis: %v", err)
	}
	if _, err := db.GetAnalysis("doc-del"); err != ErrNotFound {
		t.Errorf("GetAnalysis after delete error = %v, want ErrNotFound", err)
	}
	count, err := db.CountChunks("doc-del")
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 0 {
		t.Errorf("Chunks remaining after delete = %d, want 0", count)
	}

	if err := db.DeleteAnalysis("doc-del"); err != ErrNotFound {
		t.Errorf("Second delete error = %v, want ErrNotFound", err)
	}
}

func TestSaveChunks(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	chunks := []Chunk{
		{UserID: "u1", DocID: "doc-c", ChunkIndex: 0, Content: "first", Embedding: []float32{0.5}},
		{UserID: "u1", DocID: "doc-c", ChunkIndex: 1, Content: "second", Embedding: []float32{0.6}},
		{UserID: "u1", DocID: "doc-c", ChunkIndex: 2, Content: "third", Embedding: []float32{0.7}},
	}
	if err := db.SaveChunks(chunks); err != nil {
		t.Fatalf("Failed to save chunks: %v", err)
	}

	count, err := db.CountChunks("doc-c")
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 3 {
		t.Errorf("CountChunks = %d, want 3", count)
	}

	// Re-saving the same indexes upserts rather than duplicating.
	if err := db.SaveChunks(chunks[:2]); err != nil {
		t.Fatalf("Failed to re-save chunks: %v", err)
	}
	count, err = db.CountChunks("doc-c")
	if err != nil {
		t.Fatalf("Failed to count chunks: %v", err)
	}
	if count != 3 {
		t.Errorf("CountChunks after upsert = %d, want 3", count)
	}
}

func TestSaveChunksEmpty(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	if err := db.SaveChunks(nil); err != nil {
		t.Errorf("SaveChunks(nil) error = %v, want nil", err)
	}
}

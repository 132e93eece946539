// Package pipeline sequences a single document analysis request through its
// stages: content extraction, document analysis, scoring, best-effort
// storage, and summary generation. Stages run in strict order and fail fast,
// except storage, which degrades to a soft-failure status.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombar/legalens/internal/analyzer"
	"github.com/zombar/legalens/internal/models"
)

// Stage identifies one step of the sequential pipeline.
type Stage string

const (
	StageContentExtraction Stage = "content_extraction"
	StageDocumentAnalysis  Stage = "document_analysis"
	StageScoring           Stage = "scoring"
	StageStorage           Stage = "storage"
	StageSummary           Stage = "summary_generation"
)

// Stage budgets. The overall budget bounds the whole request; fetch and file
// processing carry their own tighter or looser limits.
const (
	OverallBudget = 90 * time.Second
	FetchBudget   = 15 * time.Second
	FileBudget    = 120 * time.Second
)

// minPastedWords is the minimum word count for direct pasted text input.
const minPastedWords = 100

// FetchedContent is what the content fetcher collaborator returns for a URL.
type FetchedContent struct {
	Text         string
	Title        string
	DocumentType models.DocumentType
}

// ContentFetcher retrieves extracted plain text for a URL. Implementations
// must strip navigation and boilerplate markup before returning.
type ContentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (FetchedContent, error)
}

// SummaryInput is the structured analysis handed to the summary generator.
type SummaryInput struct {
	DocumentType models.DocumentType
	Title        string
	Findings     []models.CategoryFinding
	Score        models.ComprehensiveScore
}

// Summarizer turns a finished analysis into a narrative summary.
type Summarizer interface {
	Summarize(ctx context.Context, input SummaryInput) (string, error)
}

// Storer enqueues the best-effort chunk/embedding storage work.
type Storer interface {
	EnqueueStoreDocument(ctx context.Context, docID, userID, text string) (string, error)
}

// Reporter receives stage transitions. Callers may log them or publish
// progress; it never influences control flow.
type Reporter func(stage Stage, status string)

// Request describes one analysis request.
type Request struct {
	// Input is a URL (http:// or https:// prefix) or pasted document text.
	// Ignored when FileText is set.
	Input string

	// FileText is pre-extracted text from an uploaded file, if any.
	FileText string
	FileName string

	DocumentType models.DocumentType
	UserID       string
}

// Pipeline orchestrates one request end to end.
type Pipeline struct {
	fetcher    ContentFetcher
	summarizer Summarizer
	storer     Storer // nil disables the storage stage
	logger     *slog.Logger
	reporter   Reporter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStorer enables the best-effort storage stage.
func WithStorer(s Storer) Option {
	return func(p *Pipeline) { p.storer = s }
}

// WithReporter installs a stage transition callback.
func WithReporter(r Reporter) Option {
	return func(p *Pipeline) { p.reporter = r }
}

// New creates a Pipeline with the required collaborators.
func New(fetcher ContentFetcher, summarizer Summarizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		summarizer: summarizer,
		logger:     slog.Default(),
		reporter:   func(Stage, string) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the full pipeline for one request.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	budget := OverallBudget
	if req.FileText != "" {
		budget = FileBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	text, title, source, err := p.extractContent(ctx, req)
	if err != nil {
		p.reporter(StageContentExtraction, "failed")
		return nil, err
	}
	p.reporter(StageContentExtraction, "done")

	// Analysis and scoring are pure and deterministic; they cannot fail
	// once content extraction has produced usable text.
	doc := analyzer.Normalize(text, req.DocumentType)
	findings := analyzer.AnalyzeCategories(doc)
	risks := analyzer.AssessRisks(doc)
	p.reporter(StageDocumentAnalysis, "done")

	score := analyzer.Score(findings, doc.DocumentType, risks)
	score.Recommendations = analyzer.Recommend(findings, doc.DocumentType, score.RiskFactors, score.OverallScore)
	p.reporter(StageScoring, "done")

	docID := uuid.NewString()
	storageStatus := p.storeDocument(ctx, docID, req.UserID, doc.CleanedText)

	summary, err := p.generateSummary(ctx, SummaryInput{
		DocumentType: doc.DocumentType,
		Title:        title,
		Findings:     findings,
		Score:        score,
	})
	if err != nil {
		p.reporter(StageSummary, "failed")
		return nil, err
	}
	p.reporter(StageSummary, "done")

	now := time.Now().UTC()
	result := &models.AnalysisResult{
		ID:            docID,
		DocumentType:  doc.DocumentType,
		Title:         title,
		WordCount:     doc.WordCount,
		ReadingTime:   doc.ReadingTimeMinutes,
		Score:         score,
		Summary:       summary,
		Sources:       buildSources(source, score),
		StorageStatus: storageStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	p.logger.Info("analysis pipeline completed",
		"analysis_id", result.ID,
		"document_type", result.DocumentType,
		"overall_score", score.OverallScore,
		"storage_status", storageStatus,
	)
	return result, nil
}

// extractContent resolves the input branch decided once at start: uploaded
// file text, URL fetch, or direct pasted text.
func (p *Pipeline) extractContent(ctx context.Context, req Request) (text, title, source string, err error) {
	switch {
	case req.FileText != "":
		if strings.TrimSpace(req.FileText) == "" {
			return "", "", "", &Error{
				Kind:    KindInsufficientContent,
				Stage:   StageContentExtraction,
				Message: "extracted file text is empty; the file may be corrupted or protected",
			}
		}
		return req.FileText, req.FileName, "uploaded file: " + req.FileName, nil

	case strings.HasPrefix(req.Input, "http://") || strings.HasPrefix(req.Input, "https://"):
		fetchCtx, cancel := context.WithTimeout(ctx, FetchBudget)
		defer cancel()

		fetched, ferr := p.fetcher.Fetch(fetchCtx, req.Input)
		if ferr != nil {
			return "", "", "", wrapStage(StageContentExtraction, KindFetchFailure,
				"failed to fetch "+req.Input, ferr)
		}
		if strings.TrimSpace(fetched.Text) == "" {
			return "", "", "", &Error{
				Kind:    KindInsufficientContent,
				Stage:   StageContentExtraction,
				Message: "no readable content extracted from " + req.Input,
			}
		}
		// Prefer the fetcher's sniffed type when the caller used the default.
		if (req.DocumentType == "" || req.DocumentType == models.TypeTerms) && fetched.DocumentType.Valid() {
			req.DocumentType = fetched.DocumentType
		}
		return fetched.Text, fetched.Title, req.Input, nil

	case len(strings.Fields(req.Input)) > minPastedWords:
		return req.Input, "", "pasted text", nil

	default:
		return "", "", "", &Error{
			Kind:    KindInvalidInput,
			Stage:   StageContentExtraction,
			Message: "provide a URL or at least 100 words of document text",
		}
	}
}

// storeDocument runs the supervised best-effort storage stage. Failure never
// aborts the request; the result just records the degraded status.
func (p *Pipeline) storeDocument(ctx context.Context, docID, userID, text string) models.StorageStatus {
	if p.storer == nil {
		p.reporter(StageStorage, "skipped")
		return models.StorageSkipped
	}

	if _, err := p.storer.EnqueueStoreDocument(ctx, docID, userID, text); err != nil {
		p.logger.Warn("storage stage failed, continuing without retrievability",
			"analysis_id", docID,
			"error", err,
		)
		p.reporter(StageStorage, "soft_failed")
		return models.StorageLimited
	}
	p.reporter(StageStorage, "done")
	return models.StorageStored
}

func (p *Pipeline) generateSummary(ctx context.Context, input SummaryInput) (string, error) {
	summary, err := p.summarizer.Summarize(ctx, input)
	if err != nil {
		message := "summary generation failed"
		if isRateLimited(err) {
			message = "summary generation is rate limited, retry shortly"
		}
		return "", wrapStage(StageSummary, KindUpstreamFailure, message, err)
	}
	return summary, nil
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests")
}

func buildSources(source string, score models.ComprehensiveScore) []models.Source {
	return []models.Source{
		{Label: "Document", Value: source},
		{Label: "Analysis", Value: "keyword heuristics across data practice categories"},
		{Label: "Score", Value: string(score.Rating)},
	}
}

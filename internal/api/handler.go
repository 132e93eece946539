// Package api exposes the HTTP surface of the analysis service.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/legalens/internal/database"
	"github.com/zombar/legalens/internal/extract"
	"github.com/zombar/legalens/internal/metrics"
	"github.com/zombar/legalens/internal/models"
	"github.com/zombar/legalens/internal/pipeline"
)

// maxUploadBytes caps multipart file uploads.
const maxUploadBytes = 10 << 20 // 10 MiB

// Store is the persistence surface the handler needs. *database.DB
// satisfies it; tests substitute a fake.
type Store interface {
	SaveAnalysis(result *models.AnalysisResult, source string) error
	GetAnalysis(id string) (*models.AnalysisResult, error)
	ListAnalyses(limit, offset int) ([]*models.AnalysisResult, error)
	ListAnalysesByType(docType models.DocumentType, limit int) ([]*models.AnalysisResult, error)
	DeleteAnalysis(id string) error
}

// Handler handles HTTP requests.
type Handler struct {
	store    Store
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
	mux      *http.ServeMux
}

// NewHandler creates a new API handler with CORS support and metrics.
// store may be nil when persistence is disabled.
func NewHandler(store Store, pl *pipeline.Pipeline, m *metrics.Metrics) http.Handler {
	h := &Handler{
		store:    store,
		pipeline: pl,
		metrics:  m,
		mux:      http.NewServeMux(),
	}

	h.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.instrument(h.mux))
}

// statusRecorder captures the response status for request metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request counts and latencies per method and path.
func (h *Handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if strings.HasPrefix(path, "/api/analyses/") {
			path = "/api/analyses/{id}"
		}
		h.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		h.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// setupRoutes configures all API routes.
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler()) // Prometheus metrics endpoint
	h.mux.HandleFunc("/api/analyze", h.handleAnalyze)
	h.mux.HandleFunc("/api/analyze/file", h.handleAnalyzeFile)
	h.mux.HandleFunc("/api/analyses", h.handleListAnalyses)
	h.mux.HandleFunc("/api/analyses/", h.handleAnalysisOperations)
	h.mux.HandleFunc("/api/search", h.handleSearchByType)
	h.mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth handles health check requests.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleAnalyze runs the full pipeline on a URL or pasted document text.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Input        string `json:"input"`
		DocumentType string `json:"document_type,omitempty"`
		UserID       string `json:"user_id,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Input == "" {
		respondError(w, "Input field is required", http.StatusBadRequest)
		return
	}

	docType := models.DocumentType(req.DocumentType)
	if req.DocumentType != "" && !docType.Valid() {
		respondError(w, "Unknown document type: "+req.DocumentType, http.StatusBadRequest)
		return
	}

	if span := trace.SpanFromContext(r.Context()); span.SpanContext().IsValid() {
		span.SetAttributes(
			attribute.Int("input.length", len(req.Input)),
			attribute.String("document.type", req.DocumentType),
		)
	}

	h.runPipeline(w, r, pipeline.Request{
		Input:        req.Input,
		DocumentType: docType,
		UserID:       req.UserID,
	})
}

// handleAnalyzeFile runs the pipeline on an uploaded PDF or DOCX file.
func (h *Handler) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "File too large or malformed upload (limit 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "File field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read uploaded file", http.StatusBadRequest)
		return
	}

	docType := models.DocumentType(r.FormValue("document_type"))
	if r.FormValue("document_type") != "" && !docType.Valid() {
		respondError(w, "Unknown document type: "+r.FormValue("document_type"), http.StatusBadRequest)
		return
	}

	text, err := extract.Text(r.Context(), data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			respondError(w, "Unsupported file type; upload a PDF or DOCX document", http.StatusUnsupportedMediaType)
			return
		}
		respondError(w, "Failed to extract text from file", http.StatusUnprocessableEntity)
		return
	}

	h.runPipeline(w, r, pipeline.Request{
		FileText:     text,
		FileName:     header.Filename,
		DocumentType: docType,
		UserID:       r.FormValue("user_id"),
	})
}

// runPipeline executes the pipeline, persists the result and writes the
// HTTP response. Shared tail of both analyze endpoints.
func (h *Handler) runPipeline(w http.ResponseWriter, r *http.Request, req pipeline.Request) {
	start := time.Now()

	result, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		pe := pipeline.AsError(err)
		h.metrics.AnalysesTotal.WithLabelValues("error", string(req.DocumentType)).Inc()
		h.metrics.AnalysisDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		respondError(w, pe.Message, pe.HTTPStatus())
		return
	}

	source := req.Input
	if req.FileText != "" {
		source = "uploaded file: " + req.FileName
	}
	if h.store != nil {
		if serr := h.store.SaveAnalysis(result, source); serr != nil {
			// Persistence is best effort; the analysis itself succeeded.
			result.StorageStatus = models.StorageLimited
		}
	}

	h.metrics.AnalysesTotal.WithLabelValues("success", string(result.DocumentType)).Inc()
	h.metrics.AnalysisDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	h.metrics.RiskFindingsTotal.Add(float64(len(result.Score.RiskFactors)))
	if result.Summary != "" {
		h.metrics.SummariesTotal.Inc()
	}

	respondJSON(w, result, http.StatusOK)
}

// handleListAnalyses handles listing stored analyses with pagination.
func (h *Handler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		respondError(w, "Persistence is disabled", http.StatusNotImplemented)
		return
	}

	limit := 10
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	results, err := h.store.ListAnalyses(limit, offset)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*models.AnalysisResult{}
	}
	respondJSON(w, results, http.StatusOK)
}

// handleAnalysisOperations handles GET and DELETE for specific analyses.
func (h *Handler) handleAnalysisOperations(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, "Persistence is disabled", http.StatusNotImplemented)
		return
	}

	id := r.URL.Path[len("/api/analyses/"):]
	if id == "" {
		respondError(w, "Analysis ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		result, err := h.store.GetAnalysis(id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(w, "Analysis not found", http.StatusNotFound)
				return
			}
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, result, http.StatusOK)

	case http.MethodDelete:
		if err := h.store.DeleteAnalysis(id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(w, "Analysis not found", http.StatusNotFound)
				return
			}
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSearchByType lists stored analyses for one document type.
func (h *Handler) handleSearchByType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		respondError(w, "Persistence is disabled", http.StatusNotImplemented)
		return
	}

	docType := models.DocumentType(r.URL.Query().Get("type"))
	if !docType.Valid() {
		respondError(w, "Valid type parameter is required", http.StatusBadRequest)
		return
	}

	limit := 25
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	results, err := h.store.ListAnalysesByType(docType, limit)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []*models.AnalysisResult{}
	}
	respondJSON(w, results, http.StatusOK)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zombar/legalens/internal/models"
)

// ErrNotFound is returned when a requested analysis does not exist.
var ErrNotFound = errors.New("analysis not found")

// Chunk is one stored document chunk with its embedding vector.
type Chunk struct {
	UserID     string
	DocID      string
	ChunkIndex int
	Content    string
	Embedding  []float32
}

// SaveAnalysis stores a finished analysis result, upserting on id.
func (db *DB) SaveAnalysis(result *models.AnalysisResult, source string) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = db.conn.Exec(`
		INSERT INTO analyses (id, document_type, title, source, result, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET result = EXCLUDED.result, updated_at = EXCLUDED.updated_at
	`, result.ID, result.DocumentType, result.Title, source, resultJSON, result.CreatedAt, result.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves an analysis by ID.
func (db *DB) GetAnalysis(id string) (*models.AnalysisResult, error) {
	var (
		resultJSON []byte
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := db.conn.QueryRow(`
		SELECT result, created_at, updated_at
		FROM analyses
		WHERE id = $1
	`, id).Scan(&resultJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	result.CreatedAt = createdAt
	result.UpdatedAt = updatedAt
	return &result, nil
}

// ListAnalyses retrieves analyses with pagination, newest first.
func (db *DB) ListAnalyses(limit, offset int) ([]*models.AnalysisResult, error) {
	rows, err := db.conn.Query(`
		SELECT result, created_at, updated_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// ListAnalysesByType retrieves analyses for one document type, newest first.
func (db *DB) ListAnalysesByType(docType models.DocumentType, limit int) ([]*models.AnalysisResult, error) {
	rows, err := db.conn.Query(`
		SELECT result, created_at, updated_at
		FROM analyses
		WHERE document_type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, docType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses by type: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]*models.AnalysisResult, error) {
	var results []*models.AnalysisResult
	for rows.Next() {
		var (
			resultJSON []byte
			createdAt  time.Time
			updatedAt  time.Time
		)
		if err := rows.Scan(&resultJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var result models.AnalysisResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		result.CreatedAt = createdAt
		result.UpdatedAt = updatedAt
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return results, nil
}

// DeleteAnalysis deletes an analysis and its chunks by ID.
func (db *DB) DeleteAnalysis(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM document_chunks WHERE doc_id = $1", id); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}

	result, err := tx.Exec("DELETE FROM analyses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SaveChunks stores document chunks with their embeddings in one transaction.
func (db *DB) SaveChunks(chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("failed to marshal embedding: %w", err)
		}
		_, err = tx.Exec(`
			INSERT INTO document_chunks (user_id, doc_id, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (doc_id, chunk_index) DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding
		`, chunk.UserID, chunk.DocID, chunk.ChunkIndex, chunk.Content, embeddingJSON)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountChunks returns how many chunks are stored for a document.
func (db *DB) CountChunks(docID string) (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM document_chunks WHERE doc_id = $1", docID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// Package queue enqueues and processes the best-effort background storage
// work that follows a finished analysis.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TypeStoreDocument is the task type for chunk-and-embed document storage.
const TypeStoreDocument = "legalens:store_document"

// StoreDocumentPayload carries one storage task through Redis.
type StoreDocumentPayload struct {
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Client wraps the Asynq client for enqueueing tasks.
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client.
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client.
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	return &Client{
		client: asynq.NewClient(redisOpt),
	}
}

// EnqueueStoreDocument enqueues a chunk-and-embed storage task for a
// finished analysis. Returns the asynq task ID.
func (c *Client) EnqueueStoreDocument(ctx context.Context, docID, userID, text string) (string, error) {
	payload := StoreDocumentPayload{
		DocID:      docID,
		UserID:     userID,
		Text:       text,
		EnqueuedAt: time.Now().UnixNano(), // Record enqueue time for queue wait metrics
	}

	// Add tracing context if available
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()

		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeStoreDocument),
			attribute.String("doc_id", docID),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeStoreDocument, payloadBytes, asynq.TaskID(docID))

	opts := []asynq.Option{
		asynq.MaxRetry(5),                   // Embedding calls may hit a cold Ollama
		asynq.Timeout(10 * time.Minute),     // Large documents embed slowly
		asynq.Queue("document-storage"),
		asynq.Retention(7 * 24 * time.Hour), // Keep completed tasks for 7 days
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue store document task: %w", err)
	}

	return info.ID, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zombar/legalens/internal/database"
)

// embedBatchSize bounds concurrent embedding calls per document so a
// single large document cannot saturate Ollama.
const embedBatchSize = 5

// handleStoreDocument chunks a document, embeds each chunk and persists
// the rows. Failures are retried by asynq; the analysis itself already
// succeeded by the time this runs.
func (w *Worker) handleStoreDocument(ctx context.Context, t *asynq.Task) error {
	var payload StoreDocumentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	retryCount, _ := asynq.GetRetryCount(ctx)

	// Calculate queue wait time
	var queueWaitTime time.Duration
	if payload.EnqueuedAt > 0 {
		enqueuedTime := time.Unix(0, payload.EnqueuedAt)
		queueWaitTime = time.Since(enqueuedTime)
	}

	w.logger.Info("storing document chunks",
		"doc_id", payload.DocID,
		"user_id", payload.UserID,
		"text_length", len(payload.Text),
		"retry_count", retryCount,
		"queue_wait_seconds", queueWaitTime.Seconds(),
	)

	// Recreate trace context from payload if available
	if payload.TraceID != "" && payload.SpanID != "" {
		traceID, err := trace.TraceIDFromHex(payload.TraceID)
		if err == nil {
			spanID, err := trace.SpanIDFromHex(payload.SpanID)
			if err == nil {
				remoteSpanCtx := trace.NewSpanContext(trace.SpanContextConfig{
					TraceID:    traceID,
					SpanID:     spanID,
					TraceFlags: trace.FlagsSampled,
					Remote:     true,
				})
				ctx = trace.ContextWithRemoteSpanContext(ctx, remoteSpanCtx)

				var span trace.Span
				ctx, span = otel.Tracer("legalens").Start(ctx, "asynq.task.store_document",
					trace.WithSpanKind(trace.SpanKindConsumer),
					trace.WithAttributes(
						attribute.String("task.type", TypeStoreDocument),
						attribute.String("doc.id", payload.DocID),
						attribute.Int("text.length", len(payload.Text)),
						attribute.Int("retry_count", retryCount),
						attribute.Float64("queue.wait_time_seconds", queueWaitTime.Seconds()),
					),
				)
				defer span.End()
			}
		}
	}

	chunks := chunkText(payload.Text)
	if len(chunks) == 0 {
		w.logger.Warn("document produced no chunks, nothing to store", "doc_id", payload.DocID)
		w.metrics.StorageTasksTotal.WithLabelValues("empty").Inc()
		return nil
	}

	rows := make([]database.Chunk, len(chunks))
	for i, content := range chunks {
		rows[i] = database.Chunk{
			UserID:     payload.UserID,
			DocID:      payload.DocID,
			ChunkIndex: i,
			Content:    content,
		}
	}

	// Embed in bounded batches; each batch's calls run concurrently and
	// are awaited before the next batch starts.
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		errs := make([]error, end-start)
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				vectors, err := w.embedder.Embed(ctx, []string{chunks[i]})
				if err != nil {
					errs[i-start] = err
					return
				}
				rows[i].Embedding = vectors[0]
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				w.metrics.StorageTasksTotal.WithLabelValues("error").Inc()
				if isRetriableEmbedError(err) {
					w.logger.Warn("retriable embedding error, will retry",
						"doc_id", payload.DocID,
						"error", err,
						"retry_count", retryCount,
					)
					return err // Let asynq retry
				}
				w.logger.Error("permanent embedding error", "doc_id", payload.DocID, "error", err)
				return fmt.Errorf("failed to embed chunk: %w", err)
			}
		}
	}

	if err := w.db.SaveChunks(rows); err != nil {
		w.metrics.StorageTasksTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to save chunks: %w", err)
	}

	w.metrics.StorageTasksTotal.WithLabelValues("success").Inc()
	w.metrics.ChunksEmbeddedTotal.Add(float64(len(rows)))

	w.logger.Info("document chunks stored",
		"doc_id", payload.DocID,
		"chunk_count", len(rows),
		"retry_count", retryCount,
	)

	return nil
}

// isRetriableEmbedError distinguishes connection and timeout failures,
// which asynq should retry, from permanent input errors.
func isRetriableEmbedError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retriablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"context deadline exceeded",
		"context canceled",
		"i/o timeout",
		"no such host",
		"network is unreachable",
	}

	for _, pattern := range retriablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

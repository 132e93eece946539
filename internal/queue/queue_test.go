package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zombar/legalens/internal/pipeline"
)

var _ pipeline.Storer = (*Client)(nil)

func TestStoreDocumentPayload(t *testing.T) {
	payload := StoreDocumentPayload{
		DocID:  "doc-123",
		UserID: "user-1",
		Text:   "This agreement governs your use of the service.",
	}

	data, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	var decoded StoreDocumentPayload
	err = json.Unmarshal(data, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, payload.DocID, decoded.DocID)
	assert.Equal(t, payload.UserID, decoded.UserID)
	assert.Equal(t, payload.Text, decoded.Text)
}

func TestChunkText(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, chunkText(""))
		assert.Nil(t, chunkText("   \n\t  "))
	})

	t.Run("short document is one chunk", func(t *testing.T) {
		chunks := chunkText("a short legal document with very few words")
		assert.Len(t, chunks, 1)
		assert.Equal(t, "a short legal document with very few words", chunks[0])
	})

	t.Run("exactly one chunk of words", func(t *testing.T) {
		text := strings.Repeat("word ", chunkWords)
		chunks := chunkText(text)
		assert.Len(t, chunks, 1)
	})

	t.Run("long document overlaps", func(t *testing.T) {
		words := make([]string, 700)
		for i := range words {
			words[i] = "w" + string(rune('a'+i%26))
		}
		chunks := chunkText(strings.Join(words, " "))

		// 700 words with step 250: chunks start at 0, 250, 500
		assert.Len(t, chunks, 3)

		// Each full chunk carries chunkWords words
		assert.Len(t, strings.Fields(chunks[0]), chunkWords)
		assert.Len(t, strings.Fields(chunks[1]), chunkWords)
		// Tail chunk carries the remainder
		assert.Len(t, strings.Fields(chunks[2]), 200)

		// The last chunkOverlap words of one chunk open the next
		first := strings.Fields(chunks[0])
		second := strings.Fields(chunks[1])
		assert.Equal(t, first[chunkWords-chunkOverlap:], second[:chunkOverlap])
	})
}

func TestIsRetriableEmbedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), expected: true},
		{name: "context deadline", err: errors.New("context deadline exceeded"), expected: true},
		{name: "rate limited", err: errors.New("429 too many requests"), expected: true},
		{name: "dns failure", err: errors.New("no such host"), expected: true},
		{name: "bad input", err: errors.New("invalid model name"), expected: false},
		{name: "nil error", err: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isRetriableEmbedError(tt.err))
		})
	}
}

// Package ollama wraps the Ollama API client for narrative summary
// generation and chunk embedding.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/zombar/legalens/internal/pipeline"
)

const (
	DefaultModel          = "llama3.2"
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultTimeout        = 60 * time.Second
)

// Client wraps the Ollama API client.
type Client struct {
	client         *api.Client
	model          string
	embeddingModel string
	timeout        time.Duration
}

// New creates a new Ollama client.
func New(ollamaURL, model string) (*Client, error) {
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultModel
	}

	baseURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client:         api.NewClient(baseURL, http.DefaultClient),
		model:          model,
		embeddingModel: DefaultEmbeddingModel,
		timeout:        DefaultTimeout,
	}, nil
}

// GenerateResponse generates a single non-streamed response from the LLM.
func (c *Client) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: new(bool), // false
	}

	var response strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		response.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	return strings.TrimSpace(response.String()), nil
}

// Summarize writes the five-section narrative summary for a finished
// analysis. Implements pipeline.Summarizer.
func (c *Client) Summarize(ctx context.Context, input pipeline.SummaryInput) (string, error) {
	prompt := buildSummaryPrompt(input)
	return c.GenerateResponse(ctx, prompt)
}

func buildSummaryPrompt(input pipeline.SummaryInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are summarizing the analysis of a %s document", input.DocumentType)
	if input.Title != "" {
		fmt.Fprintf(&b, " titled %q", input.Title)
	}
	b.WriteString(" for a non-lawyer reader.\n\n")

	fmt.Fprintf(&b, "Overall score: %d/100 (%s). Risk penalty: %d points.\n\n",
		input.Score.OverallScore, input.Score.Rating, input.Score.RiskPenalty)

	b.WriteString("Category findings:\n")
	for _, f := range input.Findings {
		fmt.Fprintf(&b, "- %s: found=%v, score %.1f/10\n", f.Category, f.Found, f.RawScore)
		for _, s := range f.MatchedSentences {
			fmt.Fprintf(&b, "    excerpt: %s\n", s)
		}
	}

	if len(input.Score.RiskFactors) > 0 {
		b.WriteString("\nRisk factors:\n")
		for _, r := range input.Score.RiskFactors {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	if len(input.Score.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, r := range input.Score.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	b.WriteString(`
Write a summary with exactly these five sections, each with a short heading:
1. Document Summary - what this document is and who it binds
2. Key Findings - the most important category findings in plain language
3. Risk Assessment - what the flagged risks mean for the reader
4. Score - what the overall score and rating imply
5. Recommendations - what the reader should do next

Requirements:
- Use plain, direct language; no legal jargon
- Keep each section to 2-3 sentences
- Do NOT invent facts beyond the findings above
- Do NOT provide meta-commentary about the analysis process

Summary:`)

	return b.String()
}

// Embed returns one embedding vector per input chunk.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Embed(ctx, &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}
	return resp.Embeddings, nil
}

var _ pipeline.Summarizer = (*Client)(nil)

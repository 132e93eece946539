// Package fetcher retrieves a URL and reduces it to readable plain text with
// a title and a sniffed document type. Navigation and boilerplate markup are
// stripped before the text is returned.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/zombar/legalens/internal/models"
	"github.com/zombar/legalens/internal/pipeline"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 5 << 20 // 5 MiB
	userAgent       = "legalens/1.0 (+document analysis)"
)

var (
	scriptStyleRe = regexp.MustCompile(`(?is)<(script|style|noscript|nav|header|footer|aside)[^>]*>.*?</\s*(script|style|noscript|nav|header|footer|aside)\s*>`)
	commentRe     = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockTagRe    = regexp.MustCompile(`(?i)</?(p|div|br|li|ul|ol|h[1-6]|tr|td|th|table|section|article)[^>]*>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	titleRe       = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	entityRe      = regexp.MustCompile(`&(amp|lt|gt|quot|#39|nbsp);`)
	multiSpaceRe  = regexp.MustCompile(`[ \t]+`)
	multiNewline  = regexp.MustCompile(`\n{2,}`)
)

var entities = map[string]string{
	"&amp;": "&", "&lt;": "<", "&gt;": ">", "&quot;": `"`, "&#39;": "'", "&nbsp;": " ",
}

// Fetcher is an HTTP content fetcher implementing pipeline.ContentFetcher.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with its own request timeout.
func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch retrieves rawURL and returns readable text, page title, and the
// document type sniffed from the URL and title.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (pipeline.FetchedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return pipeline.FetchedContent{}, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return pipeline.FetchedContent{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pipeline.FetchedContent{}, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return pipeline.FetchedContent{}, fmt.Errorf("reading response: %w", err)
	}

	html := string(body)
	title := extractTitle(html)
	text := stripHTML(html)

	return pipeline.FetchedContent{
		Text:         text,
		Title:        title,
		DocumentType: sniffType(rawURL, title),
	}, nil
}

func extractTitle(html string) string {
	if m := titleRe.FindStringSubmatch(html); len(m) == 2 {
		return strings.TrimSpace(decodeEntities(m[1]))
	}
	return ""
}

// stripHTML reduces an HTML page to plain text: boilerplate containers and
// comments first, then block tags become newlines, then everything else goes.
func stripHTML(html string) string {
	html = commentRe.ReplaceAllString(html, " ")
	html = scriptStyleRe.ReplaceAllString(html, " ")
	html = blockTagRe.ReplaceAllString(html, "\n")
	html = tagRe.ReplaceAllString(html, " ")
	html = decodeEntities(html)

	html = multiSpaceRe.ReplaceAllString(html, " ")
	lines := strings.Split(html, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		// Short isolated lines are almost always menus, buttons, or captions.
		if len(line) < 20 {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(multiNewline.ReplaceAllString(strings.Join(kept, "\n"), "\n"))
}

func decodeEntities(s string) string {
	return entityRe.ReplaceAllStringFunc(s, func(e string) string {
		if r, ok := entities[e]; ok {
			return r
		}
		return e
	})
}

// sniffType guesses the document type from the URL path and page title.
func sniffType(rawURL, title string) models.DocumentType {
	haystack := strings.ToLower(rawURL + " " + title)
	switch {
	case strings.Contains(haystack, "privacy"):
		return models.TypePrivacy
	case strings.Contains(haystack, "cookie"):
		return models.TypeCookies
	case strings.Contains(haystack, "nda") || strings.Contains(haystack, "non-disclosure"):
		return models.TypeNDA
	case strings.Contains(haystack, "eula") || strings.Contains(haystack, "license"):
		return models.TypeEULA
	case strings.Contains(haystack, "terms"):
		return models.TypeTerms
	}
	return ""
}

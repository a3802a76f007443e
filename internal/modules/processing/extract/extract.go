package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/amirhjalali/notes-core/internal/models"
	"go.uber.org/zap"
)

// Result is the outcome of content extraction for a note. Tier records which
// tier produced the text: "extracted" when the fetch succeeded, "raw" when
// the pipeline fell back to the content provided at ingestion.
type Result struct {
	Title       string
	Description string
	Text        string
	Domain      string
	Favicon     string
	Tier        string
}

// Extractor fetches and extracts readable text from note sources. Fetches
// are bounded in both time and body size.
type Extractor struct {
	client  *http.Client
	maxBody int64
	log     *zap.Logger
}

func New(timeout time.Duration, maxBody int64, log *zap.Logger) *Extractor {
	return &Extractor{
		client:  &http.Client{Timeout: timeout},
		maxBody: maxBody,
		log:     log,
	}
}

// Extract resolves the best available text for a note. It never fails the
// pipeline: when fetching or parsing breaks, the raw-tier result is returned
// together with the error so the caller can record which tier was used.
func (e *Extractor) Extract(ctx context.Context, note *models.NoteModel) (*Result, error) {
	raw := rawResult(note)

	url := strings.TrimSpace(note.SourceURL)
	if url == "" || note.Type == models.NoteTypeImage {
		return raw, nil
	}

	extracted, err := e.fetch(ctx, url)
	if err != nil {
		e.log.Warn("content extraction failed, falling back to raw content",
			zap.String("note_id", note.ID),
			zap.String("url", url),
			zap.Error(err),
		)
		raw.Domain = domainOf(url)
		raw.Favicon = defaultFavicon(url)
		return raw, err
	}

	if extracted.Title == "" {
		extracted.Title = note.Title
	}
	if strings.TrimSpace(extracted.Text) == "" {
		extracted.Text = note.Content
	}
	return extracted, nil
}

func rawResult(note *models.NoteModel) *Result {
	return &Result{
		Title:   note.Title,
		Text:    note.Content,
		Domain:  domainOf(note.SourceURL),
		Favicon: defaultFavicon(note.SourceURL),
		Tier:    models.ExtractionTierRaw,
	}
}

func (e *Extractor) fetch(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "notes-core/1.0 (+content extraction)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	var result *Result
	switch {
	case strings.Contains(contentType, "application/pdf"):
		result, err = extractPDF(body)
	case strings.Contains(contentType, "text/html"), contentType == "":
		result, err = extractHTML(body, url)
	default:
		result = &Result{Text: safeTextSnippet(body)}
	}
	if err != nil {
		return nil, err
	}

	result.Tier = models.ExtractionTierExtracted
	result.Domain = domainOf(url)
	if result.Favicon == "" {
		result.Favicon = defaultFavicon(url)
	}
	return result, nil
}

// domainOf returns the host of a URL without the www prefix.
func domainOf(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	return strings.TrimPrefix(host, "www.")
}

func defaultFavicon(rawURL string) string {
	u, err := neturl.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}

// safeTextSnippet keeps only printable text from an unknown body.
func safeTextSnippet(body []byte) string {
	s := strings.ToValidUTF8(string(body), "")
	return strings.TrimSpace(s)
}

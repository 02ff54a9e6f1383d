package core

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Metadata is what gets scraped off a page to prefill a capture.
type Metadata struct {
	Title       string
	Description string
	ImageURL    string
	Tags        []string
}

// FetchOptions controls the plain-HTTP metadata fetch.
type FetchOptions struct {
	// Timeout is the per-request deadline. If <= 0, a sensible default is used.
	Timeout time.Duration
	// MaxSize is the maximum number of HTML bytes read. 0 means the default.
	MaxSize int64
	// UserAgent overrides the request User-Agent when non-empty.
	UserAgent string
}

// FetchMetadata downloads a page over plain HTTP and extracts capture
// metadata from its HTML. For pages that only render client-side, use
// RenderMetadata instead.
func FetchMetadata(ctx context.Context, pageURL string, opts FetchOptions) (Metadata, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = MaxFetchSize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}

	client := &http.Client{Timeout: opts.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("failed to fetch page: HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return Metadata{}, fmt.Errorf("failed to fetch page: unexpected content type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, opts.MaxSize))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read page: %w", err)
	}

	// Redirects may have moved the page; resolve relative references against
	// where the document actually came from.
	base := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL.String()
	}
	return ExtractMetadata(string(data), base)
}

// ExtractMetadata parses HTML and pulls the fields used to prefill a capture.
// Open Graph values win; the standard <title>, meta description, and meta
// keywords fill the gaps. baseURL resolves relative image references.
func ExtractMetadata(html string, baseURL string) (Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var m Metadata

	m.Title = metaContent(doc, `meta[property='og:title']`)
	if m.Title == "" {
		m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	m.Description = metaContent(doc, `meta[property='og:description']`)
	if m.Description == "" {
		m.Description = metaContent(doc, `meta[name='description']`)
	}

	if img := metaContent(doc, `meta[property='og:image']`); img != "" {
		m.ImageURL = resolveImageURL(baseURL, img)
	}

	if keywords := metaContent(doc, `meta[name='keywords']`); keywords != "" {
		for _, k := range strings.Split(keywords, ",") {
			k = strings.TrimSpace(k)
			if k != "" {
				m.Tags = append(m.Tags, k)
			}
		}
	}

	return m, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

// resolveImageURL resolves a potentially relative image reference against the
// page URL. Unparseable references come back empty rather than poisoning the
// record.
func resolveImageURL(baseURL, ref string) string {
	if strings.HasPrefix(ref, "data:") {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(refURL).String()
}

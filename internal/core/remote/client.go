// Package remote is the HTTP client for the bookmark service. It speaks the
// service's v1 JSON API and maps its failure modes onto two error types:
// *DuplicateError for create collisions and *NetworkError for everything
// that kept a request from completing.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Yigal/bookmarkable/internal/core/db"
)

const (
	// DefaultRequestTimeout bounds every request to the service. A capture
	// must never hang on the network, so the transport enforces this even
	// when the caller's context has no deadline.
	DefaultRequestTimeout = 30 * time.Second

	defaultUserAgent = "bookmarkable/1.0"
)

// Config holds the connection settings for the bookmark service.
type Config struct {
	// BaseURL is the service root, e.g. https://bookmarks.example.com
	BaseURL string
	// Token is sent as a bearer token when non-empty.
	Token string
	// Timeout bounds each request. Zero means DefaultRequestTimeout.
	Timeout time.Duration
	// UserAgent overrides the default User-Agent header when non-empty.
	UserAgent string
}

// Client talks to the bookmark service.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
}

// NewClient creates a service client from cfg.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("failed to create remote client: empty base URL")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("failed to create remote client: scheme must be http or https, got %q", u.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	agent := cfg.UserAgent
	if agent == "" {
		agent = defaultUserAgent
	}

	return &Client{
		baseURL:   base,
		token:     cfg.Token,
		userAgent: agent,
		http:      &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ------------------------------
// Wire types
// ------------------------------

type bookmarkPayload struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Note        string   `json:"note,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Archived    bool     `json:"archived"`
}

func payloadFor(b *db.Bookmark) bookmarkPayload {
	return bookmarkPayload{
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
		Note:        b.Note,
		ImageURL:    b.ImageURL,
		Tags:        b.Tags,
		Archived:    b.Archived,
	}
}

type createResponse struct {
	ID int64 `json:"id"`
}

type duplicateResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type wireBookmark struct {
	ID          int64    `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Note        string   `json:"note"`
	ImageURL    string   `json:"image_url"`
	Tags        []string `json:"tags"`
	Archived    bool     `json:"archived"`
	UpdatedAt   string   `json:"updated_at"`
}

type wireTag struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type listResponse struct {
	Bookmarks []wireBookmark `json:"bookmarks"`
	Tags      []wireTag      `json:"tags"`
}

// Snapshot is the service's answer to a list call: every bookmark changed
// since the requested watermark, plus the tag palette.
type Snapshot struct {
	Bookmarks []db.RemoteBookmark
	Tags      []db.Tag
}

// ------------------------------
// Operations
// ------------------------------

// Create registers a new bookmark with the service and returns its canonical
// ID. A URL the service already holds comes back as *DuplicateError carrying
// the existing record's ID and title.
func (c *Client) Create(ctx context.Context, b *db.Bookmark) (int64, error) {
	endpoint := c.baseURL + "/api/v1/bookmarks"
	resp, err := c.do(ctx, "create", http.MethodPost, endpoint, payloadFor(b))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var body createResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return 0, &NetworkError{Op: "create", URL: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
		return body.ID, nil
	case http.StatusConflict:
		var body duplicateResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return 0, &NetworkError{Op: "create", URL: endpoint, Err: fmt.Errorf("failed to decode conflict response: %w", err)}
		}
		return 0, &DuplicateError{ID: body.ID, Title: body.Title}
	default:
		drain(resp.Body)
		return 0, &NetworkError{Op: "create", URL: endpoint, Status: resp.StatusCode}
	}
}

// Update replaces the service's record canonicalID with b's fields.
func (c *Client) Update(ctx context.Context, canonicalID int64, b *db.Bookmark) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookmarks/%d", c.baseURL, canonicalID)
	resp, err := c.do(ctx, "update", http.MethodPut, endpoint, payloadFor(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		drain(resp.Body)
		return nil
	default:
		drain(resp.Body)
		return &NetworkError{Op: "update", URL: endpoint, Status: resp.StatusCode}
	}
}

// List fetches the bookmarks changed since the watermark. A nil since asks
// for the full snapshot.
func (c *Client) List(ctx context.Context, since *time.Time) (*Snapshot, error) {
	endpoint := c.baseURL + "/api/v1/bookmarks"
	if since != nil {
		endpoint += "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	}
	resp, err := c.do(ctx, "list", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		drain(resp.Body)
		return nil, &NetworkError{Op: "list", URL: endpoint, Status: resp.StatusCode}
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &NetworkError{Op: "list", URL: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	snap := &Snapshot{
		Bookmarks: make([]db.RemoteBookmark, 0, len(body.Bookmarks)),
		Tags:      make([]db.Tag, 0, len(body.Tags)),
	}
	for _, wb := range body.Bookmarks {
		snap.Bookmarks = append(snap.Bookmarks, db.RemoteBookmark{
			CanonicalID: wb.ID,
			URL:         wb.URL,
			Title:       wb.Title,
			Description: wb.Description,
			Note:        wb.Note,
			ImageURL:    wb.ImageURL,
			Tags:        wb.Tags,
			Archived:    wb.Archived,
			UpdatedAt:   wb.UpdatedAt,
		})
	}
	for _, wt := range body.Tags {
		snap.Tags = append(snap.Tags, db.Tag{Name: wt.Name, Color: wt.Color})
	}
	return snap, nil
}

// ------------------------------
// Transport
// ------------------------------

func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log.Debug().Str("op", op).Str("url", endpoint).Msg("remote request")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	return resp, nil
}

// drain empties a response body so the connection can be reused.
func drain(r io.Reader) {
	io.Copy(io.Discard, io.LimitReader(r, 1<<16))
}

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brettbedarf/explorerfs"
	"github.com/brettbedarf/explorerfs/internal/util"
	"github.com/brettbedarf/explorerfs/requests"
)

// maxListingBytes bounds a single listing response body
const maxListingBytes = 32 << 20

// HTTPClient is the subset of [http.Client] used by the http backend
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource contains http-specific backend definition fields.
// Listings are fetched with GET {url}?path={tree path} and must return a JSON
// array of entries (see [requests.EntryDTO]).
type HTTPSource struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Timeout *float64          `json:"timeout,omitempty"` // Client timeout in seconds (Default none)
}

func RegisterHTTP(r *Registry) {
	r.Register(HTTPBackendType, func(raw []byte) (explorerfs.BackendProvider, error) {
		var src HTTPSource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		if _, err := parseListingURL(src.URL); err != nil {
			return nil, err
		}
		return &src, nil
	})
}

func (s *HTTPSource) Backend() (explorerfs.ListingBackend, error) {
	client := &http.Client{}
	if s.Timeout != nil {
		client.Timeout = time.Duration(*s.Timeout * float64(time.Second))
	}
	return NewHTTP(s.URL, s.Headers, client)
}

// HTTP implements [explorerfs.ListingBackend] against a remote listing endpoint
type HTTP struct {
	base    *url.URL
	headers map[string]string
	client  HTTPClient
}

// NewHTTP creates an http backend. A nil client uses [http.DefaultClient].
func NewHTTP(rawURL string, headers map[string]string, client HTTPClient) (*HTTP, error) {
	u, err := parseListingURL(rawURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: u, headers: headers, client: client}, nil
}

func parseListingURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("http backend requires a url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q has no host", raw)
	}
	if u.User != nil {
		return nil, fmt.Errorf("url %q must not contain user info; use headers", raw)
	}
	return u, nil
}

func (h *HTTP) newRequest(ctx context.Context, treePath string) (*http.Request, error) {
	u := *h.base
	q := u.Query()
	q.Set("path", treePath)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	// Add custom headers
	for k, v := range h.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (h *HTTP) ListDirectory(ctx context.Context, treePath string) ([]explorerfs.Entry, error) {
	logger := util.GetLogger("HTTP.ListDirectory")

	req, err := h.newRequest(ctx, treePath)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// drain a little for connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("listing %s: unexpected status %s", treePath, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, err
	}
	entries, err := requests.UnmarshalEntries(data)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", treePath, err)
	}
	logger.Trace().Str("path", treePath).Int("entries", len(entries)).Msg("Listed directory")
	return entries, nil
}

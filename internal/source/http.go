package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"sentencecards/internal/logging"
)

// maxBody caps a fetched file; content files are small and human curated.
const maxBody = 32 << 20

// HTTP fetches content relative to a base URL.
type HTTP struct {
	base   *url.URL
	client *http.Client
}

// NewHTTP parses base. A nil client uses http.DefaultClient.
func NewHTTP(base string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid content URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid content URL %q: scheme must be http or https", base)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: u, client: client}, nil
}

// Fetch GETs name relative to the base URL. Non-2xx responses fail; 404 wraps
// ErrNotFound.
func (h *HTTP) Fetch(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, &FetchError{Source: h.String(), Name: name, Err: err}
	}
	target := h.base.ResolveReference(&url.URL{Path: clean})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, &FetchError{Source: h.String(), Name: name, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: h.String(), Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &FetchError{Source: h.String(), Name: name, Err: fmt.Errorf("%w: HTTP %d", ErrNotFound, resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: h.String(), Name: name, Err: fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &FetchError{Source: h.String(), Name: name, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	logging.SourceDebug("GET %s: %d bytes", target, len(data))
	return data, nil
}

func (h *HTTP) String() string {
	return h.base.String()
}

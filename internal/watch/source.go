package watch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Source fetches the raw bytes of a spec document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	// String identifies the source in log output.
	String() string
}

// NewSource picks a source for location: http(s) URLs are fetched over the
// network, file:// URLs and bare paths are read from disk. fetchTimeout bounds
// each HTTP request; zero leaves requests unbounded.
func NewSource(location string, fetchTimeout time.Duration) (Source, error) {
	loc := strings.TrimSpace(location)
	if loc == "" {
		return nil, fmt.Errorf("spec location is empty")
	}

	if !strings.Contains(loc, "://") {
		return NewFileSource(loc), nil
	}

	u, err := url.Parse(loc)
	if err != nil {
		return nil, fmt.Errorf("parsing spec url %q: %w", loc, err)
	}

	switch u.Scheme {
	case "http", "https":
		return NewHTTPSource(u.String(), fetchTimeout), nil
	case "file":
		return NewFileSource(filepath.FromSlash(u.Path)), nil
	default:
		return nil, fmt.Errorf("unsupported spec url scheme %q: must be http, https or file", u.Scheme)
	}
}

// HTTPSource fetches a document with a plain GET request.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for rawURL. A zero timeout disables the
// client timeout.
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:    rawURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the response body of a 200 response. Any other outcome is a
// *FetchError; the body of a non-200 response is drained before closing so
// the connection can be reused.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: err}
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{URL: s.url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: s.url, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return body, nil
}

func (s *HTTPSource) String() string { return s.url }

// FileSource reads a document from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: s.path, Err: err}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &FetchError{URL: s.path, Err: err}
	}

	return data, nil
}

// Path returns the file path.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) String() string { return s.path }

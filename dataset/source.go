package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound reports a missing object in a source
var ErrNotFound = errors.New("object not found")

// Source reads dataset objects (configs, manifests, tile bytes) by
// path relative to the dataset root. Implementations cover a remote
// HTTP base URL and a local directory tree with the same key scheme
type Source interface {
	Fetch(ctx context.Context, rel string) ([]byte, error)
}

// HTTPSource fetches objects from a base URL
type HTTPSource struct {
	Base   string
	Client *http.Client
}

// NewHTTPSource wraps base with a default client
func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{
		Base:   strings.TrimRight(base, "/"),
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch implements Source
func (s *HTTPSource) Fetch(ctx context.Context, rel string) ([]byte, error) {
	u, err := url.JoinPath(s.Base, rel)
	if err != nil {
		return nil, fmt.Errorf("join %q: %w", rel, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rel, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DirSource reads objects from a local directory tree
type DirSource struct {
	Root string
}

// Fetch implements Source
func (s *DirSource) Fetch(_ context.Context, rel string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return b, err
}

package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nonsonwune/counselling_db/models"
)

// Fetcher returns the bytes of a data file addressed relative to the data root.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultRetryMax    = 2
)

// StatusError is returned for non-200 responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// HTTPFetcher reads files from a static web root, e.g. the published site.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
	// CacheBust appends ?v=<unix millis> so intermediaries serve fresh copies.
	CacheBust bool
	Now       func() time.Time
}

func NewHTTPFetcher(baseURL string, timeout time.Duration, cacheBust bool) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: timeout,
			Transport: &retryTransport{
				Base:     http.DefaultTransport,
				RetryMax: defaultRetryMax,
			},
		},
		CacheBust: cacheBust,
		Now:       time.Now,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	u, err := f.fileURL(name)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func (f *HTTPFetcher) fileURL(name string) (string, error) {
	base, err := url.Parse(f.BaseURL + "/")
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", f.BaseURL, err)
	}
	ref, err := url.Parse(strings.TrimPrefix(name, "./"))
	if err != nil {
		return "", fmt.Errorf("invalid file path %q: %w", name, err)
	}
	u := base.ResolveReference(ref)
	if f.CacheBust {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		q := u.Query()
		q.Set("v", strconv.FormatInt(now().UnixMilli(), 10))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// retryTransport retries idempotent requests a bounded number of times on
// transport errors.
type retryTransport struct {
	Base     http.RoundTripper
	RetryMax int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		resp, err := t.Base.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// DirFetcher reads files from a local copy of the data directory.
type DirFetcher struct {
	Root string
}

func (f DirFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Clean against "/" so a manifest entry cannot escape Root.
	clean := path.Clean("/" + strings.TrimPrefix(name, "./"))
	return os.ReadFile(filepath.Join(f.Root, filepath.FromSlash(clean)))
}

// ErrManifest marks a manifest that could not be fetched or parsed. It is
// fatal to a load cycle.
var ErrManifest = errors.New("manifest unavailable")

// ReadManifest fetches and parses the manifest. Entries with an unknown
// category are dropped with a warning.
func ReadManifest(ctx context.Context, f Fetcher, name string, logger *log.Logger) (models.Manifest, error) {
	logger = loggerOrDefault(logger)
	data, err := f.Fetch(ctx, name)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return models.Manifest{}, fmt.Errorf("%w: parse %s: %v", ErrManifest, name, err)
	}
	m.CounsellingFiles = cleanDescriptors(m.CounsellingFiles, logger)
	m.AllIndiaFiles = cleanDescriptors(m.AllIndiaFiles, logger)

	merit := m.MeritFiles[:0]
	for _, d := range m.MeritFiles {
		c, ok := models.ParseSourceCategory(string(d.Category))
		if !ok {
			logger.Printf("Warning: skipping merit file %s with unknown category %q", d.Path, d.Category)
			continue
		}
		d.Category = c
		d.Year = strings.TrimSpace(d.Year)
		merit = append(merit, d)
	}
	m.MeritFiles = merit
	return m, nil
}

func cleanDescriptors(in []models.FileDescriptor, logger *log.Logger) []models.FileDescriptor {
	out := in[:0]
	for _, d := range in {
		c, ok := models.ParseSourceCategory(string(d.Category))
		if !ok {
			logger.Printf("Warning: skipping %s with unknown category %q", d.Path, d.Category)
			continue
		}
		d.Category = c
		d.Year = strings.TrimSpace(d.Year)
		out = append(out, d)
	}
	return out
}

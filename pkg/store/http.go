package store

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/motifhq/motif/pkg/cache"
	"github.com/motifhq/motif/pkg/errors"
	"github.com/motifhq/motif/pkg/observability"
)

const (
	defaultAttempts  = 3
	defaultBackoff   = 500 * time.Millisecond
	maxDocumentBytes = 8 << 20
)

// HTTPFetcher retrieves documents over HTTP with caching and retries.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; definitive non-success responses fail immediately with FETCH_ERROR.
type HTTPFetcher struct {
	// BaseURL resolves relative template locators and texture identifiers.
	BaseURL string
	// TexturePath is the path template for texture identifiers,
	// defaulting to /textures/{id}.svg under BaseURL.
	TexturePath string
	Client      *http.Client
	Cache       cache.Cache
	Keyer       cache.Keyer

	// Attempts and Backoff tune the retry loop; zero values use defaults.
	Attempts int
	Backoff  time.Duration
}

// NewHTTPFetcher creates a fetcher against the collaborator store base URL.
func NewHTTPFetcher(baseURL string, c cache.Cache) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
		Cache:   c,
		Keyer:   cache.NewDefaultKeyer(),
	}
}

// FetchTemplate retrieves a template document by locator. Absolute locators
// are fetched as-is; relative ones resolve against BaseURL.
func (f *HTTPFetcher) FetchTemplate(ctx context.Context, locator string) (string, error) {
	return f.cached(ctx, f.Keyer.TemplateKey(locator), cache.TTLTemplate, f.resolve(locator))
}

// FetchTexture retrieves a texture document by identifier.
func (f *HTTPFetcher) FetchTexture(ctx context.Context, textureID string) (string, error) {
	path := f.TexturePath
	if path == "" {
		path = "/textures/" + url.PathEscape(textureID) + ".svg"
	} else {
		path = strings.ReplaceAll(path, "{id}", url.PathEscape(textureID))
	}
	return f.cached(ctx, f.Keyer.TextureKey(textureID), cache.TTLTexture, f.BaseURL+path)
}

func (f *HTTPFetcher) resolve(locator string) string {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return locator
	}
	return f.BaseURL + "/" + strings.TrimLeft(locator, "/")
}

func (f *HTTPFetcher) cached(ctx context.Context, key string, ttl time.Duration, url string) (string, error) {
	if f.Cache != nil {
		if data, ok, err := f.Cache.Get(ctx, key); err == nil && ok {
			return string(data), nil
		}
	}
	doc, err := f.fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if f.Cache != nil {
		_ = f.Cache.Set(ctx, key, []byte(doc), ttl)
	}
	return doc, nil
}

// fetch runs the GET with retries on transient failures.
func (f *HTTPFetcher) fetch(ctx context.Context, url string) (string, error) {
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	delay := f.Backoff
	if delay <= 0 {
		delay = defaultBackoff
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		doc, retryable, err := f.get(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return "", errors.Wrap(errors.ErrCodeFetch, ctx.Err(), "fetch cancelled: %s", url)
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return "", lastErr
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (doc string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeFetch, err, "build request: %s", url)
	}
	req.Header.Set("Accept", "image/svg+xml, text/xml, */*")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	observability.Fetch().OnRequest(ctx, url)
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		observability.Fetch().OnError(ctx, url, err)
		return "", true, errors.Wrap(errors.ErrCodeFetch, err, "fetch %s", url)
	}
	defer resp.Body.Close()
	observability.Fetch().OnResponse(ctx, url, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode >= 500, errors.New(errors.ErrCodeFetch,
			"fetch %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", true, errors.Wrap(errors.ErrCodeFetch, err, "read body: %s", url)
	}
	if len(body) == 0 {
		return "", false, errors.New(errors.ErrCodeFetch, "fetch %s: empty body", url)
	}
	return string(body), false, nil
}

var _ DocumentFetcher = (*HTTPFetcher)(nil)

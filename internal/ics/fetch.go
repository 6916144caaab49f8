package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	appLog "eventcal/internal/log"
)

const (
	// maxParallelFetches bounds concurrent feed downloads in FetchAll.
	maxParallelFetches = 4

	// maxFeedBytes caps one feed body. Larger payloads are rejected and
	// never cached.
	maxFeedBytes = 16 << 20

	fetchTimeout = 15 * time.Second
)

// Source is one subscribed calendar feed.
type Source struct {
	ID   string
	URL  string
	Name string
	// Category and Color are stamped on every event of the feed.
	Category string
	Color    string
}

// FetchResult is the body of one feed and where it came from.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

// Fetcher downloads feeds with conditional requests and keeps the last good
// body of every feed on disk. When a feed is unreachable the cached body is
// served instead.
type Fetcher struct {
	client   *http.Client
	cache    feedCache
	maxBytes int64
}

// ErrFeedTooLarge is returned for feed bodies over the size limit.
var ErrFeedTooLarge = errors.New("ics: feed too large")

// NewFetcher returns a Fetcher caching under cacheDir, e.g.
// "/var/lib/eventcal/ics-cache". An empty dir uses ./var/ics-cache.
func NewFetcher(cacheDir string) *Fetcher {
	if cacheDir == "" {
		cacheDir = "./var/ics-cache"
	}
	return &Fetcher{
		client:   &http.Client{Timeout: fetchTimeout},
		cache:    feedCache{root: cacheDir},
		maxBytes: maxFeedBytes,
	}
}

// FetchAll fetches sources concurrently. Results keep source order and only
// include feeds that produced a body; one failing feed never cancels the
// others.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	type outcome struct {
		res FetchResult
		err error
	}
	outcomes := make([]outcome, len(sources))

	var g errgroup.Group
	g.SetLimit(maxParallelFetches)
	for i, src := range sources {
		g.Go(func() error {
			res, err := f.FetchOne(ctx, src)
			if err != nil {
				appLog.Error("ics fetch failed", err, "id", src.ID, "url", redactURL(src.URL))
				err = fmt.Errorf("ics: fetch %s: %w", src.ID, err)
			}
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		results []FetchResult
		errs    []error
	)
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
			continue
		}
		results = append(results, o.res)
	}
	return results, errs
}

// FetchOne downloads a single feed, sending If-None-Match and
// If-Modified-Since from the previous response.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	entry, err := f.cache.open(src.URL)
	if err != nil {
		return FetchResult{}, err
	}
	meta := entry.meta()
	cached := entry.body()

	fallback := func(reason string, kv ...any) (FetchResult, bool) {
		if len(cached) == 0 {
			return FetchResult{}, false
		}
		appLog.Warn(reason+", using cached body", append([]any{"id", src.ID, "url", redactURL(src.URL)}, kv...)...)
		return FetchResult{Source: src, Body: cached, FromCache: true}, true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL(src.URL), nil)
	if err != nil {
		return FetchResult{}, err
	}
	req.Header.Set("Accept", "text/calendar, */*;q=0.5")
	if meta.ETag != "" {
		req.Header.Set("If-None-Match", meta.ETag)
	}
	if meta.LastModified != "" {
		req.Header.Set("If-Modified-Since", meta.LastModified)
	}

	appLog.Debug("ics fetch start", "id", src.ID, "url", redactURL(src.URL))

	resp, err := f.client.Do(req)
	if err != nil {
		if res, ok := fallback("ics feed unreachable", "err", err); ok {
			return res, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		if err != nil {
			return FetchResult{}, err
		}
		if int64(len(body)) > f.maxBytes {
			if res, ok := fallback("ics feed too large", "limit", f.maxBytes); ok {
				return res, nil
			}
			return FetchResult{}, fmt.Errorf("%w: more than %d bytes", ErrFeedTooLarge, f.maxBytes)
		}
		if len(body) == 0 {
			return FetchResult{}, ErrEmptyBody
		}
		next := cacheMeta{
			URL:          src.URL,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
		}
		if err := entry.store(next, body); err != nil {
			appLog.Error("ics cache save failed", err, "id", src.ID, "url", redactURL(src.URL))
		}
		appLog.Info("ics fetch success", "id", src.ID, "url", redactURL(src.URL), "bytes", len(body))
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if len(cached) == 0 {
			return FetchResult{}, errors.New("304 Not Modified without a cached body")
		}
		appLog.Debug("ics feed not modified", "id", src.ID, "url", redactURL(src.URL))
		return FetchResult{Source: src, Body: cached, FromCache: true}, nil

	default:
		if res, ok := fallback("ics feed returned an error", "status", resp.StatusCode); ok {
			return res, nil
		}
		return FetchResult{}, fmt.Errorf("unexpected status %s", resp.Status)
	}
}

// cacheMeta is the validator state stored next to a cached body.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// feedCache stores one directory per feed URL under root.
type feedCache struct {
	root string
}

type cacheEntry struct {
	dir string
}

func (c feedCache) open(feedURL string) (cacheEntry, error) {
	sum := sha256.Sum256([]byte(feedURL))
	dir := filepath.Join(c.root, hex.EncodeToString(sum[:8]))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return cacheEntry{}, fmt.Errorf("ics: cache dir: %w", err)
	}
	return cacheEntry{dir: dir}, nil
}

// meta returns the stored validators, or the zero value when none are usable.
func (e cacheEntry) meta() cacheMeta {
	var m cacheMeta
	data, err := os.ReadFile(filepath.Join(e.dir, "meta.json"))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return cacheMeta{}
	}
	return m
}

func (e cacheEntry) body() []byte {
	data, _ := os.ReadFile(filepath.Join(e.dir, "body.ics"))
	return data
}

// store writes the body before the metadata, so validators never describe
// a body that is not on disk.
func (e cacheEntry) store(m cacheMeta, body []byte) error {
	if err := os.WriteFile(filepath.Join(e.dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.dir, "meta.json"), data, 0o600)
}

// redactURL keeps only scheme and host of a feed URL for logging; private
// feed URLs carry tokens in their path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}

// requestURL maps webcal:// subscription links onto https.
func requestURL(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "webcal://"); ok {
		return "https://" + rest
	}
	return raw
}

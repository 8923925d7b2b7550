package schema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// cacheEntry is one process-local cache slot: the schema body plus the
// ETag it was served with. The ETag is only recorded; no fetch sends a
// conditional request with it, and a cached body is reused as is.
type cacheEntry struct {
	body []byte
	etag string
}

// Fetcher resolves a SchemaUri to bytes through two cache layers — a
// process-local LRU and an on-disk directory keyed by the URI's digest —
// in front of the actual fetch (file read or HTTP GET). In-flight
// requests for the same URI are deduplicated via singleflight so
// concurrent document validations never issue the same fetch twice (spec
// §4.5 item 3, §5 "schema-store caches deduplicate fetches by URI via an
// in-flight map").
type Fetcher struct {
	memory    *lru.Cache[SchemaUri, cacheEntry]
	diskDir   string
	offline   bool
	group     singleflight.Group
	client    *http.Client
}

// NewFetcher builds a Fetcher backed by an on-disk cache directory
// (created lazily). If offline is true, no HTTP request is made: file
// URIs are still read from disk, and any other cache miss is a fetch
// error rather than a network attempt.
func NewFetcher(diskDir string, offline bool) *Fetcher {
	cache, _ := lru.New[SchemaUri, cacheEntry](128)
	return &Fetcher{
		memory:  cache,
		diskDir: diskDir,
		offline: offline,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch returns uri's raw bytes, consulting the process-local cache, then
// the on-disk cache, then performing the real fetch (spec §4.5 item 3).
func (f *Fetcher) Fetch(ctx context.Context, uri SchemaUri) ([]byte, error) {
	if entry, ok := f.memory.Get(uri); ok {
		return entry.body, nil
	}

	v, err, _ := f.group.Do(string(uri), func() (any, error) {
		if body, ok := f.readDiskCache(uri); ok {
			f.memory.Add(uri, cacheEntry{body: body})
			return body, nil
		}
		body, etag, err := f.fetchRemote(ctx, uri)
		if err != nil {
			return nil, err
		}
		f.memory.Add(uri, cacheEntry{body: body, etag: etag})
		f.writeDiskCache(uri, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, uri SchemaUri) ([]byte, string, error) {
	switch uri.Scheme() {
	case "file", "":
		path := strings.TrimPrefix(string(uri), "file://")
		body, err := os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("schema %s: %w", uri, err)
		}
		return body, "", nil
	case "http", "https":
		if f.offline {
			return nil, "", fmt.Errorf("schema %s: network fetch disabled (offline mode) and no cache entry", uri)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(uri), nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("schema %s: %w", uri, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("schema %s: HTTP %d", uri, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", err
		}
		return body, resp.Header.Get("ETag"), nil
	default:
		return nil, "", fmt.Errorf("schema %s: unsupported URL scheme %q", uri, uri.Scheme())
	}
}

func (f *Fetcher) diskPath(uri SchemaUri) string {
	sum := sha256.Sum256([]byte(uri))
	return filepath.Join(f.diskDir, hex.EncodeToString(sum[:])+".json")
}

func (f *Fetcher) readDiskCache(uri SchemaUri) ([]byte, bool) {
	if f.diskDir == "" {
		return nil, false
	}
	body, err := os.ReadFile(f.diskPath(uri))
	if err != nil {
		return nil, false
	}
	return body, true
}

func (f *Fetcher) writeDiskCache(uri SchemaUri, body []byte) {
	if f.diskDir == "" {
		return
	}
	if err := os.MkdirAll(f.diskDir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(f.diskPath(uri), body, 0o644)
}

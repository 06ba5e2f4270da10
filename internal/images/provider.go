package images

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-match/internal/config"
	"go-match/internal/store"
)

// Source hands out card face identifiers. It always returns something: the
// fallback chain hides every failure from the caller.
type Source interface {
	Images(ctx context.Context, count int) []string
}

// ProviderError describes a failed network fetch. It is logged and recovered
// from, never shown to the player.
type ProviderError struct {
	URL   string
	Count int
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("fetching %d images from %s: %v", e.Count, e.URL, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CacheKey is the store key under which the list for count pairs is cached.
func CacheKey(count int) string {
	return "memoryImages_" + strconv.Itoa(count)
}

// Provider resolves images from the store cache, then the network list
// endpoint, then deterministic placeholder URLs.
type Provider struct {
	cache          store.KV
	client         *http.Client
	listURL        string
	placeholderURL string
	offline        bool
	log            *slog.Logger
}

// NewProvider builds a Provider from configuration. cache may be nil.
func NewProvider(cfg config.ImagesConfig, cache store.KV, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		cache:          cache,
		client:         &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		listURL:        cfg.ListURL,
		placeholderURL: cfg.PlaceholderURL,
		offline:        cfg.Offline,
		log:            logger.With("component", "images"),
	}
}

// Images implements Source. Lists of the wrong length or with repeated
// identifiers, from the cache or the network, are treated as misses.
func (p *Provider) Images(ctx context.Context, count int) []string {
	key := CacheKey(count)

	if p.cache != nil {
		var cached []string
		ok, err := p.cache.Get(key, &cached)
		switch {
		case err != nil:
			p.log.Warn("image cache read failed", "key", key, "error", err)
		case ok && len(cached) == count && distinct(cached):
			return cached
		case ok:
			p.log.Debug("ignoring unusable cached image list", "key", key, "cached", len(cached), "want", count)
		}
	}

	if !p.offline {
		imgs, err := p.fetch(ctx, count)
		if err == nil {
			if p.cache != nil {
				if err := p.cache.Set(key, imgs); err != nil {
					p.log.Warn("image cache write failed", "key", key, "error", err)
				}
			}
			return imgs
		}
		p.log.Warn("image fetch failed, using placeholders", "error", err)
	}

	return p.Placeholders(count)
}

// Placeholders returns count deterministic URLs: <placeholder>?random=1..count.
func (p *Provider) Placeholders(count int) []string {
	imgs := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		imgs = append(imgs, fmt.Sprintf("%s?random=%d", p.placeholderURL, i))
	}
	return imgs
}

type listEntry struct {
	DownloadURL string `json:"download_url"`
}

func (p *Provider) fetch(ctx context.Context, count int) ([]string, error) {
	u, err := url.Parse(p.listURL)
	if err != nil {
		return nil, &ProviderError{URL: p.listURL, Count: count, Err: err}
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(count))
	u.RawQuery = q.Encode()
	endpoint := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{URL: endpoint, Count: count, Err: err}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{URL: endpoint, Count: count, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{URL: endpoint, Count: count, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var entries []listEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &ProviderError{URL: endpoint, Count: count, Err: fmt.Errorf("decoding list: %w", err)}
	}

	imgs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.DownloadURL == "" || seen[e.DownloadURL] {
			continue
		}
		seen[e.DownloadURL] = true
		imgs = append(imgs, e.DownloadURL)
	}
	if len(imgs) != count {
		return nil, &ProviderError{URL: endpoint, Count: count, Err: fmt.Errorf("got %d usable images", len(imgs))}
	}
	return imgs, nil
}

// distinct reports whether ids holds no empty or repeated identifier.
func distinct(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

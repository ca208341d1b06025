package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sjsage522/jobcrawler/helpers"
	"sjsage522/jobcrawler/logger"
	crawlerrors "sjsage522/jobcrawler/pkg/errors"
	"sjsage522/jobcrawler/services/cache"
)

// HTTPFetcher fetches pages with browser-like headers. When a listings page
// answers 429/430 the source is blocked for BlockTime through the cache, so
// later runs do not hammer a board that asked us to back off.
type HTTPFetcher struct {
	client    *http.Client
	cacheSvc  cache.CacheService
	blockTime time.Duration
}

// NewHTTPFetcher creates a fetcher. cacheSvc may be nil, which disables blocking.
func NewHTTPFetcher(client *http.Client, cacheSvc cache.CacheService, blockTime time.Duration) *HTTPFetcher {
	if client == nil {
		client = helpers.NewClient(0)
	}
	return &HTTPFetcher{
		client:    client,
		cacheSvc:  cacheSvc,
		blockTime: blockTime,
	}
}

// CacheKey returns the block marker key of a source
func CacheKey(source string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(source), " ", "_")) + "_rate_limited"
}

// FetchListings fetches a listings page unless the source is currently blocked
func (f *HTTPFetcher) FetchListings(ctx context.Context, source, url string) (io.Reader, error) {
	key := CacheKey(source)

	// Check if the source is rate limited
	if f.cacheSvc != nil {
		_, err := f.cacheSvc.Get(key)
		if err == nil {
			return nil, crawlerrors.NewRateLimit(source, f.blockTime)
		}
		if !errors.Is(err, cache.ErrMiss) {
			logger.ForCache().Debug().Err(err).Str("key", key).Msg("Block cache lookup failed")
		}
	}

	body, err := helpers.FetchWithRandomHeaders(ctx, f.client, url)
	if err != nil {
		if f.cacheSvc != nil && errors.Is(err, helpers.ErrRateLimited) {
			value := []byte(fmt.Sprintf("%d", int(f.blockTime/time.Second)))
			if setErr := f.cacheSvc.Set(key, value, f.blockTime); setErr != nil {
				logger.ForCache().Warn().Err(setErr).Str("key", key).Msg("Failed to set block marker")
			}
		}
		return nil, err
	}

	return body, nil
}

// FetchDetail fetches one job detail page
func (f *HTTPFetcher) FetchDetail(ctx context.Context, url string) (io.Reader, error) {
	return helpers.FetchWithRandomHeaders(ctx, f.client, url)
}

// Package fetcher retrieves search result pages and listing detail pages.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"arodriguez/craigwatch/helpers"
	"arodriguez/craigwatch/internal/listing"
	"arodriguez/craigwatch/internal/search"
	"arodriguez/craigwatch/logger"
	apperr "arodriguez/craigwatch/pkg/errors"
	"arodriguez/craigwatch/services/cache"
)

// resultLinkSelector matches the title anchor of each result entry.
const resultLinkSelector = "a.result-title"

// nearbyPrefix marks hrefs pointing at results from outside the searched
// location; those entries are skipped.
const nearbyPrefix = "//"

// FetchFunc retrieves a URL and returns its UTF-8 body.
type FetchFunc func(url string) (io.Reader, error)

// Fetcher fetches a query target with bounded retry and parses the result
// page into candidate listings.
type Fetcher struct {
	criteria    *search.Criteria
	cacheSvc    cache.CacheService
	blockTime   time.Duration
	maxAttempts int
	retryDelay  time.Duration
	fetchFunc   FetchFunc
	log         *logger.Logger
}

// NewFetcher creates a fetcher. cacheSvc may be nil, which disables
// rate-limit blocking.
func NewFetcher(criteria *search.Criteria, cacheSvc cache.CacheService, blockTime time.Duration, maxAttempts int, retryDelay time.Duration) *Fetcher {
	return &Fetcher{
		criteria:    criteria,
		cacheSvc:    cacheSvc,
		blockTime:   blockTime,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		fetchFunc:   helpers.FetchWithRandomHeaders,
		log:         logger.ForFetcher(),
	}
}

// WithFetchFunc overrides the underlying HTTP fetch, used by tests.
func (f *Fetcher) WithFetchFunc(fn FetchFunc) *Fetcher {
	f.fetchFunc = fn
	return f
}

// Fetch retrieves one query target and returns its candidate listings.
// Network failures are retried with a fixed delay up to the configured
// attempt count; if all attempts fail a transport error is returned and the
// caller skips the target for this cycle. An unparseable page yields zero
// candidates, not an error.
func (f *Fetcher) Fetch(ctx context.Context, target search.QueryTarget) ([]listing.Candidate, error) {
	if err := f.checkBlocked(target); err != nil {
		return nil, err
	}

	var body io.Reader
	err := helpers.Retry(ctx, f.maxAttempts, f.retryDelay, func() error {
		var fetchErr error
		body, fetchErr = f.fetchFunc(target.Address)
		if fetchErr != nil && helpers.IsRateLimited(fetchErr) {
			f.block(target)
		}
		return fetchErr
	})
	if err != nil {
		return nil, apperr.NewTransport(target.Address, "fetch failed after retries", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		f.log.Warn().
			Str("target", target.Address).
			Err(err).
			Msg("Result page could not be parsed, treating as zero results")
		return nil, nil
	}

	origin := target.Origin()
	var candidates []listing.Candidate
	doc.Find(resultLinkSelector).Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		href, exists := s.Attr("href")
		if title == "" || !exists {
			return
		}
		if strings.HasPrefix(href, nearbyPrefix) {
			return
		}

		detailURL := href
		if strings.HasPrefix(href, "/") {
			detailURL = origin + href
		}

		candidates = append(candidates, listing.Candidate{
			Title:     title,
			DetailURL: detailURL,
			Category:  f.criteria.MatchCategory(title),
		})
	})

	f.log.Debug().
		Str("target", target.Address).
		Int("candidates", len(candidates)).
		Msg("Parsed result page")

	return candidates, nil
}

// checkBlocked skips a target whose host is currently rate limited.
func (f *Fetcher) checkBlocked(target search.QueryTarget) error {
	if f.cacheSvc == nil {
		return nil
	}
	if _, err := f.cacheSvc.Get(blockKey(target)); err == nil {
		return apperr.NewRateLimit(target.Address, f.blockTime)
	}
	return nil
}

// block remembers that the target's host rate limited us.
func (f *Fetcher) block(target search.QueryTarget) {
	if f.cacheSvc == nil {
		return
	}
	if err := f.cacheSvc.Set(blockKey(target), []byte("blocked"), f.blockTime); err != nil {
		f.log.Debug().Err(err).Msg("Failed to set rate-limit block")
	}
}

func blockKey(target search.QueryTarget) string {
	u, err := url.Parse(target.Address)
	if err != nil || u.Host == "" {
		return "ratelimit:" + target.Location
	}
	return "ratelimit:" + u.Host
}

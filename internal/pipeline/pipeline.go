// Package pipeline orchestrates one full poll cycle: fetch every query
// target, filter and dedup candidates, enrich survivors, compose the digest,
// notify, and persist the seen-listing store.
package pipeline

import (
	"context"
	"time"

	"arodriguez/craigwatch/helpers"
	"arodriguez/craigwatch/internal/digest"
	"arodriguez/craigwatch/internal/listing"
	"arodriguez/craigwatch/internal/search"
	"arodriguez/craigwatch/logger"
	"arodriguez/craigwatch/services/notifier"
)

// ListingFetcher retrieves candidate listings for one query target.
type ListingFetcher interface {
	Fetch(ctx context.Context, target search.QueryTarget) ([]listing.Candidate, error)
}

// Enricher resolves the paint color of a listing, best-effort.
type Enricher interface {
	Enrich(detailURL string) string
}

// SeenStore is the cross-run dedup authority.
type SeenStore interface {
	Contains(rawURL string) bool
	Add(rawURL string)
	Save() error
}

// Pipeline drives one discovery cycle at a time. The seen store and the run
// accumulation are owned exclusively by the running cycle.
type Pipeline struct {
	criteria       *search.Criteria
	fetcher        ListingFetcher
	enricher       Enricher
	store          SeenStore
	composer       *digest.Composer
	notifier       notifier.Notifier
	notifyAttempts int
	notifyDelay    time.Duration
	log            *logger.Logger
}

// New creates a pipeline over the given collaborators.
func New(
	criteria *search.Criteria,
	f ListingFetcher,
	e Enricher,
	store SeenStore,
	composer *digest.Composer,
	n notifier.Notifier,
	notifyAttempts int,
	notifyDelay time.Duration,
) *Pipeline {
	return &Pipeline{
		criteria:       criteria,
		fetcher:        f,
		enricher:       e,
		store:          store,
		composer:       composer,
		notifier:       n,
		notifyAttempts: notifyAttempts,
		notifyDelay:    notifyDelay,
		log:            logger.ForPipeline(),
	}
}

// RunCycle executes one complete poll cycle. Per-target failures are logged
// and skipped; notifier failure is retried a bounded number of times and then
// abandoned for this cycle. The store is persisted at the end regardless of
// notifier outcome, so a listing reported into a failed digest is still never
// re-reported. The accumulation dies with the cycle.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	start := time.Now()
	acc := listing.NewAccumulation()

	for _, target := range search.BuildTargets(p.criteria) {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.processTarget(ctx, target, acc)
	}

	if acc.Len() > 0 {
		p.notify(ctx, acc)
	} else {
		p.log.Info().Msg("No new listings this cycle, skipping digest")
	}

	if err := p.store.Save(); err != nil {
		p.log.Error().Err(err).Msg("Failed to persist seen listings")
	}

	p.log.Info().
		Int("accepted", acc.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Cycle complete")
	return nil
}

// processTarget fetches one target and folds its surviving candidates into
// the accumulation.
func (p *Pipeline) processTarget(ctx context.Context, target search.QueryTarget, acc *listing.Accumulation) {
	candidates, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		p.log.Warn().
			Str("target", target.Address).
			Err(err).
			Msg("Target skipped for this cycle")
		return
	}

	for _, candidate := range candidates {
		// Blacklist before anything else so rejected titles never cost
		// an enrichment request.
		if p.criteria.HasBlacklistedWord(candidate.Title) {
			p.log.Debug().
				Str("title", candidate.Title).
				Msg("Blacklisted title discarded")
			continue
		}

		if p.store.Contains(candidate.DetailURL) || acc.Has(candidate.DetailURL) {
			continue
		}

		candidate.PaintColor = p.enricher.Enrich(candidate.DetailURL)

		acc.Add(candidate)
		p.store.Add(candidate.DetailURL)

		p.log.Debug().
			Str("title", candidate.Title).
			Str("url", candidate.DetailURL).
			Str("color", candidate.PaintColor).
			Msg("Listing accepted")
	}
}

// notify composes and sends the digest with bounded retry.
func (p *Pipeline) notify(ctx context.Context, acc *listing.Accumulation) {
	report, err := p.composer.Compose(acc, p.criteria)
	if err != nil {
		p.log.Error().Err(err).Msg("Failed to compose digest")
		return
	}

	err = helpers.Retry(ctx, p.notifyAttempts, p.notifyDelay, func() error {
		return p.notifier.Send(report)
	})
	if err != nil {
		p.log.Error().
			Err(err).
			Int("listings", acc.Len()).
			Msg("Digest delivery abandoned for this cycle")
		return
	}

	p.log.Info().
		Int("listings", acc.Len()).
		Msg("Digest delivered")
}

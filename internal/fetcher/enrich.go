package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"arodriguez/craigwatch/helpers"
	"arodriguez/craigwatch/internal/listing"
	"arodriguez/craigwatch/logger"
)

// attributeSelector matches the attribute rows on a listing detail page,
// e.g. "paint color: blue".
const attributeSelector = ".attrgroup span"

// paintColorLabel is the attribute row this enricher extracts.
const paintColorLabel = "paint color"

// Enricher fetches a listing detail page and extracts the vehicle paint
// color. Enrichment is strictly best-effort: every failure path maps to
// listing.DefaultPaintColor and is never surfaced as an error, so a candidate
// is never dropped and the pipeline never stalls on enrichment.
type Enricher struct {
	fetchFunc FetchFunc
	log       *logger.Logger
}

// NewEnricher creates an enricher using the shared HTTP helper.
func NewEnricher() *Enricher {
	return &Enricher{
		fetchFunc: helpers.FetchWithRandomHeaders,
		log:       logger.ForEnricher(),
	}
}

// WithFetchFunc overrides the underlying HTTP fetch, used by tests.
func (e *Enricher) WithFetchFunc(fn FetchFunc) *Enricher {
	e.fetchFunc = fn
	return e
}

// Enrich returns the paint color of the listing at detailURL, or the default
// color on any network, parse, or missing-attribute failure.
func (e *Enricher) Enrich(detailURL string) string {
	body, err := e.fetchFunc(detailURL)
	if err != nil {
		e.log.Debug().
			Str("url", detailURL).
			Err(err).
			Msg("Detail page fetch failed, using default paint color")
		return listing.DefaultPaintColor
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		e.log.Debug().
			Str("url", detailURL).
			Err(err).
			Msg("Detail page parse failed, using default paint color")
		return listing.DefaultPaintColor
	}

	color := listing.DefaultPaintColor
	doc.Find(attributeSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(s.Text()))
		if !strings.HasPrefix(text, paintColorLabel) {
			return true
		}
		parts := strings.SplitN(text, ":", 2)
		if len(parts) != 2 {
			return true
		}
		if value := strings.TrimSpace(parts[1]); value != "" {
			color = value
		}
		return false
	})

	return color
}

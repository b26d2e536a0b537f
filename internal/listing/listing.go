package listing

import "strings"

// DefaultPaintColor is the enrichment fallback used whenever the paint color
// cannot be determined.
const DefaultPaintColor = "orange"

// Candidate is a result-page entry before dedup, filtering, and enrichment.
type Candidate struct {
	Title      string
	DetailURL  string
	Category   string
	PaintColor string // empty until enriched
}

// NormalizeURL returns the canonical dedup identity of a detail-page URL.
func NormalizeURL(rawURL string) string {
	return strings.ToLower(strings.TrimSpace(rawURL))
}

// Accumulation collects the listings accepted during one poll cycle,
// preserving insertion order. It is created at cycle start, consumed by the
// digest composer, and discarded at cycle end.
type Accumulation struct {
	entries []Candidate
	seen    map[string]struct{}
}

// NewAccumulation creates an empty run-scoped accumulation.
func NewAccumulation() *Accumulation {
	return &Accumulation{
		seen: make(map[string]struct{}),
	}
}

// Add appends a candidate. Duplicate normalized URLs are ignored so a listing
// appearing under multiple query targets is only counted once.
func (a *Accumulation) Add(c Candidate) {
	key := NormalizeURL(c.DetailURL)
	if _, ok := a.seen[key]; ok {
		return
	}
	a.seen[key] = struct{}{}
	a.entries = append(a.entries, c)
}

// Has reports whether a candidate with the same normalized URL was already
// accepted during this cycle.
func (a *Accumulation) Has(rawURL string) bool {
	_, ok := a.seen[NormalizeURL(rawURL)]
	return ok
}

// Len returns the number of accepted listings.
func (a *Accumulation) Len() int {
	return len(a.entries)
}

// Entries returns the accepted listings in insertion order.
func (a *Accumulation) Entries() []Candidate {
	return a.entries
}

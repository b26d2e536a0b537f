package search

import (
	"strings"

	"arodriguez/craigwatch/config"
)

// Uncategorized is the derived category for listings matching none of the
// configured categories.
const Uncategorized = "uncategorized"

// TitleStatus is the vehicle title status filter code used by the search site.
type TitleStatus int

const (
	TitleStatusClean TitleStatus = iota + 1
	TitleStatusSalvage
	TitleStatusRebuilt
	TitleStatusPartsOnly
	TitleStatusLien
	TitleStatusMissing
)

// String returns the human-readable name of the title status.
func (t TitleStatus) String() string {
	switch t {
	case TitleStatusClean:
		return "clean"
	case TitleStatusSalvage:
		return "salvage"
	case TitleStatusRebuilt:
		return "rebuilt"
	case TitleStatusPartsOnly:
		return "parts only"
	case TitleStatusLien:
		return "lien"
	case TitleStatusMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// CategoryMatcher decides whether a listing title belongs to a category.
// The default is a case-insensitive substring match; tests can substitute
// a stricter predicate.
type CategoryMatcher func(title, category string) bool

// DefaultCategoryMatcher matches when the category appears anywhere in the
// title, ignoring case.
func DefaultCategoryMatcher(title, category string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(category))
}

// Criteria describes one user's search: where to look, what to look for,
// which filters to apply, and which titles to reject. Loaded once at startup
// and immutable for the process lifetime.
type Criteria struct {
	Locations  []string
	Categories []string
	Blacklist  []string

	HasPhoto    *bool
	MinPrice    *int
	MaxPrice    *int
	MinYear     *int
	MaxYear     *int
	MinMiles    *int
	MaxMiles    *int
	TitleStatus *TitleStatus

	URLTemplate string

	matcher CategoryMatcher
}

// CriteriaFromConfig builds an immutable Criteria from the validated config.
// Blacklist keywords are lowercased once here.
func CriteriaFromConfig(cfg *config.Config) *Criteria {
	c := &Criteria{
		Locations:   append([]string(nil), cfg.Locations...),
		Categories:  append([]string(nil), cfg.Categories...),
		HasPhoto:    cfg.HasPhoto,
		MinPrice:    cfg.MinPrice,
		MaxPrice:    cfg.MaxPrice,
		MinYear:     cfg.MinYear,
		MaxYear:     cfg.MaxYear,
		MinMiles:    cfg.MinMiles,
		MaxMiles:    cfg.MaxMiles,
		URLTemplate: cfg.SearchURLTemplate,
		matcher:     DefaultCategoryMatcher,
	}

	for _, word := range cfg.Blacklist {
		c.Blacklist = append(c.Blacklist, strings.ToLower(word))
	}

	if cfg.TitleStatus != nil {
		status := TitleStatus(*cfg.TitleStatus)
		c.TitleStatus = &status
	}

	return c
}

// WithMatcher returns a copy of the criteria using the given category matcher.
func (c *Criteria) WithMatcher(m CategoryMatcher) *Criteria {
	clone := *c
	clone.matcher = m
	return &clone
}

// HasBlacklistedWord reports whether the title contains any blacklist
// keyword, ignoring case.
func (c *Criteria) HasBlacklistedWord(title string) bool {
	lowered := strings.ToLower(title)
	for _, word := range c.Blacklist {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// MatchCategory returns the first declared category matching the title, or
// Uncategorized when none match.
func (c *Criteria) MatchCategory(title string) string {
	matcher := c.matcher
	if matcher == nil {
		matcher = DefaultCategoryMatcher
	}
	for _, category := range c.Categories {
		if matcher(title, category) {
			return category
		}
	}
	return Uncategorized
}

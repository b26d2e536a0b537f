package search

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryTarget is one fully-parameterized search request for a
// (location, category) pair. Value type, never mutated.
type QueryTarget struct {
	Location string
	Category string
	Address  string
}

// Origin returns the scheme and host of the target address, used to
// absolutize relative listing hrefs found on the result page.
func (t QueryTarget) Origin() string {
	u, err := url.Parse(t.Address)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// BuildTargets renders the criteria into one query target per
// location × category pair. Locations form the outer loop and categories the
// inner loop, both in declaration order. Filters left unset are omitted from
// the query string, never defaulted.
func BuildTargets(c *Criteria) []QueryTarget {
	targets := make([]QueryTarget, 0, len(c.Locations)*len(c.Categories))
	for _, location := range c.Locations {
		base := strings.ReplaceAll(c.URLTemplate, "{location}", location)
		for _, category := range c.Categories {
			targets = append(targets, QueryTarget{
				Location: location,
				Category: category,
				Address:  base + "?" + buildQuery(c, category),
			})
		}
	}
	return targets
}

func buildQuery(c *Criteria, category string) string {
	params := url.Values{}

	// Only listings posted the same day, and never results from nearby areas.
	params.Set("postedToday", "1")
	params.Set("searchNearby", "0")
	params.Set("auto_make_model", category)

	if c.HasPhoto != nil {
		params.Set("hasPic", boolParam(*c.HasPhoto))
	}
	setIntParam(params, "min_price", c.MinPrice)
	setIntParam(params, "max_price", c.MaxPrice)
	setIntParam(params, "min_auto_year", c.MinYear)
	setIntParam(params, "max_auto_year", c.MaxYear)
	setIntParam(params, "min_auto_miles", c.MinMiles)
	setIntParam(params, "max_auto_miles", c.MaxMiles)
	if c.TitleStatus != nil {
		params.Set("auto_title_status", strconv.Itoa(int(*c.TitleStatus)))
	}

	return params.Encode()
}

func setIntParam(params url.Values, key string, value *int) {
	if value != nil {
		params.Set(key, strconv.Itoa(*value))
	}
}

func boolParam(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

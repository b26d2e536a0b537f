package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arodriguez/craigwatch/config"
)

func TestCriteriaFromConfig(t *testing.T) {
	status := 2
	cfg := &config.Config{
		Locations:         []string{"metro-a"},
		Categories:        []string{"sedan"},
		Blacklist:         []string{"SALVAGE", "Parts"},
		TitleStatus:       &status,
		SearchURLTemplate: "https://{location}.example.org/search",
	}

	c := CriteriaFromConfig(cfg)

	assert.Equal(t, []string{"metro-a"}, c.Locations)
	assert.Equal(t, []string{"salvage", "parts"}, c.Blacklist, "blacklist is lowercased on load")
	require.NotNil(t, c.TitleStatus)
	assert.Equal(t, TitleStatusSalvage, *c.TitleStatus)
}

func TestHasBlacklistedWord(t *testing.T) {
	c := &Criteria{Blacklist: []string{"salvage", "no title"}}

	assert.True(t, c.HasBlacklistedWord("2020 sedan SALVAGE title"))
	assert.True(t, c.HasBlacklistedWord("runs great, No Title"))
	assert.False(t, c.HasBlacklistedWord("2019 sedan clean"))
	assert.False(t, (&Criteria{}).HasBlacklistedWord("anything"))
}

func TestMatchCategory(t *testing.T) {
	c := &Criteria{Categories: []string{"sedan", "coupe"}}

	assert.Equal(t, "sedan", c.MatchCategory("2019 SEDAN clean"))
	assert.Equal(t, "coupe", c.MatchCategory("fast coupe, low miles"))
	assert.Equal(t, Uncategorized, c.MatchCategory("pickup truck"))

	// First declared category wins when several match
	assert.Equal(t, "sedan", c.MatchCategory("sedan or coupe, you pick"))
}

func TestWithMatcherSubstitutesPredicate(t *testing.T) {
	c := &Criteria{Categories: []string{"sedan"}}

	exact := c.WithMatcher(func(title, category string) bool {
		return strings.EqualFold(title, category)
	})

	assert.Equal(t, Uncategorized, exact.MatchCategory("2019 sedan clean"))
	assert.Equal(t, "sedan", exact.MatchCategory("Sedan"))

	// The original criteria keeps the default matcher
	assert.Equal(t, "sedan", c.MatchCategory("2019 sedan clean"))
}

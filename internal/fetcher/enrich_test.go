package fetcher

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"arodriguez/craigwatch/internal/listing"
)

const detailPage = `<html><body>
<p class="attrgroup">
  <span>condition: <b>good</b></span>
  <span>odometer: <b>98000</b></span>
  <span>paint color: <b>blue</b></span>
  <span>title status: <b>clean</b></span>
</p>
</body></html>`

func TestEnrichExtractsPaintColor(t *testing.T) {
	e := NewEnricher().WithFetchFunc(func(string) (io.Reader, error) {
		return strings.NewReader(detailPage), nil
	})

	assert.Equal(t, "blue", e.Enrich("https://metro-a.craigslist.org/cto/d/1.html"))
}

func TestEnrichMissingAttributeDefaults(t *testing.T) {
	page := `<html><body><p class="attrgroup"><span>odometer: <b>98000</b></span></p></body></html>`
	e := NewEnricher().WithFetchFunc(func(string) (io.Reader, error) {
		return strings.NewReader(page), nil
	})

	assert.Equal(t, listing.DefaultPaintColor, e.Enrich("https://x/1"))
}

func TestEnrichFetchFailureDefaults(t *testing.T) {
	e := NewEnricher().WithFetchFunc(func(string) (io.Reader, error) {
		return nil, errors.New("connection reset")
	})

	assert.Equal(t, listing.DefaultPaintColor, e.Enrich("https://x/1"))
}

func TestEnrichEmptyColorValueDefaults(t *testing.T) {
	page := `<html><body><p class="attrgroup"><span>paint color: <b></b></span></p></body></html>`
	e := NewEnricher().WithFetchFunc(func(string) (io.Reader, error) {
		return strings.NewReader(page), nil
	})

	assert.Equal(t, listing.DefaultPaintColor, e.Enrich("https://x/1"))
}

// Package digest renders one poll cycle's accepted listings into the daily
// HTML report.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"arodriguez/craigwatch/internal/listing"
	"arodriguez/craigwatch/internal/search"
)

// Subject is the digest email subject line.
const Subject = "Craigslist Listings For the Day"

// otherGroupName labels the residual bucket for listings matching no
// declared category.
const otherGroupName = "Other"

// knownColors are the paint colors the style mapping can render directly.
// Anything else falls back to the default color per fallbackStyle.
var knownColors = map[string]struct{}{
	"black":  {},
	"blue":   {},
	"brown":  {},
	"green":  {},
	"grey":   {},
	"orange": {},
	"purple": {},
	"red":    {},
	"silver": {},
	"white":  {},
	"yellow": {},
}

const fallbackStyle = "color:orange;"

// Item is one rendered listing: the link text, its destination, and the
// paint-color-derived link style.
type Item struct {
	Title string
	URL   string
	Style template.CSS
}

// Group is a category section of the report, in criteria declaration order.
type Group struct {
	Name  string
	Items []Item
}

// Report is the composed digest handed to the notifier.
type Report struct {
	Subject string
	HTML    string
}

var reportTemplate = template.Must(template.New("digest").Parse(`<html>
  <head></head>
  <body>
    <p>Hello! Here are the listings for today based off the specified criteria*:</p>
    <ul>
{{- range .Summary}}
      <li><b>{{.Label}}: </b>{{.Value}}</li>
{{- end}}
    </ul>
{{- range .Groups}}
    <br><font size="10px"><u><b>{{.Name}}</b></u></font><br>
{{- range .Items}}
    <font size="5px"><a href="{{.URL}}" style="{{.Style}}">{{.Title}}</a></font><br><br>
{{- end}}
{{- end}}
    <p><font size="2">
    * Link color represents the vehicle paint color. If no color can be determined then the link defaults to orange.<br>
    * All listings are from today ({{.Date}})
    </font></p>
  </body>
</html>
`))

type summaryLine struct {
	Label string
	Value string
}

type templateData struct {
	Summary []summaryLine
	Groups  []Group
	Date    string
}

// Composer groups accepted listings by matched category and renders the
// report body.
type Composer struct {
	now func() time.Time
}

// NewComposer creates a digest composer.
func NewComposer() *Composer {
	return &Composer{now: time.Now}
}

// Compose builds the report from a non-empty accumulation. Categories keep
// criteria declaration order; the residual Other bucket is emitted last and
// only when non-empty. Listing order within a group is insertion order.
func (c *Composer) Compose(acc *listing.Accumulation, criteria *search.Criteria) (*Report, error) {
	if acc.Len() == 0 {
		return nil, fmt.Errorf("cannot compose an empty accumulation")
	}

	groups := groupByCategory(acc, criteria)

	data := templateData{
		Summary: summarize(criteria),
		Groups:  groups,
		Date:    c.now().Format("01/02/06"),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render digest template: %w", err)
	}

	return &Report{
		Subject: Subject,
		HTML:    buf.String(),
	}, nil
}

func groupByCategory(acc *listing.Accumulation, criteria *search.Criteria) []Group {
	byCategory := make(map[string][]Item)
	for _, entry := range acc.Entries() {
		item := Item{
			Title: entry.Title,
			URL:   entry.DetailURL,
			Style: styleFor(entry.PaintColor),
		}
		byCategory[entry.Category] = append(byCategory[entry.Category], item)
	}

	var groups []Group
	for _, category := range criteria.Categories {
		items, ok := byCategory[category]
		if !ok {
			continue
		}
		groups = append(groups, Group{Name: titleCase(category), Items: items})
		delete(byCategory, category)
	}

	if items, ok := byCategory[search.Uncategorized]; ok {
		groups = append(groups, Group{Name: otherGroupName, Items: items})
	}

	return groups
}

// styleFor maps a paint color to an inline link style. White links get a
// black background so they stay visible.
func styleFor(color string) template.CSS {
	color = strings.ToLower(strings.TrimSpace(color))
	if color == "white" {
		return template.CSS("color:white;background:black;")
	}
	if _, ok := knownColors[color]; ok {
		return template.CSS(fmt.Sprintf("color:%s;", color))
	}
	return template.CSS(fallbackStyle)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func summarize(criteria *search.Criteria) []summaryLine {
	lines := []summaryLine{
		{Label: "Locations", Value: strings.Join(criteria.Locations, ", ")},
		{Label: "Categories", Value: strings.Join(criteria.Categories, ", ")},
	}
	if criteria.MinPrice != nil {
		lines = append(lines, summaryLine{"Minimum Price", fmt.Sprintf("$%d", *criteria.MinPrice)})
	}
	if criteria.MaxPrice != nil {
		lines = append(lines, summaryLine{"Maximum Price", fmt.Sprintf("$%d", *criteria.MaxPrice)})
	}
	if criteria.MinYear != nil {
		lines = append(lines, summaryLine{"Minimum Year", fmt.Sprintf("%d", *criteria.MinYear)})
	}
	if criteria.MaxYear != nil {
		lines = append(lines, summaryLine{"Maximum Year", fmt.Sprintf("%d", *criteria.MaxYear)})
	}
	if criteria.MinMiles != nil {
		lines = append(lines, summaryLine{"Minimum Mileage", fmt.Sprintf("%d miles", *criteria.MinMiles)})
	}
	if criteria.MaxMiles != nil {
		lines = append(lines, summaryLine{"Maximum Mileage", fmt.Sprintf("%d miles", *criteria.MaxMiles)})
	}
	if criteria.TitleStatus != nil {
		lines = append(lines, summaryLine{"Title Status", criteria.TitleStatus.String()})
	}
	return lines
}

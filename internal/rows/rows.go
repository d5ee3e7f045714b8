// Package rows walks a row template and emits the tagged rows the writer
// renders: every row knows its results key, its main group, the label of
// the row above it and its banner colour.
package rows

import (
	"github.com/ginjaninja78/pnl-workbook/internal/mapping"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// DefaultBanners is the colour cycle of section banners.
var DefaultBanners = []string{
	"#DDEBF7",
	"#FCE4D6",
	"#FFF2CC",
	"#E2EFDA",
	"#EDE7F6",
	"#F2F2F2",
}

// Row is one tagged template row.
type Row struct {
	mapping.TemplateRow

	// Key is the results key of the row: the label, the composite
	// previous|label for ratio rows, or main-group/label for detail labels
	// that recur under several sections.
	Key string

	// MainGroup is the label of the most recent level-0 row.
	MainGroup string

	// Previous is the label of the row immediately above.
	Previous string

	// GrandTotalOnly rows carry None in every column but the grand total.
	GrandTotalOnly bool

	// Banner is the fill colour of section banner rows, empty otherwise.
	Banner string
}

// IsSection reports whether the row is a level-0 bold banner.
func (r Row) IsSection() bool {
	return !r.IsBlank() && r.Level == 0 && r.Bold
}

// Build emits the template of tables as tagged rows. A nil palette uses
// DefaultBanners.
func Build(tables *mapping.Tables, palette []string) []Row {
	if len(palette) == 0 {
		palette = DefaultBanners
	}

	counts := make(map[string]int)
	for _, t := range tables.Template {
		if !t.IsBlank() && !t.IsRatio() {
			counts[t.Label]++
		}
	}

	out := make([]Row, 0, len(tables.Template))
	mainGroup, previous := "", ""
	sections := 0

	for _, t := range tables.Template {
		if !t.IsBlank() && t.Level == 0 {
			mainGroup = t.Label
		}

		r := Row{TemplateRow: t, MainGroup: mainGroup, Previous: previous}

		switch {
		case t.IsBlank():
		case t.IsRatio():
			r.Key = types.RatioRowKey(previous, t.Label)
		case counts[t.Label] > 1:
			r.Key = types.SectionRowKey(mainGroup, t.Label)
		default:
			r.Key = t.Label
		}

		if !t.IsBlank() && !t.Calculated {
			r.GrandTotalOnly = tables.IsGrandTotalOnly(t.Label, mainGroup)
		}
		if t.Calculated && t.Tag == mapping.TagNetProfit {
			r.GrandTotalOnly = true
		}

		if r.IsSection() {
			r.Banner = palette[sections%len(palette)]
			sections++
		}

		out = append(out, r)
		previous = t.Label
	}

	return out
}

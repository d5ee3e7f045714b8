// =============================================================================
// P&L Workbook Generator - Column Builder
// =============================================================================
//
// This module builds the column axis of the workbook for a detail level:
//
//   BU_ONLY        label | grand total | per BU: bu_total
//   BU_SG          label | grand total | per BU: bu_total, sg...
//   BU_SG_PRODUCT  label | grand total | per BU: bu_total,
//                  [satellite_summary], per SG: sg_total, product...
//
// With common size on, every amount column is followed by a percent column.
// BUs and SGs are ordered naturally on their leading dotted number.
//
// =============================================================================

package columns

import (
	"fmt"

	"github.com/ginjaninja78/pnl-workbook/internal/aggregator"
	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// COLUMN MODEL
// =============================================================================

// Kind tags a column.
type Kind string

const (
	KindLabel            Kind = "label"
	KindGrandTotal       Kind = "grand_total"
	KindBUTotal          Kind = "bu_total"
	KindSGTotal          Kind = "sg_total"
	KindSG               Kind = "sg"
	KindProduct          Kind = "product"
	KindCommonSize       Kind = "common_size"
	KindSatelliteSummary Kind = "satellite_summary"
)

// Column widths in characters.
const (
	WidthLabel   = 55.0
	WidthAmount  = 18.0
	WidthPercent = 9.0
)

// Header texts.
const (
	TextLabel      = "รายการ"
	TextGrandTotal = "รวมทั้งสิ้น"
	TextTotal      = "รวม"
	TextAmount     = "จำนวนเงิน"
	TextPercent    = "%"
)

// GrandTotalColor is the accent colour of the label and grand-total headers.
const GrandTotalColor = "#1F4E78"

// DefaultBUColors is the accent colour cycle for BUs without a configured
// colour.
var DefaultBUColors = []string{
	"#2E75B6", "#C55A11", "#548235", "#7030A0", "#BF8F00", "#2F5597", "#833C0B",
}

// Column is one column of the sheet.
type Column struct {
	Kind        Kind
	BU          string
	SG          string
	ProductKey  string
	ProductName string

	// Key is the column key values are read from. Common-size columns carry
	// the key of the amount column they express.
	Key string

	Width float64
	Color string
}

// Percent reports whether the column renders ratios.
func (c Column) Percent() bool {
	return c.Kind == KindCommonSize
}

// Options selects the column structure.
type Options struct {
	Detail     types.DetailLevel
	CommonSize bool

	// Satellite enables the summary column for BUs carrying both
	// descendant service groups.
	Satellite facts.SplitConfig

	// SatelliteLabel is the header text of the summary column.
	SatelliteLabel string

	// Colors maps a BU to its accent colour.
	Colors map[string]string
}

// Layout is the built column axis.
type Layout struct {
	Columns []Column

	// Header holds every header cell of the four-row header block, merged
	// or not, in sheet order.
	Header []HeaderCell

	// Frozen is the number of leading columns kept visible when scrolling:
	// the label column and the grand-total block.
	Frozen int
}

// DefaultSatelliteLabel is the summary column header text.
const DefaultSatelliteLabel = "ดาวเทียม (รวม)"

// =============================================================================
// BUILDER
// =============================================================================

// Build builds the column axis for the facts in ix.
//
// PARAMETERS:
//   - ix: The fact index (source of BUs, SGs and products).
//   - opts: Detail level, common size and colour options.
//
// RETURNS:
//   - The layout: ordered columns, header cells and frozen column count.
//   - An error if the detail level is unknown or header merges overlap.
func Build(ix *facts.Index, opts Options) (*Layout, error) {
	if opts.SatelliteLabel == "" {
		opts.SatelliteLabel = DefaultSatelliteLabel
	}

	b := &builder{opts: opts}
	b.add(Column{Kind: KindLabel, Width: WidthLabel, Color: GrandTotalColor},
		node{id: "LABEL", text: TextLabel, color: GrandTotalColor})
	b.amount(Column{Kind: KindGrandTotal, Key: types.GrandTotalKey, Color: GrandTotalColor},
		node{id: "GT", text: TextGrandTotal, color: GrandTotalColor})
	frozen := len(b.columns)

	bus := ix.BusinessUnits()
	NaturalSort(bus)

	for i, bu := range bus {
		color := opts.Colors[bu]
		if color == "" {
			color = DefaultBUColors[i%len(DefaultBUColors)]
		}
		buNode := node{id: "BU:" + bu, text: DisplayName(bu), color: color}
		totalNode := node{id: "BUT:" + bu, text: TextTotal, color: color}

		switch opts.Detail {
		case types.DetailBUOnly:
			b.amount(Column{Kind: KindBUTotal, BU: bu, Key: types.BUTotalKey(bu), Color: color}, buNode)

		case types.DetailBUSG:
			b.amount(Column{Kind: KindBUTotal, BU: bu, Key: types.BUTotalKey(bu), Color: color}, buNode, totalNode)
			for _, sg := range b.serviceGroups(ix, bu) {
				b.amount(Column{Kind: KindSG, BU: bu, SG: sg, Key: types.SGKey(bu, sg), Color: color},
					buNode, node{id: "SG:" + bu + "\x00" + sg, text: sg, color: color})
			}

		case types.DetailBUSGProduct:
			b.amount(Column{Kind: KindBUTotal, BU: bu, Key: types.BUTotalKey(bu), Color: color}, buNode, totalNode)
			pair := aggregator.HasSatellitePair(ix, opts.Satellite, bu)
			for _, sg := range b.serviceGroups(ix, bu) {
				if pair && sg == opts.Satellite.Descendants[0] {
					b.amount(Column{Kind: KindSatelliteSummary, BU: bu, Key: types.SatelliteSummaryKey(bu), Color: color},
						buNode, node{id: "SAT:" + bu, text: opts.SatelliteLabel, color: color})
				}
				sgNode := node{id: "SG:" + bu + "\x00" + sg, text: sg, color: color}
				b.amount(Column{Kind: KindSGTotal, BU: bu, SG: sg, Key: types.SGKey(bu, sg), Color: color},
					buNode, sgNode, node{id: "SGT:" + bu + "\x00" + sg, text: TextTotal, color: color})
				for _, p := range ix.Products(bu, sg) {
					pid := "P:" + bu + "\x00" + sg + "\x00" + p.Key
					col := Column{
						Kind: KindProduct, BU: bu, SG: sg, ProductKey: p.Key, ProductName: p.Name,
						Key: types.ProductColumnKey(bu, sg, p.Key), Color: color,
					}
					if opts.CommonSize {
						b.amount(col, buNode, sgNode, node{id: pid, text: p.Key + " " + p.Name, color: color})
					} else {
						b.amount(col, buNode, sgNode, node{id: pid, text: p.Key, color: color},
							node{id: pid + "\x00name", text: p.Name, color: color})
					}
				}
			}

		default:
			return nil, fmt.Errorf("unknown detail level %q", opts.Detail)
		}
	}

	header, err := headerCells(b.paths)
	if err != nil {
		return nil, err
	}

	return &Layout{Columns: b.columns, Header: header, Frozen: frozen}, nil
}

// builder accumulates columns together with their header paths.
type builder struct {
	opts    Options
	columns []Column
	paths   [][]node
}

// add appends a column whose header path is already complete.
func (b *builder) add(c Column, path ...node) {
	b.columns = append(b.columns, c)
	b.paths = append(b.paths, pad(path, HeaderRows))
}

// amount appends an amount column and, with common size on, its percent
// column. The two share their path except for the last header row.
func (b *builder) amount(c Column, path ...node) {
	c.Width = WidthAmount
	if !b.opts.CommonSize {
		b.add(c, path...)
		return
	}

	id := fmt.Sprintf("#%d", len(b.columns))
	shared := pad(path, HeaderRows-1)
	b.add(c, append(shared, node{id: id + "A", text: TextAmount, color: c.Color})...)

	cs := c
	cs.Kind = KindCommonSize
	cs.Width = WidthPercent
	b.add(cs, append(append([]node(nil), shared...), node{id: id + "P", text: TextPercent, color: c.Color})...)
}

// serviceGroups returns the SGs of bu in natural order, with the satellite
// descendants kept adjacent in configured order.
func (b *builder) serviceGroups(ix *facts.Index, bu string) []string {
	sgs := ix.ServiceGroups(bu)
	NaturalSort(sgs)

	if !aggregator.HasSatellitePair(ix, b.opts.Satellite, bu) {
		return sgs
	}

	descendants := b.opts.Satellite.Descendants
	out := make([]string, 0, len(sgs))
	placed := false
	for _, sg := range sgs {
		if b.opts.Satellite.IsDescendant(sg) {
			if !placed {
				out = append(out, descendants...)
				placed = true
			}
			continue
		}
		out = append(out, sg)
	}
	return out
}

package aggregator

import (
	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// Level is the granularity of a scope.
type Level int

const (
	LevelGrandTotal Level = iota
	LevelBU
	LevelSG
	LevelProduct
	LevelSatellite
)

// Scope is the set of facts a value column aggregates.
type Scope struct {
	Level      Level
	BU         string
	SG         string
	ProductKey string

	// SGs are the summed service groups of a satellite summary scope.
	SGs []string
}

// GrandTotal is the scope of the grand-total column.
func GrandTotal() Scope {
	return Scope{Level: LevelGrandTotal}
}

// BUScope is the scope of a BU total column.
func BUScope(bu string) Scope {
	return Scope{Level: LevelBU, BU: bu}
}

// SGScope is the scope of a (BU, SG) column.
func SGScope(bu, sg string) Scope {
	return Scope{Level: LevelSG, BU: bu, SG: sg}
}

// ProductScope is the scope of a product column.
func ProductScope(bu, sg, productKey string) Scope {
	return Scope{Level: LevelProduct, BU: bu, SG: sg, ProductKey: productKey}
}

// SatelliteScope is the scope of a BU's satellite summary column.
func SatelliteScope(bu string, descendants []string) Scope {
	return Scope{Level: LevelSatellite, BU: bu, SGs: descendants}
}

// Key returns the column key the scope's values are stored under.
func (s Scope) Key() string {
	switch s.Level {
	case LevelBU:
		return types.BUTotalKey(s.BU)
	case LevelSG:
		return types.SGKey(s.BU, s.SG)
	case LevelProduct:
		return types.ProductColumnKey(s.BU, s.SG, s.ProductKey)
	case LevelSatellite:
		return types.SatelliteSummaryKey(s.BU)
	}
	return types.GrandTotalKey
}

// queries returns the index queries whose sum is the scope's value for the
// given groups and sub-groups.
func (s Scope) queries(groups, subGroups []string) []facts.Query {
	q := facts.Query{Groups: groups, SubGroups: subGroups}
	switch s.Level {
	case LevelBU:
		q.BU = facts.Ptr(s.BU)
	case LevelSG:
		q.BU, q.SG = facts.Ptr(s.BU), facts.Ptr(s.SG)
	case LevelProduct:
		q.BU, q.SG, q.ProductKey = facts.Ptr(s.BU), facts.Ptr(s.SG), facts.Ptr(s.ProductKey)
	case LevelSatellite:
		out := make([]facts.Query, 0, len(s.SGs))
		for _, sg := range s.SGs {
			sq := q
			sq.BU, sq.SG = facts.Ptr(s.BU), facts.Ptr(sg)
			out = append(out, sq)
		}
		return out
	}
	return []facts.Query{q}
}

// Scopes enumerates every value scope the index supports: grand total, each
// BU, each (BU, SG), each product, and a satellite summary for every BU that
// carries both descendant service groups.
func Scopes(ix *facts.Index, satellite facts.SplitConfig) []Scope {
	out := []Scope{GrandTotal()}
	for _, bu := range ix.BusinessUnits() {
		out = append(out, BUScope(bu))
		for _, sg := range ix.ServiceGroups(bu) {
			out = append(out, SGScope(bu, sg))
			for _, p := range ix.Products(bu, sg) {
				out = append(out, ProductScope(bu, sg, p.Key))
			}
		}
		if HasSatellitePair(ix, satellite, bu) {
			out = append(out, SatelliteScope(bu, satellite.Descendants))
		}
	}
	return out
}

// HasSatellitePair reports whether bu carries every descendant service
// group of an enabled split.
func HasSatellitePair(ix *facts.Index, satellite facts.SplitConfig, bu string) bool {
	if !satellite.Enabled || len(satellite.Descendants) < 2 {
		return false
	}
	for _, sg := range satellite.Descendants {
		if !ix.HasServiceGroup(bu, sg) {
			return false
		}
	}
	return true
}

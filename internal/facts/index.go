// =============================================================================
// P&L Workbook Generator - Fact Index
// =============================================================================
//
// The index pre-aggregates the fact table into two nested lookups so that
// every engine query touches only the buckets it needs:
//
//   L1: GROUP -> SUB_GROUP -> BU -> SG -> value
//   L2: GROUP -> SUB_GROUP -> BU -> SG -> PRODUCT_KEY -> value
//
// A nil axis in a query means "sum across that axis".
//
// =============================================================================

package facts

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// TotalSubGroup keys records without a SUB_GROUP.
const TotalSubGroup = "_TOTAL_"

type (
	sgMap      map[string]decimal.Decimal
	buMap      map[string]sgMap
	productMap map[string]decimal.Decimal
	buProducts map[string]map[string]productMap
)

// Product is a product column candidate: its key and display name.
type Product struct {
	Key  string
	Name string
}

// Index holds the pre-aggregated fact lookups. It is immutable after
// NewIndex returns.
type Index struct {
	l1 map[string]map[string]buMap
	l2 map[string]map[string]buProducts

	bus      []string
	sgs      map[string][]string
	products map[string]map[string][]Product
}

// Query selects index buckets. Empty slices and nil pointers select every
// value of their axis.
type Query struct {
	Groups     []string
	SubGroups  []string
	BU         *string
	SG         *string
	ProductKey *string
}

// NewIndex builds the index from fact records.
func NewIndex(records []types.Fact) *Index {
	ix := &Index{
		l1:       make(map[string]map[string]buMap),
		l2:       make(map[string]map[string]buProducts),
		sgs:      make(map[string][]string),
		products: make(map[string]map[string][]Product),
	}

	seenSG := make(map[string]map[string]bool)
	seenProduct := make(map[string]map[string]map[string]string)

	for _, f := range records {
		sub := f.SubGroup
		if sub == "" {
			sub = TotalSubGroup
		}

		// L1
		subs, ok := ix.l1[f.Group]
		if !ok {
			subs = make(map[string]buMap)
			ix.l1[f.Group] = subs
		}
		bus, ok := subs[sub]
		if !ok {
			bus = make(buMap)
			subs[sub] = bus
		}
		sgs, ok := bus[f.BU]
		if !ok {
			sgs = make(sgMap)
			bus[f.BU] = sgs
		}
		sgs[f.ServiceGroup] = sgs[f.ServiceGroup].Add(f.Value)

		// L2
		psubs, ok := ix.l2[f.Group]
		if !ok {
			psubs = make(map[string]buProducts)
			ix.l2[f.Group] = psubs
		}
		pbus, ok := psubs[sub]
		if !ok {
			pbus = make(buProducts)
			psubs[sub] = pbus
		}
		psgs, ok := pbus[f.BU]
		if !ok {
			psgs = make(map[string]productMap)
			pbus[f.BU] = psgs
		}
		prods, ok := psgs[f.ServiceGroup]
		if !ok {
			prods = make(productMap)
			psgs[f.ServiceGroup] = prods
		}
		prods[f.ProductKey] = prods[f.ProductKey].Add(f.Value)

		// Enumerations
		if _, ok := seenSG[f.BU]; !ok {
			seenSG[f.BU] = make(map[string]bool)
			seenProduct[f.BU] = make(map[string]map[string]string)
			ix.bus = append(ix.bus, f.BU)
		}
		if !seenSG[f.BU][f.ServiceGroup] {
			seenSG[f.BU][f.ServiceGroup] = true
			seenProduct[f.BU][f.ServiceGroup] = make(map[string]string)
			ix.sgs[f.BU] = append(ix.sgs[f.BU], f.ServiceGroup)
		}
		if _, ok := seenProduct[f.BU][f.ServiceGroup][f.ProductKey]; !ok {
			seenProduct[f.BU][f.ServiceGroup][f.ProductKey] = f.ProductName
		}
	}

	for bu, bySG := range seenProduct {
		ix.products[bu] = make(map[string][]Product, len(bySG))
		for sg, names := range bySG {
			list := make([]Product, 0, len(names))
			for key, name := range names {
				list = append(list, Product{Key: key, Name: name})
			}
			sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
			ix.products[bu][sg] = list
		}
	}

	sort.Strings(ix.bus)
	for bu := range ix.sgs {
		sort.Strings(ix.sgs[bu])
	}

	return ix
}

// =============================================================================
// QUERIES
// =============================================================================

// Get sums L1 values. A nil argument sums across that axis.
func (ix *Index) Get(group, subGroup, bu, sg *string) decimal.Decimal {
	return ix.Sum(Query{
		Groups:    optional(group),
		SubGroups: optional(subGroup),
		BU:        bu,
		SG:        sg,
	})
}

// GetByProduct sums L2 values. A nil argument sums across that axis.
func (ix *Index) GetByProduct(group, subGroup, bu, sg, productKey *string) decimal.Decimal {
	return ix.Sum(Query{
		Groups:     optional(group),
		SubGroups:  optional(subGroup),
		BU:         bu,
		SG:         sg,
		ProductKey: productKey,
	})
}

// Sum adds every bucket selected by q. Queries with a product key read L2,
// all others read L1.
func (ix *Index) Sum(q Query) decimal.Decimal {
	total := decimal.Zero

	for _, group := range ix.groups(q.Groups) {
		if q.ProductKey != nil {
			subs := ix.l2[group]
			for _, sub := range selectKeys(subs, q.SubGroups) {
				for _, sgs := range selectOne(subs[sub], q.BU) {
					for _, prods := range selectOne(sgs, q.SG) {
						total = total.Add(prods[*q.ProductKey])
					}
				}
			}
			continue
		}

		subs := ix.l1[group]
		for _, sub := range selectKeys(subs, q.SubGroups) {
			for _, sgs := range selectOne(subs[sub], q.BU) {
				for _, v := range selectOne(sgs, q.SG) {
					total = total.Add(v)
				}
			}
		}
	}

	return total
}

func (ix *Index) groups(requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	out := make([]string, 0, len(ix.l1))
	for g := range ix.l1 {
		out = append(out, g)
	}
	return out
}

// selectKeys returns the requested keys, or every key of m when none are
// requested. A requested empty sub-group selects the TotalSubGroup bucket.
func selectKeys[V any](m map[string]V, requested []string) []string {
	if len(requested) == 0 {
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}
	out := make([]string, 0, len(requested))
	for _, k := range requested {
		if k == "" {
			k = TotalSubGroup
		}
		out = append(out, k)
	}
	return out
}

// selectOne returns the value at *key, or every value of m when key is nil.
func selectOne[V any](m map[string]V, key *string) []V {
	if key != nil {
		if v, ok := m[*key]; ok {
			return []V{v}
		}
		return nil
	}
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func optional(s *string) []string {
	if s == nil {
		return nil
	}
	return []string{*s}
}

// =============================================================================
// ENUMERATIONS
// =============================================================================

// BusinessUnits returns every BU in the fact table, sorted lexically.
// Display order is applied by the column builder.
func (ix *Index) BusinessUnits() []string {
	return append([]string(nil), ix.bus...)
}

// ServiceGroups returns the service groups seen under bu.
func (ix *Index) ServiceGroups(bu string) []string {
	return append([]string(nil), ix.sgs[bu]...)
}

// HasServiceGroup reports whether any record carries (bu, sg).
func (ix *Index) HasServiceGroup(bu, sg string) bool {
	for _, s := range ix.sgs[bu] {
		if s == sg {
			return true
		}
	}
	return false
}

// Products returns the products of (bu, sg) sorted by product key. When a
// key carries several names the first one seen wins.
func (ix *Index) Products(bu, sg string) []Product {
	return append([]Product(nil), ix.products[bu][sg]...)
}

// Empty reports whether the index holds no records.
func (ix *Index) Empty() bool {
	return len(ix.bus) == 0
}

// Ptr returns a pointer to s for building queries.
func Ptr(s string) *string {
	return &s
}

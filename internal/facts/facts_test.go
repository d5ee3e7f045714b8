package facts

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// FIXTURES
// =============================================================================

func row(timeKey, group, sub, bu, sg, pk, name, value string) map[string]string {
	return map[string]string{
		ColTimeKey:      timeKey,
		ColGroup:        group,
		ColSubGroup:     sub,
		ColBU:           bu,
		ColServiceGroup: sg,
		ColProductKey:   pk,
		ColProductName:  name,
		ColValue:        value,
	}
}

func fact(group, sub, bu, sg, pk string, value int64) types.Fact {
	return types.Fact{
		Group:        group,
		SubGroup:     sub,
		BU:           bu,
		ServiceGroup: sg,
		ProductKey:   pk,
		ProductName:  "name-" + pk,
		Year:         2024,
		Month:        1,
		Value:        decimal.NewFromInt(value),
	}
}

// =============================================================================
// NORMALIZER
// =============================================================================

func TestNormalizeCoercesFields(t *testing.T) {
	rows := []map[string]string{
		row("202401", " REV ", "01", "01.BU", "SG", "1001.0", " Prod ", "1,234.50"),
		row("202401.0", "REV", "", "01.BU", "SG", "1002", "P2", "abc"),
		row("bad", "REV", "", "01.BU", "SG", "1003", "P3", ""),
	}

	got, stats := Normalize(rows, NormalizeOptions{})
	require.Len(t, got, 3)

	assert.Equal(t, "REV", got[0].Group)
	assert.Equal(t, "1001", got[0].ProductKey)
	assert.Equal(t, "Prod", got[0].ProductName)
	assert.Equal(t, 2024, got[0].Year)
	assert.Equal(t, 1, got[0].Month)
	assert.True(t, got[0].Value.Equal(decimal.RequireFromString("1234.50")))

	assert.Equal(t, 1, got[1].Month)
	assert.True(t, got[1].Value.IsZero())

	assert.Equal(t, 0, got[2].Year)
	assert.True(t, got[2].Value.IsZero())

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 3, stats.Kept)
	assert.Equal(t, 1, stats.InvalidValues)
	assert.Equal(t, 1, stats.InvalidTimeKeys)
}

func TestNormalizeMonthFilter(t *testing.T) {
	rows := []map[string]string{
		row("202401", "REV", "", "BU", "SG", "1", "P", "10"),
		row("202402", "REV", "", "BU", "SG", "1", "P", "20"),
	}

	got, stats := Normalize(rows, NormalizeOptions{Month: "202402"})
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Month)
	assert.Equal(t, 1, stats.Kept)
	assert.Equal(t, 1, stats.OutsideMonth)
}

func TestParseTimeKey(t *testing.T) {
	tests := []struct {
		in        string
		year, mon int
		ok        bool
	}{
		{"202412", 2024, 12, true},
		{"202401.0", 2024, 1, true},
		{"20241", 0, 0, false},
		{"202413", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			y, m, ok := ParseTimeKey(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.year, y)
			assert.Equal(t, tt.mon, m)
		})
	}
}

func TestCanonicalProductKey(t *testing.T) {
	assert.Equal(t, "12345", CanonicalProductKey(" 12345.0 "))
	assert.Equal(t, "12345", CanonicalProductKey("12345"))
	assert.Equal(t, "A-1", CanonicalProductKey("A-1"))
}

// =============================================================================
// SATELLITE SPLIT
// =============================================================================

func splitConfig() SplitConfig {
	return SplitConfig{
		Enabled:     true,
		SourceLabel: "SATELLITE",
		Descendants: []string{"SATELLITE-NT", "SATELLITE-THAICOM"},
		ProductKeys: map[string]string{
			"9001": "SATELLITE-NT",
			"9002": "SATELLITE-THAICOM",
		},
	}
}

func TestSplitSatelliteConservesValues(t *testing.T) {
	records := []types.Fact{
		fact("REV", "", "BU", "SATELLITE", "9001", 100),
		fact("REV", "", "BU", "SATELLITE", "9002", 100),
		fact("REV", "", "BU", "SATELLITE", "9001", -40),
		fact("REV", "", "BU", "MOBILE", "1", 7),
	}

	before := decimal.Zero
	for _, r := range records {
		if r.ServiceGroup == "SATELLITE" {
			before = before.Add(r.Value)
		}
	}

	stats := SplitSatellite(records, splitConfig())
	assert.Equal(t, 3, stats.Updated)
	assert.Equal(t, 0, stats.Unmatched)
	assert.Equal(t, 2, stats.PerDescendant["SATELLITE-NT"])
	assert.Equal(t, 1, stats.PerDescendant["SATELLITE-THAICOM"])

	after := decimal.Zero
	for _, r := range records {
		assert.NotEqual(t, "SATELLITE", r.ServiceGroup)
		if r.ServiceGroup == "SATELLITE-NT" || r.ServiceGroup == "SATELLITE-THAICOM" {
			after = after.Add(r.Value)
		}
	}
	assert.True(t, before.Equal(after))
	assert.Len(t, records, 4)
}

func TestSplitSatelliteReportsUnmatched(t *testing.T) {
	records := []types.Fact{
		fact("REV", "", "BU", "SATELLITE", "7777", 5),
		fact("REV", "", "BU", "SATELLITE", "7777", 5),
		fact("REV", "", "BU", "SATELLITE", "9002", 5),
	}

	stats := SplitSatellite(records, splitConfig())
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 2, stats.Unmatched)
	assert.Equal(t, []string{"7777"}, stats.UnmatchedKeys)
	assert.Equal(t, "SATELLITE", records[0].ServiceGroup)
}

func TestSplitSatelliteDisabled(t *testing.T) {
	records := []types.Fact{fact("REV", "", "BU", "SATELLITE", "9001", 5)}
	cfg := splitConfig()
	cfg.Enabled = false

	stats := SplitSatellite(records, cfg)
	assert.Zero(t, stats.Updated)
	assert.Equal(t, "SATELLITE", records[0].ServiceGroup)
}

// =============================================================================
// INDEX
// =============================================================================

func sampleIndex() *Index {
	return NewIndex([]types.Fact{
		fact("REV", "01", "BU1", "SG1", "P1", 100),
		fact("REV", "01", "BU1", "SG1", "P2", 50),
		fact("REV", "02", "BU1", "SG2", "P3", 25),
		fact("REV", "", "BU2", "SG1", "P1", 10),
		fact("EXP", "12", "BU1", "SG1", "P1", 30),
	})
}

func TestIndexGetSumsAcrossNilAxes(t *testing.T) {
	ix := sampleIndex()

	assert.Equal(t, "185", ix.Get(Ptr("REV"), nil, nil, nil).String())
	assert.Equal(t, "175", ix.Get(Ptr("REV"), nil, Ptr("BU1"), nil).String())
	assert.Equal(t, "150", ix.Get(Ptr("REV"), Ptr("01"), Ptr("BU1"), Ptr("SG1")).String())
	assert.Equal(t, "10", ix.Get(Ptr("REV"), Ptr(""), nil, nil).String())
	assert.Equal(t, "10", ix.Get(Ptr("REV"), Ptr(TotalSubGroup), nil, nil).String())
	assert.Equal(t, "215", ix.Get(nil, nil, nil, nil).String())
	assert.True(t, ix.Get(Ptr("MISSING"), nil, nil, nil).IsZero())
}

func TestIndexGetByProduct(t *testing.T) {
	ix := sampleIndex()

	assert.Equal(t, "100", ix.GetByProduct(Ptr("REV"), nil, Ptr("BU1"), Ptr("SG1"), Ptr("P1")).String())
	assert.Equal(t, "110", ix.GetByProduct(Ptr("REV"), nil, nil, nil, Ptr("P1")).String())
	assert.True(t, ix.GetByProduct(Ptr("REV"), nil, Ptr("BU1"), Ptr("SG2"), Ptr("P1")).IsZero())
}

func TestIndexSumMultipleGroups(t *testing.T) {
	ix := sampleIndex()

	got := ix.Sum(Query{Groups: []string{"REV", "EXP"}, SubGroups: []string{"01", "12"}, BU: Ptr("BU1")})
	assert.Equal(t, "180", got.String())
}

func TestIndexTotalsAreAdditive(t *testing.T) {
	ix := sampleIndex()

	grand := ix.Get(Ptr("REV"), nil, nil, nil)
	byBU := decimal.Zero
	for _, bu := range ix.BusinessUnits() {
		buTotal := ix.Get(Ptr("REV"), nil, Ptr(bu), nil)
		bySG := decimal.Zero
		for _, sg := range ix.ServiceGroups(bu) {
			sgTotal := ix.Get(Ptr("REV"), nil, Ptr(bu), Ptr(sg))
			byProduct := decimal.Zero
			for _, p := range ix.Products(bu, sg) {
				byProduct = byProduct.Add(ix.GetByProduct(Ptr("REV"), nil, Ptr(bu), Ptr(sg), Ptr(p.Key)))
			}
			assert.True(t, sgTotal.Equal(byProduct), "%s/%s", bu, sg)
			bySG = bySG.Add(sgTotal)
		}
		assert.True(t, buTotal.Equal(bySG), bu)
		byBU = byBU.Add(buTotal)
	}
	assert.True(t, grand.Equal(byBU))
}

func TestIndexEnumerations(t *testing.T) {
	ix := sampleIndex()

	assert.Equal(t, []string{"BU1", "BU2"}, ix.BusinessUnits())
	assert.Equal(t, []string{"SG1", "SG2"}, ix.ServiceGroups("BU1"))
	assert.Equal(t, []Product{{Key: "P1", Name: "name-P1"}, {Key: "P2", Name: "name-P2"}}, ix.Products("BU1", "SG1"))
	assert.True(t, ix.HasServiceGroup("BU2", "SG1"))
	assert.False(t, ix.HasServiceGroup("BU2", "SG2"))
	assert.False(t, ix.Empty())
	assert.True(t, NewIndex(nil).Empty())
}

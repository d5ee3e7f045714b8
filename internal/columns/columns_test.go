package columns

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// FIXTURES
// =============================================================================

func satellite() facts.SplitConfig {
	return facts.SplitConfig{
		Enabled:     true,
		SourceLabel: "SATELLITE",
		Descendants: []string{"SATELLITE-NT", "SATELLITE-THAICOM"},
	}
}

func index(records ...[3]string) *facts.Index {
	out := make([]types.Fact, 0, len(records))
	for _, r := range records {
		out = append(out, types.Fact{
			Group: "01", BU: r[0], ServiceGroup: r[1], ProductKey: r[2],
			ProductName: "name " + r[2], Value: decimal.NewFromInt(1),
		})
	}
	return facts.NewIndex(out)
}

func kinds(cols []Column) []Kind {
	out := make([]Kind, 0, len(cols))
	for _, c := range cols {
		out = append(out, c.Kind)
	}
	return out
}

// =============================================================================
// NATURAL SORT
// =============================================================================

func TestNaturalSort(t *testing.T) {
	names := []string{"1.10 ข", "ZETA", "1.2 ก", "10.1", "2", "ALPHA", "1.2.1"}
	NaturalSort(names)
	assert.Equal(t, []string{"1.2 ก", "1.2.1", "1.10 ข", "2", "10.1", "ALPHA", "ZETA"}, names)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "1.ภาคกลาง", DisplayName("01.ภาคกลาง"))
	assert.Equal(t, "10.x", DisplayName("010.x"))
	assert.Equal(t, "0", DisplayName("0"))
	assert.Equal(t, "ภาค", DisplayName("ภาค"))
}

// =============================================================================
// BUILDER
// =============================================================================

func TestBuildBUOnlyWithCommonSize(t *testing.T) {
	ix := index([3]string{"02.B", "S", "1"}, [3]string{"01.A", "S", "1"})

	layout, err := Build(ix, Options{Detail: types.DetailBUOnly, CommonSize: true})
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindLabel, KindGrandTotal, KindCommonSize,
		KindBUTotal, KindCommonSize, KindBUTotal, KindCommonSize,
	}, kinds(layout.Columns))
	assert.Equal(t, types.BUTotalKey("01.A"), layout.Columns[3].Key)
	assert.Equal(t, types.BUTotalKey("01.A"), layout.Columns[4].Key)
	assert.True(t, layout.Columns[4].Percent())
	assert.Equal(t, WidthPercent, layout.Columns[4].Width)
	assert.Equal(t, 3, layout.Frozen)

	var bu HeaderCell
	for _, h := range layout.Header {
		if h.Text == "1.A" {
			bu = h
		}
	}
	assert.Equal(t, HeaderCell{Row: 0, Col: 3, EndRow: 2, EndCol: 4, Text: "1.A", Color: DefaultBUColors[0]}, bu)
}

func TestBuildBUSG(t *testing.T) {
	ix := index(
		[3]string{"01.A", "1.10 X", "1"},
		[3]string{"01.A", "1.2 Y", "1"},
		[3]string{"02.B", "1.1 Z", "1"},
	)

	layout, err := Build(ix, Options{Detail: types.DetailBUSG, Colors: map[string]string{"02.B": "#123456"}})
	require.NoError(t, err)

	assert.Equal(t, []Kind{KindLabel, KindGrandTotal, KindBUTotal, KindSG, KindSG, KindBUTotal, KindSG}, kinds(layout.Columns))
	assert.Equal(t, "1.2 Y", layout.Columns[3].SG)
	assert.Equal(t, "1.10 X", layout.Columns[4].SG)
	assert.Equal(t, "#123456", layout.Columns[6].Color)
	assert.Equal(t, 2, layout.Frozen)

	assert.Contains(t, layout.Header, HeaderCell{Row: 0, Col: 0, EndRow: 3, EndCol: 0, Text: TextLabel, Color: GrandTotalColor})
	assert.Contains(t, layout.Header, HeaderCell{Row: 0, Col: 1, EndRow: 3, EndCol: 1, Text: TextGrandTotal, Color: GrandTotalColor})
	assert.Contains(t, layout.Header, HeaderCell{Row: 0, Col: 2, EndRow: 0, EndCol: 4, Text: "1.A", Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 1, Col: 2, EndRow: 3, EndCol: 2, Text: TextTotal, Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 1, Col: 3, EndRow: 3, EndCol: 3, Text: "1.2 Y", Color: DefaultBUColors[0]})
}

func TestBuildProductLevelWithSatelliteSummary(t *testing.T) {
	ix := index(
		[3]string{"01.A", "SATELLITE-THAICOM", "9002"},
		[3]string{"01.A", "SATELLITE-NT", "9001"},
		[3]string{"01.A", "1.1 MOBILE", "2"},
		[3]string{"01.A", "1.1 MOBILE", "1"},
		[3]string{"01.A", "SATELLITE-OTHER", "9"},
	)

	layout, err := Build(ix, Options{Detail: types.DetailBUSGProduct, Satellite: satellite()})
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		KindLabel, KindGrandTotal, KindBUTotal,
		KindSGTotal, KindProduct, KindProduct,
		KindSatelliteSummary,
		KindSGTotal, KindProduct,
		KindSGTotal, KindProduct,
		KindSGTotal, KindProduct,
	}, kinds(layout.Columns))

	assert.Equal(t, "1", layout.Columns[4].ProductKey)
	assert.Equal(t, types.ProductColumnKey("01.A", "1.1 MOBILE", "2"), layout.Columns[5].Key)
	assert.Equal(t, types.SatelliteSummaryKey("01.A"), layout.Columns[6].Key)
	assert.Equal(t, "SATELLITE-NT", layout.Columns[7].SG)
	assert.Equal(t, "SATELLITE-THAICOM", layout.Columns[9].SG)
	assert.Equal(t, "SATELLITE-OTHER", layout.Columns[11].SG)

	assert.Contains(t, layout.Header, HeaderCell{Row: 0, Col: 2, EndRow: 0, EndCol: 12, Text: "1.A", Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 1, Col: 3, EndRow: 1, EndCol: 5, Text: "1.1 MOBILE", Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 1, Col: 6, EndRow: 3, EndCol: 6, Text: DefaultSatelliteLabel, Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 2, Col: 4, EndRow: 2, EndCol: 4, Text: "1", Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 3, Col: 4, EndRow: 3, EndCol: 4, Text: "name 1", Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 2, Col: 3, EndRow: 3, EndCol: 3, Text: TextTotal, Color: DefaultBUColors[0]})
}

func TestBuildProductLevelWithoutPairHasNoSummary(t *testing.T) {
	ix := index([3]string{"01.A", "SATELLITE-NT", "9001"})

	layout, err := Build(ix, Options{Detail: types.DetailBUSGProduct, Satellite: satellite()})
	require.NoError(t, err)
	assert.NotContains(t, kinds(layout.Columns), KindSatelliteSummary)
}

func TestBuildProductLevelCommonSizeHeaders(t *testing.T) {
	ix := index([3]string{"01.A", "S", "1"})

	layout, err := Build(ix, Options{Detail: types.DetailBUSGProduct, CommonSize: true})
	require.NoError(t, err)

	require.Len(t, layout.Columns, 9)
	assert.Contains(t, layout.Header, HeaderCell{Row: 2, Col: 7, EndRow: 2, EndCol: 8, Text: "1 name 1", Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 3, Col: 7, EndRow: 3, EndCol: 7, Text: TextAmount, Color: DefaultBUColors[0]})
	assert.Contains(t, layout.Header, HeaderCell{Row: 3, Col: 8, EndRow: 3, EndCol: 8, Text: TextPercent, Color: DefaultBUColors[0]})
}

func TestBuildEmptyIndex(t *testing.T) {
	layout, err := Build(facts.NewIndex(nil), Options{Detail: types.DetailBUSGProduct})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindLabel, KindGrandTotal}, kinds(layout.Columns))
}

func TestBuildRejectsUnknownDetail(t *testing.T) {
	_, err := Build(index([3]string{"A", "S", "1"}), Options{Detail: "NOPE"})
	assert.Error(t, err)
}

func TestHeaderCellsDetectOverlap(t *testing.T) {
	a := node{id: "a", text: "A"}
	b := node{id: "b", text: "B"}

	_, err := headerCells([][]node{{a, a}, {b, a}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMergeOverlap))

	cells, err := headerCells([][]node{{a, b}, {a, b}})
	require.NoError(t, err)
	assert.Len(t, cells, 2)
	assert.True(t, cells[0].Merged())
}

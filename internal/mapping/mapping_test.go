package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

func TestForReportVariants(t *testing.T) {
	for _, rt := range []types.ReportType{types.ReportCostType, types.ReportGLGroup} {
		t.Run(string(rt), func(t *testing.T) {
			tables, err := ForReport(rt)
			require.NoError(t, err)
			assert.Equal(t, rt, tables.Variant)
			assert.NotEmpty(t, tables.Template)
		})
	}

	_, err := ForReport("BOGUS")
	assert.Error(t, err)
}

func TestEveryCalculatedRowHasAFormula(t *testing.T) {
	tables, err := ForReport(types.ReportCostType)
	require.NoError(t, err)

	previous := ""
	for _, row := range tables.Template {
		if row.IsRatio() {
			_, ok := RatioTags[previous]
			assert.True(t, ok, "ratio row after %q", previous)
		} else if row.Calculated {
			assert.NotEmpty(t, row.Tag, row.Label)
			assert.Equal(t, FormulaTags[row.Label], row.Tag)
		}
		previous = row.Label
	}
}

func TestResolveIsContextual(t *testing.T) {
	tables, err := ForReport(types.ReportCostType)
	require.NoError(t, err)

	label := detailPersonnel.label

	cost, ok := tables.Resolve(label, LabelServiceCost)
	require.True(t, ok)
	assert.Equal(t, GroupServiceCost, cost.Group)
	assert.Equal(t, []string{SubPersonnel}, cost.SubGroups)

	admin, ok := tables.Resolve(label, LabelAdmin)
	require.True(t, ok)
	assert.Equal(t, GroupAdmin, admin.Group)

	_, ok = tables.Resolve(label, LabelRevenue)
	assert.False(t, ok)
}

func TestResolveMainGroupAndStandalone(t *testing.T) {
	tables, err := ForReport(types.ReportGLGroup)
	require.NoError(t, err)

	rev, ok := tables.Resolve(LabelRevenue, LabelRevenue)
	require.True(t, ok)
	assert.Equal(t, GroupRevenue, rev.Group)
	assert.Empty(t, rev.SubGroups)

	tax, ok := tables.Resolve(LabelTax, LabelOtherExpense)
	require.True(t, ok)
	assert.Equal(t, GroupTax, tax.Group)
	assert.True(t, tax.GrandTotalOnly)
	assert.True(t, tables.IsGrandTotalOnly(LabelTax, LabelOtherExpense))
	assert.False(t, tables.IsGrandTotalOnly(LabelRevenue, LabelRevenue))
}

func TestGLGroupFoldsCostTypes(t *testing.T) {
	tables, err := ForReport(types.ReportGLGroup)
	require.NoError(t, err)

	target, ok := tables.Resolve("ค่าเสื่อมราคาและค่าตัดจำหน่าย", LabelSelling)
	require.True(t, ok)
	assert.Equal(t, GroupSelling, target.Group)
	assert.ElementsMatch(t, DepreciationCodes, target.SubGroups)
}

func TestTemplateHasThreeRatioRows(t *testing.T) {
	tables, err := ForReport(types.ReportCostType)
	require.NoError(t, err)

	n := 0
	for _, row := range tables.Template {
		if row.IsRatio() {
			n++
			assert.Empty(t, row.Tag)
		}
	}
	assert.Equal(t, 3, n)
	assert.True(t, TagTotalServiceCostRatio.IsRatio())
	assert.False(t, TagEBITDA.IsRatio())
}

func TestDefaultSatellite(t *testing.T) {
	cfg := DefaultSatellite()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, SatelliteSource, cfg.SourceLabel)
	assert.Equal(t, []string{SatelliteNT, SatelliteThaicom}, cfg.Descendants)
	assert.Equal(t, SatelliteNT, cfg.ProductKeys["5101"])
	assert.Equal(t, SatelliteThaicom, cfg.ProductKeys["5211"])
	assert.Len(t, cfg.ProductKeys, 13)
	assert.True(t, cfg.IsDescendant(SatelliteThaicom))
	assert.False(t, cfg.IsDescendant(SatelliteSource))
}

func TestSatelliteSplitLaterDescendantWins(t *testing.T) {
	descendants := []string{"A", "B"}
	cfg := SatelliteSplit(false, "SRC", descendants, map[string][]string{
		"A": {"1", "2"},
		"B": {"2.0"},
	})
	assert.False(t, cfg.Enabled)
	assert.Equal(t, "A", cfg.ProductKeys["1"])
	assert.Equal(t, "B", cfg.ProductKeys["2"])

	descendants[0] = "changed"
	assert.Equal(t, []string{"A", "B"}, cfg.Descendants)
}

// =============================================================================
// P&L Workbook Generator - Mapping Tables
// =============================================================================
//
// This module holds the static tables that connect the row template to the
// fact data:
//   - Section and calculated-row labels (the contract with the aggregator)
//   - Formula tags for calculated rows
//   - Ratio dispatch keyed by the preceding row label
//   - Contextual row -> (GROUP, SUB_GROUP) mapping per main group
//
// CONTEXTUAL MAPPING:
//   The same detail label (for example the payroll line) appears under the
//   cost-of-service, selling and admin sections. A label alone is therefore
//   ambiguous; resolution always takes the current main group (the most
//   recent level-0 row of the template walk) as well.
//
// =============================================================================

package mapping

import (
	"fmt"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// ROW LABELS
// =============================================================================
// Formulas read earlier rows by these exact labels. Renaming a label here
// renames it in every template and in the formula library at once.

const (
	LabelRevenue             = "รายได้จากการให้บริการ"
	LabelServiceCost         = "ต้นทุนการให้บริการ"
	LabelGrossProfit         = "กำไรขั้นต้น"
	LabelSelling             = "ค่าใช้จ่ายในการขายและการตลาด"
	LabelProfitAfterSelling  = "กำไรหลังหักค่าใช้จ่ายในการขาย"
	LabelAdmin               = "ค่าใช้จ่ายในการบริหาร"
	LabelFinance             = "ต้นทุนทางการเงิน"
	LabelOperatingFinance    = "ต้นทุนทางการเงิน - ดำเนินงาน"
	LabelFundingFinance      = "ต้นทุนทางการเงิน - จัดหาเงินทุน"
	LabelProfitBeforeFinance = "กำไรก่อนต้นทุนทางการเงินจัดหาเงินทุน"
	LabelOtherIncome         = "รายได้อื่น"
	LabelOtherExpense        = "ค่าใช้จ่ายอื่น"
	LabelEBT                 = "กำไร(ขาดทุน)ก่อนภาษีเงินได้"
	LabelTax                 = "ภาษีเงินได้"
	LabelNetProfit           = "กำไร(ขาดทุน)สุทธิ"

	LabelKeyFigures            = "ข้อมูลประกอบการวิเคราะห์"
	LabelSumRevenue            = "รวมรายได้"
	LabelSumExpenseNoFinance   = "รวมค่าใช้จ่าย (ไม่รวมต้นทุนทางการเงิน)"
	LabelSumExpenseWithFinance = "รวมค่าใช้จ่าย (รวมต้นทุนทางการเงิน)"
	LabelEBIT                  = "EBIT"
	LabelEBITDA                = "EBITDA"

	LabelServiceCostAnalysis        = "วิเคราะห์ต้นทุนบริการ"
	LabelServiceRevenue             = "รายได้ค่าบริการ"
	LabelTotalServiceCost           = "ต้นทุนบริการรวม"
	LabelServiceCostNoDepreciation  = "ต้นทุนบริการไม่รวมค่าเสื่อมราคา"
	LabelServiceCostNoPersonnelDepr = "ต้นทุนบริการไม่รวมค่าใช้จ่ายพนักงานและค่าเสื่อมราคา"
	LabelRevenueRatio               = "สัดส่วนต่อรายได้"
)

// =============================================================================
// FORMULA TAGS
// =============================================================================

// Tag names a formula of the aggregation engine.
type Tag string

const (
	TagGrossProfit         Tag = "gross_profit"
	TagProfitAfterSelling  Tag = "profit_after_selling"
	TagProfitBeforeFinance Tag = "profit_before_finance"
	TagEBT                 Tag = "ebt"
	TagNetProfit           Tag = "net_profit"
	TagSumRevenue          Tag = "sum_revenue"
	TagSumExpenseNoFinance Tag = "sum_expense_no_finance"
	TagSumExpenseFinance   Tag = "sum_expense_with_finance"
	TagEBIT                Tag = "ebit"
	TagEBITDA              Tag = "ebitda"
	TagServiceRevenue      Tag = "service_revenue"
	TagTotalServiceCost    Tag = "total_service_cost"
	TagServiceCostNoDepr   Tag = "service_cost_no_depreciation"
	TagServiceCostNoPDepr  Tag = "service_cost_no_personnel_depreciation"

	TagTotalServiceCostRatio   Tag = "total_service_cost_ratio"
	TagServiceCostNoDeprRatio  Tag = "service_cost_no_depreciation_ratio"
	TagServiceCostNoPDeprRatio Tag = "service_cost_no_personnel_depreciation_ratio"
)

// IsRatio reports whether the tag yields a ratio rather than an amount.
func (t Tag) IsRatio() bool {
	switch t {
	case TagTotalServiceCostRatio, TagServiceCostNoDeprRatio, TagServiceCostNoPDeprRatio:
		return true
	}
	return false
}

// FormulaTags maps every calculated-row label to its formula.
var FormulaTags = map[string]Tag{
	LabelGrossProfit:                TagGrossProfit,
	LabelProfitAfterSelling:         TagProfitAfterSelling,
	LabelProfitBeforeFinance:        TagProfitBeforeFinance,
	LabelEBT:                        TagEBT,
	LabelNetProfit:                  TagNetProfit,
	LabelSumRevenue:                 TagSumRevenue,
	LabelSumExpenseNoFinance:        TagSumExpenseNoFinance,
	LabelSumExpenseWithFinance:      TagSumExpenseFinance,
	LabelEBIT:                       TagEBIT,
	LabelEBITDA:                     TagEBITDA,
	LabelServiceRevenue:             TagServiceRevenue,
	LabelTotalServiceCost:           TagTotalServiceCost,
	LabelServiceCostNoDepreciation:  TagServiceCostNoDepr,
	LabelServiceCostNoPersonnelDepr: TagServiceCostNoPDepr,
}

// RatioTags selects the meaning of a "สัดส่วนต่อรายได้" row by the label of
// the row immediately above it.
var RatioTags = map[string]Tag{
	LabelTotalServiceCost:           TagTotalServiceCostRatio,
	LabelServiceCostNoDepreciation:  TagServiceCostNoDeprRatio,
	LabelServiceCostNoPersonnelDepr: TagServiceCostNoPDeprRatio,
}

// RatioNumerators maps each ratio tag to the label of its numerator row.
// The denominator is always the service revenue row.
var RatioNumerators = map[Tag]string{
	TagTotalServiceCostRatio:   LabelTotalServiceCost,
	TagServiceCostNoDeprRatio:  LabelServiceCostNoDepreciation,
	TagServiceCostNoPDeprRatio: LabelServiceCostNoPersonnelDepr,
}

// RatioDenominator is the label of the row every ratio divides by.
const RatioDenominator = LabelServiceRevenue

// =============================================================================
// CONTEXTUAL MAPPING
// =============================================================================

// Target is what a data row resolves to in the index.
type Target struct {
	// Group is the GROUP code.
	Group string

	// SubGroups are the SUB_GROUP codes summed by the row. Empty means
	// every sub-group of Group.
	SubGroups []string

	// GrandTotalOnly restricts the row to the grand-total column; every
	// other column is None.
	GrandTotalOnly bool
}

// MainGroup is a level-0 section of the template together with the detail
// rows that live under it.
type MainGroup struct {
	Group          string
	Rows           map[string][]string
	GrandTotalOnly bool
}

// Tables bundles the template and mapping of one report variant.
type Tables struct {
	// Variant is the report type these tables serve.
	Variant types.ReportType

	// Template is the ordered row template.
	Template []TemplateRow

	// MainGroups maps a level-0 label to its section mapping.
	MainGroups map[string]MainGroup

	// Standalone maps labels that resolve the same under every section.
	Standalone map[string]Target
}

// ForReport returns the tables of a report variant.
func ForReport(rt types.ReportType) (*Tables, error) {
	switch rt {
	case types.ReportCostType:
		return costTypeTables(), nil
	case types.ReportGLGroup:
		return glGroupTables(), nil
	}
	return nil, fmt.Errorf("no mapping tables for report type %q", rt)
}

// Resolve maps a data row to its index target.
//
// PARAMETERS:
//   - label: The row label.
//   - mainGroup: The label of the current main group of the template walk.
//
// RETURNS:
//   - The target and true, or a zero target and false when the row has no
//     mapping in this context.
func (t *Tables) Resolve(label, mainGroup string) (Target, bool) {
	// A main-group row resolves to its whole GROUP.
	if mg, ok := t.MainGroups[label]; ok && label == mainGroup {
		return Target{Group: mg.Group, GrandTotalOnly: mg.GrandTotalOnly}, true
	}

	if mg, ok := t.MainGroups[mainGroup]; ok {
		if subs, ok := mg.Rows[label]; ok {
			return Target{Group: mg.Group, SubGroups: subs, GrandTotalOnly: mg.GrandTotalOnly}, true
		}
	}

	if target, ok := t.Standalone[label]; ok {
		return target, true
	}

	return Target{}, false
}

// IsGrandTotalOnly reports whether a data row only carries a grand-total value.
func (t *Tables) IsGrandTotalOnly(label, mainGroup string) bool {
	target, ok := t.Resolve(label, mainGroup)
	return ok && target.GrandTotalOnly
}

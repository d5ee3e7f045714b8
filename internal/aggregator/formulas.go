package aggregator

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/pnl-workbook/internal/mapping"
)

// formula evaluates a formula tag at one scope.
func (e *Engine) formula(tag mapping.Tag, s Scope) decimal.NullDecimal {
	p := func(label string) decimal.Decimal { return e.prior(label, s) }

	switch tag {
	case mapping.TagGrossProfit:
		return Value(p(mapping.LabelRevenue).Sub(p(mapping.LabelServiceCost)))

	case mapping.TagProfitAfterSelling:
		return Value(p(mapping.LabelGrossProfit).Sub(p(mapping.LabelSelling)))

	case mapping.TagProfitBeforeFinance:
		return Value(p(mapping.LabelProfitAfterSelling).
			Sub(p(mapping.LabelAdmin)).
			Sub(p(mapping.LabelOperatingFinance)))

	case mapping.TagEBT:
		return Value(p(mapping.LabelProfitBeforeFinance).
			Add(p(mapping.LabelOtherIncome)).
			Sub(p(mapping.LabelOtherExpense)).
			Sub(p(mapping.LabelFundingFinance)))

	case mapping.TagNetProfit:
		if s.Level != LevelGrandTotal {
			return None
		}
		return Value(p(mapping.LabelEBT).Sub(p(mapping.LabelTax)))

	case mapping.TagSumRevenue:
		return Value(e.sum(mapping.RevenueGroups, nil, s))

	case mapping.TagSumExpenseNoFinance:
		return Value(e.sum(mapping.ExpenseGroupsNoFinance, nil, s))

	case mapping.TagSumExpenseFinance:
		return Value(e.sum(mapping.ExpenseGroupsWithFinance, nil, s))

	case mapping.TagEBIT:
		return Value(p(mapping.LabelSumRevenue).Sub(p(mapping.LabelSumExpenseNoFinance)))

	case mapping.TagEBITDA:
		depreciation := e.sum(mapping.ExpenseGroupsNoFinance, mapping.DepreciationCodes, s)
		return Value(p(mapping.LabelSumRevenue).
			Sub(p(mapping.LabelSumExpenseNoFinance)).
			Add(depreciation))

	case mapping.TagServiceRevenue:
		return Value(e.sum([]string{mapping.GroupRevenue}, nil, s))

	case mapping.TagTotalServiceCost:
		return Value(e.sum([]string{mapping.GroupServiceCost}, nil, s))

	case mapping.TagServiceCostNoDepr:
		// The depreciation line itself, not cost net of depreciation.
		return Value(e.sum([]string{mapping.GroupServiceCost}, []string{mapping.ServiceCostDepreciationCode}, s))

	case mapping.TagServiceCostNoPDepr:
		personnel := e.sum([]string{mapping.GroupServiceCost}, mapping.PersonnelCodes, s)
		depreciation := e.sum([]string{mapping.GroupServiceCost}, []string{mapping.ServiceCostDepreciationCode}, s)
		return Value(p(mapping.LabelTotalServiceCost).Sub(personnel).Sub(depreciation))

	case mapping.TagTotalServiceCostRatio, mapping.TagServiceCostNoDeprRatio, mapping.TagServiceCostNoPDeprRatio:
		return Ratio(p(mapping.RatioNumerators[tag]), p(mapping.RatioDenominator))
	}

	e.logger.Info("unknown formula tag", "tag", string(tag))
	return None
}

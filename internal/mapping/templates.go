package mapping

import "github.com/ginjaninja78/pnl-workbook/internal/types"

// TemplateRow is one line of the fixed row template.
type TemplateRow struct {
	// Level is the indentation level, 0..3.
	Level int

	// Label is the row text. Empty labels are spacing rows.
	Label string

	// Calculated marks rows computed by a formula instead of the index.
	Calculated bool

	// Tag is the formula of a calculated row. Ratio rows leave it empty;
	// their formula depends on the row above them.
	Tag Tag

	// Bold renders the label and values in bold.
	Bold bool

	// Header marks pure section banners that carry no values.
	Header bool
}

// IsBlank reports whether the row is a spacing row.
func (r TemplateRow) IsBlank() bool {
	return r.Label == ""
}

// IsRatio reports whether the row is a context-dependent ratio row.
func (r TemplateRow) IsRatio() bool {
	return r.Calculated && r.Label == LabelRevenueRatio
}

// detail is a data row under a main group: label and the sub-groups it sums.
type detail struct {
	label string
	subs  []string
}

func one(label, code string) detail {
	return detail{label: label, subs: []string{code}}
}

// =============================================================================
// DETAIL CATALOGUES
// =============================================================================

var (
	detailPersonnel      = one("เงินเดือนและค่าใช้จ่ายเกี่ยวกับพนักงาน", SubPersonnel)
	detailWelfare        = one("สวัสดิการพนักงาน", SubWelfare)
	detailNetworkRental  = one("ค่าเช่าและค่าใช้โครงข่าย", SubNetworkRental)
	detailMaintenance    = one("ค่าซ่อมแซมและบำรุงรักษา", SubMaintenance)
	detailUtilities      = one("ค่าสาธารณูปโภค", SubUtilities)
	detailSpectrum       = one("ค่าตอบแทนการใช้คลื่นความถี่และส่วนแบ่งรายได้", SubSpectrum)
	detailLicence        = one("ค่าธรรมเนียมใบอนุญาตและ USO", SubLicence)
	detailMaterials      = one("ค่าวัสดุและอุปกรณ์", SubMaterials)
	detailOutsourcing    = one("ค่าจ้างเหมาบริการ", SubOutsourcing)
	detailMarketing      = one("ค่าโฆษณาและส่งเสริมการขาย", SubMarketing)
	detailDoubtfulDebts  = one("หนี้สงสัยจะสูญ", SubDoubtfulDebts)
	detailDepreciation   = one("ค่าเสื่อมราคาและค่าตัดจำหน่าย", SubDepreciation)
	detailRightOfUse     = one("ค่าเสื่อมราคาสินทรัพย์สิทธิการใช้", SubRightOfUse)
	detailOtherOperating = one("ค่าใช้จ่ายดำเนินงานอื่น", SubOtherOperating)
)

var revenueDetails = []detail{
	one("รายได้บริการโทรศัพท์ประจำที่", SubRevFixedLine),
	one("รายได้บริการโทรศัพท์เคลื่อนที่", SubRevMobile),
	one("รายได้บริการอินเทอร์เน็ตและบรอดแบนด์", SubRevBroadband),
	one("รายได้บริการวงจรเช่าและโครงข่าย", SubRevLeasedLine),
	one("รายได้บริการดาวเทียม", SubRevSatellite),
	one("รายได้บริการดิจิทัลและอื่นๆ", SubRevDigital),
}

var otherIncomeDetails = []detail{
	one("ดอกเบี้ยรับ", SubOIInterest),
	one("กำไรจากการจำหน่ายสินทรัพย์", SubOIAssetGain),
	one("รายได้อื่นๆ", SubOIOther),
}

var otherExpenseDetails = []detail{
	one("ขาดทุนจากอัตราแลกเปลี่ยน", SubOEFX),
	one("ขาดทุนจากการด้อยค่าสินทรัพย์", SubOEImpairment),
	one("ค่าใช้จ่ายอื่นๆ", SubOEOther),
}

var financeDetails = []detail{
	one(LabelOperatingFinance, SubFinOperating),
	one(LabelFundingFinance, SubFinFunding),
}

// COSTTYPE breaks every expense section down by cost type.
var (
	costTypeServiceCost = []detail{
		detailPersonnel, detailWelfare, detailNetworkRental, detailMaintenance,
		detailUtilities, detailSpectrum, detailLicence, detailMaterials,
		detailOutsourcing, detailDepreciation, detailRightOfUse, detailOtherOperating,
	}
	costTypeSelling = []detail{
		detailPersonnel, detailWelfare, detailMaterials, detailOutsourcing,
		detailMarketing, detailDoubtfulDebts, detailDepreciation, detailOtherOperating,
	}
	costTypeAdmin = []detail{
		detailPersonnel, detailWelfare, detailNetworkRental, detailMaintenance,
		detailUtilities, detailMaterials, detailOutsourcing, detailDepreciation,
		detailRightOfUse, detailOtherOperating,
	}
)

// GLGROUP folds cost types into general-ledger families.
var (
	glRevenue = []detail{
		{label: "รายได้บริการเสียง", subs: []string{SubRevFixedLine, SubRevMobile}},
		{label: "รายได้บริการข้อมูลและโครงข่าย", subs: []string{SubRevBroadband, SubRevLeasedLine}},
		{label: "รายได้บริการดาวเทียมและดิจิทัล", subs: []string{SubRevSatellite, SubRevDigital}},
	}
	glExpense = []detail{
		{label: "ค่าใช้จ่ายพนักงาน", subs: []string{SubPersonnel, SubWelfare}},
		{label: "ค่าใช้จ่ายโครงข่ายและบำรุงรักษา", subs: []string{SubNetworkRental, SubMaintenance, SubUtilities}},
		{label: "ค่าธรรมเนียมและส่วนแบ่งรายได้", subs: []string{SubSpectrum, SubLicence}},
		{label: "ค่าใช้จ่ายดำเนินงาน", subs: []string{SubMaterials, SubOutsourcing, SubMarketing, SubDoubtfulDebts, SubOtherOperating}},
		{label: "ค่าเสื่อมราคาและค่าตัดจำหน่าย", subs: []string{SubDepreciation, SubRightOfUse}},
	}
)

// =============================================================================
// TEMPLATE ASSEMBLY
// =============================================================================

type sections struct {
	revenue, serviceCost, selling, admin, otherIncome, otherExpense []detail
}

func costTypeTables() *Tables {
	return buildTables(types.ReportCostType, sections{
		revenue:      revenueDetails,
		serviceCost:  costTypeServiceCost,
		selling:      costTypeSelling,
		admin:        costTypeAdmin,
		otherIncome:  otherIncomeDetails,
		otherExpense: otherExpenseDetails,
	})
}

func glGroupTables() *Tables {
	return buildTables(types.ReportGLGroup, sections{
		revenue:      glRevenue,
		serviceCost:  glExpense,
		selling:      glExpense,
		admin:        glExpense,
		otherIncome:  otherIncomeDetails,
		otherExpense: otherExpenseDetails,
	})
}

func buildTables(variant types.ReportType, s sections) *Tables {
	t := &Tables{
		Variant:    variant,
		MainGroups: make(map[string]MainGroup),
		Standalone: map[string]Target{
			LabelTax: {Group: GroupTax, GrandTotalOnly: true},
		},
	}

	add := func(rows ...TemplateRow) {
		t.Template = append(t.Template, rows...)
	}
	section := func(label, group string, details []detail) {
		mg := MainGroup{Group: group, Rows: make(map[string][]string, len(details))}
		add(TemplateRow{Level: 0, Label: label, Bold: true})
		for _, d := range details {
			mg.Rows[d.label] = d.subs
			add(TemplateRow{Level: 1, Label: d.label})
		}
		t.MainGroups[label] = mg
	}
	calc := func(level int, label string, bold bool) {
		add(TemplateRow{Level: level, Label: label, Calculated: true, Tag: FormulaTags[label], Bold: bold})
	}
	ratio := func() {
		add(TemplateRow{Level: 2, Label: LabelRevenueRatio, Calculated: true})
	}

	section(LabelRevenue, GroupRevenue, s.revenue)
	section(LabelServiceCost, GroupServiceCost, s.serviceCost)
	calc(1, LabelGrossProfit, true)
	section(LabelSelling, GroupSelling, s.selling)
	calc(1, LabelProfitAfterSelling, true)
	section(LabelAdmin, GroupAdmin, s.admin)
	section(LabelFinance, GroupFinance, financeDetails)
	calc(1, LabelProfitBeforeFinance, true)
	section(LabelOtherIncome, GroupOtherIncome, s.otherIncome)
	section(LabelOtherExpense, GroupOtherExpense, s.otherExpense)
	calc(1, LabelEBT, true)
	add(TemplateRow{Level: 1, Label: LabelTax, Bold: true})
	calc(1, LabelNetProfit, true)
	add(TemplateRow{})

	add(TemplateRow{Level: 0, Label: LabelKeyFigures, Bold: true, Header: true})
	calc(1, LabelSumRevenue, false)
	calc(1, LabelSumExpenseNoFinance, false)
	calc(1, LabelSumExpenseWithFinance, false)
	calc(1, LabelEBIT, true)
	calc(1, LabelEBITDA, true)
	add(TemplateRow{})

	add(TemplateRow{Level: 0, Label: LabelServiceCostAnalysis, Bold: true, Header: true})
	calc(1, LabelServiceRevenue, false)
	calc(1, LabelTotalServiceCost, false)
	ratio()
	calc(1, LabelServiceCostNoDepreciation, false)
	ratio()
	calc(1, LabelServiceCostNoPersonnelDepr, false)
	ratio()

	return t
}

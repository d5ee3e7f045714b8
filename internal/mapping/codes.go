package mapping

// =============================================================================
// GROUP CODES
// =============================================================================
// GROUP is the top-level chart-of-accounts code carried by every fact
// record. The codes below are the ones the extract emits.

const (
	GroupRevenue      = "01.รายได้จากการให้บริการ"
	GroupOtherIncome  = "02.รายได้อื่น"
	GroupServiceCost  = "03.ต้นทุนการให้บริการ"
	GroupSelling      = "04.ค่าใช้จ่ายในการขายและการตลาด"
	GroupAdmin        = "05.ค่าใช้จ่ายในการบริหาร"
	GroupOtherExpense = "06.ค่าใช้จ่ายอื่น"
	GroupFinance      = "07.ต้นทุนทางการเงิน"
	GroupTax          = "08.ภาษีเงินได้"
)

// RevenueGroups are summed by the sum_revenue formula.
var RevenueGroups = []string{GroupRevenue, GroupOtherIncome}

// ExpenseGroupsNoFinance are summed by sum_expense_no_finance and ebitda.
var ExpenseGroupsNoFinance = []string{GroupServiceCost, GroupSelling, GroupAdmin, GroupOtherExpense}

// ExpenseGroupsWithFinance are summed by sum_expense_with_finance.
var ExpenseGroupsWithFinance = []string{GroupServiceCost, GroupSelling, GroupAdmin, GroupOtherExpense, GroupFinance}

// =============================================================================
// SUB-GROUP CODES
// =============================================================================

// Expense sub-group codes shared by cost of service, selling and admin.
const (
	SubPersonnel      = "01"
	SubWelfare        = "02"
	SubNetworkRental  = "03"
	SubMaintenance    = "04"
	SubUtilities      = "05"
	SubSpectrum       = "06"
	SubLicence        = "07"
	SubMaterials      = "08"
	SubOutsourcing    = "09"
	SubMarketing      = "10"
	SubDoubtfulDebts  = "11"
	SubDepreciation   = "12"
	SubRightOfUse     = "13"
	SubOtherOperating = "14"
)

// Revenue sub-group codes.
const (
	SubRevFixedLine  = "01"
	SubRevMobile     = "02"
	SubRevBroadband  = "03"
	SubRevLeasedLine = "04"
	SubRevSatellite  = "05"
	SubRevDigital    = "06"
)

// Other income, other expense and finance sub-group codes.
const (
	SubOIInterest   = "01"
	SubOIAssetGain  = "02"
	SubOIOther      = "03"
	SubOEFX         = "01"
	SubOEImpairment = "02"
	SubOEOther      = "03"
	SubFinOperating = "01"
	SubFinFunding   = "02"
	SubTaxCorporate = "01"
)

// DepreciationCodes are the depreciation categories added back by ebitda.
var DepreciationCodes = []string{SubDepreciation, SubRightOfUse}

// PersonnelCodes are the personnel categories removed by
// service_cost_no_personnel_depreciation.
var PersonnelCodes = []string{SubPersonnel, SubWelfare}

// ServiceCostDepreciationCode is the only depreciation category used by the
// service-cost analysis rows.
const ServiceCostDepreciationCode = SubDepreciation

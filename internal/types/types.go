// =============================================================================
// P&L Workbook Generator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - facts       (normalizer and indexer)
//   - aggregator  (column-key protocol)
//   - columns     (detail levels)
//   - xlsxwriter  (column-key protocol)
//   - converter   (report selectors)
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FACT RECORD
// =============================================================================

// Fact is one normalized record of the long-form P&L extract.
type Fact struct {
	// Group is the top-level chart-of-accounts code.
	Group string

	// SubGroup is the category code within Group. It may be empty.
	SubGroup string

	// BU is the business unit name.
	BU string

	// ServiceGroup is the service group name within BU.
	ServiceGroup string

	// ProductKey is the canonical product identifier (no ".0" suffix).
	ProductKey string

	// ProductName is the display label of the product.
	ProductName string

	// Year and Month are derived from TIME_KEY (YYYYMM).
	Year  int
	Month int

	// Value is the signed amount. Negatives are legitimate (refunds, reversals).
	Value decimal.Decimal
}

// Period returns the YYYYMM form of the record's period.
func (f Fact) Period() string {
	return fmt.Sprintf("%04d%02d", f.Year, f.Month)
}

// =============================================================================
// REPORT SELECTORS
// =============================================================================

// ReportType selects the row template variant.
type ReportType string

const (
	ReportCostType ReportType = "COSTTYPE"
	ReportGLGroup  ReportType = "GLGROUP"
)

// PeriodType is the period semantics of the extract. The engine treats
// both identically; only header texts differ.
type PeriodType string

const (
	PeriodMonth      PeriodType = "MTH"
	PeriodYearToDate PeriodType = "YTD"
)

// DetailLevel selects the column structure.
type DetailLevel string

const (
	DetailBUOnly      DetailLevel = "BU_ONLY"
	DetailBUSG        DetailLevel = "BU_SG"
	DetailBUSGProduct DetailLevel = "BU_SG_PRODUCT"
)

// FileToken returns the token used for the detail level in output file names.
func (d DetailLevel) FileToken() string {
	if d == DetailBUSGProduct {
		return "FULL"
	}
	return string(d)
}

// DefaultCommonSize reports whether common-size columns are on by default.
func (d DetailLevel) DefaultCommonSize() bool {
	return d == DetailBUOnly
}

// ParseReportType parses a report type flag value (case-insensitive).
func ParseReportType(s string) (ReportType, error) {
	switch ReportType(strings.ToUpper(strings.TrimSpace(s))) {
	case ReportCostType:
		return ReportCostType, nil
	case ReportGLGroup:
		return ReportGLGroup, nil
	}
	return "", fmt.Errorf("unknown report type %q (want COSTTYPE or GLGROUP)", s)
}

// ParsePeriodType parses a period flag value (case-insensitive).
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(strings.ToUpper(strings.TrimSpace(s))) {
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodYearToDate:
		return PeriodYearToDate, nil
	}
	return "", fmt.Errorf("unknown period %q (want MTH or YTD)", s)
}

// ParseDetailLevel parses a detail level flag value. FULL is accepted as
// an alias of BU_SG_PRODUCT since that is how output files spell it.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(DetailBUOnly):
		return DetailBUOnly, nil
	case string(DetailBUSG):
		return DetailBUSG, nil
	case string(DetailBUSGProduct), "FULL":
		return DetailBUSGProduct, nil
	}
	return "", fmt.Errorf("unknown detail level %q (want BU_ONLY, BU_SG or BU_SG_PRODUCT)", s)
}

// =============================================================================
// COLUMN-KEY PROTOCOL
// =============================================================================
// These strings are the contract between the aggregator, which stores
// values under them, and the writer, which reads them back per column.

// GrandTotalKey is the column key of the grand-total column.
const GrandTotalKey = "GRAND_TOTAL"

// BUTotalKey returns the column key of a BU total.
func BUTotalKey(bu string) string {
	return "BU_TOTAL_" + bu
}

// SGKey returns the column key of a (BU, SG) cell.
func SGKey(bu, sg string) string {
	return bu + "_" + sg
}

// ProductColumnKey returns the column key of a (BU, SG, product) cell.
func ProductColumnKey(bu, sg, productKey string) string {
	return bu + "_" + sg + "_" + productKey
}

// SatelliteSummaryKey returns the column key of the synthetic satellite
// summary column of a BU.
func SatelliteSummaryKey(bu string) string {
	return "SATELLITE_SUMMARY_" + bu
}

// RatioRowKey is the composite results key of a context-dependent ratio row.
func RatioRowKey(previous, label string) string {
	return previous + "|" + label
}

// SectionRowKey is the results key of a detail row whose label recurs under
// several main groups.
func SectionRowKey(mainGroup, label string) string {
	return mainGroup + "/" + label
}

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

var (
	// ErrInputNotFound is returned when the fact CSV or remark file is missing.
	ErrInputNotFound = errors.New("input not found")

	// ErrDecoding is returned when no candidate encoding decodes the input.
	ErrDecoding = errors.New("no encoding could decode the input")

	// ErrSchema is returned when required columns are missing.
	ErrSchema = errors.New("schema mismatch")

	// ErrMergeOverlap indicates two header merges overlap. This is a bug.
	ErrMergeOverlap = errors.New("merge rectangles overlap")
)

// =============================================================================
// P&L Workbook Generator - Validation Engine
// =============================================================================
//
// This module validates the inputs of one generation before any workbook is
// built:
//   - Generation options (report type, period, detail level, month filter,
//     encoding preference), checked with struct tags
//   - The fact extract schema (required columns)
//   - Fact content (coerced values, conflicting product names, mixed
//     periods), reported as warnings
//
// ERROR HANDLING:
//   - Errors are collected, not returned on first failure
//   - Option and schema problems are fatal
//   - Content problems are warnings; the generation continues
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ginjaninja78/pnl-workbook/internal/csvparser"
	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError (fatal) or SeverityWarning.
	Severity string

	// Field is the option or column the finding is about.
	Field string

	// Value is the offending value, if any.
	Value string

	// Rule is the violated rule.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s (value: '%s')", strings.ToUpper(e.Severity), e.Field, e.Message, e.Value)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the findings of one validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int
}

func newResult() *ValidationResult {
	return &ValidationResult{IsValid: true}
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// Warnings returns the non-fatal findings.
func (r *ValidationResult) Warnings() []*ValidationError {
	var out []*ValidationError
	for _, e := range r.Errors {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// Err joins the fatal findings into one error, or returns nil.
func (r *ValidationResult) Err() error {
	var errs []error
	for _, e := range r.Errors {
		if e.Severity == SeverityError {
			errs = append(errs, e)
		}
	}
	return errors.Join(errs...)
}

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions are the selectors of one generation as given on the
// command line. Values are matched case-insensitively.
type GenerateOptions struct {
	ReportType  string `validate:"required,oneof=COSTTYPE GLGROUP"`
	Period      string `validate:"required,oneof=MTH YTD"`
	DetailLevel string `validate:"required,oneof=BU_ONLY BU_SG BU_SG_PRODUCT FULL"`

	// Month is an optional YYYYMM filter.
	Month string `validate:"omitempty,yyyymm"`

	// Encoding is an optional encoding preference.
	Encoding string `validate:"omitempty,encoding"`
}

// Selection is a validated set of generation selectors.
type Selection struct {
	Report   types.ReportType
	Period   types.PeriodType
	Detail   types.DetailLevel
	Month    string
	Encoding string
}

// Validator checks generation inputs.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("yyyymm", func(fl validator.FieldLevel) bool {
		return IsMonth(fl.Field().String())
	})
	_ = v.RegisterValidation("encoding", func(fl validator.FieldLevel) bool {
		return csvparser.NormalizeEncoding(fl.Field().String()) != ""
	})
	return &Validator{validate: v}
}

// Options validates generation options.
func (v *Validator) Options(o GenerateOptions) *ValidationResult {
	result := newResult()
	err := v.validate.Struct(o.normalized())
	if err == nil {
		return result
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		result.add(&ValidationError{Severity: SeverityError, Field: "options", Message: err.Error()})
		return result
	}
	for _, fe := range fieldErrs {
		result.add(&ValidationError{
			Severity: SeverityError,
			Field:    fe.Field(),
			Value:    fmt.Sprint(fe.Value()),
			Rule:     fe.Tag(),
			Message:  ruleMessage(fe),
		})
	}
	return result
}

// Select validates generation options and converts them to typed
// selectors.
//
// RETURNS:
//   - The selection.
//   - An error joining every fatal finding.
func (v *Validator) Select(o GenerateOptions) (Selection, error) {
	if err := v.Options(o).Err(); err != nil {
		return Selection{}, fmt.Errorf("invalid options: %w", err)
	}

	o = o.normalized()
	report, err := types.ParseReportType(o.ReportType)
	if err != nil {
		return Selection{}, err
	}
	period, err := types.ParsePeriodType(o.Period)
	if err != nil {
		return Selection{}, err
	}
	detail, err := types.ParseDetailLevel(o.DetailLevel)
	if err != nil {
		return Selection{}, err
	}

	return Selection{
		Report:   report,
		Period:   period,
		Detail:   detail,
		Month:    o.Month,
		Encoding: csvparser.NormalizeEncoding(o.Encoding),
	}, nil
}

func (o GenerateOptions) normalized() GenerateOptions {
	o.ReportType = strings.ToUpper(strings.TrimSpace(o.ReportType))
	o.Period = strings.ToUpper(strings.TrimSpace(o.Period))
	o.DetailLevel = strings.ToUpper(strings.TrimSpace(o.DetailLevel))
	o.Month = strings.TrimSpace(o.Month)
	o.Encoding = strings.TrimSpace(o.Encoding)
	return o
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "yyyymm":
		return "must be a month in YYYYMM form"
	case "encoding":
		return "must be one of " + strings.Join(csvparser.DefaultEncodings, ", ")
	}
	return "failed rule " + fe.Tag()
}

// IsMonth reports whether s is a YYYYMM month.
func IsMonth(s string) bool {
	if len(s) != 6 {
		return false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil || year < 1900 {
		return false
	}
	month, err := strconv.Atoi(s[4:])
	return err == nil && month >= 1 && month <= 12
}

// =============================================================================
// SCHEMA VALIDATION
// =============================================================================

// ValidateSchema checks that every required fact column is present. Extra
// columns are allowed.
//
// RETURNS:
//   - nil, or an error wrapping types.ErrSchema that lists the missing
//     columns.
func ValidateSchema(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[strings.ToUpper(strings.TrimSpace(h))] = true
	}

	var missing []string
	for _, col := range facts.RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns %s: %w", strings.Join(missing, ", "), types.ErrSchema)
	}
	return nil
}

// =============================================================================
// CONTENT CHECKS
// =============================================================================

// CheckFacts reports content problems in normalized records. Every finding
// is a warning.
//
// PARAMETERS:
//   - records: The normalized records (after any month filter).
//   - stats: The normalizer statistics for the same records.
func CheckFacts(records []types.Fact, stats facts.NormalizeStats) *ValidationResult {
	result := newResult()

	if stats.InvalidValues > 0 {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    facts.ColValue,
			Rule:     "numeric",
			Message:  fmt.Sprintf("%d value(s) could not be parsed and were read as 0", stats.InvalidValues),
		})
	}
	if stats.InvalidTimeKeys > 0 {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    facts.ColTimeKey,
			Rule:     "yyyymm",
			Message:  fmt.Sprintf("%d time key(s) could not be parsed", stats.InvalidTimeKeys),
		})
	}

	periods := make(map[string]bool)
	names := make(map[[3]string]string)
	conflicts := make(map[[3]string]bool)
	var blankUnits int

	for _, f := range records {
		periods[f.Period()] = true
		if f.BU == "" || f.ServiceGroup == "" {
			blankUnits++
		}
		if f.ProductKey == "" || f.ProductName == "" {
			continue
		}
		k := [3]string{f.BU, f.ServiceGroup, f.ProductKey}
		if prev, ok := names[k]; !ok {
			names[k] = f.ProductName
		} else if prev != f.ProductName {
			conflicts[k] = true
		}
	}

	if blankUnits > 0 {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    facts.ColBU,
			Rule:     "required",
			Message:  fmt.Sprintf("%d record(s) have an empty BU or service group", blankUnits),
		})
	}

	if len(periods) > 1 {
		list := make([]string, 0, len(periods))
		for p := range periods {
			list = append(list, p)
		}
		sort.Strings(list)
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    facts.ColTimeKey,
			Value:    strings.Join(list, ","),
			Rule:     "single_period",
			Message:  "records span several periods and will be summed; use a month filter",
		})
	}

	keys := make([][3]string, 0, len(conflicts))
	for k := range conflicts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.Join(keys[i][:], "\x00") < strings.Join(keys[j][:], "\x00")
	})
	for _, k := range keys {
		result.add(&ValidationError{
			Severity: SeverityWarning,
			Field:    facts.ColProductName,
			Value:    k[2],
			Rule:     "unique_name",
			Message:  fmt.Sprintf("product has several names under %s / %s; the first is shown", k[0], k[1]),
		})
	}

	return result
}

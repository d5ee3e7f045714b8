package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

func validOptions() GenerateOptions {
	return GenerateOptions{ReportType: "costtype", Period: "mth", DetailLevel: "full"}
}

func TestSelectNormalizesCase(t *testing.T) {
	opts := validOptions()
	opts.Month = "202406"
	opts.Encoding = "windows-874"

	sel, err := New().Select(opts)
	require.NoError(t, err)
	assert.Equal(t, types.ReportCostType, sel.Report)
	assert.Equal(t, types.PeriodMonth, sel.Period)
	assert.Equal(t, types.DetailBUSGProduct, sel.Detail)
	assert.Equal(t, "202406", sel.Month)
	assert.Equal(t, "cp874", sel.Encoding)
}

func TestOptionsCollectsEveryError(t *testing.T) {
	result := New().Options(GenerateOptions{
		ReportType:  "BALANCE",
		Period:      "",
		DetailLevel: "BU_SG",
		Month:       "202413",
		Encoding:    "latin-1",
	})

	assert.False(t, result.IsValid)
	assert.Equal(t, 4, result.ErrorCount)

	rules := map[string]string{}
	for _, e := range result.Errors {
		rules[e.Field] = e.Rule
	}
	assert.Equal(t, map[string]string{
		"ReportType": "oneof",
		"Period":     "required",
		"Month":      "yyyymm",
		"Encoding":   "encoding",
	}, rules)
	assert.Error(t, result.Err())
}

func TestSelectRejectsInvalid(t *testing.T) {
	opts := validOptions()
	opts.DetailLevel = "PRODUCT"
	_, err := New().Select(opts)
	assert.ErrorContains(t, err, "DetailLevel")
}

func TestIsMonth(t *testing.T) {
	tests := map[string]bool{
		"202401":   true,
		"202412":   true,
		"202400":   false,
		"202413":   false,
		"2024-1":   false,
		"20240":    false,
		"2024011":  false,
		"abcd01":   false,
		"189912":   false,
		"":         false,
		"202401.0": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, IsMonth(in), in)
	}
}

func TestValidateSchema(t *testing.T) {
	headers := append([]string{"EXTRA"}, facts.RequiredColumns...)
	assert.NoError(t, ValidateSchema(headers))

	err := ValidateSchema([]string{"TIME_KEY", "GROUP", "BU", "VALUE"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSchema))
	assert.Contains(t, err.Error(), "SUB_GROUP, SERVICE_GROUP, PRODUCT_KEY, PRODUCT_NAME")
}

func TestCheckFactsWarnings(t *testing.T) {
	records := []types.Fact{
		{BU: "01.ภาคกลาง", ServiceGroup: "1.1 MOBILE", ProductKey: "1001", ProductName: "มือถือ", Year: 2024, Month: 5, Value: decimal.NewFromInt(1)},
		{BU: "01.ภาคกลาง", ServiceGroup: "1.1 MOBILE", ProductKey: "1001", ProductName: "มือถือรายเดือน", Year: 2024, Month: 6, Value: decimal.NewFromInt(2)},
		{BU: "", ServiceGroup: "1.1 MOBILE", ProductKey: "1002", Year: 2024, Month: 6},
	}

	result := CheckFacts(records, facts.NormalizeStats{InvalidValues: 2})
	assert.True(t, result.IsValid)
	assert.Equal(t, 0, result.ErrorCount)
	assert.NoError(t, result.Err())

	rules := []string{}
	for _, w := range result.Warnings() {
		rules = append(rules, w.Rule)
	}
	assert.Equal(t, []string{"numeric", "required", "single_period", "unique_name"}, rules)
	assert.Equal(t, "202405,202406", result.Warnings()[2].Value)
}

func TestCheckFactsClean(t *testing.T) {
	records := []types.Fact{
		{BU: "01.ภาคกลาง", ServiceGroup: "1.1 MOBILE", ProductKey: "1001", ProductName: "มือถือ", Year: 2024, Month: 6},
		{BU: "01.ภาคกลาง", ServiceGroup: "1.1 MOBILE", ProductKey: "1001", ProductName: "มือถือ", Year: 2024, Month: 6},
	}
	result := CheckFacts(records, facts.NormalizeStats{Rows: 2, Kept: 2})
	assert.Empty(t, result.Errors)
}

func TestValidationErrorString(t *testing.T) {
	e := &ValidationError{Severity: SeverityWarning, Field: "VALUE", Message: "bad"}
	assert.Equal(t, "[WARNING] VALUE: bad", e.Error())
	e.Value = "x"
	assert.Equal(t, "[WARNING] VALUE: bad (value: 'x')", e.Error())
}

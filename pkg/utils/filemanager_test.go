package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "TRN_PL_COSTTYPE_NT_MTH_TABLE_20240630.csv",
		SourceFileName(types.ReportCostType, types.PeriodMonth, "20240630"))
	assert.Equal(t, "P&L_GLGROUP_YTD_202406_FULL.xlsx",
		OutputFileName(types.ReportGLGroup, types.PeriodYearToDate, "202406", types.DetailBUSGProduct))
	assert.Equal(t, "P&L_COSTTYPE_MTH_202406_BU_SG.xlsx",
		OutputFileName(types.ReportCostType, types.PeriodMonth, "202406", types.DetailBUSG))
	assert.Equal(t, "remark_20240630.txt", RemarkFileName("20240630"))
}

func TestParseSourceFileName(t *testing.T) {
	s, ok := ParseSourceFileName("/data/TRN_PL_GLGROUP_NT_YTD_TABLE_20240131.csv")
	require.True(t, ok)
	assert.Equal(t, types.ReportGLGroup, s.Report)
	assert.Equal(t, types.PeriodYearToDate, s.Period)
	assert.Equal(t, "20240131", s.Date)
	assert.Equal(t, "202401", s.Month())
	assert.Equal(t, filepath.Join("/data", "remark_20240131.txt"), s.RemarkPath())

	for _, name := range []string{
		"TRN_PL_GLGROUP_NT_YTD_TABLE_202401.csv",
		"TRN_PL_OTHER_NT_MTH_TABLE_20240131.csv",
		"TRN_PL_GLGROUP_NT_YTD_TABLE_20240131.xlsx",
	} {
		_, ok := ParseSourceFileName(name)
		assert.False(t, ok, name)
	}
}

func TestParseOutputFileName(t *testing.T) {
	of, ok := ParseOutputFileName("P&L_COSTTYPE_MTH_202406_FULL.xlsx")
	require.True(t, ok)
	assert.Equal(t, types.ReportCostType, of.Report)
	assert.Equal(t, types.PeriodMonth, of.Period)
	assert.Equal(t, "202406", of.Month)
	assert.Equal(t, types.DetailBUSGProduct, of.Detail)

	_, ok = ParseOutputFileName("P&L_COSTTYPE_MTH_202406_BU_SG_PRODUCT.xlsx")
	assert.False(t, ok)
}

func TestDiscoverSourcePicksLatest(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "TRN_PL_COSTTYPE_NT_MTH_TABLE_20240531.csv")
	latest := touch(t, dir, "TRN_PL_COSTTYPE_NT_MTH_TABLE_20240630.csv")
	touch(t, dir, "TRN_PL_COSTTYPE_NT_YTD_TABLE_20240731.csv")
	touch(t, dir, "TRN_PL_GLGROUP_NT_MTH_TABLE_20240731.csv")
	touch(t, dir, "notes.csv")

	fm := NewFileManager(dir, t.TempDir())

	s, err := fm.DiscoverSource(types.ReportCostType, types.PeriodMonth, "")
	require.NoError(t, err)
	assert.Equal(t, latest, s.Path)

	s, err = fm.DiscoverSource(types.ReportCostType, types.PeriodMonth, "202405")
	require.NoError(t, err)
	assert.Equal(t, "20240531", s.Date)

	_, err = fm.DiscoverSource(types.ReportCostType, types.PeriodMonth, "202401")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInputNotFound))
	assert.Contains(t, err.Error(), "TRN_PL_COSTTYPE_NT_MTH_TABLE_202401??.csv")
}

func TestDiscoverSourceMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "absent"), t.TempDir())
	_, err := fm.DiscoverSource(types.ReportCostType, types.PeriodMonth, "")
	assert.True(t, errors.Is(err, types.ErrInputNotFound))
}

func TestFindRemarks(t *testing.T) {
	dir := t.TempDir()
	src, _ := ParseSourceFileName(touch(t, dir, "TRN_PL_COSTTYPE_NT_MTH_TABLE_20240630.csv"))

	_, ok := FindRemarks(src)
	assert.False(t, ok)

	want := touch(t, dir, "remark_20240630.txt")
	got, ok := FindRemarks(src)
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestListOutputs(t *testing.T) {
	out := t.TempDir()
	touch(t, out, "P&L_GLGROUP_MTH_202406_BU_ONLY.xlsx")
	touch(t, out, "P&L_COSTTYPE_MTH_202406_FULL.xlsx")
	touch(t, out, "batch_summary_20240701_101010.txt")
	require.NoError(t, os.Mkdir(filepath.Join(out, "P&L_COSTTYPE_MTH_202406_BU_SG.xlsx"), 0o755))

	fm := NewFileManager(t.TempDir(), out)
	list, err := fm.ListOutputs()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "P&L_COSTTYPE_MTH_202406_FULL.xlsx", list[0].Name)
	assert.Equal(t, int64(1), list[0].Size)
	assert.Equal(t, types.DetailBUOnly, list[1].Detail)

	missing := NewFileManager(t.TempDir(), filepath.Join(out, "absent"))
	list, err = missing.ListOutputs()
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestStatOutput(t *testing.T) {
	out := t.TempDir()
	touch(t, out, "P&L_COSTTYPE_MTH_202406_FULL.xlsx")
	fm := NewFileManager(t.TempDir(), out)

	of, err := fm.StatOutput("P&L_COSTTYPE_MTH_202406_FULL.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "202406", of.Month)

	for _, name := range []string{
		"P&L_COSTTYPE_MTH_202406_BU_SG.xlsx",
		"../P&L_COSTTYPE_MTH_202406_FULL.xlsx",
		"config.yaml",
	} {
		_, err := fm.StatOutput(name)
		assert.True(t, errors.Is(err, types.ErrInputNotFound), name)
	}
}

func TestWriteSummaryLog(t *testing.T) {
	out := t.TempDir()
	start := time.Date(2024, 7, 1, 10, 10, 10, 0, time.Local)
	path, err := WriteSummaryLog(BatchSummary{
		RunID:     "run-1",
		StartTime: start,
		EndTime:   start.Add(3 * time.Second),
		Source:    "TRN_PL_COSTTYPE_NT_MTH_TABLE_20240630.csv",
		Records:   42,
		Generated: []GeneratedFile{{Detail: types.DetailBUOnly, OutputFile: "P&L_COSTTYPE_MTH_202406_BU_ONLY.xlsx", Columns: 9}},
		Failed:    []FailedGeneration{{Detail: types.DetailBUSG, ErrorMessage: "disk full"}},
		Warnings:  []string{"3 value(s) could not be parsed"},
	}, out)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "batch_summary_20240701_101010.txt"), path)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(body)
	for _, want := range []string{"run-1", "Duration:       3s", "Records:        42", "P&L_COSTTYPE_MTH_202406_BU_ONLY.xlsx", "disk full", "3 value(s)"} {
		assert.True(t, strings.Contains(text, want), want)
	}
}

// =============================================================================
// P&L Workbook Generator - File Manager Utility
// =============================================================================
//
// This module provides the file conventions of the generator:
//   - Source, output and remark file naming
//   - Source discovery by report type, period and month
//   - The output catalogue read by the viewer
//   - The batch summary log
//
// FILE NAMING:
//   source:  TRN_PL_{REPORT}_NT_{PERIOD}_TABLE_{YYYYMMDD}.csv
//   output:  P&L_{REPORT}_{PERIOD}_{YYYYMM}_{BU_ONLY|BU_SG|FULL}.xlsx
//   remarks: remark_{YYYYMMDD}.txt, next to the source
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// =============================================================================
// FILE NAMING
// =============================================================================

var (
	sourcePattern = regexp.MustCompile(`^TRN_PL_(COSTTYPE|GLGROUP)_NT_(MTH|YTD)_TABLE_(\d{8})\.csv$`)
	outputPattern = regexp.MustCompile(`^P&L_(COSTTYPE|GLGROUP)_(MTH|YTD)_(\d{6})_(BU_ONLY|BU_SG|FULL)\.xlsx$`)
)

// SourceFileName returns the name of a fact extract.
func SourceFileName(report types.ReportType, period types.PeriodType, date string) string {
	return fmt.Sprintf("TRN_PL_%s_NT_%s_TABLE_%s.csv", report, period, date)
}

// OutputFileName returns the name of a generated workbook.
func OutputFileName(report types.ReportType, period types.PeriodType, month string, detail types.DetailLevel) string {
	return fmt.Sprintf("P&L_%s_%s_%s_%s.xlsx", report, period, month, detail.FileToken())
}

// RemarkFileName returns the name of the remark file of an extract date.
func RemarkFileName(date string) string {
	return fmt.Sprintf("remark_%s.txt", date)
}

// SourceFile is a fact extract found on disk.
type SourceFile struct {
	Path   string
	Report types.ReportType
	Period types.PeriodType

	// Date is the extract date (YYYYMMDD).
	Date string
}

// Month returns the YYYYMM period of the extract.
func (s SourceFile) Month() string {
	return s.Date[:6]
}

// RemarkPath returns where the remark file of the extract would be.
func (s SourceFile) RemarkPath() string {
	return filepath.Join(filepath.Dir(s.Path), RemarkFileName(s.Date))
}

// ParseSourceFileName parses a source file name. The path may include
// directories.
func ParseSourceFileName(path string) (SourceFile, bool) {
	m := sourcePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return SourceFile{}, false
	}
	return SourceFile{
		Path:   path,
		Report: types.ReportType(m[1]),
		Period: types.PeriodType(m[2]),
		Date:   m[3],
	}, true
}

// OutputFile is a generated workbook in the output directory.
type OutputFile struct {
	Name    string            `json:"name"`
	Report  types.ReportType  `json:"report"`
	Period  types.PeriodType  `json:"period"`
	Month   string            `json:"month"`
	Detail  types.DetailLevel `json:"detail"`
	Size    int64             `json:"size"`
	ModTime time.Time         `json:"modified"`
}

// ParseOutputFileName parses a workbook name produced by OutputFileName.
func ParseOutputFileName(name string) (OutputFile, bool) {
	m := outputPattern.FindStringSubmatch(name)
	if m == nil {
		return OutputFile{}, false
	}
	detail, err := types.ParseDetailLevel(m[4])
	if err != nil {
		return OutputFile{}, false
	}
	return OutputFile{
		Name:   name,
		Report: types.ReportType(m[1]),
		Period: types.PeriodType(m[2]),
		Month:  m[3],
		Detail: detail,
	}, true
}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the generator.
type FileManager struct {
	// DataDir is searched for fact extracts and remark files.
	DataDir string

	// OutputDir receives generated workbooks.
	OutputDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(dataDir, outputDir string) *FileManager {
	return &FileManager{
		DataDir:   dataDir,
		OutputDir: outputDir,
	}
}

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := os.MkdirAll(fm.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// OutputPath returns the path of a workbook in the output directory.
func (fm *FileManager) OutputPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// SOURCE DISCOVERY
// =============================================================================

// DiscoverSource finds the newest extract for a report type and period.
//
// PARAMETERS:
//   - report: The report type.
//   - period: The period type.
//   - month: An optional YYYYMM filter on the extract date.
//
// RETURNS:
//   - The extract with the latest date.
//   - An error wrapping types.ErrInputNotFound if none matches.
func (fm *FileManager) DiscoverSource(report types.ReportType, period types.PeriodType, month string) (SourceFile, error) {
	sources, err := fm.DiscoverSources()
	if err != nil {
		return SourceFile{}, err
	}

	var best SourceFile
	for _, s := range sources {
		if s.Report != report || s.Period != period {
			continue
		}
		if month != "" && s.Month() != month {
			continue
		}
		if s.Date > best.Date {
			best = s
		}
	}

	if best.Path == "" {
		pattern := SourceFileName(report, period, "*")
		if month != "" {
			pattern = SourceFileName(report, period, month+"??")
		}
		return SourceFile{}, fmt.Errorf("no %s in %s: %w", pattern, fm.DataDir, types.ErrInputNotFound)
	}
	return best, nil
}

// DiscoverSources lists every extract in the data directory, sorted by
// name.
func (fm *FileManager) DiscoverSources() ([]SourceFile, error) {
	entries, err := os.ReadDir(fm.DataDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("data directory %s: %w", fm.DataDir, types.ErrInputNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan data directory: %w", err)
	}

	var out []SourceFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if s, ok := ParseSourceFileName(filepath.Join(fm.DataDir, e.Name())); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// FindRemarks returns the remark file next to an extract, if it exists.
func FindRemarks(source SourceFile) (string, bool) {
	path := source.RemarkPath()
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// =============================================================================
// OUTPUT CATALOGUE
// =============================================================================

// ListOutputs lists the generated workbooks in the output directory,
// sorted by name. Files that do not follow the naming convention are
// skipped. A missing directory yields an empty list.
func (fm *FileManager) ListOutputs() ([]OutputFile, error) {
	entries, err := os.ReadDir(fm.OutputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan output directory: %w", err)
	}

	var out []OutputFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		of, ok := ParseOutputFileName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		of.Size = info.Size()
		of.ModTime = info.ModTime()
		out = append(out, of)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// StatOutput returns the catalogue entry of one workbook.
//
// RETURNS:
//   - The entry.
//   - An error wrapping types.ErrInputNotFound if name is not a workbook
//     in the output directory.
func (fm *FileManager) StatOutput(name string) (OutputFile, error) {
	if name != filepath.Base(name) {
		return OutputFile{}, fmt.Errorf("%s: %w", name, types.ErrInputNotFound)
	}
	of, ok := ParseOutputFileName(name)
	if !ok {
		return OutputFile{}, fmt.Errorf("%s: %w", name, types.ErrInputNotFound)
	}
	info, err := os.Stat(fm.OutputPath(name))
	if err != nil || info.IsDir() {
		return OutputFile{}, fmt.Errorf("%s: %w", name, types.ErrInputNotFound)
	}
	of.Size = info.Size()
	of.ModTime = info.ModTime()
	return of, nil
}

// =============================================================================
// BATCH SUMMARY
// =============================================================================

// BatchSummary contains summary information about a batch run.
type BatchSummary struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time
	Source    string
	Records   int
	Generated []GeneratedFile
	Failed    []FailedGeneration
	Warnings  []string
}

// GeneratedFile describes one workbook written by a batch.
type GeneratedFile struct {
	Detail      types.DetailLevel
	OutputFile  string
	Columns     int
	ValueCells  int
	ProcessTime time.Duration
}

// FailedGeneration describes one detail level that failed.
type FailedGeneration struct {
	Detail       types.DetailLevel
	ErrorMessage string
}

// WriteSummaryLog writes a batch summary to the output directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary BatchSummary, outputDir string) (string, error) {
	summaryFileName := fmt.Sprintf("batch_summary_%s.txt", summary.StartTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80) + "\n"

	fmt.Fprintf(writer, "P&L Workbook Generator - Batch Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n")
	fmt.Fprintf(writer, "  Run ID:         %s\n", summary.RunID)
	fmt.Fprintf(writer, "  Start Time:     %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "  End Time:       %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "  Duration:       %s\n", summary.EndTime.Sub(summary.StartTime))
	fmt.Fprintf(writer, "  Source:         %s\n", summary.Source)
	fmt.Fprintf(writer, "  Records:        %d\n\n", summary.Records)

	if len(summary.Generated) > 0 {
		fmt.Fprintf(writer, "Generated Workbooks:\n%s\n", strings.Repeat("-", 80))
		for _, g := range summary.Generated {
			fmt.Fprintf(writer, "  Detail:       %s\n", g.Detail)
			fmt.Fprintf(writer, "  Output:       %s\n", g.OutputFile)
			fmt.Fprintf(writer, "  Columns:      %d\n", g.Columns)
			fmt.Fprintf(writer, "  Value Cells:  %d\n", g.ValueCells)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", g.ProcessTime)
		}
	}

	if len(summary.Failed) > 0 {
		fmt.Fprintf(writer, "Failed Detail Levels:\n%s\n", strings.Repeat("-", 80))
		for _, f := range summary.Failed {
			fmt.Fprintf(writer, "  Detail: %s\n", f.Detail)
			fmt.Fprintf(writer, "  Error:  %s\n\n", f.ErrorMessage)
		}
	}

	if len(summary.Warnings) > 0 {
		fmt.Fprintf(writer, "Warnings:\n%s\n", strings.Repeat("-", 80))
		for _, w := range summary.Warnings {
			fmt.Fprintf(writer, "  %s\n", w)
		}
		fmt.Fprintln(writer)
	}

	fmt.Fprintf(writer, "%sEnd of Summary\n", rule)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

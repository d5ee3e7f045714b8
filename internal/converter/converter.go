// =============================================================================
// P&L Workbook Generator - Converter Module
// =============================================================================
//
// This module orchestrates one workbook generation, from the fact extract
// to the saved workbook.
//
// GENERATION PIPELINE:
//   1. Locate the extract (explicit path or discovery in the data dir)
//   2. Decode and parse the CSV
//   3. Check the schema (required columns)
//   4. Normalize records (optional month filter) and check their content
//   5. Apply the satellite split
//   6. Build the index and load the mapping tables
//   7. Read the remark file, if any
//   8. Build the column and row axes
//   9. Compute every row and render the workbook
//
// Steps 1-7 produce a Dataset that Render can use for several detail levels;
// Batch renders them concurrently.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/pnl-workbook/internal/aggregator"
	"github.com/ginjaninja78/pnl-workbook/internal/columns"
	"github.com/ginjaninja78/pnl-workbook/internal/config"
	"github.com/ginjaninja78/pnl-workbook/internal/csvparser"
	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/mapping"
	"github.com/ginjaninja78/pnl-workbook/internal/observability"
	"github.com/ginjaninja78/pnl-workbook/internal/rows"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
	"github.com/ginjaninja78/pnl-workbook/internal/validation"
	"github.com/ginjaninja78/pnl-workbook/internal/xlsxwriter"
	"github.com/ginjaninja78/pnl-workbook/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one generation.
type Result struct {
	// RunID identifies the generation in logs.
	RunID string

	// Source is the extract that was read.
	Source string

	// Detail is the detail level that was rendered.
	Detail types.DetailLevel

	// OutputFile is the path of the saved workbook.
	// This is empty if the generation failed.
	OutputFile string

	// Success indicates whether the generation was successful.
	Success bool

	// Error contains the error if the generation failed.
	Error error

	// Warnings lists the content warnings of the extract.
	Warnings []string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about one generation.
type ProcessingStats struct {
	// Encoding is the encoding that decoded the extract.
	Encoding string

	// RowsRead is the number of CSV data rows.
	RowsRead int

	// Records is the number of fact records kept after the month filter.
	Records int

	// InvalidValues counts VALUE cells read as 0.
	InvalidValues int

	// InvalidTimeKeys counts unparsable TIME_KEY cells.
	InvalidTimeKeys int

	// SatelliteUpdated and SatelliteUnmatched report the satellite split.
	SatelliteUpdated   int
	SatelliteUnmatched int

	// BusinessUnits is the number of BUs in the extract.
	BusinessUnits int

	// Workbook reports what the writer produced.
	Workbook xlsxwriter.Stats

	// ProcessingTime is the time taken by the generation.
	ProcessingTime time.Duration
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options selects one generation.
type Options struct {
	// CSVFile is the extract to read. Empty discovers the newest extract of
	// the selected report and period in the data directory.
	CSVFile string

	// Output is the workbook path. Empty uses the naming convention in the
	// output directory.
	Output string

	// Selection holds the validated report, period, detail level, month
	// filter and encoding preference.
	Selection validation.Selection

	// CommonSize overrides the detail level's common-size default.
	CommonSize *bool
}

// commonSize resolves the common-size switch for a detail level.
func (o Options) commonSize(detail types.DetailLevel) bool {
	if o.CommonSize != nil {
		return *o.CommonSize
	}
	return detail.DefaultCommonSize()
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs generations against one configuration.
type Converter struct {
	cfg     *config.Config
	files   *utils.FileManager
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. A *slog.Logger is used as is; any other
// Logger receives the pipeline's records through an adapter.
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = asSlog(l)
		}
	}
}

// WithMetrics records every generation in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// New creates a Converter.
//
// PARAMETERS:
//   - cfg: The configuration (directories, CSV settings, satellite split,
//     colours, sheet decoration).
//   - opts: Logger and metrics options.
func New(cfg *config.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg:    cfg,
		files:  utils.NewFileManager(cfg.DataDir, cfg.OutputDir),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// DATASET
// =============================================================================

// Dataset is a loaded extract, ready to render at any detail level. It is
// read-only once Load returns.
type Dataset struct {
	RunID   string
	Source  string
	Report  types.ReportType
	Period  types.PeriodType
	Month   string
	Index   *facts.Index
	Tables  *mapping.Tables
	Remarks []string

	Warnings []string
	Stats    ProcessingStats

	logger *slog.Logger
}

// Load runs the input half of the pipeline.
//
// RETURNS:
//   - The dataset.
//   - An error wrapping types.ErrInputNotFound, types.ErrDecoding or
//     types.ErrSchema when the extract cannot be used.
func (c *Converter) Load(ctx context.Context, opts Options) (*Dataset, error) {
	sel := opts.Selection
	runID := uuid.New().String()
	logger := c.logger.With("run_id", runID, "report", string(sel.Report), "period", string(sel.Period))

	// =========================================================================
	// STEP 1: LOCATE THE EXTRACT
	// =========================================================================

	source, err := c.locate(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to locate extract: %w", err)
	}
	logger.Info("reading extract", "path", source.Path)

	// =========================================================================
	// STEP 2: PARSE THE CSV
	// =========================================================================

	settings := c.cfg.CSV
	if sel.Encoding != "" {
		settings.Encoding = sel.Encoding
	}
	csvData, err := csvparser.Parse(source.Path, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	logger.Debug("parsed extract", "rows", csvData.RowCount, "encoding", csvData.Encoding)

	// =========================================================================
	// STEP 3: CHECK THE SCHEMA
	// =========================================================================

	if err := validation.ValidateSchema(csvData.Headers); err != nil {
		return nil, fmt.Errorf("failed to validate %s: %w", filepath.Base(source.Path), err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 4: NORMALIZE
	// =========================================================================

	// YTD extracts carry every month of the year; the month filter only
	// narrows MTH extracts.
	nopts := facts.NormalizeOptions{}
	if sel.Period == types.PeriodMonth {
		nopts.Month = sel.Month
	}
	records, nstats := facts.Normalize(csvData.Rows, nopts)
	if nstats.OutsideMonth > 0 {
		logger.Warn("records outside the selected month dropped", "month", sel.Month, "dropped", nstats.OutsideMonth)
	}
	checks := validation.CheckFacts(records, nstats)
	var warnings []string
	for _, w := range checks.Warnings() {
		logger.Warn("extract content", "field", w.Field, "rule", w.Rule, "detail", w.Message)
		warnings = append(warnings, w.Error())
	}
	logger.Info("normalized records", "rows", nstats.Rows, "kept", nstats.Kept,
		"invalid_values", nstats.InvalidValues, "invalid_time_keys", nstats.InvalidTimeKeys)

	// =========================================================================
	// STEP 5: SATELLITE SPLIT
	// =========================================================================

	split := c.cfg.SplitConfig()
	sstats := facts.SplitSatellite(records, split)
	if split.Enabled {
		logger.Info("satellite split",
			"source", split.SourceLabel,
			"updated", sstats.Updated,
			"unmatched", sstats.Unmatched,
			"per_descendant", sstats.PerDescendant)
		if len(sstats.UnmatchedKeys) > 0 {
			logger.Warn("satellite products without a descendant", "keys", sstats.UnmatchedKeys)
		}
	}

	// =========================================================================
	// STEP 6: INDEX AND MAPPING
	// =========================================================================

	month, err := reportMonth(sel.Month, sel.Period, source, records)
	if err != nil {
		return nil, err
	}
	tables, err := mapping.ForReport(sel.Report)
	if err != nil {
		return nil, err
	}
	ix := facts.NewIndex(records)

	// =========================================================================
	// STEP 7: REMARKS
	// =========================================================================

	var remarks []string
	if path, ok := utils.FindRemarks(source); ok {
		remarks, err = csvparser.ReadRemarks(path, settings.Encoding)
		if err != nil {
			logger.Warn("remark file skipped", "path", path, "error", err)
			warnings = append(warnings, fmt.Sprintf("remark file skipped: %v", err))
		} else {
			logger.Debug("read remarks", "path", path, "lines", len(remarks))
		}
	}

	return &Dataset{
		RunID:    runID,
		Source:   source.Path,
		Report:   sel.Report,
		Period:   sel.Period,
		Month:    month,
		Index:    ix,
		Tables:   tables,
		Remarks:  remarks,
		Warnings: warnings,
		Stats: ProcessingStats{
			Encoding:           csvData.Encoding,
			RowsRead:           csvData.RowCount,
			Records:            len(records),
			InvalidValues:      nstats.InvalidValues,
			InvalidTimeKeys:    nstats.InvalidTimeKeys,
			SatelliteUpdated:   sstats.Updated,
			SatelliteUnmatched: sstats.Unmatched,
			BusinessUnits:      len(ix.BusinessUnits()),
		},
		logger: logger,
	}, nil
}

// locate resolves the extract of a generation.
func (c *Converter) locate(opts Options) (utils.SourceFile, error) {
	sel := opts.Selection
	if opts.CSVFile == "" {
		return c.files.DiscoverSource(sel.Report, sel.Period, sel.Month)
	}

	if _, err := os.Stat(opts.CSVFile); errors.Is(err, os.ErrNotExist) {
		return utils.SourceFile{}, fmt.Errorf("%s: %w", opts.CSVFile, types.ErrInputNotFound)
	}
	if s, ok := utils.ParseSourceFileName(opts.CSVFile); ok {
		if s.Report != sel.Report || s.Period != sel.Period {
			c.logger.Warn("extract name does not match the selection",
				"path", opts.CSVFile, "report", string(s.Report), "period", string(s.Period))
		}
		return s, nil
	}
	return utils.SourceFile{Path: opts.CSVFile}, nil
}

// reportMonth picks the YYYYMM shown in the title and the output name: the
// month filter, else the extract date, else the period of the records (the
// latest one for YTD). An extract without dated records falls back to the
// file's modification month.
func reportMonth(filter string, period types.PeriodType, source utils.SourceFile, records []types.Fact) (string, error) {
	if filter != "" {
		return filter, nil
	}
	if source.Date != "" {
		return source.Month(), nil
	}

	periods := make(map[string]bool)
	for _, r := range records {
		if r.Year > 0 {
			periods[r.Period()] = true
		}
	}
	list := make([]string, 0, len(periods))
	for p := range periods {
		list = append(list, p)
	}
	sort.Strings(list)

	switch {
	case len(list) == 0:
		info, err := os.Stat(source.Path)
		if err != nil {
			return "", fmt.Errorf("cannot determine the report month of %s: %w", filepath.Base(source.Path), err)
		}
		return info.ModTime().Format("200601"), nil
	case len(list) == 1 || period == types.PeriodYearToDate:
		return list[len(list)-1], nil
	}
	return "", fmt.Errorf("cannot determine the report month of %s (periods %v); pass --month", filepath.Base(source.Path), list)
}

// =============================================================================
// RENDERING
// =============================================================================

// Render builds the axes of one detail level, computes every row and saves
// the workbook. It is safe to call concurrently on the same dataset.
//
// PARAMETERS:
//   - ds: The loaded dataset.
//   - detail: The detail level.
//   - commonSize: Whether to interleave common-size columns.
//   - output: The workbook path; empty uses the naming convention.
//
// RETURNS:
//   - The saved path and the writer statistics.
//   - An error if the axes cannot be built or the workbook cannot be saved.
func (c *Converter) Render(ctx context.Context, ds *Dataset, detail types.DetailLevel, commonSize bool, output string) (string, xlsxwriter.Stats, error) {
	logger := ds.logger.With("detail", string(detail))
	if err := ctx.Err(); err != nil {
		return "", xlsxwriter.Stats{}, err
	}

	split := c.cfg.SplitConfig()
	layout, err := columns.Build(ds.Index, columns.Options{
		Detail:         detail,
		CommonSize:     commonSize,
		Satellite:      split,
		SatelliteLabel: c.cfg.Satellite.SummaryLabel,
		Colors:         c.cfg.BUColors,
	})
	if err != nil {
		return "", xlsxwriter.Stats{}, fmt.Errorf("failed to build columns: %w", err)
	}
	rs := rows.Build(ds.Tables, c.cfg.Banners)
	engine := aggregator.New(ds.Index, ds.Tables, aggregator.Options{Satellite: split, Logger: logger})
	logger.Debug("built axes", "columns", len(layout.Columns), "rows", len(rs), "common_size", commonSize)

	if output == "" {
		output = c.files.OutputPath(utils.OutputFileName(ds.Report, ds.Period, ds.Month, detail))
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return "", xlsxwriter.Stats{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	stats, err := xlsxwriter.Write(output, xlsxwriter.Input{
		Rows:    rs,
		Layout:  layout,
		Engine:  engine,
		Report:  ds.Report,
		Period:  ds.Period,
		Month:   ds.Month,
		Remarks: ds.Remarks,
	}, xlsxwriter.Options{
		Title:   c.cfg.Sheet.Title,
		Unit:    c.cfg.Sheet.Unit,
		InfoBox: c.cfg.Sheet.InfoBox,
	})
	if err != nil {
		return "", xlsxwriter.Stats{}, fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("workbook written", "path", output, "columns", stats.Columns, "value_cells", stats.ValueCells)
	return output, stats, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the whole pipeline for one detail level.
func (c *Converter) Run(ctx context.Context, opts Options) Result {
	start := time.Now()
	detail := opts.Selection.Detail
	result := Result{Detail: detail}

	ds, err := c.Load(ctx, opts)
	if err != nil {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(start)
		c.observe(opts.Selection.Report, detail, 0, result.Stats.ProcessingTime, err)
		return result
	}
	result.RunID = ds.RunID
	result.Source = ds.Source
	result.Warnings = ds.Warnings
	result.Stats = ds.Stats

	path, stats, err := c.Render(ctx, ds, detail, opts.commonSize(detail), opts.Output)
	result.Stats.ProcessingTime = time.Since(start)
	c.observe(ds.Report, detail, ds.Stats.Records, result.Stats.ProcessingTime, err)
	if err != nil {
		result.Error = err
		return result
	}

	result.OutputFile = path
	result.Stats.Workbook = stats
	result.Success = true
	return result
}

// Batch loads the extract once and renders every detail level
// concurrently. A failing level does not stop the others.
//
// RETURNS:
//   - One result per detail level, in the order given.
//   - An error only if the extract itself cannot be loaded.
func (c *Converter) Batch(ctx context.Context, opts Options, details []types.DetailLevel) ([]Result, error) {
	start := time.Now()
	ds, err := c.Load(ctx, opts)
	if err != nil {
		c.observe(opts.Selection.Report, "BATCH", 0, time.Since(start), err)
		return nil, err
	}

	results := make([]Result, len(details))
	var g errgroup.Group
	for i, detail := range details {
		i, detail := i, detail
		g.Go(func() error {
			began := time.Now()
			path, stats, err := c.Render(ctx, ds, detail, opts.commonSize(detail), "")

			r := Result{
				RunID:    ds.RunID,
				Source:   ds.Source,
				Detail:   detail,
				Warnings: ds.Warnings,
				Stats:    ds.Stats,
			}
			r.Stats.ProcessingTime = time.Since(began)
			c.observe(ds.Report, detail, ds.Stats.Records, r.Stats.ProcessingTime, err)
			if err != nil {
				r.Error = err
			} else {
				r.Success = true
				r.OutputFile = path
				r.Stats.Workbook = stats
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (c *Converter) observe(report types.ReportType, detail types.DetailLevel, records int, elapsed time.Duration, err error) {
	c.metrics.ObserveGeneration(string(report), string(detail), records, elapsed, err)
}

// AllDetailLevels is the detail levels rendered by a batch.
var AllDetailLevels = []types.DetailLevel{types.DetailBUOnly, types.DetailBUSG, types.DetailBUSGProduct}

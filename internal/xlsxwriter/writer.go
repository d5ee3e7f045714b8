// =============================================================================
// P&L Workbook Generator - Workbook Writer
// =============================================================================
//
// This module writes the P&L sheet. It runs two passes over the tagged rows:
//
//   1. COMPUTE: every row is evaluated by the aggregation engine in template
//      order and recorded under its results key. Later formulas read earlier
//      rows, so the order matters.
//   2. RENDER: every row is written with its label and one cell per column,
//      read back from the results by column key.
//
// SHEET LAYOUT:
//
//   row 1-3    title block (column A)      info box (rightmost columns, 1-5)
//   row 7-10   header block (BU / SG / product key / product name)
//   row 11+    template rows
//   after      remarks, one line per cell
//
// Freeze panes sit below the header block and right of the grand-total
// block. The sheet holds values only, no formulas.
//
// =============================================================================

package xlsxwriter

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/pnl-workbook/internal/aggregator"
	"github.com/ginjaninja78/pnl-workbook/internal/columns"
	"github.com/ginjaninja78/pnl-workbook/internal/rows"
	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// Sheet geometry (1-based rows).
const (
	TitleRow       = 1
	HeaderStartRow = 7
	DataStartRow   = HeaderStartRow + columns.HeaderRows
	RemarkGap      = 2

	// infoBoxSpan is the widest the info box gets, in columns.
	infoBoxSpan = 4
)

// DefaultSheetName is the name of the P&L sheet.
const DefaultSheetName = "P&L"

// DefaultInfoBox is the explanatory text of the info box.
var DefaultInfoBox = []string{
	"คำอธิบายรายงาน",
	"ตัวเลขในวงเล็บสีแดง หมายถึงค่าติดลบ",
	"ช่องว่าง หมายถึงไม่มีรายการหรือมีค่าเป็นศูนย์",
	"ช่องสีเทา หมายถึงรายการที่แสดงเฉพาะยอดรวมทั้งสิ้น",
	"% หมายถึงสัดส่วนต่อรายได้จากการให้บริการของคอลัมน์เดียวกัน",
}

// =============================================================================
// OPTIONS AND INPUT
// =============================================================================

// Options controls sheet decoration.
type Options struct {
	// SheetName is the worksheet name.
	// Default: "P&L"
	SheetName string

	// Title overrides the report title of the title block.
	Title string

	// Unit is the unit line of the title block.
	// Default: "หน่วย: บาท"
	Unit string

	// InfoBox is the info-box text, one merged cell per line.
	InfoBox []string

	// InfoBoxColor is the fill of the info box.
	InfoBoxColor string
}

// DefaultOptions returns the default sheet options.
func DefaultOptions() Options {
	return Options{
		SheetName:    DefaultSheetName,
		Unit:         "หน่วย: บาท",
		InfoBox:      DefaultInfoBox,
		InfoBoxColor: InfoBoxFill,
	}
}

// Input is everything one workbook is rendered from.
type Input struct {
	Rows    []rows.Row
	Layout  *columns.Layout
	Engine  *aggregator.Engine
	Report  types.ReportType
	Period  types.PeriodType
	Month   string
	Remarks []string
}

// Stats reports what was written.
type Stats struct {
	Rows       int
	Columns    int
	ValueCells int
	Merges     int
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Build renders a workbook in memory.
//
// PARAMETERS:
//   - in: Rows, column layout and the engine that resolves values.
//   - opts: Sheet decoration options.
//
// RETURNS:
//   - The workbook. The caller must Close it.
//   - Statistics about the written sheet.
//   - An error if any write fails; a failure indicates a bug, not bad data.
func Build(in Input, opts Options) (*excelize.File, Stats, error) {
	opts = withDefaults(opts)

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), opts.SheetName); err != nil {
		_ = f.Close()
		return nil, Stats{}, fmt.Errorf("failed to name sheet: %w", err)
	}

	w := &writer{
		f:      f,
		sheet:  opts.SheetName,
		in:     in,
		opts:   opts,
		styles: newStyleCache(f),
		stats:  Stats{Rows: len(in.Rows), Columns: len(in.Layout.Columns)},
	}

	w.compute()

	steps := []struct {
		name string
		run  func() error
	}{
		{"set column widths", w.columnWidths},
		{"write title", w.title},
		{"write info box", w.infoBox},
		{"write header", w.header},
		{"write rows", w.body},
		{"write remarks", w.remarks},
		{"set panes", w.panes},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			_ = f.Close()
			return nil, Stats{}, fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	return f, w.stats, nil
}

// Write renders a workbook and saves it to path.
func Write(path string, in Input, opts Options) (Stats, error) {
	f, stats, err := Build(in, opts)
	if err != nil {
		return Stats{}, err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return Stats{}, fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return stats, nil
}

// WriteToBuffer renders a workbook into memory.
func WriteToBuffer(in Input, opts Options) (*bytes.Buffer, Stats, error) {
	f, stats, err := Build(in, opts)
	if err != nil {
		return nil, Stats{}, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf, stats, nil
}

func withDefaults(opts Options) Options {
	d := DefaultOptions()
	if opts.SheetName == "" {
		opts.SheetName = d.SheetName
	}
	if opts.Unit == "" {
		opts.Unit = d.Unit
	}
	if len(opts.InfoBox) == 0 {
		opts.InfoBox = d.InfoBox
	}
	if opts.InfoBoxColor == "" {
		opts.InfoBoxColor = d.InfoBoxColor
	}
	return opts
}

// =============================================================================
// PASSES
// =============================================================================

type writer struct {
	f      *excelize.File
	sheet  string
	in     Input
	opts   Options
	styles *styleCache
	stats  Stats
}

// compute evaluates every row in template order.
func (w *writer) compute() {
	for _, r := range w.in.Rows {
		if r.IsBlank() {
			continue
		}
		w.in.Engine.Evaluate(r.Key, r.TemplateRow, r.MainGroup, r.Previous)
	}
}

// body renders every row.
func (w *writer) body() error {
	for i, r := range w.in.Rows {
		if r.IsBlank() {
			continue
		}
		row := DataStartRow + i

		if err := w.label(row, r); err != nil {
			return err
		}
		for c := 1; c < len(w.in.Layout.Columns); c++ {
			if err := w.value(row, c, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) label(row int, r rows.Row) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, cell, r.Label); err != nil {
		return err
	}
	return w.setStyle(cell, cell, styleKey{kind: kindLabel, bold: r.Bold, fill: r.Banner, indent: r.Level * 2})
}

// value renders one value cell. None is an empty cell; in grand-total-only
// rows it is filled gray. Zero amounts are written and blanked by the
// accounting format.
func (w *writer) value(row, c int, r rows.Row) error {
	col := w.in.Layout.Columns[c]
	cell, err := excelize.CoordinatesToCellName(c+1, row)
	if err != nil {
		return err
	}

	k := styleKey{kind: kindAmount, bold: r.Bold, fill: r.Banner}
	if col.Percent() || r.IsRatio() {
		k.kind = kindPercent
	}
	if r.Header {
		return w.setStyle(cell, cell, k)
	}

	v := w.in.Engine.Value(r.Key, col.Key)
	if col.Percent() {
		v = w.in.Engine.CommonSize(r.Key, col.Key)
	}

	if !v.Valid {
		if r.GrandTotalOnly && !col.Percent() {
			k.fill = NoneFill
		}
		return w.setStyle(cell, cell, k)
	}

	// The percent format has no zero section.
	if k.kind == kindPercent && aggregator.IsZero(v.Decimal) {
		return w.setStyle(cell, cell, k)
	}
	if k.kind == kindAmount && v.Decimal.IsNegative() && k.fill == "" {
		k.fill = NegativeFill
	}
	if err := w.f.SetCellFloat(w.sheet, cell, v.Decimal.InexactFloat64(), -1, 64); err != nil {
		return err
	}
	w.stats.ValueCells++
	return w.setStyle(cell, cell, k)
}

// =============================================================================
// DECORATION
// =============================================================================

func (w *writer) columnWidths() error {
	for i, col := range w.in.Layout.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.sheet, name, name, col.Width); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) title() error {
	title := w.opts.Title
	if title == "" {
		title = ReportTitle(w.in.Report)
	}
	lines := []struct {
		text string
		bold bool
	}{
		{title, true},
		{PeriodText(w.in.Period, w.in.Month), false},
		{w.opts.Unit, false},
	}
	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, TitleRow+i)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(w.sheet, cell, line.text); err != nil {
			return err
		}
		if err := w.setStyle(cell, cell, styleKey{kind: kindTitle, bold: line.bold}); err != nil {
			return err
		}
	}
	return nil
}

// infoBox writes the info-box lines across the rightmost columns, one
// merged cell per line. It never reaches column A, which holds the title.
func (w *writer) infoBox() error {
	last := len(w.in.Layout.Columns)
	first := max(2, last-infoBoxSpan+1)
	if last < first {
		last = first
	}

	for i, line := range w.opts.InfoBox {
		tl, err := excelize.CoordinatesToCellName(first, TitleRow+i)
		if err != nil {
			return err
		}
		br, err := excelize.CoordinatesToCellName(last, TitleRow+i)
		if err != nil {
			return err
		}
		if first < last {
			if err := w.f.MergeCell(w.sheet, tl, br); err != nil {
				return err
			}
			w.stats.Merges++
		}
		if err := w.f.SetCellValue(w.sheet, tl, line); err != nil {
			return err
		}
		if err := w.setStyle(tl, br, styleKey{kind: kindInfo, bold: i == 0, fill: w.opts.InfoBoxColor}); err != nil {
			return err
		}
	}
	return nil
}

// header writes the four-row header block from the layout's header cells.
func (w *writer) header() error {
	for _, h := range w.in.Layout.Header {
		tl, err := excelize.CoordinatesToCellName(h.Col+1, HeaderStartRow+h.Row)
		if err != nil {
			return err
		}
		br, err := excelize.CoordinatesToCellName(h.EndCol+1, HeaderStartRow+h.EndRow)
		if err != nil {
			return err
		}
		if h.Merged() {
			if err := w.f.MergeCell(w.sheet, tl, br); err != nil {
				return err
			}
			w.stats.Merges++
		}
		if err := w.f.SetCellValue(w.sheet, tl, h.Text); err != nil {
			return err
		}
		if err := w.setStyle(tl, br, styleKey{kind: kindHeader, bold: true, fill: h.Color}); err != nil {
			return err
		}
	}
	for r := 0; r < columns.HeaderRows; r++ {
		if err := w.f.SetRowHeight(w.sheet, HeaderStartRow+r, 24); err != nil {
			return err
		}
	}
	return nil
}

// remarks writes caller-supplied remark lines under the table, unwrapped.
func (w *writer) remarks() error {
	start := DataStartRow + len(w.in.Rows) + RemarkGap
	for i, line := range w.in.Remarks {
		cell, err := excelize.CoordinatesToCellName(1, start+i)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(w.sheet, cell, line); err != nil {
			return err
		}
		if err := w.setStyle(cell, cell, styleKey{kind: kindRemark}); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) panes() error {
	topLeft, err := excelize.CoordinatesToCellName(w.in.Layout.Frozen+1, DataStartRow)
	if err != nil {
		return err
	}
	if err := w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      w.in.Layout.Frozen,
		YSplit:      DataStartRow - 1,
		TopLeftCell: topLeft,
		ActivePane:  "bottomRight",
	}); err != nil {
		return err
	}

	show := true
	return w.f.SetSheetView(w.sheet, 0, &excelize.ViewOptions{ShowGridLines: &show})
}

func (w *writer) setStyle(tl, br string, k styleKey) error {
	id, err := w.styles.get(k)
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(w.sheet, tl, br, id)
}

// =============================================================================
// TITLE TEXT
// =============================================================================

var thaiMonths = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

// ReportTitle returns the default title of a report variant.
func ReportTitle(rt types.ReportType) string {
	if rt == types.ReportGLGroup {
		return "รายงานกำไรขาดทุน แยกตามกลุ่มบัญชี"
	}
	return "รายงานกำไรขาดทุน แยกตามประเภทค่าใช้จ่าย"
}

// PeriodText renders the period line of the title block. Months are
// YYYYMM; years are shown in the Buddhist era.
func PeriodText(pt types.PeriodType, month string) string {
	prefix := "ประจำเดือน"
	if pt == types.PeriodYearToDate {
		prefix = "สะสมตั้งแต่ต้นปีถึงเดือน"
	}
	if len(month) != 6 {
		return prefix + " " + month
	}
	y, errY := strconv.Atoi(month[:4])
	m, errM := strconv.Atoi(month[4:])
	if errY != nil || errM != nil || m < 1 || m > 12 {
		return prefix + " " + month
	}
	return fmt.Sprintf("%s %s %d", prefix, thaiMonths[m-1], y+543)
}

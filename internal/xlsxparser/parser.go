// =============================================================================
// P&L Workbook Generator - Workbook Snapshot Reader
// =============================================================================
//
// This module reads a generated workbook back into a plain snapshot: every
// used cell with its raw value, number format, boldness and fill, plus the
// merged ranges and freeze panes of each sheet.
//
// Snapshots serve two consumers:
//   - The workbook viewer, which serves them as JSON.
//   - Round-trip checks, which assert rendering rules on written files.
//
// CELL CLASSIFICATION:
//   Percent and accounting cells are told apart by their exact number format
//   code, the same codes the writer emits. A cell counts as percent when its
//   custom format is "0.00%" or it uses built-in format 10.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Number format codes recognised on read. These match the writer's codes.
const (
	PercentFormat    = "0.00%"
	AccountingFormat = `#,##0.00;[Red](#,##0.00);""`

	builtinPercent = 10
)

// =============================================================================
// SNAPSHOT STRUCTURE
// =============================================================================

// Snapshot is the read-back content of a workbook.
type Snapshot struct {
	// Book is the file name (or caller-supplied name) the snapshot came from.
	Book string `json:"book"`

	// Sheets in workbook order.
	Sheets []Sheet `json:"sheets"`
}

// Sheet is one worksheet of a snapshot.
type Sheet struct {
	Name   string  `json:"name"`
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	Cells  []Cell  `json:"cells"`
	Merges []Merge `json:"merges"`
	Freeze *Freeze `json:"freeze,omitempty"`
}

// Cell is one used cell: it holds a value, a style, or both.
type Cell struct {
	Ref string `json:"ref"`
	Row int    `json:"row"`
	Col int    `json:"col"`

	// Value is the raw stored value, unformatted.
	Value string `json:"value,omitempty"`

	// Number is set when the cell stores a number.
	Number *float64 `json:"number,omitempty"`

	// Format is the custom number format code, if any.
	Format string `json:"format,omitempty"`

	Bold    bool   `json:"bold,omitempty"`
	Fill    string `json:"fill,omitempty"`
	Percent bool   `json:"percent,omitempty"`
}

// Accounting reports whether the cell uses the accounting format.
func (c Cell) Accounting() bool {
	return c.Format == AccountingFormat
}

// Merge is one merged range.
type Merge struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Value string `json:"value,omitempty"`
}

// Freeze describes frozen panes: XSplit columns and YSplit rows stay
// visible.
type Freeze struct {
	XSplit      int    `json:"x_split"`
	YSplit      int    `json:"y_split"`
	TopLeftCell string `json:"top_left_cell"`
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadSnapshot reads the workbook at path.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//
// RETURNS:
//   - The snapshot of every sheet.
//   - An error if the file cannot be opened or read.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return snapshot(f, path)
}

// ReadSnapshotFrom reads a workbook from r. The name is recorded as the
// snapshot's Book.
func ReadSnapshotFrom(r io.Reader, name string) (*Snapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return snapshot(f, name)
}

func snapshot(f *excelize.File, name string) (*Snapshot, error) {
	snap := &Snapshot{Book: name}
	for _, sheetName := range f.GetSheetList() {
		sheet, err := readSheet(f, sheetName)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet '%s': %w", sheetName, err)
		}
		snap.Sheets = append(snap.Sheets, *sheet)
	}
	return snap, nil
}

// readSheet reads one worksheet. The used range spans every row element,
// every column holding a value and every merged range; styled empty cells
// inside it are included.
func readSheet(f *excelize.File, name string) (*Sheet, error) {
	sheet := &Sheet{Name: name}

	maxRow, maxCol, err := usedRange(f, name)
	if err != nil {
		return nil, err
	}

	merges, err := f.GetMergeCells(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read merged cells: %w", err)
	}
	covered := make(map[[2]int]bool)
	for _, m := range merges {
		sheet.Merges = append(sheet.Merges, Merge{Start: m.GetStartAxis(), End: m.GetEndAxis(), Value: m.GetCellValue()})
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return nil, err
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return nil, err
		}
		for r := r1; r <= r2; r++ {
			for c := c1; c <= c2; c++ {
				covered[[2]int{c, r}] = c != c1 || r != r1
			}
		}
		maxRow = max(maxRow, r2)
		maxCol = max(maxCol, c2)
	}
	sheet.Rows, sheet.Cols = maxRow, maxCol

	styles := make(map[int]*excelize.Style)
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			cell, ok, err := readCell(f, name, col, row, covered[[2]int{col, row}], styles)
			if err != nil {
				return nil, err
			}
			if ok {
				sheet.Cells = append(sheet.Cells, cell)
			}
		}
	}

	panes, err := f.GetPanes(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read panes: %w", err)
	}
	if panes.Freeze {
		sheet.Freeze = &Freeze{XSplit: panes.XSplit, YSplit: panes.YSplit, TopLeftCell: panes.TopLeftCell}
	}

	return sheet, nil
}

func usedRange(f *excelize.File, name string) (int, int, error) {
	rows, err := f.Rows(name)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	defer rows.Close()

	maxRow, maxCol, cur := 0, 0, 0
	for rows.Next() {
		cur++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return 0, 0, fmt.Errorf("failed to read row %d: %w", cur, err)
		}
		maxRow = cur
		maxCol = max(maxCol, len(cols))
	}
	return maxRow, maxCol, rows.Error()
}

// readCell reads one cell. It reports false for cells with neither a value
// nor a non-default style. Cells covered by a merge, other than its top-left
// cell, carry no value: excelize repeats the merged value across the range.
func readCell(f *excelize.File, sheet string, col, row int, covered bool, styles map[int]*excelize.Style) (Cell, bool, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return Cell{}, false, err
	}

	var value string
	if !covered {
		value, err = f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
		if err != nil {
			return Cell{}, false, fmt.Errorf("failed to read cell %s: %w", ref, err)
		}
	}
	styleID, err := f.GetCellStyle(sheet, ref)
	if err != nil {
		return Cell{}, false, fmt.Errorf("failed to read style of %s: %w", ref, err)
	}
	if value == "" && styleID == 0 {
		return Cell{}, false, nil
	}

	cell := Cell{Ref: ref, Row: row, Col: col, Value: value}

	if value != "" {
		typ, err := f.GetCellType(sheet, ref)
		if err != nil {
			return Cell{}, false, err
		}
		if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				cell.Number = &n
			}
		}
	}

	if styleID != 0 {
		style, ok := styles[styleID]
		if !ok {
			style, err = f.GetStyle(styleID)
			if err != nil {
				return Cell{}, false, fmt.Errorf("failed to read style %d: %w", styleID, err)
			}
			styles[styleID] = style
		}
		applyStyle(&cell, style)
	}

	return cell, true, nil
}

func applyStyle(cell *Cell, style *excelize.Style) {
	if style.CustomNumFmt != nil {
		cell.Format = *style.CustomNumFmt
	}
	cell.Percent = cell.Format == PercentFormat || style.NumFmt == builtinPercent
	if style.Font != nil {
		cell.Bold = style.Font.Bold
	}
	if style.Fill.Type == "pattern" && style.Fill.Pattern == 1 && len(style.Fill.Color) > 0 {
		cell.Fill = NormalizeColor(style.Fill.Color[0])
	}
}

// =============================================================================
// LOOKUP HELPERS
// =============================================================================

// NormalizeColor returns a colour as upper-case "#RRGGBB", accepting the
// "RRGGBB", "#RRGGBB" and "AARRGGBB" spellings.
func NormalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(c, "#"))
	if len(c) == 8 {
		c = c[2:]
	}
	if c == "" {
		return ""
	}
	return "#" + c
}

// Sheet returns the sheet with the given name.
func (s *Snapshot) Sheet(name string) (*Sheet, bool) {
	for i := range s.Sheets {
		if s.Sheets[i].Name == name {
			return &s.Sheets[i], true
		}
	}
	return nil, false
}

// Cell returns the cell at ref, if it was used.
func (s *Sheet) Cell(ref string) (Cell, bool) {
	for _, c := range s.Cells {
		if c.Ref == ref {
			return c, true
		}
	}
	return Cell{}, false
}

// At returns the cell at 1-based (col, row), if it was used.
func (s *Sheet) At(col, row int) (Cell, bool) {
	for _, c := range s.Cells {
		if c.Row == row && c.Col == col {
			return c, true
		}
	}
	return Cell{}, false
}

// Row returns the used cells of a 1-based row in column order.
func (s *Sheet) Row(row int) []Cell {
	var out []Cell
	for _, c := range s.Cells {
		if c.Row == row {
			out = append(out, c)
		}
	}
	return out
}

// FindRow returns the 1-based row whose column A holds text, or 0.
func (s *Sheet) FindRow(text string) int {
	for _, c := range s.Cells {
		if c.Col == 1 && c.Value == text {
			return c.Row
		}
	}
	return 0
}

// IsMerged reports whether a merge spans exactly start:end.
func (s *Sheet) IsMerged(start, end string) bool {
	for _, m := range s.Merges {
		if m.Start == start && m.End == end {
			return true
		}
	}
	return false
}

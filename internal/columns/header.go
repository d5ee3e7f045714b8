package columns

import (
	"fmt"
	"sort"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// HeaderRows is the height of the header block.
const HeaderRows = 4

// HeaderCell is one (possibly merged) cell of the header block. Rows are
// relative to the block, columns are indices into Layout.Columns.
type HeaderCell struct {
	Row, Col       int
	EndRow, EndCol int
	Text           string
	Color          string
}

// Merged reports whether the cell spans more than one sheet cell.
func (h HeaderCell) Merged() bool {
	return h.Row != h.EndRow || h.Col != h.EndCol
}

// node is one level of a column's header path. Columns sharing a node id
// share one merged header cell.
type node struct {
	id    string
	text  string
	color string
}

// pad extends a path to n rows by repeating its last node, so a short path
// spans the remaining rows.
func pad(path []node, n int) []node {
	out := make([]node, n)
	copy(out, path)
	for i := len(path); i < n; i++ {
		out[i] = path[len(path)-1]
	}
	return out
}

type rect struct {
	minRow, maxRow, minCol, maxCol int
	cells                          int
	n                              node
}

// headerCells turns per-column header paths into header rectangles. Every
// node id must occupy a full rectangle; anything else means two header
// cells would overlap.
func headerCells(paths [][]node) ([]HeaderCell, error) {
	rects := make(map[string]*rect)
	var order []string

	for c, path := range paths {
		for r, n := range path {
			rc, ok := rects[n.id]
			if !ok {
				rects[n.id] = &rect{minRow: r, maxRow: r, minCol: c, maxCol: c, cells: 1, n: n}
				order = append(order, n.id)
				continue
			}
			rc.minRow = min(rc.minRow, r)
			rc.maxRow = max(rc.maxRow, r)
			rc.minCol = min(rc.minCol, c)
			rc.maxCol = max(rc.maxCol, c)
			rc.cells++
		}
	}

	out := make([]HeaderCell, 0, len(order))
	for _, id := range order {
		rc := rects[id]
		area := (rc.maxRow - rc.minRow + 1) * (rc.maxCol - rc.minCol + 1)
		if area != rc.cells {
			return nil, fmt.Errorf("header %q spans rows %d-%d, columns %d-%d: %w",
				rc.n.text, rc.minRow, rc.maxRow, rc.minCol, rc.maxCol, types.ErrMergeOverlap)
		}
		out = append(out, HeaderCell{
			Row: rc.minRow, Col: rc.minCol,
			EndRow: rc.maxRow, EndCol: rc.maxCol,
			Text:  rc.n.text,
			Color: rc.n.color,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

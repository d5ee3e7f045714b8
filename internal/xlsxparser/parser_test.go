package xlsxparser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "หัวเรื่อง"))
	require.NoError(t, f.MergeCell(sheet, "B1", "D1"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "merged"))
	require.NoError(t, f.SetCellFloat(sheet, "B2", -1234.5, -1, 64))
	require.NoError(t, f.SetCellFloat(sheet, "C2", 0.25, -1, 64))
	require.NoError(t, f.SetCellFloat(sheet, "D2", 0.5, -1, 64))

	accounting := AccountingFormat
	amount, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &accounting,
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#fde2e2"}},
	})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "B2", "B2", amount))

	percent := PercentFormat
	custom, err := f.NewStyle(&excelize.Style{CustomNumFmt: &percent})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C2", "C2", custom))

	builtin, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "D2", "D2", builtin))

	gray, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle(sheet, "C3", "C3", gray))

	require.NoError(t, f.SetPanes(sheet, &excelize.Panes{
		Freeze: true, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight",
	}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadSnapshotFrom(t *testing.T) {
	snap, err := ReadSnapshotFrom(workbook(t), "book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "book.xlsx", snap.Book)
	require.Len(t, snap.Sheets, 1)

	sheet, ok := snap.Sheet("Sheet1")
	require.True(t, ok)
	assert.Equal(t, 3, sheet.Rows)
	assert.Equal(t, 4, sheet.Cols)

	a1, ok := sheet.Cell("A1")
	require.True(t, ok)
	assert.Equal(t, "หัวเรื่อง", a1.Value)
	assert.Nil(t, a1.Number)

	b2, ok := sheet.At(2, 2)
	require.True(t, ok)
	require.NotNil(t, b2.Number)
	assert.Equal(t, -1234.5, *b2.Number)
	assert.True(t, b2.Accounting())
	assert.False(t, b2.Percent)
	assert.True(t, b2.Bold)
	assert.Equal(t, "#FDE2E2", b2.Fill)

	c2, _ := sheet.Cell("C2")
	assert.True(t, c2.Percent)
	assert.Equal(t, PercentFormat, c2.Format)

	d2, _ := sheet.Cell("D2")
	assert.True(t, d2.Percent)
	assert.Empty(t, d2.Format)

	c3, ok := sheet.Cell("C3")
	require.True(t, ok, "styled empty cells are kept")
	assert.Empty(t, c3.Value)
	assert.Equal(t, "#D9D9D9", c3.Fill)

	_, ok = sheet.Cell("A3")
	assert.False(t, ok)
	_, ok = sheet.Cell("C1")
	assert.False(t, ok, "merged range repeats no value")

	assert.True(t, sheet.IsMerged("B1", "D1"))
	assert.False(t, sheet.IsMerged("B1", "C1"))
	assert.Equal(t, "merged", sheet.Merges[0].Value)

	require.NotNil(t, sheet.Freeze)
	assert.Equal(t, Freeze{XSplit: 1, YSplit: 1, TopLeftCell: "B2"}, *sheet.Freeze)

	assert.Equal(t, 1, sheet.FindRow("หัวเรื่อง"))
	assert.Zero(t, sheet.FindRow("missing"))
	assert.Len(t, sheet.Row(2), 3)
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot("/nonexistent/book.xlsx")
	assert.Error(t, err)
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#DDEBF7", NormalizeColor("ddebf7"))
	assert.Equal(t, "#DDEBF7", NormalizeColor("#DDEBF7"))
	assert.Equal(t, "#DDEBF7", NormalizeColor("FFDDEBF7"))
	assert.Empty(t, NormalizeColor(""))
}

package xlsxwriter

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"
)

// Number formats. Downstream viewers match on these exact strings to tell
// percent cells from amounts; do not substitute equivalent patterns.
const (
	AccountingFormat = `#,##0.00;[Red](#,##0.00);""`
	PercentFormat    = "0.00%"
)

// Fill colours.
const (
	NegativeFill = "#FDE2E2"
	NoneFill     = "#D9D9D9"
	InfoBoxFill  = "#FFF2CC"
	HeaderFont   = "#FFFFFF"
)

type cellKind int

const (
	kindLabel cellKind = iota
	kindAmount
	kindPercent
	kindHeader
	kindTitle
	kindInfo
	kindRemark
)

// styleKey identifies one distinct cell style.
type styleKey struct {
	kind   cellKind
	bold   bool
	fill   string
	indent int
}

// styleCache creates each distinct style once per workbook.
type styleCache struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[styleKey]int)}
}

func (c *styleCache) get(k styleKey) (int, error) {
	if id, ok := c.ids[k]; ok {
		return id, nil
	}
	id, err := c.f.NewStyle(k.style())
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	c.ids[k] = id
	return id, nil
}

func (k styleKey) style() *excelize.Style {
	parts := []*excelize.Style{defaultStyle()}

	switch k.kind {
	case kindLabel:
		parts = append(parts, alignment("left", k.indent, false))
	case kindAmount:
		parts = append(parts, numberFormat(AccountingFormat), alignment("right", 0, false))
	case kindPercent:
		parts = append(parts, numberFormat(PercentFormat), alignment("right", 0, false))
	case kindHeader:
		parts = append(parts, fontColor(HeaderFont), alignment("center", 0, true), thinBorder("left", "right", "top", "bottom"))
	case kindTitle:
		parts = append(parts, alignment("left", 0, false))
	case kindInfo:
		parts = append(parts, fontSize(9), alignment("left", 0, false), thinBorder("left", "right", "top", "bottom"))
	case kindRemark:
		parts = append(parts, alignment("left", 0, false))
	}

	if k.bold {
		parts = append(parts, fontBold())
	}
	if k.fill != "" {
		parts = append(parts, solidFill(k.fill))
	}
	return mergeStyles(parts...)
}

// =============================================================================
// STYLE FRAGMENTS
// =============================================================================

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{Family: "Tahoma", Size: 10},
		Alignment: &excelize.Alignment{
			Vertical: "center",
		},
	}
}

func numberFormat(code string) *excelize.Style {
	return &excelize.Style{
		CustomNumFmt: &code,
	}
}

func alignment(horizontal string, indent int, wrap bool) *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: horizontal,
			Vertical:   "center",
			Indent:     indent,
			WrapText:   wrap,
		},
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func fontColor(color string) *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Color: color,
		},
	}
}

func fontSize(size float64) *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Size: size,
		},
	}
}

func solidFill(color string) *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
	}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#BFBFBF",
			Style: 1,
		})
	}
	return s
}

// mergeStyles folds style fragments left to right into the first one.
func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}

package columns

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	numericPrefix = regexp.MustCompile(`^(\d+(?:\.\d+)*)`)
	leadingZeros  = regexp.MustCompile(`^0+(\d)`)
)

// sortKey extracts the integer tuple of a name's leading dotted number
// prefix. ok is false for names without one.
func sortKey(name string) (parts []int, ok bool) {
	m := numericPrefix.FindString(strings.TrimSpace(name))
	if m == "" {
		return nil, false
	}
	for _, p := range strings.Split(m, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, true
}

// NaturalLess orders names by the integer tuple of their leading dotted
// prefix ("1.2" before "1.10"). Names without a numeric prefix sort after
// those with one. Ties fall back to plain string order.
func NaturalLess(a, b string) bool {
	ka, okA := sortKey(a)
	kb, okB := sortKey(b)

	switch {
	case okA && !okB:
		return true
	case !okA && okB:
		return false
	case okA && okB:
		for i := 0; i < len(ka) && i < len(kb); i++ {
			if ka[i] != kb[i] {
				return ka[i] < kb[i]
			}
		}
		if len(ka) != len(kb) {
			return len(ka) < len(kb)
		}
	}
	return a < b
}

// NaturalSort sorts names in place with NaturalLess.
func NaturalSort(names []string) {
	sort.SliceStable(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
}

// DisplayName strips leading zeros from a name's numeric prefix:
// "01.ภาคกลาง" becomes "1.ภาคกลาง". Keys keep the original form.
func DisplayName(name string) string {
	return leadingZeros.ReplaceAllString(name, "$1")
}

package facts

import (
	"sort"

	"github.com/ginjaninja78/pnl-workbook/internal/types"
)

// SplitConfig configures the satellite service-group split.
type SplitConfig struct {
	// Enabled turns the split on.
	Enabled bool

	// SourceLabel is the service group that gets split.
	SourceLabel string

	// Descendants are the two service groups the source is split into, in
	// display order.
	Descendants []string

	// ProductKeys maps a canonical product key to its descendant label.
	ProductKeys map[string]string
}

// SplitStats reports the outcome of a split.
type SplitStats struct {
	// Updated counts records moved to a descendant label.
	Updated int

	// Unmatched counts source records whose product key is not in the table.
	Unmatched int

	// UnmatchedKeys lists the distinct unmatched product keys, sorted.
	UnmatchedKeys []string

	// PerDescendant counts moved records per descendant label.
	PerDescendant map[string]int
}

// SplitSatellite rewrites the service group of every record carrying the
// source satellite label. It never adds or drops records; unmatched keys
// stay on the source label.
func SplitSatellite(records []types.Fact, cfg SplitConfig) SplitStats {
	stats := SplitStats{PerDescendant: make(map[string]int, len(cfg.Descendants))}
	if !cfg.Enabled || cfg.SourceLabel == "" {
		return stats
	}

	unmatched := make(map[string]struct{})
	for i := range records {
		if records[i].ServiceGroup != cfg.SourceLabel {
			continue
		}
		target, ok := cfg.ProductKeys[records[i].ProductKey]
		if !ok {
			stats.Unmatched++
			unmatched[records[i].ProductKey] = struct{}{}
			continue
		}
		records[i].ServiceGroup = target
		stats.Updated++
		stats.PerDescendant[target]++
	}

	for key := range unmatched {
		stats.UnmatchedKeys = append(stats.UnmatchedKeys, key)
	}
	sort.Strings(stats.UnmatchedKeys)

	return stats
}

// IsDescendant reports whether sg is one of the split's descendant labels.
func (c SplitConfig) IsDescendant(sg string) bool {
	for _, d := range c.Descendants {
		if d == sg {
			return true
		}
	}
	return false
}

package mapping

import "github.com/ginjaninja78/pnl-workbook/internal/facts"

// Satellite service-group labels. The extract reports all satellite
// business under the source label; the split moves each record to the
// operator that carries the product.
const (
	SatelliteSource  = "SATELLITE"
	SatelliteNT      = "SATELLITE-NT"
	SatelliteThaicom = "SATELLITE-THAICOM"
)

// SatelliteProducts lists the product keys of each descendant label.
var SatelliteProducts = map[string][]string{
	SatelliteNT: {
		"5101", "5102", "5103", "5104", "5105", "5110", "5111",
	},
	SatelliteThaicom: {
		"5201", "5202", "5203", "5204", "5210", "5211",
	},
}

// DefaultSatellite returns the built-in split configuration.
func DefaultSatellite() facts.SplitConfig {
	return SatelliteSplit(true, SatelliteSource, []string{SatelliteNT, SatelliteThaicom}, SatelliteProducts)
}

// SatelliteSplit builds a split configuration from per-descendant product
// key lists. A key listed under two descendants goes to the later one in
// descendant order.
func SatelliteSplit(enabled bool, source string, descendants []string, products map[string][]string) facts.SplitConfig {
	keys := make(map[string]string)
	for _, d := range descendants {
		for _, k := range products[d] {
			keys[facts.CanonicalProductKey(k)] = d
		}
	}
	return facts.SplitConfig{
		Enabled:     enabled,
		SourceLabel: source,
		Descendants: append([]string(nil), descendants...),
		ProductKeys: keys,
	}
}

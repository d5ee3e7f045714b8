// =============================================================================
// P&L Workbook Generator - Aggregation Engine
// =============================================================================
//
// The engine resolves every (template row, value column) pair to a value.
//
// RESOLUTION:
//   - Data rows are mapped to (GROUP, SUB_GROUPs) through the contextual
//     mapping of their main group and summed from the index.
//   - Calculated rows dispatch on their formula tag; formulas read earlier
//     rows from the accumulated results by label.
//   - Ratio rows dispatch on the label of the row immediately above them.
//
// Every row is evaluated at every scope (grand total, BU, SG, product and
// satellite summary) so later formulas can read any granularity.
//
// USAGE:
//   engine := aggregator.New(index, tables, aggregator.Options{...})
//   for _, r := range rows {
//       engine.Evaluate(r.Key, r.Template, r.MainGroup, r.Previous)
//   }
//
// =============================================================================

package aggregator

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/pnl-workbook/internal/facts"
	"github.com/ginjaninja78/pnl-workbook/internal/mapping"
)

// Values maps a column key to a value. An invalid NullDecimal is None.
type Values map[string]decimal.NullDecimal

// Results maps a row key to the values of that row.
type Results map[string]Values

// Options configures an Engine.
type Options struct {
	// Satellite enables satellite summary scopes for BUs carrying both
	// descendant service groups.
	Satellite facts.SplitConfig

	// Logger receives mapping misses. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine evaluates template rows against an index. It is not safe for
// concurrent use; one engine serves one workbook generation.
type Engine struct {
	index     *facts.Index
	tables    *mapping.Tables
	scopes    []Scope
	satellite facts.SplitConfig
	logger    *slog.Logger

	results   Results
	ratioKeys map[string]bool
}

// New creates an engine over an index and the mapping tables of one report
// variant.
func New(ix *facts.Index, tables *mapping.Tables, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		index:     ix,
		tables:    tables,
		scopes:    Scopes(ix, opts.Satellite),
		satellite: opts.Satellite,
		logger:    logger,
		results:   make(Results),
		ratioKeys: make(map[string]bool),
	}
}

// =============================================================================
// ROW EVALUATION
// =============================================================================

// resolver is a row's value function at a single scope.
type resolver func(Scope) decimal.NullDecimal

// resolve picks the value function of a row. It returns false for rows that
// carry no values: blanks, headers and rows without a mapping.
func (e *Engine) resolve(row mapping.TemplateRow, mainGroup, previous string) (resolver, bool) {
	if row.IsBlank() || row.Header {
		return nil, false
	}

	if row.IsRatio() {
		tag, ok := mapping.RatioTags[previous]
		if !ok {
			e.logger.Info("no ratio formula for row", "label", row.Label, "previous", previous)
			return nil, false
		}
		return func(s Scope) decimal.NullDecimal { return e.formula(tag, s) }, true
	}

	if row.Calculated {
		tag := row.Tag
		if tag == "" {
			tag = mapping.FormulaTags[row.Label]
		}
		if tag == "" {
			e.logger.Info("no formula for calculated row", "label", row.Label)
			return nil, false
		}
		return func(s Scope) decimal.NullDecimal { return e.formula(tag, s) }, true
	}

	target, ok := e.tables.Resolve(row.Label, mainGroup)
	if !ok {
		e.logger.Info("no mapping for row", "label", row.Label, "main_group", mainGroup)
		return nil, false
	}
	return func(s Scope) decimal.NullDecimal {
		if target.GrandTotalOnly && s.Level != LevelGrandTotal {
			return None
		}
		return Value(e.sum([]string{target.Group}, target.SubGroups, s))
	}, true
}

// RowValues resolves a row at every scope. Rows without values yield an
// empty map.
//
// PARAMETERS:
//   - row: The template row.
//   - mainGroup: The label of the current main group.
//   - previous: The label of the row immediately above (for ratio rows).
//
// RETURNS:
//   - The column-key dictionary of the row.
func (e *Engine) RowValues(row mapping.TemplateRow, mainGroup, previous string) Values {
	fn, ok := e.resolve(row, mainGroup, previous)
	if !ok {
		return Values{}
	}
	out := make(Values, len(e.scopes))
	for _, s := range e.scopes {
		out[s.Key()] = fn(s)
	}
	return out
}

// Evaluate resolves a row at every scope and records the values under key,
// where later formulas and the render pass find them.
func (e *Engine) Evaluate(key string, row mapping.TemplateRow, mainGroup, previous string) Values {
	values := e.RowValues(row, mainGroup, previous)
	e.results[key] = values
	if row.IsRatio() {
		e.ratioKeys[key] = true
	}
	return values
}

// ProductValue resolves a row at a single product column.
func (e *Engine) ProductValue(row mapping.TemplateRow, bu, sg, productKey, mainGroup, previous string) decimal.NullDecimal {
	fn, ok := e.resolve(row, mainGroup, previous)
	if !ok {
		return None
	}
	return fn(ProductScope(bu, sg, productKey))
}

// SatelliteSummary resolves a row at the satellite summary column of bu.
// Data rows sum both descendant service groups from the index; calculated
// rows reapply their formula to the summary operands, so ratios are
// recomputed from summed numerators and denominators.
func (e *Engine) SatelliteSummary(row mapping.TemplateRow, mainGroup, previous, bu string) decimal.NullDecimal {
	fn, ok := e.resolve(row, mainGroup, previous)
	if !ok {
		return None
	}
	return fn(SatelliteScope(bu, e.satellite.Descendants))
}

// CommonSize expresses the value at (rowKey, columnKey) as a fraction of the
// revenue section at the same column. Ratio rows, None values and columns
// without revenue yield None.
func (e *Engine) CommonSize(rowKey, columnKey string) decimal.NullDecimal {
	if e.ratioKeys[rowKey] {
		return None
	}
	v, ok := e.results[rowKey][columnKey]
	if !ok || !v.Valid {
		return None
	}
	revenue := e.results[mapping.LabelRevenue][columnKey]
	if !revenue.Valid {
		return None
	}
	return Ratio(v.Decimal, revenue.Decimal)
}

// Value returns the recorded value at (rowKey, columnKey). Missing entries
// are None.
func (e *Engine) Value(rowKey, columnKey string) decimal.NullDecimal {
	return e.results[rowKey][columnKey]
}

// Results exposes the accumulated results.
func (e *Engine) Results() Results {
	return e.results
}

// Scopes returns the scopes the engine evaluates.
func (e *Engine) Scopes() []Scope {
	return append([]Scope(nil), e.scopes...)
}

// =============================================================================
// OPERANDS
// =============================================================================

// sum adds index values of groups/subGroups within a scope.
func (e *Engine) sum(groups, subGroups []string, s Scope) decimal.Decimal {
	total := decimal.Zero
	for _, q := range s.queries(groups, subGroups) {
		total = total.Add(e.index.Sum(q))
	}
	return total
}

// prior reads an earlier row at the scope's column. A missing row or a None
// value counts as zero.
func (e *Engine) prior(label string, s Scope) decimal.Decimal {
	v, ok := e.results[label][s.Key()]
	if !ok || !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

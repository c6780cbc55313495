package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	incomeTypes  = map[string]bool{"income": true, "credit": true, "deposit": true, "earn": true}
	expenseTypes = map[string]bool{"expense": true, "debit": true, "withdrawal": true, "payment": true, "buy": true}
)

// overspendThreshold is the fixed share of total expenses above which a
// category is flagged. Not user-configurable.
var overspendThreshold = decimal.NewFromInt(30)

// maxGroupCardinality separates categorical columns from free-text or ID
// columns in the generic fallback: only a column with fewer distinct values
// qualifies for grouping.
const maxGroupCardinality = 20

// dateLayouts are tried in order when parsing date-column values.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// Analyze computes the analytics summary for a parsed table. It is a total
// function: any syntactically valid table yields a summary, with missing
// columns, dirty numbers and unparseable dates resolved to zero values and
// exclusions rather than errors.
func Analyze(t *Table) *Summary {
	roles := Resolve(t.Columns)

	s := &Summary{
		TotalRows:         len(t.Rows),
		Columns:           append([]string{}, t.Columns...),
		ExpenseByCategory: CategoryTotals{},
		OverspendingFlags: []OverspendingFlag{},
	}

	if roles.Type != "" && roles.Amount != "" {
		analyzeFinancial(t, roles, s)
	} else if nums := numericColumns(t, roles.Amount); len(nums) > 0 {
		analyzeGeneric(t, roles, nums, s)
	}

	if roles.Date != "" {
		s.DateRange = dateRange(t.Rows, roles.Date)
	}

	return s
}

// analyzeFinancial partitions rows by transaction type and computes totals,
// the category breakdown and overspending flags.
func analyzeFinancial(t *Table, roles Roles, s *Summary) {
	var incomeRows, expenseRows []map[string]string
	for _, row := range t.Rows {
		typ := strings.ToLower(strings.TrimSpace(row[roles.Type]))
		switch {
		case incomeTypes[typ]:
			incomeRows = append(incomeRows, row)
		case expenseTypes[typ]:
			expenseRows = append(expenseRows, row)
		}
	}

	// Sales ledgers often carry amounts with no income/expense labels at all.
	// When neither partition matched a single row, fold every row into the
	// expense side so the upload still charts.
	if len(incomeRows) == 0 && len(expenseRows) == 0 {
		expenseRows = t.Rows
	}

	totalIncome := sumColumn(incomeRows, roles.Amount).Round(2)
	totalExpenses := sumColumn(expenseRows, roles.Amount).Round(2)
	netSurplus := totalIncome.Sub(totalExpenses)

	savingsRate := decimal.Zero
	if totalIncome.IsPositive() {
		savingsRate = netSurplus.Div(totalIncome).Mul(decimal.NewFromInt(100)).Round(2)
	}

	s.IsFinancialData = true
	s.TotalIncome = floatPtr(totalIncome)
	s.TotalExpenses = floatPtr(totalExpenses)
	s.NetSurplus = floatPtr(netSurplus)
	s.SavingsRate = floatPtr(savingsRate)

	if roles.Category == "" {
		return
	}

	s.ExpenseByCategory = groupBy(expenseRows, roles.Category, roles.Amount)

	if !totalExpenses.IsPositive() {
		return
	}
	for _, ct := range s.ExpenseByCategory {
		pct := decimal.NewFromFloat(ct.Amount).Div(totalExpenses).Mul(decimal.NewFromInt(100)).Round(2)
		if pct.GreaterThan(overspendThreshold) {
			s.OverspendingFlags = append(s.OverspendingFlags, OverspendingFlag{
				Category:   ct.Category,
				Percentage: pct.InexactFloat64(),
				Amount:     ct.Amount,
			})
		}
	}
}

// analyzeGeneric aggregates non-financial tables: sum the target numeric
// column grouped by the first low-cardinality column. When no grouping
// column qualifies, the table is reported as plain metadata.
func analyzeGeneric(t *Table, roles Roles, numericCols []string, s *Summary) {
	target := numericCols[0]
	if roles.Amount != "" {
		target = roles.Amount
	}

	group := ""
	for _, col := range t.Columns {
		if col == target {
			continue
		}
		if distinctValues(t.Rows, col) < maxGroupCardinality {
			group = col
			break
		}
	}
	if group == "" {
		return
	}

	s.ExpenseByCategory = groupBy(t.Rows, group, target)
	s.TotalExpenses = floatPtr(sumColumn(t.Rows, target).Round(2))
	// Reuses the financial field names so the chart layer, which branches on
	// is_financial_data alone, renders generic tables too.
	s.IsFinancialData = true
	s.GenericChartLabel = target + " by " + group
}

// coerceAmount parses a numeric cell. Blank or non-numeric values become
// zero so dirty rows degrade instead of aborting the analysis.
func coerceAmount(v string) decimal.Decimal {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func sumColumn(rows []map[string]string, col string) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range rows {
		sum = sum.Add(coerceAmount(row[col]))
	}
	return sum
}

// groupBy sums valueCol per distinct keyCol value, rounded to 2 decimal
// places, sorted by amount descending with ties broken by key so the result
// is reproducible. Keys are trimmed but keep their original case for display.
func groupBy(rows []map[string]string, keyCol, valueCol string) CategoryTotals {
	sums := make(map[string]decimal.Decimal)
	for _, row := range rows {
		key := strings.TrimSpace(row[keyCol])
		sums[key] = sums[key].Add(coerceAmount(row[valueCol]))
	}

	out := make(CategoryTotals, 0, len(sums))
	for key, sum := range sums {
		out = append(out, CategoryTotal{Category: key, Amount: sum.Round(2).InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// dateRange finds the min and max parseable values of the date column.
// Unparseable values are excluded, not errors; nil when nothing parses.
func dateRange(rows []map[string]string, col string) *DateRange {
	var min, max time.Time
	found := false

	for _, row := range rows {
		d, ok := parseDate(row[col])
		if !ok {
			continue
		}
		if !found || d.Before(min) {
			min = d
		}
		if !found || d.After(max) {
			max = d
		}
		found = true
	}

	if !found {
		return nil
	}
	return &DateRange{
		Start: min.Format("2006-01-02"),
		End:   max.Format("2006-01-02"),
	}
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, v); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}

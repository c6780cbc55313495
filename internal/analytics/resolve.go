package analytics

import (
	"strconv"
	"strings"
)

// Roles maps the semantic column roles to concrete column names.
// An empty string means the role did not resolve. Resolution is independent
// per role: a table may resolve amount but not type.
type Roles struct {
	Type     string
	Amount   string
	Category string
	Date     string
}

// roleCandidates lists, per role, the column names checked in priority order.
// Real-world exports use inconsistent headers; a fixed ordered list keeps
// resolution deterministic and auditable, unlike fuzzy matching.
var roleCandidates = map[string][]string{
	"type":     {"type", "transaction_type", "status", "payment_type"},
	"amount":   {"amount", "total", "value", "revenue", "price", "cost", "total_price"},
	"category": {"category", "product", "item", "department", "expense_category"},
}

// Resolve picks concrete columns for the type, amount and category roles
// using the candidate tables, first match wins. The date role is an exact
// match on "date" only, with no fallback search. The column list is not
// mutated.
func Resolve(cols []string) Roles {
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}

	pick := func(role string) string {
		for _, cand := range roleCandidates[role] {
			if set[cand] {
				return cand
			}
		}
		return ""
	}

	r := Roles{
		Type:     pick("type"),
		Amount:   pick("amount"),
		Category: pick("category"),
	}
	if set["date"] {
		r.Date = "date"
	}
	return r
}

// numericColumns returns, in table order, the columns whose non-blank values
// all parse as numbers. The resolved amount column is always included:
// its unparseable values coerce to zero instead of disqualifying it.
func numericColumns(t *Table, amountCol string) []string {
	var out []string
	seen := make(map[string]bool, len(t.Columns))

	for _, col := range t.Columns {
		if seen[col] {
			continue
		}
		seen[col] = true

		if amountCol != "" && col == amountCol {
			out = append(out, col)
			continue
		}

		nonBlank := 0
		numeric := true
		for _, row := range t.Rows {
			v := strings.TrimSpace(row[col])
			if v == "" {
				continue
			}
			nonBlank++
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric && nonBlank > 0 {
			out = append(out, col)
		}
	}
	return out
}

// distinctValues counts the distinct trimmed values of a column.
func distinctValues(rows []map[string]string, col string) int {
	seen := make(map[string]bool)
	for _, row := range rows {
		seen[strings.TrimSpace(row[col])] = true
	}
	return len(seen)
}

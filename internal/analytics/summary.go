package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CategoryTotal is one category with its summed amount.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// CategoryTotals is an ordered category->amount mapping. It marshals as a
// JSON object whose keys appear in slice order, so the descending sort
// survives serialization.
type CategoryTotals []CategoryTotal

// Get returns the amount for a category and whether it is present.
func (ct CategoryTotals) Get(category string) (float64, bool) {
	for _, c := range ct {
		if c.Category == category {
			return c.Amount, true
		}
	}
	return 0, false
}

// MarshalJSON emits a JSON object with keys in slice order.
func (ct CategoryTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range ct {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(c.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order.
func (ct *CategoryTotals) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expense_by_category: expected JSON object, got %v", tok)
	}

	out := CategoryTotals{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expense_by_category: expected string key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("expense_by_category: expected numeric value for %q, got %v", key, valTok)
		}
		f, err := num.Float64()
		if err != nil {
			return err
		}
		out = append(out, CategoryTotal{Category: key, Amount: f})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*ct = out
	return nil
}

// OverspendingFlag marks a category whose share of total expenses exceeds
// the fixed 30% threshold.
type OverspendingFlag struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
}

// DateRange is the min/max of the parseable values in the date column,
// formatted as YYYY-MM-DD.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary is the derived analytics result for one upload. It is computed
// once, serialized verbatim for storage, and never mutated; re-analysis
// produces a new instance.
type Summary struct {
	TotalRows int      `json:"total_rows"`
	Columns   []string `json:"columns"`

	// IsFinancialData means "chartable", not strictly "financial": it is true
	// for real income/expense aggregation AND when the generic fallback
	// produced a grouping. The presentation layer branches on this flag alone,
	// so the generic path deliberately sets it to keep charts rendering.
	IsFinancialData bool `json:"is_financial_data"`

	TotalIncome   *float64 `json:"total_income,omitempty"`
	TotalExpenses *float64 `json:"total_expenses,omitempty"`
	NetSurplus    *float64 `json:"net_surplus,omitempty"`
	SavingsRate   *float64 `json:"savings_rate,omitempty"`

	ExpenseByCategory CategoryTotals     `json:"expense_by_category"`
	OverspendingFlags []OverspendingFlag `json:"overspending_flags"`

	DateRange         *DateRange `json:"date_range,omitempty"`
	GenericChartLabel string     `json:"generic_chart_label,omitempty"`
}

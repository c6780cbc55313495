package analytics

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCategoryTotals_MarshalPreservesOrder(t *testing.T) {
	ct := CategoryTotals{
		{Category: "Rent", Amount: 300},
		{Category: "Food", Amount: 75.5},
		{Category: "Transport", Amount: 10},
	}

	data, err := json.Marshal(ct)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	got := string(data)
	want := `{"Rent":300,"Food":75.5,"Transport":10}`
	if got != want {
		t.Errorf("marshal = %s, want %s", got, want)
	}
}

func TestCategoryTotals_RoundTrip(t *testing.T) {
	in := CategoryTotals{
		{Category: "Groceries & Snacks", Amount: 120.25},
		{Category: "", Amount: 5},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out CategoryTotals
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d entries, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("entry %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestCategoryTotals_EmptyMarshalsAsObject(t *testing.T) {
	data, err := json.Marshal(CategoryTotals{})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("marshal = %s, want {}", data)
	}
}

func TestSummary_FieldPresence(t *testing.T) {
	// Non-financial metadata-only summary: the optional numeric fields must
	// be absent, not zero.
	s := Analyze(&Table{
		Columns: []string{"name", "notes"},
		Rows:    []map[string]string{{"name": "a", "notes": "b"}},
	})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	body := string(data)

	for _, absent := range []string{"total_income", "net_surplus", "savings_rate", "date_range", "generic_chart_label"} {
		if strings.Contains(body, absent) {
			t.Errorf("serialized summary contains %q, want it omitted: %s", absent, body)
		}
	}
	for _, present := range []string{"total_rows", "columns", "is_financial_data", "expense_by_category", "overspending_flags"} {
		if !strings.Contains(body, present) {
			t.Errorf("serialized summary missing %q: %s", present, body)
		}
	}
}

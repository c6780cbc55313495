package analytics

import (
	"errors"
	"testing"
)

func TestParseTable_NormalizesHeaders(t *testing.T) {
	content := []byte("  Date , AMOUNT ,Category\n2024-01-01,100,Food\n")

	table, err := ParseTable(content, "export.csv")
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}

	want := []string{"date", "amount", "category"}
	if len(table.Columns) != len(want) {
		t.Fatalf("got %d columns, want %d", len(table.Columns), len(want))
	}
	for i, col := range want {
		if table.Columns[i] != col {
			t.Errorf("column %d = %q, want %q", i, table.Columns[i], col)
		}
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
	if table.Rows[0]["amount"] != "100" {
		t.Errorf("amount cell = %q, want %q", table.Rows[0]["amount"], "100")
	}
}

func TestParseTable_EmptyInput(t *testing.T) {
	_, err := ParseTable(nil, "empty.csv")
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("got %v, want ErrEmptyFile", err)
	}
}

func TestParseTable_HeaderOnly(t *testing.T) {
	table, err := ParseTable([]byte("date,amount,type\n"), "header.csv")
	if err != nil {
		t.Fatalf("header-only file must parse: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(table.Rows))
	}
	if len(table.Columns) != 3 {
		t.Errorf("got %d columns, want 3", len(table.Columns))
	}
}

func TestParseTable_MalformedCSV(t *testing.T) {
	// Second record has a different field count than the header.
	_, err := ParseTable([]byte("a,b\n1,2,3\n"), "bad.csv")

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *ParseError", err)
	}
	if perr.Filename != "bad.csv" {
		t.Errorf("ParseError.Filename = %q, want %q", perr.Filename, "bad.csv")
	}
}

func TestParseTable_DuplicateHeadersLastWins(t *testing.T) {
	table, err := ParseTable([]byte("amount,amount\n1,2\n"), "dup.csv")
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	if table.Rows[0]["amount"] != "2" {
		t.Errorf("duplicate column cell = %q, want last occurrence %q", table.Rows[0]["amount"], "2")
	}
}

func TestParseTable_StripsBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("amount\n5\n")...)
	table, err := ParseTable(content, "bom.csv")
	if err != nil {
		t.Fatalf("ParseTable failed: %v", err)
	}
	if table.Columns[0] != "amount" {
		t.Errorf("first column = %q, want %q", table.Columns[0], "amount")
	}
}

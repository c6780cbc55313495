package store

import (
	"strings"
	"testing"
)

func TestSchemaCoversAllTables(t *testing.T) {
	for _, table := range []string{"users", "uploaded_files", "chat_history"} {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Errorf("schema missing table %q", table)
		}
	}

	// Rows must cascade away with their owner.
	if strings.Count(schema, "ON DELETE CASCADE") != 2 {
		t.Error("uploaded_files and chat_history must cascade on user deletion")
	}
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	if ErrNotFound == ErrUsernameTaken {
		t.Error("sentinel errors must be distinguishable")
	}
}

package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskSave(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	content := []byte("type,amount\nexpense,5\n")
	path, err := d.Save(context.Background(), "abc_data.csv", content)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(content) {
		t.Error("stored bytes differ from input")
	}
}

func TestDiskSave_FlattensPath(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDisk(dir)
	if err != nil {
		t.Fatalf("NewDisk failed: %v", err)
	}

	path, err := d.Save(context.Background(), "../../escape.csv", []byte("x"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("write escaped the store directory: %s", path)
	}
}

package storage

import "testing"

func TestBuildExportPath(t *testing.T) {
	key, err := BuildExportPath("5f0c2d9e-7b1a-4c8e-9f3d-2a6b8c4e1d07", 4)
	if err != nil {
		t.Fatalf("BuildExportPath() error = %v", err)
	}
	want := "exports/5f0c2d9e-7b1a-4c8e-9f3d-2a6b8c4e1d07/turn-4.parquet"
	if key != want {
		t.Fatalf("BuildExportPath() = %q, want %q", key, want)
	}
}

func TestBuildExportPathRejectsInvalidInput(t *testing.T) {
	if _, err := BuildExportPath("../oops", 1); err == nil {
		t.Fatal("expected invalid component error")
	}
	if _, err := BuildExportPath("session-1", -1); err == nil {
		t.Fatal("expected negative turn error")
	}
}

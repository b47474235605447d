package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"batchdesk/internal/core"
	"batchdesk/internal/sheets"
)

func TestMemoryStoreLoadAndReplace(t *testing.T) {
	ctx := context.Background()
	s := New([]sheets.Record{
		{sheets.ColID: "1", sheets.ColBatchName: "NEET-A"},
		{sheets.ColID: "", sheets.ColBatchName: ""},
	})
	tbl, err := s.Load(ctx)
	if err != nil || len(tbl.Rows) != 1 {
		t.Fatalf("unexpected load: rows=%v err=%v", tbl.Rows, err)
	}

	tbl.Rows = append(tbl.Rows, sheets.Record{sheets.ColID: "2", sheets.ColBatchName: "JEE-B"})
	if err := s.Replace(ctx, tbl); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := s.Load(ctx)
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows after replace, got %d", len(got.Rows))
	}
	if got.Version == tbl.Version {
		t.Fatalf("version not bumped")
	}
}

func TestMemoryStoreRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	first, _ := s.Load(ctx)
	second, _ := s.Load(ctx)

	first.Rows = append(first.Rows, sheets.Record{sheets.ColID: "a"})
	if err := s.Replace(ctx, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	second.Rows = append(second.Rows, sheets.Record{sheets.ColID: "b"})
	err := s.Replace(ctx, second)
	if !errors.Is(err, core.ErrConcurrentModification) {
		t.Fatalf("expected ErrConcurrentModification, got %v", err)
	}

	// An unversioned write always lands.
	second.Version = ""
	if err := s.Replace(ctx, second); err != nil {
		t.Fatalf("unversioned replace: %v", err)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New([]sheets.Record{{sheets.ColID: "1"}})
	tbl, _ := s.Load(ctx)
	tbl.Rows[0][sheets.ColID] = "changed"
	again, _ := s.Load(ctx)
	if again.Rows[0][sheets.ColID] != "1" {
		t.Fatalf("caller mutation leaked into store")
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No file -> empty store
	s := NewFromFiles(dir)
	tbl, _ := s.Load(context.Background())
	if len(tbl.Rows) != 0 || len(tbl.Columns) != len(sheets.DefaultColumns) {
		t.Fatalf("expected empty store with default columns, got %+v", tbl)
	}

	content := `columns: [id, batch_name, amount, category, date, class_grade]
rows:
  - id: 1
    batch_name: NEET-A
    amount: 5000
    category: NEET
    date: "2025-04-01"
    class_grade: 11
  - {}
  - id: 2
    batch_name: JEE-B
    amount: 7000.5
    category: 2
    date: "2025-04-02"
    class_grade: "12"
`
	if err := os.WriteFile(filepath.Join(dir, SeedFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s = NewFromFiles(dir)
	tbl, _ = s.Load(context.Background())
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 seeded rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0][sheets.ColID] != "1" || tbl.Rows[0][sheets.ColClassGrade] != "11" {
		t.Fatalf("unexpected first row: %v", tbl.Rows[0])
	}
	if tbl.Rows[1][sheets.ColAmount] != "7000.5" || tbl.Rows[1][sheets.ColCategory] != "2" {
		t.Fatalf("unexpected second row: %v", tbl.Rows[1])
	}
}

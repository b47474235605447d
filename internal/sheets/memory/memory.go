package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"batchdesk/internal/core"
	"batchdesk/internal/sheets"
)

// SeedFile is the name of the optional seed file looked up by NewFromFiles.
const SeedFile = "seed_batches.yaml"

var _ sheets.RowStore = (*Store)(nil)

// Store keeps the whole table in process memory.
type Store struct {
	mu      sync.Mutex
	table   sheets.Table
	version int64
}

func New(rows []sheets.Record) *Store {
	t := sheets.Table{Columns: append([]string(nil), sheets.DefaultColumns...)}
	for _, r := range rows {
		if r.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, r.Clone())
	}
	return &Store{table: t, version: 1}
}

type seed struct {
	Columns []string         `yaml:"columns"`
	Rows    []map[string]any `yaml:"rows"`
}

// NewFromFiles seeds the store from <base>/seed_batches.yaml. A missing or
// unreadable file yields an empty store.
func NewFromFiles(base string) *Store {
	rows, cols, err := readSeed(filepath.Join(base, SeedFile))
	s := New(rows)
	if err == nil && len(cols) > 0 {
		s.table.Columns = cols
	}
	return s
}

func readSeed(path string) ([]sheets.Record, []string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var sd seed
	if err := yaml.Unmarshal(b, &sd); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make([]sheets.Record, 0, len(sd.Rows))
	for _, row := range sd.Rows {
		rec := sheets.Record{}
		for k, v := range row {
			rec[strings.ToLower(strings.TrimSpace(k))] = cellString(v)
		}
		out = append(out, rec)
	}
	cols := make([]string, 0, len(sd.Columns))
	for _, c := range sd.Columns {
		cols = append(cols, strings.ToLower(strings.TrimSpace(c)))
	}
	return out, cols, nil
}

// Load returns a copy of the current table.
func (s *Store) Load(_ context.Context) (sheets.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table.Clone()
	t.Version = strconv.FormatInt(s.version, 10)
	return t, nil
}

// Replace swaps in t, refusing a stale version.
func (s *Store) Replace(_ context.Context, t sheets.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.Version != "" && t.Version != strconv.FormatInt(s.version, 10) {
		return fmt.Errorf("memory store at version %d, write based on %s: %w", s.version, t.Version, core.ErrConcurrentModification)
	}
	next := t.Clone()
	next.Version = ""
	if len(next.Columns) == 0 {
		next.Columns = append([]string(nil), sheets.DefaultColumns...)
	}
	kept := next.Rows[:0]
	for _, r := range next.Rows {
		if !r.IsEmpty() {
			kept = append(kept, r)
		}
	}
	next.Rows = kept
	s.table = next
	s.version++
	return nil
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

package watchlist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"stockwatch/internal/symbol"
)

func tmpPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "watchlist.json")
}

func TestOpen_MissingFileYieldsDefaults(t *testing.T) {
	s, err := Open(tmpPath(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got := s.Strings()
	if len(got) != 1 || got[0] != "sh000001" {
		t.Fatalf("got %v", got)
	}
}

func TestOpen_ValidStorePreservedInOrder(t *testing.T) {
	path := tmpPath(t)
	writeStore(t, path, []string{"sz000001", "sh600519", "bj430047"})

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got := s.Strings()
	want := []string{"sz000001", "sh600519", "bj430047"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order lost: got %v", got)
		}
	}
}

func TestOpen_InvalidEntryResetsToDefaults(t *testing.T) {
	path := tmpPath(t)
	writeStore(t, path, []string{"sh600519", "not-a-code"})

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got := s.Strings()
	if len(got) != 1 || got[0] != "sh000001" {
		t.Fatalf("expected reset to defaults, got %v", got)
	}

	// The healed list is persisted.
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var f fileFormat
	if err := json.Unmarshal(b, &f); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(f.Stocks) != 1 || f.Stocks[0] != "sh000001" {
		t.Fatalf("file not healed: %v", f.Stocks)
	}
}

func TestOpen_CorruptJSONResetsToDefaults(t *testing.T) {
	path := tmpPath(t)
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open must never refuse to start: %v", err)
	}
	got := s.Strings()
	if len(got) != 1 || got[0] != "sh000001" {
		t.Fatalf("got %v", got)
	}
}

func TestOpen_UppercaseEntriesLowercased(t *testing.T) {
	path := tmpPath(t)
	writeStore(t, path, []string{"SH600519"})
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got := s.Strings()
	if len(got) != 1 || got[0] != "sh600519" {
		t.Fatalf("got %v", got)
	}
}

func TestAddRemoveClear(t *testing.T) {
	path := tmpPath(t)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := s.Add(symbol.MustParse("sh600519")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(symbol.MustParse("sh600519")); err != ErrDuplicate {
		t.Fatalf("duplicate add: err=%v", err)
	}
	if got := s.Strings(); len(got) != 2 {
		t.Fatalf("after add: %v", got)
	}

	removed, err := s.Remove(symbol.MustParse("sh000001"))
	if err != nil || !removed {
		t.Fatalf("remove: removed=%v err=%v", removed, err)
	}
	removed, err = s.Remove(symbol.MustParse("sz999999"))
	if err != nil || removed {
		t.Fatalf("remove absent: removed=%v err=%v", removed, err)
	}

	// Changes survive a reopen.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := s2.Strings(); len(got) != 1 || got[0] != "sh600519" {
		t.Fatalf("persisted: %v", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := s.Strings(); len(got) != 0 {
		t.Fatalf("after clear: %v", got)
	}
}

func TestCodes_ParsedForm(t *testing.T) {
	s, err := Open(tmpPath(t))
	if err != nil {
		t.Fatal(err)
	}
	codes := s.Codes()
	if len(codes) != 1 || codes[0].Market() != "sh" || codes[0].Number() != "000001" {
		t.Fatalf("codes: %v", codes)
	}
}

func writeStore(t *testing.T, path string, stocks []string) {
	t.Helper()
	b, err := json.Marshal(fileFormat{Stocks: stocks})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}

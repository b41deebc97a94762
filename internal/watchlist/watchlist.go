// Package watchlist persists the ordered set of watched canonical codes.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"stockwatch/internal/symbol"
)

// DefaultCodes seeds a fresh or corrupted store. sh000001 is the Shanghai
// composite index.
var DefaultCodes = []string{"sh000001"}

var ErrDuplicate = errors.New("watchlist: code already present")

type fileFormat struct {
	Stocks []string `json:"stocks"`
}

// Store is a JSON-file-backed watch-list. Entries are canonical lowercase
// codes, ordered, deduplicated. Loading never fails on bad content: invalid
// data resets to DefaultCodes rather than refusing to start.
type Store struct {
	path string

	mu    sync.Mutex
	codes []string
}

// Open reads the store at path. A missing file yields the default list
// without creating the file; a malformed file or one with invalid entries is
// reset to the defaults on disk.
func Open(path string) (*Store, error) {
	s := &Store{path: path, codes: append([]string(nil), DefaultCodes...)}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watchlist: read %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(b, &f); err != nil {
		// Corrupted store: heal to defaults.
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	valid := make([]string, 0, len(f.Stocks))
	seen := make(map[string]struct{}, len(f.Stocks))
	for _, raw := range f.Stocks {
		c := strings.ToLower(strings.TrimSpace(raw))
		if !symbol.IsValid(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		valid = append(valid, c)
	}

	// Mirror the upstream healing rule: any invalid entry resets the whole
	// list to the default, a partially-trusted store is not kept.
	if len(valid) == 0 || len(valid) != len(f.Stocks) {
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.codes = valid
	return s, nil
}

// Codes returns the current list as parsed canonical codes, in order.
func (s *Store) Codes() []symbol.Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]symbol.Code, 0, len(s.codes))
	for _, c := range s.codes {
		out = append(out, symbol.MustParse(c))
	}
	return out
}

// Strings returns a copy of the raw canonical strings, in order.
func (s *Store) Strings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.codes...)
}

// Add appends a code and persists. Duplicates return ErrDuplicate and leave
// the list untouched.
func (s *Store) Add(c symbol.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.codes {
		if existing == c.String() {
			return ErrDuplicate
		}
	}
	s.codes = append(s.codes, c.String())
	return s.save()
}

// Remove deletes a code and persists. It reports whether the code was
// present.
func (s *Store) Remove(c symbol.Code) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.codes {
		if existing == c.String() {
			s.codes = append(s.codes[:i], s.codes[i+1:]...)
			return true, s.save()
		}
	}
	return false, nil
}

// Clear empties the list and persists.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = []string{}
	return s.save()
}

// save must be called with mu held (or before the store is shared).
func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("watchlist: %w", err)
		}
	}
	b, err := json.MarshalIndent(fileFormat{Stocks: s.codes}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("watchlist: write %s: %w", s.path, err)
	}
	return nil
}

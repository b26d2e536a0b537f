// Package seenstore persists the bounded list of listing URLs already
// reported, the sole dedup authority across poll cycles.
package seenstore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"arodriguez/craigwatch/internal/listing"
	apperr "arodriguez/craigwatch/pkg/errors"
)

// Store holds normalized listing URLs in memory, most-recent-last. On disk
// the file has one URL per line, most-recent-first. Length never exceeds max
// after Save; the oldest entries are evicted first.
type Store struct {
	path    string
	max     int
	entries []string
	index   map[string]struct{}
}

// New creates an empty store backed by the given file path.
func New(path string, max int) *Store {
	return &Store{
		path:  path,
		max:   max,
		index: make(map[string]struct{}),
	}
}

// Load reads the persisted list. A missing file leaves the store empty and
// returns nil; any other read failure is returned as a persistence error for
// the caller to log, with the store still usable as empty.
func (s *Store) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.NewPersistence(s.path, "failed to open seen-listing file", err)
	}
	defer f.Close()

	// File order is most-recent-first; reverse while loading so memory
	// stays most-recent-last.
	var fromDisk []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fromDisk = append(fromDisk, listing.NormalizeURL(line))
	}
	if err := scanner.Err(); err != nil {
		return apperr.NewPersistence(s.path, "failed to read seen-listing file", err)
	}

	for i := len(fromDisk) - 1; i >= 0; i-- {
		s.add(fromDisk[i])
	}
	return nil
}

// Contains reports whether the URL was already reported in a previous cycle.
func (s *Store) Contains(rawURL string) bool {
	_, ok := s.index[listing.NormalizeURL(rawURL)]
	return ok
}

// Add appends a URL as the most recent entry. Duplicates are ignored.
func (s *Store) Add(rawURL string) {
	s.add(listing.NormalizeURL(rawURL))
}

func (s *Store) add(normalized string) {
	if normalized == "" {
		return
	}
	if _, ok := s.index[normalized]; ok {
		return
	}
	s.index[normalized] = struct{}{}
	s.entries = append(s.entries, normalized)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns the stored URLs, most-recent-last.
func (s *Store) Entries() []string {
	return append([]string(nil), s.entries...)
}

// Save truncates the store to its maximum and rewrites the file atomically,
// most-recent-first. Called once per cycle; a failure here is logged by the
// caller and never aborts the cycle.
func (s *Store) Save() error {
	s.truncate()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return apperr.NewPersistence(s.path, "failed to create temp file", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if _, err := w.WriteString(s.entries[i] + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return apperr.NewPersistence(s.path, "failed to write seen-listing file", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.NewPersistence(s.path, "failed to flush seen-listing file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.NewPersistence(s.path, "failed to close temp file", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return apperr.NewPersistence(s.path, "failed to replace seen-listing file", err)
	}
	return nil
}

// truncate drops the oldest entries so at most max remain.
func (s *Store) truncate() {
	if s.max < 1 || len(s.entries) <= s.max {
		return
	}
	dropped := s.entries[:len(s.entries)-s.max]
	for _, entry := range dropped {
		delete(s.index, entry)
	}
	s.entries = append([]string(nil), s.entries[len(s.entries)-s.max:]...)
}

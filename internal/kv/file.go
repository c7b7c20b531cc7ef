// internal/kv/file.go
//
// File-backed Store: one file per key under a base directory, so player
// progress and statistics survive process restarts. Keys are sanitized into
// file names; values are written whole and replaced atomically enough for a
// single-writer server (write temp, rename).
//
// Failure policy matches the Store contract: unreadable or missing files are
// reported as absent, write errors are logged and otherwise dropped.

package kv

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type fileStore struct {
	dir string
	mu  sync.Mutex // serializes writes; reads go straight to disk
}

// NewFile constructs a Store rooted at dir, creating it if needed.
func NewFile(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{dir: dir}, nil
}

// fileName maps a key to a safe file name. Keys only contain letters,
// digits, '-' and '_' in practice; anything else is folded to '_'.
func (f *fileStore) fileName(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, key)
	return filepath.Join(f.dir, safe+".json")
}

func (f *fileStore) Get(key string) (string, bool) {
	b, err := os.ReadFile(f.fileName(key))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (f *fileStore) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	target := f.fileName(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kv write")
		return
	}
	if err := os.Rename(tmp, target); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("kv rename")
	}
}

func (f *fileStore) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.fileName(key)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("key", key).Msg("kv remove")
	}
}

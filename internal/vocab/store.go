package vocab

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// fileFormat is the on-disk shape of the vocabulary file.
type fileFormat struct {
	Phrases []string `toml:"phrases"`
}

// Store owns the custom-vocabulary phrase list. The in-memory list is the
// source of truth during a session; the TOML file is the source of truth
// across restarts. All mutations serialize through one mutex and rewrite the
// file in full.
type Store struct {
	path string
	log  zerolog.Logger

	mu      sync.Mutex
	phrases []string
}

// NewStore creates a store backed by the TOML file at path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads the phrase list from disk. A missing file is an empty list, not
// an error. A malformed file is treated as empty with a logged warning.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		s.phrases = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read vocabulary file: %w", err)
	}

	var f fileFormat
	if err := toml.Unmarshal(data, &f); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("malformed vocabulary file, starting empty")
		s.mu.Lock()
		s.phrases = nil
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.phrases = normalize(f.Phrases)
	s.mu.Unlock()
	s.log.Debug().Int("phrases", len(f.Phrases)).Str("path", s.path).Msg("vocabulary loaded")
	return nil
}

// Add appends a phrase and persists. Returns false if the phrase is empty or
// already present (membership is idempotent). A failed write is logged and
// the in-memory list stays authoritative; the next mutation rewrites the
// whole file anyway.
func (s *Store) Add(phrase string) bool {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.phrases {
		if p == phrase {
			return false
		}
	}
	s.phrases = append(s.phrases, phrase)
	s.persistLocked()
	return true
}

// Remove deletes a phrase and persists. Returns false if absent.
func (s *Store) Remove(phrase string) bool {
	phrase = strings.TrimSpace(phrase)

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.phrases {
		if p == phrase {
			s.phrases = append(s.phrases[:i], s.phrases[i+1:]...)
			s.persistLocked()
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current list, safe to hand into a
// transcription request while edits continue.
func (s *Store) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.phrases))
	copy(out, s.phrases)
	return out
}

// persistLocked rewrites the whole file so it always reflects the in-memory
// list. Caller holds s.mu.
func (s *Store) persistLocked() {
	f := fileFormat{Phrases: s.phrases}
	if f.Phrases == nil {
		f.Phrases = []string{}
	}
	data, err := toml.Marshal(f)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal vocabulary")
		return
	}
	if dir := filepath.Dir(s.path); dir != "." {
		os.MkdirAll(dir, 0o755)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("write vocabulary file")
	}
}

// Watch reloads the list when the file changes on disk, so edits made outside
// the process win over stale in-memory state. Blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files, which drops a watch on the
	// file itself.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target, _ := filepath.Abs(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.Load(); err != nil {
				s.log.Warn().Err(err).Msg("vocabulary reload failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("vocabulary watcher error")
		}
	}
}

// normalize trims, drops empties, and collapses duplicates preserving order.
func normalize(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

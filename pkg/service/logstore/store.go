package logstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/uxlens/pkg/domain/model"
	"github.com/secmon-lab/uxlens/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// Store is a read-through cache of the canonical log file, keyed by the
// file's modification time. Entries and mtime are always published together.
type Store struct {
	path string

	mu    sync.RWMutex
	cache *snapshot

	group singleflight.Group
}

type snapshot struct {
	entries []*model.LogEntry
	modTime time.Time
}

// New creates a store for the log file at path. Nothing is read until the
// first Read.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the canonical log file path
func (s *Store) Path() string {
	return s.path
}

// Reset drops the cached snapshot so the next Read reloads
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}

// Read returns the validated entries of the log file. The file is reloaded
// when force is set, when its modification time differs from the cached one,
// or when nothing is cached yet.
func (s *Store) Read(ctx context.Context, force bool) ([]*model.LogEntry, error) {
	entries, _, err := s.Refresh(ctx, force)
	return entries, err
}

// Refresh behaves like Read and also reports whether this call reloaded the
// file
func (s *Store) Refresh(ctx context.Context, force bool) ([]*model.LogEntry, bool, error) {
	snap, reloaded, err := s.load(ctx, force)
	if err != nil {
		return nil, false, err
	}
	return copyEntries(snap.entries), reloaded, nil
}

// Snapshot behaves like Read and also returns the modification time the
// entries were loaded from. Both values come from the same snapshot.
func (s *Store) Snapshot(ctx context.Context, force bool) ([]*model.LogEntry, time.Time, error) {
	snap, _, err := s.load(ctx, force)
	if err != nil {
		return nil, time.Time{}, err
	}
	return copyEntries(snap.entries), snap.modTime, nil
}

func (s *Store) load(ctx context.Context, force bool) (*snapshot, bool, error) {
	info, err := s.stat()
	if err != nil {
		return nil, false, err
	}

	if !force {
		s.mu.RLock()
		cached := s.cache
		s.mu.RUnlock()
		if cached != nil && cached.modTime.Equal(info.ModTime()) {
			return cached, false, nil
		}
	}

	v, err, _ := s.group.Do(s.path, func() (any, error) {
		return s.reload(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*snapshot), true, nil
}

// ModTime returns the modification time of the cached snapshot, or zero
func (s *Store) ModTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cache == nil {
		return time.Time{}
	}
	return s.cache.modTime
}

func (s *Store) stat() (fs.FileInfo, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrLogFileNotFound, "canonical log file does not exist", goerr.V(PathKey, s.path))
		}
		return nil, goerr.Wrap(err, "failed to stat log file", goerr.V(PathKey, s.path))
	}
	return info, nil
}

func (s *Store) reload(ctx context.Context) (*snapshot, error) {
	info, err := s.stat()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrLogFileNotFound, "canonical log file does not exist", goerr.V(PathKey, s.path))
		}
		return nil, goerr.Wrap(err, "failed to read log file", goerr.V(PathKey, s.path))
	}

	entries, err := Decode(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load log file", goerr.V(PathKey, s.path))
	}

	snap := &snapshot{entries: entries, modTime: info.ModTime()}
	s.mu.Lock()
	s.cache = snap
	s.mu.Unlock()

	logging.From(ctx).Info("reloaded log file",
		"path", s.path,
		"entries", len(entries),
		"mtime", snap.modTime,
	)
	return snap, nil
}

// Decode strictly parses a canonical log document: a JSON array whose every
// element is a valid LogEntry. The first invalid element fails the whole
// document.
func Decode(data []byte) ([]*model.LogEntry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if json.Valid(data) {
			return nil, goerr.Wrap(ErrNotArray, "top-level value must be an array")
		}
		return nil, goerr.Wrap(ErrInvalidJSON, err.Error())
	}
	if raw == nil {
		return nil, goerr.Wrap(ErrNotArray, "top-level value must be an array")
	}

	entries := make([]*model.LogEntry, 0, len(raw))
	for i, elem := range raw {
		var entry model.LogEntry
		if err := json.Unmarshal(elem, &entry); err != nil {
			return nil, goerr.Wrap(ErrInvalidLogFormat, fmt.Sprintf("entry %d is not a LogEntry object: %v", i, err),
				goerr.V(IndexKey, i), goerr.V(CauseKey, err.Error()))
		}
		if err := entry.Validate(); err != nil {
			return nil, goerr.Wrap(ErrInvalidLogFormat, fmt.Sprintf("entry %d failed validation: %v", i, err),
				goerr.V(IndexKey, i), goerr.V(CauseKey, err.Error()))
		}
		entries = append(entries, &entry)
	}
	return entries, nil
}

func copyEntries(entries []*model.LogEntry) []*model.LogEntry {
	out := make([]*model.LogEntry, len(entries))
	copy(out, entries)
	return out
}

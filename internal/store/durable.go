// Excalidraw Canvas Server - Shared Diagram Element Store and Real-Time Sync
// Copyright 2026 Debu Sinha
// SPDX-License-Identifier: MIT
// https://github.com/debu-sinha/excalidraw-canvas-server

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/debu-sinha/excalidraw-canvas-server/internal/logging"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/metrics"
	"github.com/debu-sinha/excalidraw-canvas-server/internal/models"
)

// DurableStore wraps a MemoryStore with a debounced JSON snapshot on disk.
// Every mutation arms (or re-arms) a flush timer; when mutations stop for
// the debounce interval the whole canvas is written once. Writes go to a
// temp file in the same directory followed by an atomic rename, so a crash
// mid-write leaves the previous snapshot intact.
type DurableStore struct {
	*MemoryStore

	path     string
	debounce time.Duration

	flushMu sync.Mutex // serializes flushes and timer state
	timer   *time.Timer
	closed  bool
}

// NewDurableStore loads the snapshot at path (a missing file means an empty
// canvas) and returns a store that persists future mutations. A corrupt or
// unreadable snapshot is a hard error; silently starting empty would shadow
// the saved canvas and overwrite it on the next flush.
func NewDurableStore(path string, maxElements int, debounce time.Duration) (*DurableStore, error) {
	s := &DurableStore{
		MemoryStore: NewMemoryStore(maxElements),
		path:        path,
		debounce:    debounce,
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DurableStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		logging.Info().Str("path", s.path).Msg("No snapshot found, starting with empty canvas")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", s.path, err)
	}
	if snap.FormatVersion != models.SnapshotFormatVersion {
		return fmt.Errorf("snapshot %s has unsupported format version %d", s.path, snap.FormatVersion)
	}

	if err := s.MemoryStore.ReplaceAll(snap.Elements); err != nil {
		return fmt.Errorf("restore snapshot %s: %w", s.path, err)
	}

	logging.Info().
		Str("path", s.path).
		Int("elements", len(snap.Elements)).
		Time("saved_at", snap.SavedAt).
		Msg("Snapshot loaded")
	return nil
}

// Set persists after delegating.
func (s *DurableStore) Set(el *models.Element) error {
	if err := s.MemoryStore.Set(el); err != nil {
		return err
	}
	s.scheduleFlush()
	return nil
}

// Delete persists after delegating.
func (s *DurableStore) Delete(id string) error {
	if err := s.MemoryStore.Delete(id); err != nil {
		return err
	}
	s.scheduleFlush()
	return nil
}

// SetBatch persists after delegating.
func (s *DurableStore) SetBatch(els []*models.Element) error {
	if err := s.MemoryStore.SetBatch(els); err != nil {
		return err
	}
	s.scheduleFlush()
	return nil
}

// ReplaceAll persists after delegating.
func (s *DurableStore) ReplaceAll(els []*models.Element) error {
	if err := s.MemoryStore.ReplaceAll(els); err != nil {
		return err
	}
	s.scheduleFlush()
	return nil
}

// Clear persists after delegating.
func (s *DurableStore) Clear() {
	s.MemoryStore.Clear()
	s.scheduleFlush()
}

// scheduleFlush arms the debounce timer, restarting it if already armed so
// that a burst of mutations produces a single write.
func (s *DurableStore) scheduleFlush() {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Flush(); err != nil {
			logging.Error().Err(err).Str("path", s.path).Msg("Snapshot flush failed")
		}
	})
}

// Flush writes the current canvas to disk immediately.
func (s *DurableStore) Flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	return s.flushLocked()
}

func (s *DurableStore) flushLocked() error {
	start := time.Now()

	snap := models.Snapshot{
		FormatVersion: models.SnapshotFormatVersion,
		SavedAt:       time.Now().UTC(),
		Elements:      s.MemoryStore.List(nil),
	}

	data, err := json.Marshal(&snap)
	if err != nil {
		metrics.RecordSnapshotFlush(time.Since(start), 0, err)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.writeAtomic(data); err != nil {
		metrics.RecordSnapshotFlush(time.Since(start), 0, err)
		return err
	}

	metrics.RecordSnapshotFlush(time.Since(start), len(snap.Elements), nil)
	logging.Debug().
		Str("path", s.path).
		Int("elements", len(snap.Elements)).
		Dur("duration", time.Since(start)).
		Msg("Snapshot flushed")
	return nil
}

// writeAtomic writes to a temp file in the snapshot's directory, fsyncs and
// renames it over the previous snapshot.
func (s *DurableStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

// Close cancels any pending timer and performs a final synchronous flush.
func (s *DurableStore) Close() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.flushLocked()
}

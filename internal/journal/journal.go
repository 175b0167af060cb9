// Package journal records successful placements so a run can be listed
// and undone.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dinghy6/sabnzbd-scripts/internal/types"
	"github.com/google/uuid"
)

const FileName = "journal.json"

// Manager stores journal entries in a JSON file. Entries recorded through
// one Manager share a run ID.
type Manager struct {
	path  string
	runID string
	mu    sync.Mutex
	now   func() time.Time
}

var _ types.Journal = (*Manager)(nil)

// New creates a journal stored under dir
func New(dir string) *Manager {
	return &Manager{
		path:  filepath.Join(dir, FileName),
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

// Path returns the journal file location
func (m *Manager) Path() string {
	return m.path
}

// RunID identifies the entries recorded by this manager
func (m *Manager) RunID() string {
	return m.runID
}

// Record appends a successful placement. Dry-run and no-op operations are ignored.
func (m *Manager) Record(ctx context.Context, op types.Operation) error {
	if op.DryRun || op.Status != types.StatusSuccess || op.Action == types.ActionNone {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return err
	}
	entries = append(entries, types.JournalEntry{
		ID:           uuid.NewString(),
		RunID:        m.runID,
		SourcePath:   op.SourcePath,
		TargetPath:   op.TargetPath,
		ReplacedPath: op.ReplacedPath,
		Action:       op.Action,
		Timestamp:    m.now(),
	})
	return m.save(entries)
}

// ListAll returns every recorded entry, oldest first
func (m *Manager) ListAll(ctx context.Context) ([]types.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

// LastRun returns the entries of the most recent run, newest first
func (m *Manager) LastRun(ctx context.Context) ([]types.JournalEntry, error) {
	entries, err := m.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, types.ErrJournalEmpty{}
	}

	last := entries[len(entries)-1].RunID
	var run []types.JournalEntry
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].RunID == last {
			run = append(run, entries[i])
		}
	}
	return run, nil
}

// Forget removes the entries with the given IDs
func (m *Manager) Forget(ctx context.Context, ids ...string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.load()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	return m.save(kept)
}

// Clean removes all recorded entries
func (m *Manager) Clean(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return types.ErrIO{Op: "remove", Path: m.path, Err: err}
	}
	return nil
}

func (m *Manager) load() ([]types.JournalEntry, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return []types.JournalEntry{}, nil
	}
	if err != nil {
		return nil, types.ErrIO{Op: "read", Path: m.path, Err: err}
	}

	var entries []types.JournalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse journal %s: %w", m.path, err)
	}
	return entries, nil
}

// save replaces the journal through a temporary file
func (m *Manager) save(entries []types.JournalEntry) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return types.ErrIO{Op: "mkdir", Path: filepath.Dir(m.path), Err: err}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal journal: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return types.ErrIO{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return types.ErrIO{Op: "write", Path: m.path, Err: err}
	}
	return nil
}

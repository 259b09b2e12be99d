// Package state persists what outlives a session: the last volume and
// per-file resume positions.
package state

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "soundplay"
	dbFileName   = "state.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db        *sql.DB
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Resume
}

// Open opens the database at path, or at the XDG data location when path is
// empty.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		if path, err = getDBPath(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 2000`); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		_ = saveResume(m.db, *pending)
	}

	return m.db.Close()
}

// GetResume returns the saved position for path, or nil.
func (m *Manager) GetResume(path string) (*Resume, error) {
	m.saveMu.Lock()
	if m.pending != nil && m.pending.Path == path {
		r := *m.pending
		m.saveMu.Unlock()
		return &r, nil
	}
	m.saveMu.Unlock()
	return getResume(m.db, path)
}

// SaveResume records the position for path. Writes are debounced; Close
// flushes the last one.
func (m *Manager) SaveResume(path string, position, duration time.Duration) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &Resume{
		Path:      path,
		Position:  position,
		Duration:  duration,
		UpdatedAt: time.Now(),
	}

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveResume(m.db, *pending)
		}
	})
}

// ClearResume forgets the position for path, including an unsaved one.
func (m *Manager) ClearResume(path string) error {
	m.saveMu.Lock()
	if m.pending != nil && m.pending.Path == path {
		m.pending = nil
	}
	m.saveMu.Unlock()
	return deleteResume(m.db, path)
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

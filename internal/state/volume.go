package state

import (
	"database/sql"
	"errors"
)

// VolumeState represents the saved volume state.
type VolumeState struct {
	Volume float64
	Muted  bool
}

// GetVolume returns the saved volume state, or nil when none was saved yet.
func (m *Manager) GetVolume() (*VolumeState, error) {
	var v VolumeState

	row := m.db.QueryRow(`SELECT volume, muted FROM volume_state WHERE id = 1`)
	err := row.Scan(&v.Volume, &v.Muted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nothing saved is valid on first run
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// SaveVolume persists the volume level and mute flag.
func (m *Manager) SaveVolume(volume float64, muted bool) error {
	_, err := m.db.Exec(`
		INSERT INTO volume_state (id, volume, muted)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted
	`, max(volume, 0), muted)
	return err
}

package state

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/soundplay/internal/db"
)

// maxResumeEntries bounds the resume table; the oldest entries are pruned.
const maxResumeEntries = 500

// Resume is the saved position of one file.
type Resume struct {
	Path      string
	Position  time.Duration
	Duration  time.Duration
	UpdatedAt time.Time
}

func getResume(db *sql.DB, path string) (*Resume, error) {
	row := db.QueryRow(`
		SELECT position_ms, duration_ms, updated_at
		FROM resume_positions WHERE path = ?
	`, path)

	var posMS, durMS, updated int64
	err := row.Scan(&posMS, &durMS, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved position is the common case
	}
	if err != nil {
		return nil, err
	}

	return &Resume{
		Path:      path,
		Position:  time.Duration(posMS) * time.Millisecond,
		Duration:  time.Duration(durMS) * time.Millisecond,
		UpdatedAt: time.Unix(updated, 0),
	}, nil
}

func saveResume(db *sql.DB, r Resume) error {
	return dbutil.WithTx(db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO resume_positions (path, position_ms, duration_ms, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				position_ms = excluded.position_ms,
				duration_ms = excluded.duration_ms,
				updated_at = excluded.updated_at
		`, r.Path, r.Position.Milliseconds(), r.Duration.Milliseconds(), r.UpdatedAt.Unix())
		if err != nil {
			return err
		}
		return pruneResume(tx, maxResumeEntries)
	})
}

func deleteResume(db *sql.DB, path string) error {
	_, err := db.Exec(`DELETE FROM resume_positions WHERE path = ?`, path)
	return err
}

func pruneResume(ex dbutil.Execer, keep int) error {
	_, err := ex.Exec(`
		DELETE FROM resume_positions WHERE path NOT IN (
			SELECT path FROM resume_positions ORDER BY updated_at DESC, path LIMIT ?
		)
	`, keep)
	return err
}

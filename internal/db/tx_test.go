package db

import (
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE positions (path TEXT PRIMARY KEY, ms INTEGER)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func count(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM positions`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func insert(ex Execer, path string, ms int) error {
	_, err := ex.Exec(`INSERT INTO positions (path, ms) VALUES (?, ?)`, path, ms)
	return err
}

func TestWithTx_Commits(t *testing.T) {
	db := setupTestDB(t)

	err := WithTx(db, func(tx *sql.Tx) error {
		if err := insert(tx, "/a.flac", 1000); err != nil {
			return err
		}
		return insert(tx, "/b.flac", 2000)
	})

	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if n := count(t, db); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	testErr := errors.New("test error")

	err := WithTx(db, func(tx *sql.Tx) error {
		if err := insert(tx, "/a.flac", 1000); err != nil {
			return err
		}
		return testErr
	})

	if !errors.Is(err, testErr) {
		t.Errorf("WithTx error = %v, want %v", err, testErr)
	}
	if n := count(t, db); n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestWithTx_RollsBackOnConstraint(t *testing.T) {
	db := setupTestDB(t)
	if err := insert(db, "/a.flac", 1000); err != nil {
		t.Fatal(err)
	}

	err := WithTx(db, func(tx *sql.Tx) error {
		if err := insert(tx, "/b.flac", 2000); err != nil {
			return err
		}
		return insert(tx, "/a.flac", 3000)
	})

	if err == nil {
		t.Fatal("WithTx should fail on duplicate key")
	}
	if n := count(t, db); n != 1 {
		t.Errorf("count = %d, want 1 (partial work rolled back)", n)
	}
}

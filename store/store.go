// Package store provides SQLite-backed named environment snapshots, so
// long runs can be checkpointed and resumed without juggling JSON files.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/scstack/evogrid/sim"
)

// ErrNoSnapshot signals that no snapshot exists under the given name.
var ErrNoSnapshot = errors.New("snapshot not found")

// Store wraps a SQLite connection holding environment snapshots.
type Store struct {
	conn *sqlx.DB
}

// SnapshotInfo describes one stored snapshot.
type SnapshotInfo struct {
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	Tick      int       `db:"tick"`
	Creatures int       `db:"creatures"`
}

// Open opens or creates a snapshot database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		tick INTEGER NOT NULL,
		creatures INTEGER NOT NULL,
		data BLOB NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Save stores the environment under name, replacing any previous
// snapshot with that name.
func (s *Store) Save(name string, env *sim.Environment) error {
	data, err := env.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize environment: %w", err)
	}

	_, err = s.conn.Exec(
		`INSERT OR REPLACE INTO snapshots (name, created_at, tick, creatures, data) VALUES (?, ?, ?, ?, ?)`,
		name, time.Now().UTC(), env.TimeStep, env.NumCreatures, data,
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}
	return nil
}

// Load reconstructs a stored environment, attaching rng for subsequent
// ticks.
func (s *Store) Load(name string, rng *rand.Rand) (*sim.Environment, error) {
	var data []byte
	err := s.conn.Get(&data, `SELECT data FROM snapshots WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %q: %w", name, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", name, err)
	}
	return sim.FromJSON(data, rng)
}

// List returns all stored snapshots, newest first.
func (s *Store) List() ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := s.conn.Select(&infos,
		`SELECT name, created_at, tick, creatures FROM snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}

// Delete removes a stored snapshot. Deleting a missing name is not an
// error.
func (s *Store) Delete(name string) error {
	if _, err := s.conn.Exec(`DELETE FROM snapshots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	return nil
}

// Package storage provides SQLite-based persistence for avalanche records and
// field snapshots. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// AvalancheEntry is one recorded avalanche.
type AvalancheEntry struct {
	ID          int64
	SimID       string
	Generations uint64
	Topples     int
	Lost        int
	CreatedAt   time.Time
}

// SnapshotEntry is a saved field. Data holds the binary snapshot encoding and
// is only populated by the single-snapshot lookups.
type SnapshotEntry struct {
	ID         int64
	SimID      string
	Name       string
	Width      int
	Height     int
	Generation uint64
	Grains     uint64
	Data       []byte
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS avalanches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sim_id TEXT NOT NULL,
			generations INTEGER NOT NULL,
			topples INTEGER NOT NULL,
			lost INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_avalanches_sim_id ON avalanches(sim_id);
		CREATE INDEX IF NOT EXISTS idx_avalanches_top ON avalanches(sim_id, topples DESC);

		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sim_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			generation INTEGER NOT NULL DEFAULT 0,
			grains INTEGER NOT NULL DEFAULT 0,
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_sim_id ON snapshots(sim_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveAvalanche records a settled avalanche for the given simulation.
// Returns the ID of the inserted record.
func (s *Store) SaveAvalanche(simID string, generations uint64, topples, lost int) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO avalanches (sim_id, generations, topples, lost) VALUES (?, ?, ?, ?)",
		simID, int64(generations), topples, lost,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save avalanche: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopAvalanches retrieves the N largest avalanches for the given simulation.
// Results are ordered by topples, then generations, descending.
func (s *Store) TopAvalanches(simID string, limit int) ([]AvalancheEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, sim_id, generations, topples, lost, created_at
		 FROM avalanches
		 WHERE sim_id = ?
		 ORDER BY topples DESC, generations DESC, id ASC
		 LIMIT ?`,
		simID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query avalanches: %w", err)
	}
	defer rows.Close()

	var entries []AvalancheEntry
	for rows.Next() {
		var e AvalancheEntry
		var generations int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SimID, &generations, &e.Topples, &e.Lost, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Generations = uint64(generations)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// LargestAvalanche returns the highest topple count for the given simulation.
// Returns 0 if no avalanches exist.
func (s *Store) LargestAvalanche(simID string) (int, error) {
	var topples sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(topples) FROM avalanches WHERE sim_id = ?",
		simID,
	).Scan(&topples)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query largest avalanche: %w", err)
	}

	if !topples.Valid {
		return 0, nil
	}

	return int(topples.Int64), nil
}

// ClearAvalanches deletes all avalanche records for the given simulation.
func (s *Store) ClearAvalanches(simID string) error {
	_, err := s.db.Exec("DELETE FROM avalanches WHERE sim_id = ?", simID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear avalanches: %w", err)
	}
	return nil
}

// SaveSnapshot stores a field snapshot. Returns the ID of the inserted record.
func (s *Store) SaveSnapshot(e SnapshotEntry) (int64, error) {
	if len(e.Data) == 0 {
		return 0, errors.New("storage: cannot save empty snapshot")
	}

	res, err := s.db.Exec(
		`INSERT INTO snapshots (sim_id, name, width, height, generation, grains, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SimID, e.Name, e.Width, e.Height, int64(e.Generation), int64(e.Grains), e.Data,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save snapshot: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// LatestSnapshot returns the most recently saved snapshot for a simulation,
// or nil if there is none.
func (s *Store) LatestSnapshot(simID string) (*SnapshotEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, sim_id, name, width, height, generation, grains, data, created_at
		 FROM snapshots
		 WHERE sim_id = ?
		 ORDER BY id DESC
		 LIMIT 1`,
		simID,
	)
	return scanSnapshot(row)
}

// SnapshotByID retrieves a snapshot by its ID, or nil if it does not exist.
func (s *Store) SnapshotByID(id int64) (*SnapshotEntry, error) {
	row := s.db.QueryRow(
		`SELECT id, sim_id, name, width, height, generation, grains, data, created_at
		 FROM snapshots
		 WHERE id = ?`,
		id,
	)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*SnapshotEntry, error) {
	var e SnapshotEntry
	var generation, grains int64
	var createdAt any

	err := row.Scan(&e.ID, &e.SimID, &e.Name, &e.Width, &e.Height, &generation, &grains, &e.Data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query snapshot: %w", err)
	}

	e.Generation = uint64(generation)
	e.Grains = uint64(grains)
	e.CreatedAt = parseTime(createdAt)
	return &e, nil
}

// ListSnapshots returns snapshot metadata, newest first. An empty simID lists
// every simulation. Data is left nil.
func (s *Store) ListSnapshots(simID string, limit int) ([]SnapshotEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, sim_id, name, width, height, generation, grains, created_at
		 FROM snapshots
		 WHERE ? = '' OR sim_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		simID, simID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query snapshots: %w", err)
	}
	defer rows.Close()

	var entries []SnapshotEntry
	for rows.Next() {
		var e SnapshotEntry
		var generation, grains int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SimID, &e.Name, &e.Width, &e.Height, &generation, &grains, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Generation = uint64(generation)
		e.Grains = uint64(grains)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// DeleteSnapshot removes a snapshot by ID.
func (s *Store) DeleteSnapshot(id int64) error {
	_, err := s.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete snapshot: %w", err)
	}
	return nil
}

// SimStats contains aggregated avalanche statistics for a simulation.
type SimStats struct {
	SimID          string
	Avalanches     int
	MaxTopples     int
	MaxGenerations uint64
	AvgTopples     float64
	TotalLost      int64
	LastSeen       time.Time
}

// GetSimStats retrieves aggregated statistics for a specific simulation.
func (s *Store) GetSimStats(simID string) (*SimStats, error) {
	stats := &SimStats{SimID: simID}

	var maxGen int64
	var lastSeen any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(topples), 0), COALESCE(MAX(generations), 0),
		        COALESCE(AVG(topples), 0), COALESCE(SUM(lost), 0), MAX(created_at)
		 FROM avalanches WHERE sim_id = ?`,
		simID,
	).Scan(&stats.Avalanches, &stats.MaxTopples, &maxGen, &stats.AvgTopples, &stats.TotalLost, &lastSeen)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get sim stats: %w", err)
	}
	stats.MaxGenerations = uint64(maxGen)
	stats.LastSeen = parseTime(lastSeen)

	return stats, nil
}

// GetAllSimStats retrieves statistics for every simulation with records.
func (s *Store) GetAllSimStats() (map[string]*SimStats, error) {
	rows, err := s.db.Query(
		`SELECT sim_id, COUNT(*), MAX(topples), MAX(generations), AVG(topples), SUM(lost), MAX(created_at)
		 FROM avalanches
		 GROUP BY sim_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all sim stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*SimStats)
	for rows.Next() {
		var st SimStats
		var maxGen int64
		var lastSeen any
		if err := rows.Scan(&st.SimID, &st.Avalanches, &st.MaxTopples, &maxGen, &st.AvgTopples, &st.TotalLost, &lastSeen); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.MaxGenerations = uint64(maxGen)
		st.LastSeen = parseTime(lastSeen)
		stats[st.SimID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// parseTime handles created_at values returned as either time.Time or text.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

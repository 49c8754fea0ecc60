// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package tspstore persists query results to SQLite: WAL-mode open,
// batched transactional inserts, and indexed range queries over
// emitted pattern-tree results.
package tspstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Result is one projected value a query driver produced for a single
// emitted interval, tagged with the partition key it belongs to.
type Result struct {
	PartitionKey string    `json:"partition_key"`
	Start        uint64    `json:"start"`
	End          uint64    `json:"end"`
	Success      bool      `json:"success"`
	Value        string    `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Store handles persistence of query results to SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the result database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("tspstore: failed to open result db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		partition_key TEXT NOT NULL,
		start_idx INTEGER NOT NULL,
		end_idx INTEGER NOT NULL,
		success INTEGER NOT NULL,
		value TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		UNIQUE(partition_key, start_idx, end_idx)
	);
	CREATE INDEX IF NOT EXISTS idx_results_key ON results(partition_key);
	CREATE INDEX IF NOT EXISTS idx_results_time ON results(recorded_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordResults persists a batch of results in one transaction.
// Results with an identical (partition_key, start, end) triple replace
// the earlier row: the query driver never re-emits an interval once
// committed, but a replayed run should overwrite rather than duplicate.
func (s *Store) RecordResults(results []Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO results (partition_key, start_idx, end_idx, success, value, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(partition_key, start_idx, end_idx) DO UPDATE SET
			success = excluded.success,
			value = excluded.value,
			recorded_at = excluded.recorded_at
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range results {
		success := 0
		if r.Success {
			success = 1
		}
		if _, err := stmt.Exec(r.PartitionKey, r.Start, r.End, success, r.Value, r.RecordedAt.Unix()); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// GetResults returns every result for key whose interval overlaps
// [from, to], ordered by start index.
func (s *Store) GetResults(key string, from, to uint64) ([]Result, error) {
	rows, err := s.db.Query(`
		SELECT partition_key, start_idx, end_idx, success, value, recorded_at
		FROM results
		WHERE partition_key = ? AND start_idx <= ? AND end_idx >= ?
		ORDER BY start_idx ASC
	`, key, to, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetLatest returns the most recently recorded limit results across
// every partition key.
func (s *Store) GetLatest(limit int) ([]Result, error) {
	rows, err := s.db.Query(`
		SELECT partition_key, start_idx, end_idx, success, value, recorded_at
		FROM results
		ORDER BY recorded_at DESC, start_idx DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanResults(rows)
}

// Cleanup removes results recorded before the retention window.
func (s *Store) Cleanup(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).Unix()
	res, err := s.db.Exec("DELETE FROM results WHERE recorded_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var out []Result
	for rows.Next() {
		var r Result
		var success int
		var ts int64
		if err := rows.Scan(&r.PartitionKey, &r.Start, &r.End, &success, &r.Value, &ts); err != nil {
			return nil, err
		}
		r.Success = success != 0
		r.RecordedAt = time.Unix(ts, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

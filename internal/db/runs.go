package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Run is one recorded generate run
type Run struct {
	ID        int64
	StartedAt time.Time
	Hosts     int
	Selected  int
}

// AssignmentRecord is one data device of a recorded run
type AssignmentRecord struct {
	HostUUID    string
	Position    int
	DeviceName  string
	DevicePath  string
	JournalPath string
}

// RecordRun stores a run and its assignments, returning the run ID
func (d *DB) RecordRun(startedAt time.Time, hosts int, assignments []AssignmentRecord) (int64, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}

	result, err := tx.Exec("INSERT INTO runs (started_at, hosts, selected) VALUES (?, ?, ?)",
		startedAt.Unix(), hosts, len(assignments))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	for _, a := range assignments {
		_, err := tx.Exec(`
			INSERT INTO assignments (run_id, host_uuid, position, device_name, device_path, journal_path)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, a.HostUUID, a.Position, a.DeviceName, a.DevicePath, nullString(a.JournalPath))
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to record assignment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// LatestRun returns the most recent run, nil if none has been recorded
func (d *DB) LatestRun() (*Run, error) {
	var run Run
	var startedAt int64
	err := d.conn.QueryRow(`
		SELECT id, started_at, hosts, selected FROM runs ORDER BY id DESC LIMIT 1
	`).Scan(&run.ID, &startedAt, &run.Hosts, &run.Selected)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	run.StartedAt = time.Unix(startedAt, 0)
	return &run, nil
}

// RunAssignments returns the assignments of a run grouped by host
func (d *DB) RunAssignments(runID int64) ([]AssignmentRecord, error) {
	rows, err := d.conn.Query(`
		SELECT host_uuid, position, device_name, device_path, journal_path
		FROM assignments WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var out []AssignmentRecord
	for rows.Next() {
		var a AssignmentRecord
		var journal sql.NullString
		if err := rows.Scan(&a.HostUUID, &a.Position, &a.DeviceName, &a.DevicePath, &journal); err != nil {
			return nil, err
		}
		a.JournalPath = journal.String
		out = append(out, a)
	}
	return out, rows.Err()
}

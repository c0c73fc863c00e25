package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SaveNodeList replaces the cached node list
func (d *DB) SaveNodeList(nodes []string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear node list: %w", err)
	}
	for i, node := range nodes {
		if _, err := tx.Exec("INSERT OR IGNORE INTO nodes (position, uuid) VALUES (?, ?)", i, node); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save node %s: %w", node, err)
		}
	}

	return tx.Commit()
}

// NodeList returns the cached node list in its original order
func (d *DB) NodeList() ([]string, error) {
	rows, err := d.conn.Query("SELECT uuid FROM nodes ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []string
	for rows.Next() {
		var node string
		if err := rows.Scan(&node); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// SaveRecord stores the raw introspection document of a node
func (d *DB) SaveRecord(nodeUUID string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := d.conn.Exec(`
		INSERT INTO records (uuid, data, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, nodeUUID, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Record returns the cached document of a node. ok is false when none is saved.
func (d *DB) Record(nodeUUID string) ([]byte, bool, error) {
	var data []byte
	err := d.conn.QueryRow("SELECT data FROM records WHERE uuid = ?", nodeUUID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query record: %w", err)
	}
	return data, true, nil
}

// RecordFetchedAt returns when a node's document was saved
func (d *DB) RecordFetchedAt(nodeUUID string) (time.Time, bool, error) {
	var ts int64
	err := d.conn.QueryRow("SELECT fetched_at FROM records WHERE uuid = ?", nodeUUID).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query record: %w", err)
	}
	return time.Unix(ts, 0), true, nil
}

// PurgeRecords deletes every cached document and returns how many were removed
func (d *DB) PurgeRecords() (int64, error) {
	result, err := d.conn.Exec("DELETE FROM records")
	if err != nil {
		return 0, fmt.Errorf("failed to purge records: %w", err)
	}
	return result.RowsAffected()
}

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"macrorec/recording"
)

// ErrNotFound is returned when no recording has the requested id.
var ErrNotFound = errors.New("recording not found")

// Recording is one stored macro: the persisted document plus its
// database identity.
type Recording struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	DurationMS int64     `json:"duration_ms"`
	EventCount int       `json:"event_count"`

	// Events is populated by GetRecording; list queries leave it nil.
	Events []recording.RecordedEvent `json:"events,omitempty"`
}

// SaveRecording stores a captured event stream under a fresh id.
func (db *DB) SaveRecording(name string, events []recording.RecordedEvent) (*Recording, error) {
	payload, err := json.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}

	rec := &Recording{
		ID:         uuid.NewString(),
		Name:       name,
		CreatedAt:  time.Now().UTC(),
		DurationMS: recording.Duration(events).Milliseconds(),
		EventCount: len(events),
		Events:     events,
	}

	query := `
		INSERT INTO recordings (id, name, created_at, duration_ms, event_count, events)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = db.conn.Exec(query,
		rec.ID, rec.Name, rec.CreatedAt, rec.DurationMS, rec.EventCount, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	return rec, nil
}

// GetRecording loads one recording, events included.
func (db *DB) GetRecording(id string) (*Recording, error) {
	query := `
		SELECT id, name, created_at, duration_ms, event_count, events
		FROM recordings
		WHERE id = ?
	`

	var rec Recording
	var payload string
	err := db.conn.QueryRow(query, id).Scan(
		&rec.ID, &rec.Name, &rec.CreatedAt, &rec.DurationMS, &rec.EventCount, &payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recording: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &rec.Events); err != nil {
		return nil, fmt.Errorf("failed to decode events for recording %s: %w", id, err)
	}

	return &rec, nil
}

// ListRecordings returns recordings newest-first, without event
// payloads.
func (db *DB) ListRecordings(limit, offset int) ([]Recording, error) {
	query := `
		SELECT id, name, created_at, duration_ms, event_count
		FROM recordings
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recs []Recording
	for rows.Next() {
		var rec Recording
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.DurationMS, &rec.EventCount); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// LatestRecording returns the most recently created recording with its
// events, or ErrNotFound when the store is empty.
func (db *DB) LatestRecording() (*Recording, error) {
	var id string
	err := db.conn.QueryRow(
		"SELECT id FROM recordings ORDER BY created_at DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest recording: %w", err)
	}
	return db.GetRecording(id)
}

// DeleteRecording deletes a recording by id.
func (db *DB) DeleteRecording(id string) error {
	result, err := db.conn.Exec("DELETE FROM recordings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordingCount returns the total number of stored recordings.
func (db *DB) RecordingCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM recordings").Scan(&count)
	return count, err
}

// ExportRecording writes a recording to path as a persisted recording
// document, the same form ImportRecording and the replay engine read.
func (db *DB) ExportRecording(id, path string) error {
	rec, err := db.GetRecording(id)
	if err != nil {
		return err
	}

	doc := recording.Document{
		Events:     rec.Events,
		DurationMS: rec.DurationMS,
		CreatedAt:  rec.CreatedAt,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// ImportRecording reads a persisted recording document from path and
// stores it under a fresh id.
func (db *DB) ImportRecording(name, path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc recording.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Events == nil {
		return nil, fmt.Errorf("document has no events field")
	}

	return db.SaveRecording(name, doc.Events)
}

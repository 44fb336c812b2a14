package storage

import (
	"fmt"
)

// OverallStats represents overall statistics for the stored macros
type OverallStats struct {
	TotalRecordings   int
	TotalEvents       int64
	TotalDurationMs   int64
	AvgDurationMs     float64
	LongestDurationMs int64
}

// DailyStats represents recordings created on a single day
type DailyStats struct {
	Date            string
	TotalRecordings int
	TotalEvents     int64
}

// GetOverallStats retrieves overall statistics across all recordings
func (db *DB) GetOverallStats() (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_recordings,
			COALESCE(SUM(event_count), 0) as total_events,
			COALESCE(SUM(duration_ms), 0) as total_duration_ms,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
			COALESCE(MAX(duration_ms), 0) as longest_duration_ms
		FROM recordings
	`

	var stats OverallStats
	err := db.conn.QueryRow(query).Scan(
		&stats.TotalRecordings,
		&stats.TotalEvents,
		&stats.TotalDurationMs,
		&stats.AvgDurationMs,
		&stats.LongestDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	return &stats, nil
}

// GetDailyStats retrieves statistics grouped by date for the last N days
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(created_at) as date,
			COUNT(*) as total_recordings,
			SUM(event_count) as total_events
		FROM recordings
		WHERE created_at >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(created_at)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		if err := rows.Scan(&s.Date, &s.TotalRecordings, &s.TotalEvents); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

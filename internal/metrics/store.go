package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Fetch outcomes stored in the outcome column.
const (
	OutcomeMeal           = "meal"
	OutcomeNoMeal         = "no-meal"
	OutcomeTransportError = "transport-error"
	OutcomeParseError     = "parse-error"
	OutcomeNotFound       = "not-found"
	OutcomeNetworkError   = "network-error"
	OutcomeCancelled      = "cancelled"
)

const timestampLayout = "2006-01-02T15:04:05Z"

// FetchMetric records metadata for a single meal API fetch. No menu data is
// kept.
type FetchMetric struct {
	RequestID string
	QueryDate string
	Outcome   string
	Status    int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(m FetchMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO fetch_metrics (request_id, query_date, outcome, status, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.RequestID, m.QueryDate, m.Outcome, m.Status, m.LatencyMS, ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch metric: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DailyUsage summarises the fetches of a single day.
type DailyUsage struct {
	Date         string
	Total        int
	Meals        int
	NoMeals      int
	Errors       int
	AvgLatencyMS int64
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timestampLayout)
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT substr(timestamp, 1, 10) AS day,
		        COUNT(*),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        CAST(AVG(latency_ms) AS INTEGER)
		 FROM fetch_metrics
		 WHERE timestamp >= ?
		 GROUP BY day
		 ORDER BY day DESC`,
		OutcomeMeal, OutcomeNoMeal, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.Total, &u.Meals, &u.NoMeals, &u.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		u.Errors = u.Total - u.Meals - u.NoMeals
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)
	res, err := s.db.ExecContext(context.Background(),
		`DELETE FROM fetch_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up fetch metrics: %w", err)
	}
	return res.RowsAffected()
}
